package fix

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedField is returned when a segment has no '=' separator
var ErrMalformedField = errors.New("malformed field: missing '='")

// AnnotatedField is a decoded field with its catalog explanation
type AnnotatedField struct {
	Tag         string `json:"tag"`
	Value       string `json:"value"`
	Explanation string `json:"explanation"`
}

// Decode splits a message into fields, keeping input order and duplicates.
// Each segment is split on its first '='; a segment without one rejects the
// whole message.
func Decode(message string) (Message, error) {
	segments := strings.Split(message, FieldSeparator)
	fields := make(Message, 0, len(segments))

	for i, seg := range segments {
		tag, value, found := strings.Cut(seg, "=")
		if !found {
			return nil, fmt.Errorf("field %d %q: %w", i+1, seg, ErrMalformedField)
		}
		fields = append(fields, Field{Tag: tag, Value: value})
	}

	return fields, nil
}

// Explain decodes the message and annotates every field from the catalog.
// Tags not in the catalog are explained as "Unknown field".
func Explain(message string) ([]AnnotatedField, error) {
	fields, err := Decode(message)
	if err != nil {
		return nil, err
	}

	return Annotate(fields), nil
}

// Annotate attaches catalog explanations to already-decoded fields
func Annotate(fields Message) []AnnotatedField {
	out := make([]AnnotatedField, len(fields))
	for i, f := range fields {
		explanation, ok := ExplanationFor(f.Tag)
		if !ok {
			explanation = UnknownFieldMsg
		}
		out[i] = AnnotatedField{
			Tag:         f.Tag,
			Value:       f.Value,
			Explanation: explanation,
		}
	}
	return out
}
