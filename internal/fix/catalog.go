package fix

import (
	"bytes"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Tag numbers carried by an encoded message, in wire order.
const (
	TagBeginString  = "8"
	TagMsgType      = "35"
	TagClOrdID      = "11"
	TagSymbol       = "55"
	TagPrice        = "44"
	TagOrderQty     = "38"
	TagSide         = "54"
	TagOrdStatus    = "39"
	TagSendingTime  = "52"
	TagCheckSum     = "10"
	UnknownFieldMsg = "Unknown field"
)

//go:embed catalog.yaml
var catalogYAML []byte

// CatalogEntry is one row of the field catalog
type CatalogEntry struct {
	Tag         string `yaml:"tag" json:"tag"`
	Explanation string `yaml:"explanation" json:"explanation"`
}

type catalogFile struct {
	Fields []CatalogEntry `yaml:"fields"`
}

// catalog is read-only after init; concurrent lookups need no locking.
// ⭐ SSOT: 태그 설명은 catalog.yaml 에서만 정의
var catalog = mustLoadCatalog(catalogYAML)

type fieldCatalog struct {
	entries []CatalogEntry
	byTag   map[string]string
}

func mustLoadCatalog(data []byte) *fieldCatalog {
	c, err := loadCatalog(data)
	if err != nil {
		panic(fmt.Sprintf("fix: load field catalog: %v", err))
	}
	return c
}

// loadCatalog decodes the YAML table, rejecting unknown keys and duplicate tags
func loadCatalog(data []byte) (*fieldCatalog, error) {
	var f catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &fieldCatalog{
		entries: make([]CatalogEntry, 0, len(f.Fields)),
		byTag:   make(map[string]string, len(f.Fields)),
	}
	for _, e := range f.Fields {
		if e.Tag == "" {
			return nil, fmt.Errorf("catalog entry with empty tag")
		}
		if _, dup := c.byTag[e.Tag]; dup {
			return nil, fmt.Errorf("duplicate catalog tag %s", e.Tag)
		}
		c.byTag[e.Tag] = e.Explanation
		c.entries = append(c.entries, e)
	}

	return c, nil
}

// ExplanationFor returns the human-readable meaning of tag.
// ok is false when the tag is not in the catalog.
func ExplanationFor(tag string) (explanation string, ok bool) {
	explanation, ok = catalog.byTag[tag]
	return explanation, ok
}

// Entries returns a copy of the catalog in wire order
func Entries() []CatalogEntry {
	out := make([]CatalogEntry, len(catalog.entries))
	copy(out, catalog.entries)
	return out
}

// Tags returns the catalog tags in wire order
func Tags() []string {
	tags := make([]string, len(catalog.entries))
	for i, e := range catalog.entries {
		tags[i] = e.Tag
	}
	return tags
}
