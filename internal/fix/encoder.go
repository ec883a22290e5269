package fix

import (
	"strconv"
	"strings"
	"time"

	"github.com/quickfixgo/enum"

	"github.com/wonny/fixconv/internal/contracts"
)

const (
	// BeginStringFIX44 is the protocol version emitted in tag 8
	BeginStringFIX44 = "FIX.4.4"

	// SendingTimeLayout renders tag 52 as YYYYMMDD-HH:mm:ss.SSS
	SendingTimeLayout = "20060102-15:04:05.000"

	// FieldSeparator joins tag=value segments on the wire
	FieldSeparator = "|"

	// MessageFieldCount is the number of fields in every encoded message
	MessageFieldCount = 10
)

// Field is a single tag=value pair
type Field struct {
	Tag   string `json:"tag"`
	Value string `json:"value"`
}

// String renders the field as tag=value
func (f Field) String() string {
	return f.Tag + "=" + f.Value
}

// Message is an ordered list of fields
type Message []Field

// String renders the message in wire form
func (m Message) String() string {
	segments := make([]string, len(m))
	for i, f := range m {
		segments[i] = f.String()
	}
	return strings.Join(segments, FieldSeparator)
}

// Value returns the value of the first field carrying tag
func (m Message) Value(tag string) (string, bool) {
	for _, f := range m {
		if f.Tag == tag {
			return f.Value, true
		}
	}
	return "", false
}

// Encoder builds New Order - Single messages from order requests.
// The only state is the clock, so one Encoder can be shared by any number of goroutines.
type Encoder struct {
	now func() time.Time
}

// NewEncoder creates an encoder stamping messages with the wall clock
func NewEncoder() *Encoder {
	return &Encoder{now: time.Now}
}

// NewEncoderWithClock creates an encoder with a custom clock
func NewEncoderWithClock(now func() time.Time) *Encoder {
	return &Encoder{now: now}
}

// Build returns the ten fields of the message in wire order.
// Side is always Buy. The checksum covers the raw values of the
// caller-supplied fields and the sending time, not the rendered segments.
func (e *Encoder) Build(order contracts.OrderRequest) Message {
	sendingTime := e.now().UTC().Format(SendingTimeLayout)

	price := order.Price.String()
	quantity := strconv.FormatInt(order.Quantity, 10)
	ordStatus := string(order.OrdStatus)

	checksum := Checksum(order.Symbol, price, quantity, order.ClOrdID, ordStatus, sendingTime)

	return Message{
		{Tag: TagBeginString, Value: BeginStringFIX44},
		{Tag: TagMsgType, Value: string(enum.MsgType_ORDER_SINGLE)},
		{Tag: TagClOrdID, Value: order.ClOrdID},
		{Tag: TagSymbol, Value: order.Symbol},
		{Tag: TagPrice, Value: price},
		{Tag: TagOrderQty, Value: quantity},
		{Tag: TagSide, Value: string(enum.Side_BUY)},
		{Tag: TagOrdStatus, Value: ordStatus},
		{Tag: TagSendingTime, Value: sendingTime},
		{Tag: TagCheckSum, Value: strconv.Itoa(checksum)},
	}
}

// Encode renders the order as a pipe-delimited message
func (e *Encoder) Encode(order contracts.OrderRequest) string {
	return e.Build(order).String()
}
