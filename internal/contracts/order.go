package contracts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/quickfixgo/enum"
	"github.com/shopspring/decimal"
)

// MissingFieldMessage is the client-facing text for a request missing required data
const MissingFieldMessage = "Missing required stock data: symbol, price, quantity, or clOrdId"

var (
	// ErrMissingField marks a request without symbol, price, quantity or clOrdId
	ErrMissingField = errors.New("missing required order field")

	// ErrInvalidField marks a present but unusable field value
	ErrInvalidField = errors.New("invalid order field")
)

// Price bounds. decimal keeps any exponent the caller sends, and String()
// writes every digit of it into tag 44.
const (
	MaxPriceExponent = 18
	MaxPriceDigits   = 18
)

// DefaultOrdStatus is applied when the caller leaves ordStatus empty
const DefaultOrdStatus = enum.OrdStatus_NEW

// supportedOrdStatus lists the codes the field catalog explains
var supportedOrdStatus = map[enum.OrdStatus]string{
	enum.OrdStatus_NEW:              "New",
	enum.OrdStatus_PARTIALLY_FILLED: "Partially Filled",
	enum.OrdStatus_FILLED:           "Filled",
}

// OrderRequest is the order record handed to the encoder.
// Built per request and never stored.
// ⭐ SSOT: API/CLI → Encoder 주문 정보 전달
type OrderRequest struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	ClOrdID   string          `json:"clOrdId"`
	OrdStatus enum.OrdStatus  `json:"ordStatus"`
}

// Normalize trims text fields and applies the ordStatus default
func (o *OrderRequest) Normalize() {
	o.Symbol = strings.TrimSpace(o.Symbol)
	o.ClOrdID = strings.TrimSpace(o.ClOrdID)
	o.OrdStatus = enum.OrdStatus(strings.TrimSpace(string(o.OrdStatus)))

	if o.OrdStatus == "" {
		o.OrdStatus = DefaultOrdStatus
	}
}

// Validate checks the order before it reaches the encoder.
// A zero price or quantity counts as missing.
func (o *OrderRequest) Validate() error {
	var missing []string
	if o.Symbol == "" {
		missing = append(missing, "symbol")
	}
	if o.Price.IsZero() {
		missing = append(missing, "price")
	}
	if o.Quantity == 0 {
		missing = append(missing, "quantity")
	}
	if o.ClOrdID == "" {
		missing = append(missing, "clOrdId")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}

	if o.Price.IsNegative() {
		return fmt.Errorf("%w: price must be positive, got %s", ErrInvalidField, o.Price)
	}
	if exp := o.Price.Exponent(); exp > MaxPriceExponent || exp < -MaxPriceExponent || o.Price.NumDigits() > MaxPriceDigits {
		return fmt.Errorf("%w: price out of range, at most %d digits and exponent within ±%d", ErrInvalidField, MaxPriceDigits, MaxPriceExponent)
	}
	if o.Quantity < 0 {
		return fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidField, o.Quantity)
	}
	if strings.ContainsAny(o.Symbol+o.ClOrdID, "|=") {
		return fmt.Errorf("%w: symbol and clOrdId must not contain '|' or '='", ErrInvalidField)
	}
	if _, ok := supportedOrdStatus[o.OrdStatus]; !ok {
		return fmt.Errorf("%w: unsupported ordStatus %q", ErrInvalidField, o.OrdStatus)
	}

	return nil
}

// OrdStatusName returns the readable name of a supported status code
func OrdStatusName(s enum.OrdStatus) (string, bool) {
	name, ok := supportedOrdStatus[s]
	return name, ok
}
