package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/fixconv/internal/contracts"
	"github.com/wonny/fixconv/internal/fix"
	"github.com/wonny/fixconv/pkg/logger"
	"github.com/wonny/fixconv/pkg/metrics"
)

// FixHandler serves the encode and explain endpoints
// ⭐ SSOT: FIX API 핸들러는 이 구조체에서만
type FixHandler struct {
	encoder      *fix.Encoder
	metrics      *metrics.Metrics
	logger       *logger.Logger
	maxBodyBytes int64
}

// NewFixHandler creates a new FIX handler
func NewFixHandler(encoder *fix.Encoder, m *metrics.Metrics, log *logger.Logger, maxBodyBytes int64) *FixHandler {
	return &FixHandler{
		encoder:      encoder,
		metrics:      m,
		logger:       log,
		maxBodyBytes: maxBodyBytes,
	}
}

// FixResponse carries an encoded message
type FixResponse struct {
	FixMessage string `json:"fixMessage"`
}

// ExplainedResponse carries a message and its annotated fields
type ExplainedResponse struct {
	FixMessage   string               `json:"fixMessage"`
	ExplainedFix []fix.AnnotatedField `json:"explainedFix"`
}

// ExplainRequest is the body of POST /explain
type ExplainRequest struct {
	FixMessage string `json:"fixMessage"`
}

// FieldsResponse lists the field catalog
type FieldsResponse struct {
	Fields []fix.CatalogEntry `json:"fields"`
}

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse struct {
	Error string `json:"error"`
}

// Fix encodes an order
// POST /fix
func (h *FixHandler) Fix(w http.ResponseWriter, r *http.Request) {
	order, ok := h.decodeOrder(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, FixResponse{
		FixMessage: h.encode(order),
	})
}

// ConvertAndExplain encodes an order and annotates the result
// POST /convert-to-fix-deparsed
func (h *FixHandler) ConvertAndExplain(w http.ResponseWriter, r *http.Request) {
	order, ok := h.decodeOrder(w, r)
	if !ok {
		return
	}

	msg := h.encoder.Build(order)
	h.metrics.MessageEncoded()
	h.metrics.MessageExplained()

	respondJSON(w, http.StatusOK, ExplainedResponse{
		FixMessage:   msg.String(),
		ExplainedFix: fix.Annotate(msg),
	})
}

// Explain annotates a caller-supplied message
// POST /explain
func (h *FixHandler) Explain(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var req ExplainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fields, err := h.explain(req.FixMessage)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, ExplainedResponse{
		FixMessage:   req.FixMessage,
		ExplainedFix: fields,
	})
}

// Fields returns the field catalog
// GET /fields
func (h *FixHandler) Fields(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, FieldsResponse{Fields: fix.Entries()})
}

// decodeOrder parses and validates the order body, writing the error reply itself
func (h *FixHandler) decodeOrder(w http.ResponseWriter, r *http.Request) (contracts.OrderRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var order contracts.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		h.logger.WithError(err).Debug("Invalid order body")
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return order, false
	}

	order.Normalize()
	if err := order.Validate(); err != nil {
		h.logger.WithError(err).WithField("cl_ord_id", order.ClOrdID).Warn("Order rejected")

		if errors.Is(err, contracts.ErrMissingField) {
			respondError(w, http.StatusBadRequest, contracts.MissingFieldMessage)
		} else {
			respondError(w, http.StatusBadRequest, err.Error())
		}
		return order, false
	}

	return order, true
}

func (h *FixHandler) encode(order contracts.OrderRequest) string {
	msg := h.encoder.Encode(order)
	h.metrics.MessageEncoded()

	status, _ := contracts.OrdStatusName(order.OrdStatus)
	h.logger.WithFields(map[string]interface{}{
		"cl_ord_id":  order.ClOrdID,
		"symbol":     order.Symbol,
		"ord_status": status,
	}).Debug("Order encoded")

	return msg
}

// explain runs the explainer and records the outcome
func (h *FixHandler) explain(message string) ([]fix.AnnotatedField, error) {
	fields, err := fix.Explain(message)
	if err != nil {
		h.metrics.ExplainFailed()
		h.logger.WithError(err).Debug("Message rejected")
		return nil, err
	}

	h.metrics.MessageExplained()
	return fields, nil
}
