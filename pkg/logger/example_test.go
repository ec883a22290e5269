package logger_test

import (
	"errors"

	"github.com/wonny/fixconv/pkg/config"
	"github.com/wonny/fixconv/pkg/logger"
)

// Example_withFields demonstrates structured logging with fields
func Example_withFields() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"cl_ord_id": "ORD12345",
		"symbol":    "AAPL",
	}).Info("Order encoded")

	err := errors.New("malformed field: missing '='")
	log.WithError(err).WithField("path", "/explain").Warn("Explain rejected")
}
