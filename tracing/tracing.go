package tracing

import (
	"errors"
	"fmt"
	"io"

	"github.com/danielbahrami/SE08-SP/common"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var ErrUnknownExporter = errors.New("unknown trace exporter")

const serviceName = "smartlock"

// NewProvider builds the tracer provider selected by cfg.Exporter. "stdout"
// writes finished spans as JSON to w. "none" or an empty value returns nil, in
// which case the global no-op provider stays in place.
func NewProvider(cfg common.TraceConfig, w io.Writer) (*sdktrace.TracerProvider, error) {
	switch cfg.Exporter {
	case "", "none":
		return nil, nil
	case "stdout":
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, err
		}
		return sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
		), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownExporter, cfg.Exporter)
}
