package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/gorm"
)

// RegisterDBTracing attaches the otelgorm plugin so every query runs as
// a child span of the ambient request or service span. Query variables
// are excluded from span attributes. Spans stay no-ops until a tracer
// provider is installed, so registration is safe when tracing is off.
func RegisterDBTracing(db *gorm.DB) error {
	return db.Use(otelgorm.NewPlugin(
		otelgorm.WithDBName("postgresql"),
		otelgorm.WithoutQueryVariables(),
	))
}
