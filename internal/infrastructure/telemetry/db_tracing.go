package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RegisterGormTracing attaches the otelgorm plugin so every query becomes a
// span under the active request trace. Query variables are excluded from the
// recorded statements.
func RegisterGormTracing(db *gorm.DB, enabled bool, logger *zap.Logger) error {
	if !enabled {
		return nil
	}
	if err := db.Use(otelgorm.NewPlugin(otelgorm.WithoutQueryVariables())); err != nil {
		return err
	}
	logger.Info("database tracing enabled")
	return nil
}
