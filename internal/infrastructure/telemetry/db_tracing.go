package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RegisterDBTracing attaches the otelgorm plugin to the GORM instance so
// every query becomes a child span of the request trace. Query variables
// are never recorded; ledger rows carry money values.
func RegisterDBTracing(db *gorm.DB, enabled bool, logger *zap.Logger) error {
	if !enabled {
		return nil
	}

	plugin := otelgorm.NewPlugin(
		otelgorm.WithDBName("postgresql"),
		otelgorm.WithoutQueryVariables(),
	)
	if err := db.Use(plugin); err != nil {
		return err
	}

	if err := registerRowsAffectedCallbacks(db); err != nil {
		return err
	}

	logger.Info("Database tracing enabled")
	return nil
}

// registerRowsAffectedCallbacks annotates query spans with the affected row
// count and table name. The conditional cash-balance update relies on
// RowsAffected to detect lost swaps, so having it on the span makes conflict
// traces readable without replaying the query.
func registerRowsAffectedCallbacks(db *gorm.DB) error {
	after := func(db *gorm.DB) {
		if db.Statement == nil || db.Statement.Context == nil {
			return
		}
		span := trace.SpanFromContext(db.Statement.Context)
		if !span.IsRecording() {
			return
		}
		if db.Statement.RowsAffected >= 0 {
			span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
		}
		if db.Statement.Table != "" {
			span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
		}
	}

	if err := db.Callback().Update().After("gorm:update").Register("bahikhata:rows_after_update", after); err != nil {
		return err
	}
	if err := db.Callback().Query().After("gorm:query").Register("bahikhata:rows_after_query", after); err != nil {
		return err
	}
	return db.Callback().Create().After("gorm:create").Register("bahikhata:rows_after_create", after)
}
