// Package roomsheet extracts normalized rental listing records from
// spreadsheets with inconsistent, human-authored layouts.
package roomsheet

import (
	"context"

	"go.uber.org/zap"

	"github.com/roomsheet/roomsheet-go/pkg/roomsheet/models"
)

// sampleRowCount is how many leading sheet rows are handed to the column
// suggester when rule-based header detection fails.
const sampleRowCount = 20

// ColumnSuggester infers a header map from a sample of sheet rows when the
// rule-based scan found none. An empty map means the suggester could not
// help, not that the sheet has no structure.
type ColumnSuggester interface {
	MapColumns(ctx context.Context, rows [][]string) models.HeaderMap
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithColumnSuggester sets the fallback column suggester. Without one the
// engine relies on the rule-based mapper alone.
func WithColumnSuggester(s ColumnSuggester) Option {
	return func(e *Engine) { e.suggester = s }
}
