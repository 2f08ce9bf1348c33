package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldSource is the key for the retrieval source or extractor name.
	FieldSource = "source"
	// FieldQuery is the key for the search query of a request.
	FieldQuery = "query"
	// FieldSearchID is the key for a stored search id.
	FieldSearchID = "search_id"
)

// StringField is a string-valued structured field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts key/value pairs into zap fields. Keys and values are
// trimmed, pairs with an empty key or value are dropped.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to the logger. A nil logger becomes a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CommonFields returns the source and query fields of a retrieval step.
func CommonFields(source, query string) []zap.Field {
	return StringFields(
		StringField{Key: FieldSource, Value: source},
		StringField{Key: FieldQuery, Value: query},
	)
}

// WithCommonFields attaches CommonFields to the logger.
func WithCommonFields(logger *zap.Logger, source, query string) *zap.Logger {
	return WithFields(logger, CommonFields(source, query)...)
}
