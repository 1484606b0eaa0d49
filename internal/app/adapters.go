package app

import (
	"github.com/quadrantlab/quadrant/internal/infrastructure/monitoring/logging"
)

// repoLogger adapts the structured logging.Logger to the keysAndValues
// contract the repository layer expects.
type repoLogger struct {
	l logging.Logger
}

func (a repoLogger) Debug(msg string, keysAndValues ...interface{}) {
	a.l.Debug(msg, toFields(keysAndValues)...)
}

func (a repoLogger) Info(msg string, keysAndValues ...interface{}) {
	a.l.Info(msg, toFields(keysAndValues)...)
}

func (a repoLogger) Warn(msg string, keysAndValues ...interface{}) {
	a.l.Warn(msg, toFields(keysAndValues)...)
}

func (a repoLogger) Error(msg string, keysAndValues ...interface{}) {
	a.l.Error(msg, toFields(keysAndValues)...)
}

func toFields(keysAndValues []interface{}) []logging.Field {
	fields := make([]logging.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = "arg"
		}
		fields = append(fields, logging.Any(key, keysAndValues[i+1]))
	}
	return fields
}
