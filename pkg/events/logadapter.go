package events

import (
	"github.com/ThreeDotsLabs/watermill"

	"github.com/ghuser/medtrace/pkg/logger"
)

// watermillLogger routes Watermill's logs into the process logger. Watermill
// traces every poll, so Trace is dropped to Debug.
type watermillLogger struct{ log logger.Logger }

var _ watermill.LoggerAdapter = watermillLogger{}

func (a watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Error(msg, append(fieldArgs(fields), "error", err)...)
}

func (a watermillLogger) Info(msg string, fields watermill.LogFields) {
	a.log.Info(msg, fieldArgs(fields)...)
}

func (a watermillLogger) Debug(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldArgs(fields)...)
}

func (a watermillLogger) Trace(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldArgs(fields)...)
}

func (a watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return watermillLogger{log: a.log.With(fieldArgs(fields)...)}
}

func fieldArgs(fields watermill.LogFields) []any {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}
