package logger

import (
	"github.com/ThreeDotsLabs/watermill"
)

// watermillAdapter routes watermill's logging through the application logger.
type watermillAdapter struct {
	log    *Logger
	fields watermill.LogFields
}

// Watermill adapts l to watermill.LoggerAdapter. A nil logger yields a no-op adapter.
func Watermill(l *Logger) watermill.LoggerAdapter {
	if l == nil {
		return watermill.NopLogger{}
	}
	return &watermillAdapter{log: l}
}

func (a *watermillAdapter) kv(fields watermill.LogFields) []interface{} {
	all := a.fields.Add(fields)
	out := make([]interface{}, 0, len(all)*2)
	for k, v := range all {
		out = append(out, k, v)
	}
	return out
}

func (a *watermillAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Errorw(msg, append(a.kv(fields), "err", err)...)
}

func (a *watermillAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Infow(msg, a.kv(fields)...)
}

func (a *watermillAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debugw(msg, a.kv(fields)...)
}

// Trace is folded into debug; zap has no trace level.
func (a *watermillAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.Debugw(msg, a.kv(fields)...)
}

func (a *watermillAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &watermillAdapter{log: a.log, fields: a.fields.Add(fields)}
}
