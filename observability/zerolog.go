package observability

import (
	"time"

	"github.com/rs/zerolog"
)

// NewZerolog wraps a zerolog logger in the Logger interface. Fields map
// onto their typed zerolog counterparts.
func NewZerolog(l zerolog.Logger) Logger {
	return zerologger{l: l}
}

type zerologger struct {
	l zerolog.Logger
}

func (z zerologger) Debug(msg string, fields ...Field) { emit(z.l.Debug(), msg, fields) }
func (z zerologger) Info(msg string, fields ...Field)  { emit(z.l.Info(), msg, fields) }
func (z zerologger) Warn(msg string, fields ...Field)  { emit(z.l.Warn(), msg, fields) }
func (z zerologger) Error(msg string, fields ...Field) { emit(z.l.Error(), msg, fields) }

func (z zerologger) With(fields ...Field) Logger {
	ctx := z.l.With()
	for _, f := range fields {
		switch v := f.Value().(type) {
		case string:
			ctx = ctx.Str(f.Key(), v)
		case int:
			ctx = ctx.Int(f.Key(), v)
		case int64:
			ctx = ctx.Int64(f.Key(), v)
		case float64:
			ctx = ctx.Float64(f.Key(), v)
		case bool:
			ctx = ctx.Bool(f.Key(), v)
		case time.Duration:
			ctx = ctx.Dur(f.Key(), v)
		case error:
			ctx = ctx.AnErr(f.Key(), v)
		default:
			ctx = ctx.Interface(f.Key(), v)
		}
	}
	return zerologger{l: ctx.Logger()}
}

func emit(e *zerolog.Event, msg string, fields []Field) {
	for _, f := range fields {
		switch v := f.Value().(type) {
		case string:
			e = e.Str(f.Key(), v)
		case int:
			e = e.Int(f.Key(), v)
		case int64:
			e = e.Int64(f.Key(), v)
		case float64:
			e = e.Float64(f.Key(), v)
		case bool:
			e = e.Bool(f.Key(), v)
		case time.Duration:
			e = e.Dur(f.Key(), v)
		case error:
			e = e.AnErr(f.Key(), v)
		default:
			e = e.Interface(f.Key(), v)
		}
	}
	e.Msg(msg)
}
