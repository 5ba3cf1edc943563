// Package observability defines the logging and metrics seams injected
// into the processing pipeline. Libraries receive these interfaces from
// the caller; nothing in this module logs or measures through globals.
package observability

import "time"

type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

type Field interface {
	Key() string
	Value() interface{}
}

type stringField struct{ key, val string }

func (f stringField) Key() string        { return f.key }
func (f stringField) Value() interface{} { return f.val }

type intField struct {
	key string
	val int
}

func (f intField) Key() string        { return f.key }
func (f intField) Value() interface{} { return f.val }

type int64Field struct {
	key string
	val int64
}

func (f int64Field) Key() string        { return f.key }
func (f int64Field) Value() interface{} { return f.val }

type float64Field struct {
	key string
	val float64
}

func (f float64Field) Key() string        { return f.key }
func (f float64Field) Value() interface{} { return f.val }

type boolField struct {
	key string
	val bool
}

func (f boolField) Key() string        { return f.key }
func (f boolField) Value() interface{} { return f.val }

type durationField struct {
	key string
	val time.Duration
}

func (f durationField) Key() string        { return f.key }
func (f durationField) Value() interface{} { return f.val }

type errorField struct {
	key string
	err error
}

func (f errorField) Key() string        { return f.key }
func (f errorField) Value() interface{} { return f.err }

func String(key, value string) Field                 { return stringField{key, value} }
func Int(key string, value int) Field                { return intField{key, value} }
func Int64(key string, value int64) Field            { return int64Field{key, value} }
func Float64(key string, value float64) Field        { return float64Field{key, value} }
func Bool(key string, value bool) Field              { return boolField{key, value} }
func Duration(key string, value time.Duration) Field { return durationField{key, value} }
func Error(key string, err error) Field              { return errorField{key, err} }

type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (NopLogger) With(...Field) Logger   { return NopLogger{} }

// Metrics receives pipeline measurements. Implementations must be safe
// for concurrent use; pages are processed in parallel.
type Metrics interface {
	// PageProcessed records one finished page with its terminal status
	// ("ok", "degraded" or "failed") and wall time.
	PageProcessed(status string, seconds float64)
	// ModuleTimed records one module phase ("detect" or "process").
	ModuleTimed(module, phase string, seconds float64)
	// ModuleApplied counts a module whose correction was kept.
	ModuleApplied(module string)
	// DocumentClassified counts a classification outcome by type.
	DocumentClassified(documentType string)
}

type NopMetrics struct{}

func (NopMetrics) PageProcessed(string, float64)       {}
func (NopMetrics) ModuleTimed(string, string, float64) {}
func (NopMetrics) ModuleApplied(string)                {}
func (NopMetrics) DocumentClassified(string)           {}

// Terminal page statuses reported to Metrics.PageProcessed.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusFailed   = "failed"
)
