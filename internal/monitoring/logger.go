package monitoring

import "log"

// Logf is the package-level diagnostic logger for the stroke pipeline.
// It defaults to log.Printf but may be replaced by SetLogger; rejected
// stroke candidates and calibration events are reported through it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil sets a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
