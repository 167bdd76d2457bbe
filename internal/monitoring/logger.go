// Package monitoring carries the package-level diagnostic logger shared by
// the confound-processing packages.
package monitoring

import "log"

// Logf is the diagnostic logger used for progress and warning lines. It
// defaults to log.Printf; tests or embedding callers can redirect or mute it
// with SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
