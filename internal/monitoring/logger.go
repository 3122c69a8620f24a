package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Warnf logs a recoverable problem the caller should know about, such as an
// add operation that targeted an ID already present in the scene.
func Warnf(format string, v ...interface{}) {
	Logf("WARN "+format, v...)
}

// Errorf logs a rejected request, such as malformed input buffers.
func Errorf(format string, v ...interface{}) {
	Logf("ERROR "+format, v...)
}
