// Package xlog is the thin logrus wrapper used by cmd/treestore and the
// store, tree, and merge packages, grounded on the teacher's own
// trace/error-logging conventions.
package xlog

import (
	"os"

	"github.com/sirupsen/logrus"
)

var std = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// SetDebug toggles debug-level logging on the shared logger.
func SetDebug(debug bool) {
	if debug {
		std.SetLevel(logrus.DebugLevel)
		return
	}
	std.SetLevel(logrus.InfoLevel)
}

// Fields carries the structured key/value pairs attached to one log line.
type Fields = logrus.Fields

// Warnw logs msg at warn level with structured fields attached, for
// recoverable store I/O conditions (a missing object).
func Warnw(msg string, fields Fields) {
	std.WithFields(fields).Warn(msg)
}

// Errorw logs msg at error level with structured fields attached, for
// store I/O failures, corrupt blobs, and invariant violations.
func Errorw(msg string, fields Fields) {
	std.WithFields(fields).Error(msg)
}
