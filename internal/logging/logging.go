// Package logging builds the logrus loggers shared by the library packages
// and the command-line tools.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Discard returns a logger that drops everything. Library components use it
// when the caller does not inject one.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)

	return l
}

// New returns a text logger writing to stderr. verbose enables debug
// output.
func New(verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})

	l.SetLevel(logrus.InfoLevel)
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}

	return l
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l logrus.FieldLogger) logrus.FieldLogger {
	if l == nil {
		return Discard()
	}

	return l
}
