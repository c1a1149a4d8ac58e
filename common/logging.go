// Package common provides the crawler's shared logging and time
// primitives: a global logrus logger with stream-separated output, a
// context-field builder on top of it, and the monotonic clock used for
// every scheduling decision in the system (C1/spec.md §4.1).
package common

import (
	"bytes"
	"os"

	"github.com/sirupsen/logrus"
)

// OutputSplitter routes logrus-formatted records to stderr when they
// carry "level=error" and to stdout otherwise, so container log
// collectors can treat the two streams differently without parsing
// JSON first.
type OutputSplitter struct{}

func (s *OutputSplitter) Write(p []byte) (int, error) {
	if bytes.Contains(p, []byte("level=error")) {
		return os.Stderr.Write(p)
	}
	return os.Stdout.Write(p)
}

// Logger is the process-wide logrus instance. Every component logs
// through it (or through a ContextLogger built on top of it) rather
// than the standard library's log package.
var Logger = logrus.New()

func init() {
	Logger.SetOutput(&OutputSplitter{})
	Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}
