package logging

import (
	"strings"

	"github.com/pressly/goose/v3"
)

// GooseLogger routes migration output to the debug log.
type GooseLogger struct{}

var _ goose.Logger = (*GooseLogger)(nil)

func (GooseLogger) Fatalf(format string, v ...interface{}) {
	Fatalf(format, v...)
}

func (GooseLogger) Printf(format string, v ...interface{}) {
	Debugf(strings.TrimSuffix(format, "\n"), v...)
}
