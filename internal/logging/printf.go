// Lunch Roulette - Nearby Lunch Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lunchroulette

package logging

import (
	"fmt"
	"strings"
)

// PrintfLogger adapts libraries that log through Errorf/Warningf/Infof/Debugf
// (badger.Logger) onto the global zerolog logger.
//
// Library info output is mostly compaction and value log chatter, so it is
// written at debug level.
type PrintfLogger struct {
	component string
}

// NewPrintfLogger returns a PrintfLogger tagging every line with component.
func NewPrintfLogger(component string) *PrintfLogger {
	return &PrintfLogger{component: component}
}

func (p *PrintfLogger) Errorf(format string, args ...any) {
	l := WithComponent(p.component)
	l.Error().Msg(trimMsg(format, args))
}

func (p *PrintfLogger) Warningf(format string, args ...any) {
	l := WithComponent(p.component)
	l.Warn().Msg(trimMsg(format, args))
}

func (p *PrintfLogger) Infof(format string, args ...any) {
	l := WithComponent(p.component)
	l.Debug().Msg(trimMsg(format, args))
}

func (p *PrintfLogger) Debugf(format string, args ...any) {
	l := WithComponent(p.component)
	l.Trace().Msg(trimMsg(format, args))
}

// trimMsg formats and drops the trailing newline printf-style loggers add.
func trimMsg(format string, args []any) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}
