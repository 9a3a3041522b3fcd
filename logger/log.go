// Package logger provides a leveled text logger for build scripts.
//
// Lines are written to standard output in the form
//
//	<timestamp> - <logger name> - <level> - <message>
//
// so that output interleaves cleanly with the rest of a CI job's console
// log. Construction always returns a fresh logger; nothing in this package
// is configured globally.
package logger

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"golang.org/x/term"
)

const (
	nocolor   = "0"
	red       = "31"
	green     = "38;5;48"
	yellow    = "33"
	blue      = "34"
	gray      = "38;5;251"
	lightgray = "38;5;243"
)

const (
	// DefaultName is the logger name used when none is set.
	DefaultName = "jenkins-helper"

	DateFormat = "2006-01-02 15:04:05"
)

var mutex = sync.Mutex{}

type Logger interface {
	Debug(format string, v ...any)
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
	Fatal(format string, v ...any)

	WithPrefix(prefix string) Logger
	SetLevel(level Level)
	GetLevel() Level
}

type TextLogger struct {
	Level  Level
	Colors bool
	Prefix string
	Writer io.Writer
	ExitFn func()
}

func NewTextLogger() Logger {
	return &TextLogger{
		Level:  INFO,
		Colors: ColorsAvailable(),
		Prefix: DefaultName,
		Writer: os.Stdout,
	}
}

// ColorsAvailable reports whether stdout is a terminal that can render
// ANSI colors.
func ColorsAvailable() bool {
	return runtime.GOOS != "windows" && term.IsTerminal(int(os.Stdout.Fd()))
}

// WithPrefix returns a copy of the logger with the provided name prefix
func (l *TextLogger) WithPrefix(prefix string) Logger {
	clone := *l
	clone.Prefix = prefix
	return &clone
}

// SetLevel sets the level for the logger
func (l *TextLogger) SetLevel(level Level) {
	l.Level = level
}

func (l *TextLogger) GetLevel() Level {
	return l.Level
}

func (l *TextLogger) Debug(format string, v ...any) {
	if l.Level <= DEBUG {
		l.log(DEBUG, format, v...)
	}
}

func (l *TextLogger) Info(format string, v ...any) {
	if l.Level <= INFO {
		l.log(INFO, format, v...)
	}
}

func (l *TextLogger) Warn(format string, v ...any) {
	if l.Level <= WARN {
		l.log(WARN, format, v...)
	}
}

func (l *TextLogger) Error(format string, v ...any) {
	l.log(ERROR, format, v...)
}

func (l *TextLogger) Fatal(format string, v ...any) {
	l.log(FATAL, format, v...)
	if l.ExitFn != nil {
		l.ExitFn()
		return
	}
	os.Exit(1)
}

func (l *TextLogger) log(level Level, format string, v ...any) {
	message := fmt.Sprintf(format, v...)
	now := time.Now().Format(DateFormat)
	name := l.Prefix
	if name == "" {
		name = DefaultName
	}

	var line string
	if l.Colors {
		levelColor := green
		messageColor := nocolor

		switch level {
		case DEBUG:
			levelColor = gray
			messageColor = gray
		case WARN:
			levelColor = yellow
		case ERROR:
			levelColor = red
		case FATAL:
			levelColor = red
			messageColor = red
		}

		line = fmt.Sprintf("\x1b[%sm%s\x1b[0m - \x1b[%sm%s\x1b[0m - \x1b[%sm%s\x1b[0m - \x1b[%sm%s\x1b[0m\n",
			gray, now, lightgray, name, levelColor, level, messageColor, message)
	} else {
		line = fmt.Sprintf("%s - %s - %s - %s\n", now, name, level, message)
	}

	// Make sure we're only outputing a line one at a time
	mutex.Lock()
	fmt.Fprint(l.Writer, line)
	mutex.Unlock()
}

var Discard = &TextLogger{
	Writer: io.Discard,
	ExitFn: func() {},
}
