// Package gologger builds the zerolog loggers of the command line tools.
package gologger

import (
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

func init() {
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		function := ""

		if fun := runtime.FuncForPC(pc); fun != nil {
			funName := fun.Name()
			if slash := strings.LastIndex(funName, "/"); slash > 0 {
				funName = funName[slash+1:]
			}

			function = " " + funName + "()"
		}

		return file + ":" + strconv.Itoa(line) + function
	}
}

// NewLogger returns a logger writing to stderr. LOG_LEVEL sets the level
// (info by default) and PRETTY=1 switches to the console output.
func NewLogger() zerolog.Logger {
	return newLogger(os.Stderr, os.Getenv("LOG_LEVEL"), os.Getenv("PRETTY") == "1")
}

func newLogger(out io.Writer, level string, pretty bool) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFieldName = "time"

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if pretty {
		out = zerolog.ConsoleWriter{Out: out}
	}

	return zerolog.New(out).
		Level(lvl).
		With().Timestamp().Logger().
		Hook(CallerHook{})
}

type CallerHook struct{}

func (h CallerHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	e.Caller(3)
}
