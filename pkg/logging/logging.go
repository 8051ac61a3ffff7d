// Package logging configures the process-wide zerolog logger, grounded
// on the console/syslog split in the pgscv retrieval-pack example and
// spec.md §6's "syslog when daemonized, stdout when run interactively"
// requirement.
package logging

import (
	"fmt"
	"io"
	"log/syslog"
	"os"

	"github.com/rs/zerolog"
)

// Setup configures the global zerolog logger and returns it. verbosity
// follows adaptivemmd's -v flag: 0 is info, 1 is debug, 2+ is trace.
// When daemonized is true, output goes to syslog instead of a
// human-readable console writer.
func Setup(verbosity int, daemonized bool) (zerolog.Logger, error) {
	level := levelFor(verbosity)
	zerolog.SetGlobalLevel(level)

	var w io.Writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	if daemonized {
		sw, err := syslog.New(syslog.LOG_DAEMON|syslog.LOG_INFO, "adaptivemmd")
		if err != nil {
			return zerolog.Logger{}, fmt.Errorf("logging: syslog: %w", err)
		}
		w = zerolog.SyslogLevelWriter(sw)
	}

	logger := zerolog.New(w).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	return logger, nil
}

func levelFor(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.InfoLevel
	case verbosity == 1:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}
