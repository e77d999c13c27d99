package cli

import (
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

// setupLogging installs the process logger: text on stderr, or a rolling
// file when a log file is configured. --verbose enables debug output.
func (o *RootOptions) setupLogging(stderr io.Writer) error {
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}

	w := stderr
	if path := o.Config.LogFile; path != "" {
		lj := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     7, // days
		}
		o.logCloser = lj
		w = lj
	}

	o.logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(o.logger)
	return nil
}

func (o *RootOptions) closeLog() error {
	if o.logCloser == nil {
		return nil
	}
	err := o.logCloser.Close()
	o.logCloser = nil
	return err
}

// Logger returns the configured logger, or the default before setup.
func (o *RootOptions) Logger() *slog.Logger {
	if o.logger == nil {
		return slog.Default()
	}
	return o.logger
}
