// Package output provides terminal output utilities.
package output

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

var logger *log.Logger

func init() {
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
		ReportCaller:    false,
	})
}

// LogConfig controls logger setup. A nil Timestamps means the default,
// which is off unless Verbose is set.
type LogConfig struct {
	Verbose    bool
	Timestamps *bool
}

func (c LogConfig) timestamps() bool {
	if c.Verbose {
		return true
	}
	return c.Timestamps != nil && *c.Timestamps
}

// SetupLogging configures the logger based on verbosity. Logs always go to
// stderr so generated documents can be piped from stdout.
func SetupLogging(cfg LogConfig) {
	SetupLoggingTo(os.Stderr, cfg)
}

func SetupLoggingTo(w io.Writer, cfg LogConfig) {
	level := log.InfoLevel
	if cfg.Verbose {
		level = log.DebugLevel
	}

	logger = log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: cfg.timestamps(),
		ReportCaller:    cfg.Verbose,
		TimeFormat:      "15:04:05",
	})
}

// ServiceLogger returns a child logger prefixed with a service name.
func ServiceLogger(name string) *log.Logger {
	return logger.WithPrefix(StyleNoun.Render(name))
}

func Debug(msg string, keyvals ...interface{}) {
	logger.Debug(msg, keyvals...)
}

func Info(msg string, keyvals ...interface{}) {
	logger.Info(msg, keyvals...)
}

func Warn(msg string, keyvals ...interface{}) {
	logger.Warn(msg, keyvals...)
}

func Error(msg string, keyvals ...interface{}) {
	logger.Error(msg, keyvals...)
}

// Print prints a message to stdout without any formatting.
func Print(msg string) {
	os.Stdout.WriteString(msg)
}

// Println prints a message to stdout with a newline.
func Println(msg string) {
	os.Stdout.WriteString(msg + "\n")
}

func BoolPtr(b bool) *bool {
	return &b
}
