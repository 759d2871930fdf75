package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var (
	User *UserLogger // Status-prefixed messages for users (stdout)
	Op   *OpLogger   // Detailed operational logs (stderr)
)

// init ensures loggers are never nil
func init() {
	l := GetLogger().GetInternalLogger()
	User = &UserLogger{logger: l}
	Op = &OpLogger{logger: l}
}

type UserLogger struct {
	logger *logrus.Logger
}

type OpLogger struct {
	logger *logrus.Logger
}

func (u *UserLogger) entry(prefix string) *logrus.Entry {
	fields := logrus.Fields{"log_type": string(UserLog)}
	if prefix != "" {
		fields["prefix"] = prefix
	}
	return u.logger.WithFields(fields)
}

func (u *UserLogger) Info(msg string) {
	u.entry("").Info(msg)
}

func (u *UserLogger) Infof(format string, args ...interface{}) {
	u.entry("").Infof(format, args...)
}

func (u *UserLogger) Error(msg string) {
	u.entry("[ERROR]").Error(msg)
}

func (u *UserLogger) Errorf(format string, args ...interface{}) {
	u.entry("[ERROR]").Errorf(format, args...)
}

func (u *UserLogger) Warn(msg string) {
	u.entry("[WARN]").Warn(msg)
}

func (u *UserLogger) Warnf(format string, args ...interface{}) {
	u.entry("[WARN]").Warnf(format, args...)
}

func (u *UserLogger) Starting(msg string) {
	u.entry("[STARTING]").Info(msg)
}

func (u *UserLogger) Success(msg string) {
	u.entry("[SUCCESS]").Info(msg)
}

func (u *UserLogger) Successf(format string, args ...interface{}) {
	u.entry("[SUCCESS]").Infof(format, args...)
}

func (u *UserLogger) Buildf(format string, args ...interface{}) {
	u.entry("[BUILD]").Infof(format, args...)
}

func (u *UserLogger) Pushf(format string, args ...interface{}) {
	u.entry("[PUSH]").Infof(format, args...)
}

func (u *UserLogger) Skippedf(format string, args ...interface{}) {
	u.entry("[SKIPPED]").Infof(format, args...)
}

func (o *OpLogger) Info(msg string) {
	o.logger.WithField("log_type", string(OpLog)).Info(msg)
}

func (o *OpLogger) Infof(format string, args ...interface{}) {
	o.logger.WithField("log_type", string(OpLog)).Infof(format, args...)
}

func (o *OpLogger) Error(msg string) {
	o.logger.WithField("log_type", string(OpLog)).Error(msg)
}

func (o *OpLogger) Errorf(format string, args ...interface{}) {
	o.logger.WithField("log_type", string(OpLog)).Errorf(format, args...)
}

func (o *OpLogger) Warn(msg string) {
	o.logger.WithField("log_type", string(OpLog)).Warn(msg)
}

func (o *OpLogger) Warnf(format string, args ...interface{}) {
	o.logger.WithField("log_type", string(OpLog)).Warnf(format, args...)
}

func (o *OpLogger) Debug(msg string) {
	o.logger.WithField("log_type", string(OpLog)).Debug(msg)
}

func (o *OpLogger) Debugf(format string, args ...interface{}) {
	o.logger.WithField("log_type", string(OpLog)).Debugf(format, args...)
}

func (o *OpLogger) WithFields(fields map[string]interface{}) *logrus.Entry {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["log_type"] = string(OpLog)
	return o.logger.WithFields(fields)
}

// hiddenFields are routing metadata and never rendered as key=value pairs.
var hiddenFields = map[string]bool{
	"log_type": true,
	"prefix":   true,
	"section":  true,
	"status":   true,
}

// CLIFormatter provides clean output for CLI applications
type CLIFormatter struct {
	DisableTimestamp bool
	DisableLevel     bool
	DisableColors    bool
}

func (f *CLIFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer

	if !f.DisableLevel {
		levelColor, resetColor := "", ""
		if !f.DisableColors {
			switch entry.Level {
			case logrus.ErrorLevel:
				levelColor = "\033[31m"
			case logrus.WarnLevel:
				levelColor = "\033[33m"
			case logrus.InfoLevel:
				levelColor = "\033[36m"
			case logrus.DebugLevel:
				levelColor = "\033[37m"
			}
			resetColor = "\033[0m"
		}
		b.WriteString(levelColor)
		b.WriteString(strings.ToUpper(entry.Level.String()))
		b.WriteString(resetColor)
		b.WriteString(": ")
	}

	if prefix, ok := entry.Data["prefix"].(string); ok && prefix != "" {
		b.WriteString(prefix)
		b.WriteByte(' ')
	}
	if section, ok := entry.Data["section"].(string); ok && section != "" {
		b.WriteString(section)
		b.WriteString(" → ")
	}
	b.WriteString(entry.Message)

	// User-facing lines stay clean
	if !(f.DisableLevel && f.DisableTimestamp) {
		keys := make([]string, 0, len(entry.Data))
		for k := range entry.Data {
			if !hiddenFields[k] {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(fmt.Sprintf(" %s=%v", k, entry.Data[k]))
		}
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

// Setup configures both loggers. LOG_MODE and LOG_FORMAT override the flags.
func Setup(verbose bool, jsonLogs bool, quiet bool) {
	switch os.Getenv("LOG_MODE") {
	case "quiet":
		quiet, verbose = true, false
	case "verbose", "debug":
		verbose, quiet = true, false
	}

	switch os.Getenv("LOG_FORMAT") {
	case "json":
		jsonLogs = true
	case "text":
		jsonLogs = false
	}

	internalLogger := GetLogger().GetInternalLogger()

	level := logrus.InfoLevel
	if quiet {
		level = logrus.ErrorLevel
	} else if verbose {
		level = logrus.DebugLevel
	}

	internalLogger.Hooks = make(logrus.LevelHooks)
	internalLogger.SetLevel(level)
	// Output is handled by the routing hook
	internalLogger.SetOutput(io.Discard)

	hook := NewOutputRouterHook()
	if jsonLogs {
		internalLogger.SetFormatter(&logrus.JSONFormatter{})
		hook.UserFormatter = &logrus.JSONFormatter{}
		hook.OpFormatter = &logrus.JSONFormatter{}
	} else {
		internalLogger.SetFormatter(&logrus.TextFormatter{})
		hook.UserFormatter = &CLIFormatter{
			DisableTimestamp: true,
			DisableLevel:     true,
			DisableColors:    !isatty.IsTerminal(os.Stdout.Fd()),
		}
		if verbose {
			hook.OpFormatter = &logrus.TextFormatter{
				FullTimestamp: true,
				ForceColors:   isatty.IsTerminal(os.Stderr.Fd()),
			}
		} else {
			hook.OpFormatter = &CLIFormatter{
				DisableTimestamp: true,
				DisableColors:    !isatty.IsTerminal(os.Stderr.Fd()),
			}
		}
	}
	internalLogger.AddHook(hook)

	User = &UserLogger{logger: internalLogger}
	Op = &OpLogger{logger: internalLogger}
}
