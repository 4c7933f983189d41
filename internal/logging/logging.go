// Package logging wires the module's leveled logger (spec §6: "Logging
// is leveled; warn default; debug/info via environment"). It keeps the
// source's progress.go idiom of an elapsed-time prefix on every line,
// carried over as a custom zapcore.Core wrapper instead of the
// teacher's bare fmt.Fprintf, per the ambient-stack decision in
// SPEC_FULL.md.
package logging

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a *zap.SugaredLogger at warn level by default, or debug
// when verbose is true (the GOSCAN_LOG environment variable can also
// request "debug"/"info"/"warn"/"error").
func New(verbose bool) *zap.SugaredLogger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	if env := os.Getenv("GOSCAN_LOG"); env != "" {
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(env)); err == nil {
			level = lvl
		}
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.Lock(os.Stderr), level)
	core = elapsedCore{Core: core, start: time.Now()}

	logger := zap.New(core)
	return logger.Sugar()
}

// elapsedCore prefixes every log message with an "[MM:SS]" elapsed-time
// marker, matching progress.go's Log/Verbose formatting.
type elapsedCore struct {
	zapcore.Core
	start time.Time
}

func (c elapsedCore) With(fields []zapcore.Field) zapcore.Core {
	return elapsedCore{Core: c.Core.With(fields), start: c.start}
}

func (c elapsedCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Core.Enabled(entry.Level) {
		return ce.AddCore(entry, c)
	}
	return ce
}

func (c elapsedCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	elapsed := time.Since(c.start)
	mm := int(elapsed.Minutes())
	ss := int(elapsed.Seconds()) % 60
	entry.Message = fmt.Sprintf("[%02d:%02d] %s", mm, ss, entry.Message)
	return c.Core.Write(entry, fields)
}
