// internal/logger/logger.go
//
// Structured JSON logger (Zap + Lumberjack).
//
// Context
// -------
// Every Adept process (server, admin) writes lifecycle and error events to
// one JSON log per day under `<root>/logs/YYYY-MM-DD.log`.  When running in
// an interactive TTY we tee the same events to stdout, colorized unless
// NO_COLOR is set.  Rotation, compression, and retention are handled by
// Lumberjack.
//
// The minimum level comes from the resolved ADEPT_LOG_LEVEL:
//
//	verbose, debug → debug
//	log (default)  → info
//	warn, error, fatal map one to one.
//
// Usage
// -----
//
//	log, err := logger.New(logger.Options{Root: root, Tee: tty, Level: cfg.LogLevel})
//	if err != nil { … }
//	log.Infow("workers started", "workers", cfg.Workers)
//
// Notes
// -----
// • Zap core uses ISO-8601 timestamps and lowercase levels.
// • Errors are written to the same sink via `ErrorOutput`.
package logger

import (
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/AdeptTravel/adept-runtime/internal/config"
)

// Options controls New.  Root is required.
type Options struct {
	Root    string
	Tee     bool
	NoColor bool
	Level   config.LogLevel
}

// Level maps an ADEPT_LOG_LEVEL value to a zap level.
func Level(l config.LogLevel) zapcore.Level {
	switch l {
	case config.LogVerbose, config.LogDebug:
		return zap.DebugLevel
	case config.LogWarn:
		return zap.WarnLevel
	case config.LogError:
		return zap.ErrorLevel
	case config.LogFatal:
		return zap.FatalLevel
	default:
		return zap.InfoLevel
	}
}

// New returns a *zap.SugaredLogger that writes JSON to <root>/logs.  The
// logger is installed as the process-wide default via zap.ReplaceGlobals.
func New(opts Options) (*zap.SugaredLogger, error) {
	logDir := filepath.Join(opts.Root, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}

	fileName := time.Now().Format("2006-01-02") + ".log"
	fileSink := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, fileName),
		MaxSize:    50, // MB
		MaxBackups: 7,  // keep last seven files
		MaxAge:     14, // days
		Compress:   true,
	}

	level := Level(opts.Level)
	encCfg := encoderConfig()
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(fileSink), level),
	}

	if opts.Tee {
		consoleCfg := encCfg
		if !opts.NoColor {
			consoleCfg.EncodeLevel = zapcore.LowercaseColorLevelEncoder
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleCfg),
			zapcore.AddSync(os.Stdout),
			level,
		))
	}

	z := zap.New(
		zapcore.NewTee(cores...),
		zap.ErrorOutput(zapcore.AddSync(fileSink)),
	).Sugar()

	zap.ReplaceGlobals(z.Desugar())

	z.Infow("logger online", "tee", opts.Tee, "level", level.String())
	return z, nil
}

// Bootstrap installs a console-only logger for the window before the
// configuration is resolved.  It is replaced by New once the root and
// level are known.
func Bootstrap() *zap.SugaredLogger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		zapcore.AddSync(os.Stderr),
		zap.InfoLevel,
	)
	z := zap.New(core)
	zap.ReplaceGlobals(z)
	return z.Sugar()
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:      "ts",
		LevelKey:     "level",
		MessageKey:   "msg",
		CallerKey:    "caller",
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeLevel:  zapcore.LowercaseLevelEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}
}
