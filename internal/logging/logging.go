// Package logging builds the logger of the mysqlz command.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// Initialize creates a logger at the provided verbosity: 0 logs info and
// above, 1 (or more) adds debug messages, which include every executed
// statement. Output is colored text on a terminal, JSON otherwise.
func Initialize(v int) *zap.Logger {
	var (
		encoder zapcore.Encoder
		writer  zapcore.WriteSyncer
	)

	if term.IsTerminal(int(os.Stderr.Fd())) {
		encoder = zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			MessageKey: "message",

			LevelKey:    "level",
			EncodeLevel: zapcore.CapitalColorLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.ISO8601TimeEncoder,

			EncodeDuration: zapcore.StringDurationEncoder,
		})
	} else {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	// results go to stdout, keep logs out of them
	writer = zapcore.Lock(os.Stderr)

	return New(encoder, writer, v)
}

// New creates a logger writing entries encoded with encoder to writer, at
// the provided verbosity
func New(encoder zapcore.Encoder, writer zapcore.WriteSyncer, v int) *zap.Logger {
	atom := zap.NewAtomicLevelAt(Level(v))
	return zap.New(zapcore.NewCore(encoder, writer, atom))
}

// Level converts a verbosity to a log level. Verbosities below zero only
// log warnings and errors.
func Level(v int) zapcore.Level {
	switch {
	case v < 0:
		return zapcore.WarnLevel
	case v == 0:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}
