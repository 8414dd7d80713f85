// Copyright 2024 The gvault Authors
// This file is part of the gvault library.
//
// The gvault library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The gvault library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the gvault library. If not, see <http://www.gnu.org/licenses/>.

package log

import (
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the sink, format and verbosity of a Logger.
type Config struct {
	Verbosity Lvl
	// JSON forces the JSON encoder even on a terminal.
	JSON bool
	// Output defaults to stderr.
	Output io.Writer
}

// NewLogger builds a Logger from cfg.
func NewLogger(cfg Config) Logger {
	out := cfg.Output
	useColor := false
	if out == nil {
		out = os.Stderr
		if !cfg.JSON && (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) {
			out = colorable.NewColorableStderr()
			useColor = true
		}
	}
	var enc zapcore.Encoder
	if cfg.JSON {
		enc = zapcore.NewJSONEncoder(encoderConfig(false))
	} else {
		enc = zapcore.NewConsoleEncoder(encoderConfig(useColor))
	}
	threshold := cfg.Verbosity.zapLevel()
	core := zapcore.NewCore(enc, zapcore.AddSync(out), zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= threshold
	}))
	return newLogger(zap.New(core, zap.AddCaller()))
}

// Setup replaces the root logger with one writing to stderr.
func Setup(verbosity int, json bool) {
	SetDefault(NewLogger(Config{Verbosity: Lvl(verbosity), JSON: json}))
}

func encoderConfig(color bool) zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "t",
		LevelKey:       "lvl",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    levelEncoder(color),
		EncodeTime:     zapcore.TimeEncoderOfLayout("01-02|15:04:05.000"),
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

var levelColors = map[zapcore.Level]string{
	traceLevel:         "\x1b[34m",
	zapcore.DebugLevel: "\x1b[36m",
	zapcore.InfoLevel:  "\x1b[32m",
	zapcore.WarnLevel:  "\x1b[33m",
	zapcore.ErrorLevel: "\x1b[31m",
	zapcore.FatalLevel: "\x1b[35m",
}

func levelEncoder(color bool) zapcore.LevelEncoder {
	return func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		name := levelName(l)
		if c, ok := levelColors[l]; ok && color {
			name = c + name + "\x1b[0m"
		}
		enc.AppendString(name)
	}
}

func levelName(l zapcore.Level) string {
	switch {
	case l <= traceLevel:
		return "TRACE"
	case l == zapcore.DebugLevel:
		return "DEBUG"
	case l == zapcore.InfoLevel:
		return "INFO"
	case l == zapcore.WarnLevel:
		return "WARN"
	case l == zapcore.ErrorLevel:
		return "ERROR"
	default:
		return "CRIT"
	}
}
