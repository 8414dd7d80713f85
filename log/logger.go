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

// Package log is the leveled key/value logger used across gvault.
//
// The call shape follows the node codebase this library grew out of:
//
//	log.Info("Created vault holding account", "mint", mint, "authority", auth)
//
// Records are rendered by zap; a colored console encoder is used when the
// output is a terminal and a JSON encoder otherwise.
package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Lvl is a logging verbosity, ordered from least to most verbose.
type Lvl int

const (
	LvlCrit Lvl = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

// traceLevel sits below zap's debug level; zap has no native trace.
const traceLevel = zapcore.DebugLevel - 1

// String returns the name of a Lvl.
func (l Lvl) String() string {
	switch l {
	case LvlTrace:
		return "trce"
	case LvlDebug:
		return "dbug"
	case LvlInfo:
		return "info"
	case LvlWarn:
		return "warn"
	case LvlError:
		return "eror"
	case LvlCrit:
		return "crit"
	default:
		return "unknown"
	}
}

// zapLevel maps a verbosity onto the lowest zap level it admits.
func (l Lvl) zapLevel() zapcore.Level {
	switch {
	case l <= LvlCrit:
		return zapcore.FatalLevel
	case l == LvlError:
		return zapcore.ErrorLevel
	case l == LvlWarn:
		return zapcore.WarnLevel
	case l == LvlInfo:
		return zapcore.InfoLevel
	case l == LvlDebug:
		return zapcore.DebugLevel
	default:
		return traceLevel
	}
}

// Logger writes key/value pairs to a sink.
type Logger interface {
	// New returns a new Logger that has this logger's context plus the given context
	New(ctx ...interface{}) Logger

	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	// Crit logs the record and terminates the process.
	Crit(msg string, ctx ...interface{})
}

// logger keeps two views of the same zap core: s reports the caller of a
// method call, ps the caller of a package-level function.
type logger struct {
	s  *zap.SugaredLogger
	ps *zap.SugaredLogger
}

func newLogger(z *zap.Logger) *logger {
	return &logger{
		s:  z.WithOptions(zap.AddCallerSkip(1)).Sugar(),
		ps: z.WithOptions(zap.AddCallerSkip(2)).Sugar(),
	}
}

func (l *logger) New(ctx ...interface{}) Logger {
	return &logger{s: l.s.With(ctx...), ps: l.ps.With(ctx...)}
}

func (l *logger) Trace(msg string, ctx ...interface{}) {
	l.s.Logw(traceLevel, msg, ctx...)
}

func (l *logger) Debug(msg string, ctx ...interface{}) { l.s.Debugw(msg, ctx...) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.s.Infow(msg, ctx...) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.s.Warnw(msg, ctx...) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.s.Errorw(msg, ctx...) }
func (l *logger) Crit(msg string, ctx ...interface{})  { l.s.Fatalw(msg, ctx...) }
