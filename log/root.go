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
	"sync/atomic"

	"go.uber.org/zap"
)

var root atomic.Value

func init() {
	root.Store(Logger(newLogger(zap.NewNop())))
}

// SetDefault sets the root logger used by the package-level functions.
func SetDefault(l Logger) {
	root.Store(l)
}

// Root returns the root logger
func Root() Logger {
	return root.Load().(Logger)
}

// New returns a new logger with the given context.
// New is a convenient alias for Root().New
func New(ctx ...interface{}) Logger {
	return Root().New(ctx...)
}

// The following functions route through write so the reported caller is the
// code calling the package-level function, not this file.

// Trace is a convenient alias for Root().Trace
func Trace(msg string, ctx ...interface{}) {
	write(Root(), LvlTrace, msg, ctx)
}

// Debug is a convenient alias for Root().Debug
func Debug(msg string, ctx ...interface{}) {
	write(Root(), LvlDebug, msg, ctx)
}

// Info is a convenient alias for Root().Info
func Info(msg string, ctx ...interface{}) {
	write(Root(), LvlInfo, msg, ctx)
}

// Warn is a convenient alias for Root().Warn
func Warn(msg string, ctx ...interface{}) {
	write(Root(), LvlWarn, msg, ctx)
}

// Error is a convenient alias for Root().Error
func Error(msg string, ctx ...interface{}) {
	write(Root(), LvlError, msg, ctx)
}

// Crit is a convenient alias for Root().Crit
func Crit(msg string, ctx ...interface{}) {
	write(Root(), LvlCrit, msg, ctx)
}

func write(l Logger, lvl Lvl, msg string, ctx []interface{}) {
	zl, ok := l.(*logger)
	if !ok {
		switch lvl {
		case LvlTrace:
			l.Trace(msg, ctx...)
		case LvlDebug:
			l.Debug(msg, ctx...)
		case LvlInfo:
			l.Info(msg, ctx...)
		case LvlWarn:
			l.Warn(msg, ctx...)
		case LvlError:
			l.Error(msg, ctx...)
		default:
			l.Crit(msg, ctx...)
		}
		return
	}
	switch lvl {
	case LvlTrace:
		zl.ps.Logw(traceLevel, msg, ctx...)
	case LvlDebug:
		zl.ps.Debugw(msg, ctx...)
	case LvlInfo:
		zl.ps.Infow(msg, ctx...)
	case LvlWarn:
		zl.ps.Warnw(msg, ctx...)
	case LvlError:
		zl.ps.Errorw(msg, ctx...)
	default:
		zl.ps.Fatalw(msg, ctx...)
	}
}
