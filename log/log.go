// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package log provides the leveled, key-value logging interface used
// throughout the library. Callers may plug in their own Logger through
// rsrcfork.Options; the default writes to stdout filtered to errors.
package log

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Logger is a logger interface.
type Logger interface {
	Log(level Level, keyvals ...interface{}) error
}

type stdLogger struct {
	w    io.Writer
	mu   sync.Mutex
	pool []byte
}

// NewStdLogger creates a logger that writes one line per record to w.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{w: w}
}

// Log prints the kv pairs to the underlying writer.
func (l *stdLogger) Log(level Level, keyvals ...interface{}) error {
	if len(keyvals) == 0 {
		return nil
	}
	if (len(keyvals) & 1) == 1 {
		keyvals = append(keyvals, "KEYVALS UNPAIRED")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	buf := l.pool[:0]
	buf = append(buf, time.Now().Format("2006-01-02T15:04:05")...)
	buf = append(buf, ' ')
	buf = append(buf, level.String()...)
	for i := 0; i < len(keyvals); i += 2 {
		buf = append(buf, ' ')
		buf = append(buf, fmt.Sprintf("%v=%v", keyvals[i], keyvals[i+1])...)
	}
	buf = append(buf, '\n')
	l.pool = buf
	_, err := l.w.Write(buf)
	return err
}
