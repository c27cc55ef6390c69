// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package log

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// logger routes entries through apex/log so fields are merged the way
// production logging merges them.
func logger(h log.Handler) *log.Logger {
	return &log.Logger{Handler: h, Level: log.DebugLevel}
}

func TestCustomHandler(t *testing.T) {
	var buf bytes.Buffer
	h := &CustomHandler{
		Writer: &buf,
		now:    func() time.Time { return time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC) },
	}

	logger(h).WithFields(log.Fields{"key": "GET:/cached/departments", "attempt": 2}).Warn("cache miss")
	assert.Equal(t, "2025-01-15 10:00:00 W cache miss attempt=2 key=GET:/cached/departments\n", buf.String())
}

func TestCustomHandler_NoFields(t *testing.T) {
	var buf bytes.Buffer
	h := &CustomHandler{
		Writer: &buf,
		now:    func() time.Time { return time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC) },
	}

	logger(h).Errorf("task %s failed", "t-1")
	assert.Equal(t, "2025-01-15 10:00:00 E task t-1 failed\n", buf.String())
}

func TestCustomHandler_Concurrent(t *testing.T) {
	var buf bytes.Buffer
	l := logger(&CustomHandler{Writer: &buf})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.WithField("task", i).Info("polled")
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 20)
	for _, line := range lines {
		assert.Contains(t, line, " I polled task=")
	}
}

func TestInitLogger(t *testing.T) {
	tests := []struct {
		env  string
		want log.Level
	}{
		{env: "", want: log.ErrorLevel},
		{env: "DEBUG", want: log.DebugLevel},
		{env: "warn", want: log.WarnLevel},
		{env: "chatty", want: log.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv(LevelEnv, tt.env)
			InitLogger()
			l, ok := log.Log.(*log.Logger)
			require.True(t, ok)
			assert.Equal(t, tt.want, l.Level)
		})
	}
}
