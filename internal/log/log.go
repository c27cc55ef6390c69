// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

// LevelEnv selects the log level (debug, info, warn, error, fatal).
const LevelEnv = "CLINICCTL_LOG"

// InitLogger installs CustomHandler on stderr at the level named by
// CLINICCTL_LOG, error by default. An unknown level is reported once and
// treated as error.
func InitLogger() {
	log.SetHandler(&CustomHandler{Writer: os.Stderr})

	name := os.Getenv(LevelEnv)
	if name == "" {
		name = "error"
	}
	lvl, err := log.ParseLevel(strings.ToLower(name))
	if err != nil {
		lvl = log.ErrorLevel
		fmt.Fprintf(os.Stderr, "warning: %s=%q is not a log level\n", LevelEnv, name)
	}
	log.SetLevel(lvl)
}

// CustomHandler writes one line per entry:
//
//	2025-01-15 10:00:00 W cache miss attempt=2 key=GET:/cached/departments
//
// Fields are sorted by name. Writer defaults to stderr so log lines never mix
// with command output.
type CustomHandler struct {
	Writer io.Writer

	mu  sync.Mutex
	now func() time.Time
}

// HandleLog implements log.Handler. Entries from concurrent pollers are
// serialized.
func (h *CustomHandler) HandleLog(e *log.Entry) error {
	var b strings.Builder

	now := time.Now
	if h.now != nil {
		now = h.now
	}
	b.WriteString(now().Format(time.DateTime))
	b.WriteByte(' ')
	b.WriteString(strings.ToUpper(e.Level.String())[:1])
	b.WriteByte(' ')
	b.WriteString(e.Message)

	names := e.Fields.Names()
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(&b, " %s=%v", n, e.Fields.Get(n))
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	w := h.Writer
	if w == nil {
		w = os.Stderr
	}
	_, err := io.WriteString(w, b.String())
	return err
}
