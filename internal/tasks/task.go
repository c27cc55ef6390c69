// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package tasks

import (
	"encoding/json"
)

// Status is the server's task state. Casing is exact on the wire.
type Status string

const (
	Pending Status = "PENDING"
	Started Status = "STARTED"
	Success Status = "SUCCESS"
	Failure Status = "FAILURE"
)

// Terminal reports whether polling should stop. Unknown values are not
// terminal.
func (s Status) Terminal() bool {
	return s == Success || s == Failure
}

// Handle is what the server returns when a job is accepted.
type Handle struct {
	TaskID    string `json:"task_id"`
	Status    Status `json:"status"`
	Message   string `json:"message,omitempty"`
	StatusURL string `json:"status_url,omitempty"`
	// Raw is the submission response exactly as received.
	Raw json.RawMessage `json:"-"`
}

// TaskStatus is one answer from the status endpoint.
type TaskStatus struct {
	TaskID   string          `json:"task_id"`
	Status   Status          `json:"status"`
	Result   json.RawMessage `json:"result,omitempty"`
	DateDone *string         `json:"date_done,omitempty"`
	// Raw is the status response exactly as received.
	Raw json.RawMessage `json:"-"`
}
