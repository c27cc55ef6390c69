// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package apierr

// Envelope is the uniform result shape: success with data, or failure with a
// message.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

// Result folds a (data, err) pair into an Envelope, using fallback as the
// message when err carries none of its own.
func Result(data any, err error, fallback string) Envelope {
	if err != nil {
		return Envelope{
			Success: false,
			Error:   Message(err, fallback),
			Kind:    KindOf(err).String(),
		}
	}
	return Envelope{Success: true, Data: data}
}
