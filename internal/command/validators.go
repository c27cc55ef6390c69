// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/staranto/clinicctl/internal/output"
	"github.com/staranto/clinicctl/internal/tasks"
)

// Validators chains flag validators, stopping at the first failure.
func Validators[T any](vs ...func(T) error) func(T) error {
	return func(value T) error {
		for _, v := range vs {
			if err := v(value); err != nil {
				return err
			}
		}
		return nil
	}
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value string) error {
	if strings.HasPrefix(value, "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

func OutputValidator(value string) error {
	if !slices.Contains(output.Formats, value) {
		return fmt.Errorf("must be one of %v", output.Formats)
	}
	return nil
}

// DateValidator accepts calendar dates in YYYY-MM-DD form.
func DateValidator(value string) error {
	if _, err := time.Parse(tasks.DateLayout, value); err != nil {
		return errors.New("must be a date in YYYY-MM-DD form")
	}
	return nil
}

// Positive rejects zero and negative counts and durations.
func Positive[T ~int | ~int64](value T) error {
	if value <= 0 {
		return errors.New("must be greater than zero")
	}
	return nil
}
