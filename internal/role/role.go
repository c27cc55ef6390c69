// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package role defines the closed set of user roles understood by the
// dashboard endpoints.
package role

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Role is a clinic user role.
type Role int

const (
	Admin Role = iota
	Doctor
	Patient

	// Count is the number of valid roles. Tables indexed by Role are sized
	// with it so a new role fails to compile until every table is extended.
	Count
)

var names = [Count]string{
	Admin:   "admin",
	Doctor:  "doctor",
	Patient: "patient",
}

// ErrUnknown is returned by Parse for anything outside the enumeration.
var ErrUnknown = errors.New("unknown role")

// All returns every valid role in declaration order.
func All() []Role {
	all := make([]Role, 0, Count)
	for r := Role(0); r < Count; r++ {
		all = append(all, r)
	}
	return all
}

// Names returns a copy of the wire names of every valid role.
func Names() []string {
	return slices.Clone(names[:])
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	return r >= 0 && r < Count
}

func (r Role) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Role(%d)", int(r))
	}
	return names[r]
}

// Parse maps a wire name to a Role. Matching is exact after trimming
// whitespace, so "Admin" is rejected just like "nurse".
func Parse(s string) (Role, error) {
	s = strings.TrimSpace(s)
	for r, n := range names {
		if n == s {
			return Role(r), nil
		}
	}
	return -1, fmt.Errorf("%w: %q (want one of %s)", ErrUnknown, s, strings.Join(Names(), ", "))
}
