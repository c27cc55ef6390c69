// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package role

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{in: "admin", want: Admin},
		{in: "doctor", want: Doctor},
		{in: " patient ", want: Patient},
		{in: "Admin", wantErr: true},
		{in: "nurse", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknown)
				assert.False(t, got.Valid())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoundTripAllRoles(t *testing.T) {
	all := All()
	require.Len(t, all, int(Count))

	for _, r := range all {
		got, err := Parse(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}
}

func TestString_Invalid(t *testing.T) {
	assert.Equal(t, "Role(7)", Role(7).String())
	assert.Equal(t, "Role(-1)", Role(-1).String())
}

func TestNames_ReturnsCopy(t *testing.T) {
	got := Names()
	assert.Equal(t, []string{"admin", "doctor", "patient"}, got)

	got[0] = "root"

	r, err := Parse("admin")
	require.NoError(t, err)
	assert.Equal(t, Admin, r)
	assert.Equal(t, "admin", Admin.String())
	assert.Equal(t, "admin", Names()[0])
}
