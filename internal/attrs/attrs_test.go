// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package attrs

import (
	"embed"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/staranto/clinicctl/internal/config"
)

//go:embed testdata/*.yaml
var testdata embed.FS

// cases decodes testdata/name into a slice of T.
func cases[T any](t *testing.T, name string) []T {
	t.Helper()
	b, err := testdata.ReadFile("testdata/" + name)
	require.NoError(t, err)

	var out []T
	require.NoError(t, yaml.Unmarshal(b, &out))
	require.NotEmpty(t, out, name)
	return out
}

// noConfig keeps the developer's config file and TZ out of a test.
func noConfig(t *testing.T) {
	t.Helper()
	t.Setenv("CLINICCTL_CFG", filepath.Join(t.TempDir(), "none.yaml"))
	t.Setenv("TZ", "")
}

func TestAttrList_Set(t *testing.T) {
	type setCase struct {
		Name      string `yaml:"name"`
		Initial   []Attr `yaml:"initial"`
		Value     string `yaml:"value"`
		WantLen   int    `yaml:"wantLen"`
		WantAttrs []Attr `yaml:"wantAttrs"`
		WantErr   bool   `yaml:"wantErr"`
	}

	for _, tc := range cases[setCase](t, "set_cases.yaml") {
		t.Run(tc.Name, func(t *testing.T) {
			al := AttrList(tc.Initial)
			err := al.Set(tc.Value)
			if tc.WantErr {
				assert.ErrorContains(t, err, "empty attribute")
				return
			}

			require.NoError(t, err)
			require.Len(t, al, tc.WantLen)
			if tc.WantAttrs != nil {
				assert.Equal(t, tc.WantAttrs, []Attr(al))
			}
		})
	}
}

func TestAttr_Transform(t *testing.T) {
	type transformCase struct {
		Name          string            `yaml:"name"`
		TransformSpec string            `yaml:"transformSpec"`
		Input         interface{}       `yaml:"input"`
		EnvVars       map[string]string `yaml:"envVars"`
		Want          interface{}       `yaml:"want"`
	}

	for _, tc := range cases[transformCase](t, "transform_cases.yaml") {
		t.Run(tc.Name, func(t *testing.T) {
			noConfig(t)
			for k, v := range tc.EnvVars {
				t.Setenv(k, v)
			}

			a := Attr{TransformSpec: tc.TransformSpec}
			assert.Equal(t, tc.Want, a.Transform(tc.Input))
		})
	}
}

func TestAttr_Transform_AppointmentTimes(t *testing.T) {
	noConfig(t)
	t.Setenv("TZ", "America/Los_Angeles")

	a := Attr{TransformSpec: "t"}
	assert.Equal(t, "2025-01-15T02:00:00PST", a.Transform("2025-01-15T10:00:00Z"))
	assert.Equal(t, "2025-07-15T03:00:00PDT", a.Transform("2025-07-15T10:00:00Z"))
	assert.Equal(t, "tomorrow", a.Transform("tomorrow"))

	t.Setenv("TZ", "Not/AZone")
	assert.Equal(t, "2025-01-15T10:00:00Z", a.Transform("2025-01-15T10:00:00Z"))
}

func TestAttr_Transform_ConfigTimezoneWins(t *testing.T) {
	noConfig(t)
	cfg := filepath.Join(t.TempDir(), "clinicctl.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("timezone: Asia/Tokyo\n"), 0o600))
	t.Setenv("CLINICCTL_CFG", cfg)
	config.Config = config.Type{}
	t.Cleanup(func() { config.Config = config.Type{} })
	t.Setenv("TZ", "UTC")

	a := Attr{TransformSpec: "t"}
	assert.Equal(t, "2025-01-15T19:00:00JST", a.Transform("2025-01-15T10:00:00Z"))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{in: "Neurology", n: 3, want: "Neu"},
		{in: "Neurology", n: 0, want: ""},
		{in: "Neurology", n: 9, want: "Neurology"},
		{in: "Neurology", n: -6, want: "Ne..gy"},
		{in: "Neurology", n: -2, want: ".."},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, truncate(tt.in, tt.n), "%s/%d", tt.in, tt.n)
	}
}

func TestAttrList_SetGlobalTransformSpec(t *testing.T) {
	var al AttrList
	require.NoError(t, al.Set("id,name::l,status"))
	require.NoError(t, al.SetGlobalTransformSpec())
	assert.Equal(t, "id:id:,name:name:l,status:status:", al.String())

	require.NoError(t, al.Set("*::U"))
	require.NoError(t, al.SetGlobalTransformSpec())
	assert.Equal(t, []string{"U,", "U,l", "U,", "U,U"}, specs(al))
}

func TestAttrList_String(t *testing.T) {
	var al AttrList
	assert.Equal(t, "", al.String())

	require.NoError(t, al.Set("id,department.name:dept:U"))
	assert.Equal(t, "id:id:,department.name:dept:U", al.String())
	assert.Equal(t, "list", al.Type())
}

func specs(al AttrList) []string {
	out := make([]string, 0, len(al))
	for _, a := range al {
		out = append(out, a.TransformSpec)
	}
	return out
}
