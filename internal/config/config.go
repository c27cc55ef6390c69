// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: Apache-2.0

// Package config reads clinicctl.yaml and answers dotted key lookups, trying
// the command namespace first ("dq.output") and then the bare key ("output").
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apex/log"
	"gopkg.in/yaml.v3"
)

// FileName is the name of the config file searched for in the standard
// locations.
const FileName = "clinicctl.yaml"

// PathEnv names an explicit config file, bypassing the search.
const PathEnv = "CLINICCTL_CFG"

type Type struct {
	Source    string
	Namespace string
	Data      map[string]interface{}
}

// Config is the loaded file. Getters load it on first use.
var Config Type

// Load reads the config file and replaces Config, keeping its namespace.
func Load() (Type, error) {
	path, err := Path()
	if err != nil {
		return Type{}, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Type{}, err
	}

	var data map[string]interface{}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return Type{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	Config = Type{Source: path, Namespace: Config.Namespace, Data: data}
	return Config, nil
}

// Path returns $CLINICCTL_CFG when set, else the first clinicctl.yaml found
// under XDG_CONFIG_HOME, APPDATA or HOME.
func Path() (string, error) {
	if p := os.Getenv(PathEnv); p != "" {
		fi, err := os.Stat(p)
		switch {
		case err != nil:
			return "", fmt.Errorf("config file not found: %s", p)
		case fi.IsDir():
			return "", fmt.Errorf("%s points to a directory: %s", PathEnv, p)
		}
		log.Debugf("using config file: %s", p)
		return p, nil
	}

	for _, env := range []string{"XDG_CONFIG_HOME", "APPDATA", "HOME"} {
		dir := os.Getenv(env)
		if dir == "" {
			continue
		}
		p := filepath.Join(dir, FileName)
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			log.Debugf("using config file: %s", p)
			return p, nil
		}
	}
	return "", errors.New("no config file found in standard locations")
}

// walk follows path through nested maps.
func walk(node any, path []string) (any, bool) {
	for _, k := range path {
		m, ok := node.(map[string]interface{})
		if !ok {
			return nil, false
		}
		if node, ok = m[k]; !ok {
			return nil, false
		}
	}
	return node, true
}

func (cfg *Type) candidates(key string) []string {
	if cfg.Namespace == "" {
		return []string{key}
	}
	return []string{cfg.Namespace + "." + key, key}
}

// get resolves a dotted key, namespaced form first.
func (cfg *Type) get(key string) (any, error) {
	keys := cfg.candidates(key)
	for _, k := range keys {
		if v, ok := walk(cfg.Data, strings.Split(k, ".")); ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("no valid path found among: %v", keys)
}

// typed looks up key and converts it. A missing key yields the single
// default when one is given.
func typed[T any](key string, defaults []T, convert func(any) (T, error)) (T, error) {
	var zero T

	if len(Config.Data) == 0 {
		_, _ = Load()
	}

	v, err := Config.get(key)
	if err != nil {
		if len(defaults) == 1 {
			return defaults[0], nil
		}
		return zero, err
	}

	out, err := convert(v)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", key, err)
	}
	return out, nil
}

func GetString(key string, defaultValue ...string) (string, error) {
	return typed(key, defaultValue, func(v any) (string, error) {
		if s, ok := v.(string); ok {
			return s, nil
		}
		return "", errors.New("value is not a string")
	})
}

// GetInt accepts any YAML number, truncating floats.
func GetInt(key string, defaultValue ...int) (int, error) {
	return typed(key, defaultValue, func(v any) (int, error) {
		switch n := v.(type) {
		case int:
			return n, nil
		case int64:
			return int(n), nil
		case float64:
			return int(n), nil
		}
		return 0, errors.New("value is not an int")
	})
}

// GetDuration accepts either a Go duration string ("2s", "5m") or a bare
// number, which is taken as milliseconds.
func GetDuration(key string, defaultValue ...time.Duration) (time.Duration, error) {
	return typed(key, defaultValue, func(v any) (time.Duration, error) {
		switch d := v.(type) {
		case string:
			parsed, err := time.ParseDuration(d)
			if err != nil {
				return 0, fmt.Errorf("value is not a duration: %w", err)
			}
			return parsed, nil
		case int:
			return time.Duration(d) * time.Millisecond, nil
		case float64:
			return time.Duration(d * float64(time.Millisecond)), nil
		}
		return 0, errors.New("value is not a duration")
	})
}

// GetStringSlice returns a list value. A scalar string is a one element list.
func GetStringSlice(key string) ([]string, error) {
	return typed(key, nil, func(v any) ([]string, error) {
		switch l := v.(type) {
		case string:
			return []string{l}, nil
		case []interface{}:
			out := make([]string, len(l))
			for i, item := range l {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("list item %v is not a string", item)
				}
				out[i] = s
			}
			return out, nil
		}
		return nil, errors.New("value is not a list")
	})
}
