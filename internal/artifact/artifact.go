// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package artifact manages the local directory that downloaded exports are
// saved to.
package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apex/log"
)

// ErrNoDir is returned when no export directory can be resolved.
var ErrNoDir = errors.New("no export directory")

// Dir resolves the base export directory.
// Precedence:
//  1. CLINICCTL_EXPORT_DIR, if set and non-empty
//  2. os.UserCacheDir()/clinicctl/exports
//
// Returns ("", false) if a base cannot be resolved.
func Dir() (string, bool) {
	if c, ok := os.LookupEnv("CLINICCTL_EXPORT_DIR"); ok && c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "clinicctl", "exports"), true
	}
	return "", false
}

// EnsureBaseDir creates the base export directory if a base path can be
// resolved. Returns the path and an error if creation failed.
func EnsureBaseDir() (string, error) {
	base, ok := Dir()
	if !ok {
		return "", ErrNoDir
	}
	if err := os.MkdirAll(base, 0o755); err != nil { //nolint:mnd
		return base, fmt.Errorf("failed to create export directory: %w", err)
	}
	return base, nil
}

// Path returns where name would be stored and whether a file exists there.
// name must be a plain file name.
func Path(name string) (string, bool, error) {
	if err := checkName(name); err != nil {
		return "", false, err
	}
	base, ok := Dir()
	if !ok {
		return "", false, ErrNoDir
	}
	p := filepath.Join(base, name)
	if _, err := os.Stat(p); err == nil {
		return p, true, nil
	}
	return p, false, nil
}

// Read returns a previously saved export.
func Read(name string) ([]byte, string, bool) {
	p, ok, err := Path(name)
	if err != nil || !ok {
		return nil, "", false
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, "", false
	}
	return b, p, true
}

// Write saves data under name in the export directory and returns the path.
func Write(name string, data []byte) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	base, err := EnsureBaseDir()
	if err != nil {
		return "", err
	}
	return WriteTo(filepath.Join(base, name), data)
}

// WriteTo saves data at path, creating parent directories. If path is an
// existing directory the data is not written.
func WriteTo(path string, data []byte) (string, error) {
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:mnd
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, os.FileMode(0o600)); err != nil { //nolint:mnd
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	log.Debugf("wrote %d bytes to %s", len(data), path)
	return path, nil
}

// Purge removes files older than the provided number of hours.
// If hours <= 0 or the export dir cannot be resolved, it is a no-op.
func Purge(hours int) error {
	if hours <= 0 {
		log.Debug("export cleaning disabled")
		return nil
	}
	base, ok := Dir()
	if !ok {
		return nil
	}
	if _, err := os.Stat(base); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	maxAge := time.Duration(hours) * time.Hour
	if err := filepath.Walk(base, func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil {
			return nil
		}
		if !info.IsDir() && time.Since(info.ModTime()) > maxAge {
			if err := os.Remove(path); err == nil {
				log.Debugf("removed export file %s", path)
			} else {
				log.WithError(err).Warnf("failed to remove export file %s", path)
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("failed to purge exports: %w", err)
	}
	return nil
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid export file name %q", name)
	}
	return nil
}
