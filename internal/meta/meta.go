// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package meta

import (
	"context"

	"github.com/staranto/clinicctl/internal/config"
)

// Version is stamped at build time with -ldflags "-X ...meta.Version=...".
var Version = "dev"

// Meta are the meta-options that are available on all or most commands.
type Meta struct {
	Args    []string
	Config  config.Type
	Context context.Context
	// Namespace is the config key prefix for the running command.
	Namespace   string
	StartingDir string
}
