// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// Formats accepted by --output.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatRaw  = "raw"
)

// Formats lists every --output value.
var Formats = []string{FormatText, FormatJSON, FormatYAML, FormatRaw}

// Options controls rendering. Commands normally build it with OptionsFrom.
type Options struct {
	Format string
	Filter string
	Sort   string
	Titles bool
	Color  bool
	// Local converts RFC3339 timestamps to the configured zone.
	Local bool
}

// Structured is true for the machine readable formats.
func (o Options) Structured() bool {
	return o.Format != "" && o.Format != FormatText
}

// OptionsFrom reads the rendering flags from cmd.
func OptionsFrom(cmd *cli.Command) Options {
	return Options{
		Format: cmd.String("output"),
		Filter: cmd.String("filter"),
		Sort:   cmd.String("sort"),
		Titles: cmd.Bool("titles"),
		Color:  cmd.Bool("color"),
		Local:  cmd.Bool("local"),
	}
}

// ColorDefault enables color only when stdout is a terminal.
func ColorDefault() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
