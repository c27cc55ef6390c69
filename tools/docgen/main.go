// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"
	"github.com/urfave/cli/v3"

	"github.com/staranto/clinicctl/internal/command"
)

// Doc generator:
// - Walks the clinicctl command tree
// - Generates:
//   - docs/commands/<cmd>.md from names, usage and flags
//   - docs/man/share/man1/clinicctl-<cmd>.1 via md2man

func main() {
	var (
		repoRoot           string
		writeOnlyIfChanged bool
	)

	flag.StringVar(&repoRoot, "root", ".", "repo root (default current dir)")
	flag.BoolVar(&writeOnlyIfChanged, "only-if-changed", true, "only write files if content changed")
	flag.Parse()

	commandsDir := filepath.Join(repoRoot, "docs", "commands")
	manOutDir := filepath.Join(repoRoot, "docs", "man", "share", "man1")

	for _, d := range []string{commandsDir, manOutDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			fatalf("creating output dir %s: %v", d, err)
		}
	}

	// Point config lookups at nothing so flag defaults are the documented ones.
	os.Setenv("CLINICCTL_CFG", filepath.Join(os.TempDir(), "clinicctl-docgen-none.yaml"))

	app, err := command.InitApp(context.Background(), []string{"clinicctl"})
	if err != nil {
		fatalf("building command tree: %v", err)
	}

	var processed int
	for _, cmd := range app.Commands {
		name := cmd.Name
		md := renderMarkdown(cmd)

		mdPath := filepath.Join(commandsDir, name+".md")
		if err := writeFileIfChanged(mdPath, []byte(md), writeOnlyIfChanged); err != nil {
			fatalf("writing markdown for %s: %v", name, err)
		}

		manPath := filepath.Join(manOutDir, fmt.Sprintf("clinicctl-%s.1", name))
		if err := writeFileIfChanged(manPath, md2man.Render([]byte(md)), writeOnlyIfChanged); err != nil {
			fatalf("writing man page for %s: %v", name, err)
		}

		processed++
	}

	if processed == 0 {
		fatalf("no commands found")
	}
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}

func writeFileIfChanged(path string, new []byte, onlyIfChanged bool) error {
	if !onlyIfChanged {
		return os.WriteFile(path, new, 0o644)
	}
	old, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return os.WriteFile(path, new, 0o644)
		}
		return err
	}
	if bytes.Equal(bytes.TrimSpace(old), bytes.TrimSpace(new)) {
		return nil
	}
	return os.WriteFile(path, new, 0o644)
}

// renderMarkdown documents cmd and its subcommands in the md2man dialect: a
// title line naming the section, then NAME, SYNOPSIS and one section per
// command listing its flags.
func renderMarkdown(cmd *cli.Command) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("clinicctl-%s 1 \"\" \"clinicctl\" \"User Commands\"\n", cmd.Name))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString("# NAME\n\n")
	b.WriteString(fmt.Sprintf("clinicctl-%s - %s\n\n", cmd.Name, cmd.Usage))

	b.WriteString("# SYNOPSIS\n\n")
	if cmd.UsageText != "" {
		b.WriteString("`" + cmd.UsageText + "`\n\n")
	}
	for _, sub := range cmd.Commands {
		if sub.UsageText != "" {
			b.WriteString("`" + sub.UsageText + "`\n\n")
		}
	}

	writeFlags(&b, "OPTIONS", cmd)
	for _, sub := range cmd.Commands {
		b.WriteString(fmt.Sprintf("# %s\n\n%s\n\n", strings.ToUpper(sub.Name), sub.Usage))
		writeFlags(&b, "", sub)
	}

	return b.String()
}

func writeFlags(b *strings.Builder, header string, cmd *cli.Command) {
	if len(cmd.Flags) == 0 {
		return
	}
	if header != "" {
		b.WriteString("# " + header + "\n\n")
	}
	for _, f := range cmd.Flags {
		names := f.Names()
		parts := make([]string, 0, len(names))
		for _, n := range names {
			if len(n) == 1 {
				parts = append(parts, "-"+n)
			} else {
				parts = append(parts, "--"+n)
			}
		}
		b.WriteString("**" + strings.Join(parts, "**, **") + "**\n")
		if u, ok := f.(cli.DocGenerationFlag); ok && u.GetUsage() != "" {
			b.WriteString(": " + u.GetUsage() + "\n")
		}
		b.WriteString("\n")
	}
}
