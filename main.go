// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/clinicctl/internal/artifact"
	"github.com/staranto/clinicctl/internal/command"
	"github.com/staranto/clinicctl/internal/config"
	mylog "github.com/staranto/clinicctl/internal/log"
	"github.com/staranto/clinicctl/internal/meta"
)

var ctx = context.Background()

// groups are the commands whose first argument is a subcommand.
var groups = []string{"cache", "export", "task"}

func main() {
	os.Exit(realMain())
}

func realMain() int {
	mylog.InitLogger()

	args := os.Args

	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "No command specified.")
		args = append(args, "--help")
	} else {
		args = mangleArguments(args)
	}

	// Short-circuit --version/-v.
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Println(meta.Version)
			return 0
		}
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	// Best-effort: pre-create the export directory and drop stale exports.
	if _, err := artifact.EnsureBaseDir(); err != nil {
		log.WithError(err).Debug("export directory unavailable")
	}
	hours, _ := config.GetInt("exports.clean", 0)
	if err := artifact.Purge(hours); err != nil {
		log.WithError(err).Warn("failed to purge exports")
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	return 0
}

// mangleArguments splices argument sets from the config file into args. An
// @name argument selects the <command>.<name> list, otherwise the
// <command>.defaults list is used. The set is inserted right after the
// command, or after the subcommand for command groups.
func mangleArguments(args []string) []string {
	if slices.ContainsFunc(args, func(a string) bool { return a == "--help" || a == "-h" }) {
		return helpArgs(args)
	}

	at := insertAt(args)
	working, set := takeSet(args, at)

	setArgs, _ := config.GetStringSlice(args[1] + "." + set)
	var spliced []string
	for _, arg := range setArgs {
		spliced = append(spliced, strings.Fields(arg)...)
	}
	working = slices.Insert(working, at, spliced...)

	log.Debugf("idx=%d, set=%s, args=%v", at+len(spliced), set, working)
	return working
}

// helpArgs keeps the command words before the first flag and asks for help.
func helpArgs(args []string) []string {
	end := slices.IndexFunc(args, func(a string) bool { return strings.HasPrefix(a, "-") })
	if end < 0 {
		end = len(args)
	}
	return append(slices.Clone(args[:end]), "--help")
}

// insertAt is the index following the command, or its subcommand for groups.
func insertAt(args []string) int {
	if slices.Contains(groups, args[1]) && len(args) > 2 && !strings.HasPrefix(args[2], "-") {
		return 3
	}
	return 2
}

// takeSet removes the first @name at or after from and returns its name,
// "defaults" when there is none. args is not modified.
func takeSet(args []string, from int) ([]string, string) {
	working := slices.Clone(args)
	for i := from; i < len(working); i++ {
		if name, ok := strings.CutPrefix(working[i], "@"); ok {
			return slices.Delete(working, i, i+1), name
		}
	}
	return working, "defaults"
}
