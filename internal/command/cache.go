// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/staranto/clinicctl/internal/cachedapi"
	"github.com/staranto/clinicctl/internal/meta"
)

// CacheClearAction clears the server cache for the pattern argument, or all
// of it with --all, and then the matching local entries.
func CacheClearAction(ctx context.Context, cmd *cli.Command, rt *runtime) error {
	var pattern *string
	switch {
	case cmd.NArg() > 0 && cmd.Bool("all"):
		return errors.New("give a pattern or --all, not both")
	case cmd.NArg() > 0:
		p := cmd.Args().First()
		pattern = &p
	case !cmd.Bool("all"):
		return errors.New("a pattern or --all is required")
	}

	res, err := rt.api.ClearCache(ctx, pattern)
	if err != nil {
		return fail(cmd, err, cachedapi.MsgClearFailed)
	}

	return succeed(cmd, res, func(w io.Writer) error {
		msg := res.Message
		if msg == "" {
			msg = "Cache cleared"
		}
		_, err := fmt.Fprintf(w, "%s (%d local entries removed)\n", msg, res.Removed)
		return err
	})
}

func CacheStatsAction(ctx context.Context, cmd *cli.Command, rt *runtime) error {
	raw, err := rt.api.CacheStats(ctx)
	if err != nil {
		return fail(cmd, err, cachedapi.MsgStatsFailed)
	}
	return emitDocument(cmd, raw)
}

func CacheHealthAction(ctx context.Context, cmd *cli.Command, rt *runtime) error {
	raw, err := rt.api.CacheHealth(ctx)
	if err != nil {
		return fail(cmd, err, cachedapi.MsgHealthFailed)
	}
	return emitDocument(cmd, raw)
}

func CacheCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	clearCmd := &QueryCommandBuilder{
		Name:      "clear",
		Usage:     "clear server and local cache entries",
		UsageText: "clinicctl cache clear <pattern> | --all [options]",
		Namespace: "cache",
		Meta:      meta,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "all",
				Usage: "clear every entry",
			},
		},
		Action: CacheClearAction,
	}
	statsCmd := &QueryCommandBuilder{
		Name:      "stats",
		Usage:     "show server cache statistics",
		UsageText: "clinicctl cache stats [options]",
		Namespace: "cache",
		Meta:      meta,
		Action:    CacheStatsAction,
	}
	healthCmd := &QueryCommandBuilder{
		Name:      "health",
		Usage:     "show server cache health",
		UsageText: "clinicctl cache health [options]",
		Namespace: "cache",
		Meta:      meta,
		Action:    CacheHealthAction,
	}

	return &cli.Command{
		Name:      "cache",
		Usage:     "server response cache",
		UsageText: "clinicctl cache clear|stats|health [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Commands: []*cli.Command{clearCmd.Build(), statsCmd.Build(), healthCmd.Build()},
	}
}
