// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"

	"github.com/staranto/clinicctl/internal/meta"
	"github.com/staranto/clinicctl/internal/role"
)

const MsgStatsFailed = "Failed to get dashboard stats"

// StqCommandAction shows the dashboard statistics of a role. Text output is
// the flattened "stats" object; other formats get the whole payload.
func StqCommandAction(ctx context.Context, cmd *cli.Command, rt *runtime) error {
	p, err := rt.api.DashboardStatsFor(ctx, cmd.String("role"), cmd.Bool("refresh"))
	if err != nil {
		return fail(cmd, err, MsgStatsFailed)
	}

	raw := []byte(p.Data)
	if !structured(cmd) {
		if stats := gjson.GetBytes(raw, "stats"); stats.Exists() {
			raw = []byte(stats.Raw)
		}
	}
	return emitDocument(cmd, raw)
}

func StqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	qcb := &QueryCommandBuilder{
		Name:      "stq",
		Usage:     "dashboard statistics query",
		UsageText: "clinicctl stq --role admin|doctor|patient [options]",
		Meta:      meta,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "role",
				Usage:    fmt.Sprintf("dashboard to query, one of %s", strings.Join(role.Names(), ", ")),
				Required: true,
			},
		},
		Action: StqCommandAction,
	}
	return qcb.Build()
}
