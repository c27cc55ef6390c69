// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/staranto/clinicctl/internal/meta"
)

const MsgDepartmentsFailed = "Failed to get departments"

func DeptqCommandAction(ctx context.Context, cmd *cli.Command, rt *runtime) error {
	p, err := rt.api.Departments(ctx, cmd.Bool("refresh"))
	if err != nil {
		return fail(cmd, err, MsgDepartmentsFailed)
	}
	return emitRows(cmd, p.Data, "departments", "id,name,description")
}

func DeptqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	qcb := &QueryCommandBuilder{
		Name:      "deptq",
		Usage:     "department query",
		UsageText: "clinicctl deptq [options]",
		Meta:      meta,
		Action:    DeptqCommandAction,
	}
	return qcb.Build()
}
