// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/staranto/clinicctl/internal/cachedapi"
	"github.com/staranto/clinicctl/internal/meta"
)

// MsgDoctorsFailed is shown when a doctor query fails without a server
// message.
const MsgDoctorsFailed = "Failed to get doctors"

var (
	dqDefaultAttrs = []string{
		"id,name,specialization,department,experience",
	}
	dqDetailAttrs = []string{
		"id,name,email,specialization,department,qualification,experience,consultation_fee:fee,is_available:available",
	}
)

func DqCommandAction(ctx context.Context, cmd *cli.Command, rt *runtime) error {
	force := cmd.Bool("refresh")

	if cmd.NArg() > 0 {
		id, err := strconv.Atoi(cmd.Args().First())
		if err != nil {
			return fmt.Errorf("doctor id must be a number: %q", cmd.Args().First())
		}
		p, err := rt.api.DoctorDetail(ctx, id, force)
		if err != nil {
			return fail(cmd, err, MsgDoctorsFailed)
		}
		return emitRows(cmd, p.Data, "doctor", dqDetailAttrs...)
	}

	p, err := rt.api.Doctors(ctx, cachedapi.DoctorQuery{
		Search:       cmd.String("search"),
		DepartmentID: cmd.Int("dept"),
	}, force)
	if err != nil {
		return fail(cmd, err, MsgDoctorsFailed)
	}
	return emitRows(cmd, p.Data, "doctors", dqDefaultAttrs...)
}

func DqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	qcb := &QueryCommandBuilder{
		Name:      "dq",
		Usage:     "doctor query",
		UsageText: "clinicctl dq [doctorID] [options]",
		Meta:      meta,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      "search",
				Usage:     "match doctor name or specialization",
				Validator: JammedFlagValidator,
			},
			&cli.IntFlag{
				Name:  "dept",
				Usage: "restrict to a department id",
			},
		},
		Action: DqCommandAction,
	}
	return qcb.Build()
}
