// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/staranto/clinicctl/internal/meta"
)

const MsgAppointmentsFailed = "Failed to get appointments"

var aqDefaultAttrs = []string{
	"id,appointment_date:date,appointment_time:time,doctor_name:doctor,doctor_specialization:specialization,status",
}

// AqCommandAction lists the appointments of the patient the token belongs to.
func AqCommandAction(ctx context.Context, cmd *cli.Command, rt *runtime) error {
	p, err := rt.api.PatientAppointments(ctx, cmd.String("status"), cmd.Bool("refresh"))
	if err != nil {
		return fail(cmd, err, MsgAppointmentsFailed)
	}
	return emitRows(cmd, p.Data, "appointments", aqDefaultAttrs...)
}

func AqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	qcb := &QueryCommandBuilder{
		Name:      "aq",
		Usage:     "patient appointment query",
		UsageText: "clinicctl aq [options]",
		Meta:      meta,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      "status",
				Usage:     "only appointments with this status (booked, completed, cancelled)",
				Validator: JammedFlagValidator,
			},
		},
		Action: AqCommandAction,
	}
	return qcb.Build()
}
