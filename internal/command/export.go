// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"github.com/urfave/cli/v3"

	"github.com/staranto/clinicctl/internal/meta"
	"github.com/staranto/clinicctl/internal/tasks"
)

// rangeParams reads --start and --end.
func rangeParams(cmd *cli.Command) tasks.Params {
	return tasks.Params{
		StartDate: cmd.String("start"),
		EndDate:   cmd.String("end"),
	}
}

func rangeFlags() []cli.Flag {
	return []cli.Flag{
		NewDateFlag("start", "first day of the range (YYYY-MM-DD)"),
		NewDateFlag("end", "last day of the range (YYYY-MM-DD)"),
	}
}

func exportFlags() []cli.Flag {
	return append(NewWaitFlags("export"), NewDownloadFlags("export")...)
}

func ExportCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	history := &QueryCommandBuilder{
		Name:      "patient-history",
		Usage:     "export the calling patient's treatment history as CSV",
		UsageText: "clinicctl export patient-history [--wait] [--download [--to dest]] [options]",
		Namespace: "export",
		Meta:      meta,
		Flags:     exportFlags(),
		Action: submitAction(tasks.KindPatientHistory, func(*cli.Command) tasks.Params {
			return tasks.Params{}
		}),
	}
	appointments := &QueryCommandBuilder{
		Name:      "doctor-appointments",
		Usage:     "export the calling doctor's appointments in a date range as CSV",
		UsageText: "clinicctl export doctor-appointments --start YYYY-MM-DD --end YYYY-MM-DD [options]",
		Namespace: "export",
		Meta:      meta,
		Flags:     append(rangeFlags(), exportFlags()...),
		Action:    submitAction(tasks.KindDoctorAppointments, rangeParams),
	}

	return &cli.Command{
		Name:      "export",
		Usage:     "start a CSV export task",
		UsageText: "clinicctl export patient-history|doctor-appointments [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Commands: []*cli.Command{history.Build(), appointments.Build()},
	}
}

func ReportCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	qcb := &QueryCommandBuilder{
		Name:      "report",
		Usage:     "generate a report for a date range, optionally mailed",
		UsageText: "clinicctl report --start YYYY-MM-DD --end YYYY-MM-DD [--email addr] [options]",
		Meta:      meta,
		Flags: append(append(rangeFlags(),
			&cli.StringFlag{
				Name:      "email",
				Aliases:   []string{"e"},
				Usage:     "mail the report to this address",
				Sources:   cli.NewValueSourceChain(nsSources("report", "email")...),
				Validator: JammedFlagValidator,
			}),
			NewWaitFlags("report")...),
		Action: submitAction(tasks.KindCustomReport, func(cmd *cli.Command) tasks.Params {
			p := rangeParams(cmd)
			p.Email = cmd.String("email")
			return p
		}),
	}
	return qcb.Build()
}

func RemindCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	qcb := &QueryCommandBuilder{
		Name:      "remind",
		Usage:     "send a reminder for an appointment",
		UsageText: "clinicctl remind --appointment ID [options]",
		Meta:      meta,
		Flags: append([]cli.Flag{
			&cli.IntFlag{
				Name:      "appointment",
				Usage:     "appointment id",
				Required:  true,
				Validator: Positive[int],
			},
		}, NewWaitFlags("remind")...),
		Action: submitAction(tasks.KindCustomReminder, func(cmd *cli.Command) tasks.Params {
			return tasks.Params{AppointmentID: cmd.Int("appointment")}
		}),
	}
	return qcb.Build()
}
