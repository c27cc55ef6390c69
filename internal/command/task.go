// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/clinicctl/internal/artifact"
	"github.com/staranto/clinicctl/internal/meta"
	"github.com/staranto/clinicctl/internal/tasks"
)

var (
	taskWaitAttrs    = []string{"task_id:task,outcome,attempts,last.status:status"}
	taskHistoryAttrs = []string{
		"id,type,status,created_at:created,record_count:records",
	}
)

func TaskStatusAction(ctx context.Context, cmd *cli.Command, rt *runtime) error {
	if cmd.NArg() != 1 {
		return errors.New("exactly one task id is required")
	}
	st, err := rt.poller.Status(ctx, cmd.Args().First())
	if err != nil {
		return fail(cmd, err, tasks.MsgStatusFailed)
	}
	return emitDocument(cmd, st.Raw)
}

// TaskWaitAction polls one or more tasks. A single task is followed like
// `export --wait`; several are polled concurrently and listed.
func TaskWaitAction(ctx context.Context, cmd *cli.Command, rt *runtime) error {
	ids := cmd.Args().Slice()
	switch {
	case len(ids) == 0:
		return errors.New("at least one task id is required")
	case len(ids) == 1:
		return follow(ctx, cmd, rt, ids[0], cmd.Bool("download"))
	case cmd.Bool("download"):
		return errors.New("--download needs a single task id")
	}

	results, perr := rt.poller.PollMany(ctx, ids, pollOptions(cmd), cmd.Int("parallel"))
	raw, err := json.Marshal(results)
	if err != nil {
		return err
	}
	if err := emitRows(cmd, raw, "", taskWaitAttrs...); err != nil {
		return err
	}
	if perr != nil {
		log.WithError(perr).Debug("poll sessions failed")
		return &actionError{msg: perr.Error(), err: perr}
	}
	return nil
}

// TaskDownloadAction fetches an export. Without --to, a copy already in the
// local export directory is reused unless --refresh is given.
func TaskDownloadAction(ctx context.Context, cmd *cli.Command, rt *runtime) error {
	if cmd.NArg() != 1 {
		return errors.New("exactly one export id is required")
	}
	id := cmd.Args().First()

	if cmd.String("to") == "" && !cmd.Bool("refresh") {
		if data, p, ok := artifact.Read(tasks.FilenameFor(id)); ok {
			log.WithField("path", p).Debug("export already downloaded")
			s := &saved{ExportID: id, Destination: p, Bytes: uint64(len(data))}
			return succeed(cmd, s, func(w io.Writer) error {
				return writeSaved(w, s)
			})
		}
	}

	s, err := fetchAndSave(ctx, cmd, rt, id)
	if err != nil {
		return err
	}
	return succeed(cmd, s, func(w io.Writer) error {
		return writeSaved(w, s)
	})
}

func TaskHistoryAction(ctx context.Context, cmd *cli.Command, rt *runtime) error {
	raw, err := rt.downloader.History(ctx)
	if err != nil {
		return fail(cmd, err, tasks.MsgHistoryFailed)
	}
	return emitRows(cmd, raw, "exports", taskHistoryAttrs...)
}

func TaskCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	status := &QueryCommandBuilder{
		Name:      "status",
		Usage:     "show the status of a task",
		UsageText: "clinicctl task status <taskID> [options]",
		Namespace: "task",
		Meta:      meta,
		Action:    TaskStatusAction,
	}
	wait := &QueryCommandBuilder{
		Name:      "wait",
		Usage:     "poll tasks until they finish",
		UsageText: "clinicctl task wait <taskID>... [options]",
		Namespace: "task",
		Meta:      meta,
		Flags: append(append(NewPollFlags("task"),
			&cli.IntFlag{
				Name:      "parallel",
				Usage:     "maximum tasks polled at once",
				Value:     4,
				Validator: Positive[int],
			}),
			NewDownloadFlags("task")...),
		Action: TaskWaitAction,
	}
	download := &QueryCommandBuilder{
		Name:      "download",
		Usage:     "download an export",
		UsageText: "clinicctl task download <exportID> [--to path|dir|s3://bucket/key] [options]",
		Namespace: "task",
		Meta:      meta,
		Flags:     []cli.Flag{NewToFlag("task")},
		Action:    TaskDownloadAction,
	}
	history := &QueryCommandBuilder{
		Name:      "history",
		Usage:     "list previous exports",
		UsageText: "clinicctl task history [options]",
		Namespace: "task",
		Meta:      meta,
		Action:    TaskHistoryAction,
	}

	return &cli.Command{
		Name:      "task",
		Usage:     "background task status and results",
		UsageText: "clinicctl task status|wait|download|history [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Commands: []*cli.Command{status.Build(), wait.Build(), download.Build(), history.Build()},
	}
}
