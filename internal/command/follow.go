// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"

	"github.com/staranto/clinicctl/internal/apierr"
	"github.com/staranto/clinicctl/internal/artifact"
	"github.com/staranto/clinicctl/internal/aws"
	"github.com/staranto/clinicctl/internal/config"
	"github.com/staranto/clinicctl/internal/tasks"
)

// saved describes where a downloaded artifact ended up.
type saved struct {
	ExportID    string `json:"export_id"`
	Destination string `json:"destination"`
	Bytes       uint64 `json:"bytes"`
	ContentType string `json:"content_type,omitempty"`
}

// followed is the result of waiting on a task, and optionally downloading
// its export.
type followed struct {
	tasks.PollResult
	Saved *saved `json:"saved,omitempty"`
}

// submitAction returns an action that submits kind with the parameters read
// by params and then, per --wait and --download, follows the task.
func submitAction(kind tasks.Kind, params func(*cli.Command) tasks.Params) func(context.Context, *cli.Command, *runtime) error {
	return func(ctx context.Context, cmd *cli.Command, rt *runtime) error {
		h, err := rt.submitter.Submit(ctx, kind, params(cmd))
		if err != nil {
			return fail(cmd, err, kind.Fallback())
		}
		log.WithFields(log.Fields{"kind": kind, "task_id": h.TaskID}).Debug("submitted")

		if cmd.Bool("wait") || cmd.Bool("download") {
			return follow(ctx, cmd, rt, h.TaskID, cmd.Bool("download"))
		}

		return succeed(cmd, h, func(w io.Writer) error {
			if h.Message != "" {
				if _, err := fmt.Fprintln(w, h.Message); err != nil {
					return err
				}
			}
			_, err := fmt.Fprintf(w, "task %s %s\n", h.TaskID, h.Status)
			return err
		})
	}
}

// follow polls taskID to completion and downloads its export when download is
// set and the task succeeded. The export of a task is addressed by its id.
func follow(ctx context.Context, cmd *cli.Command, rt *runtime, taskID string, download bool) error {
	res, err := rt.poller.Poll(ctx, taskID, pollOptions(cmd))
	if err != nil {
		return fail(cmd, err, tasks.MsgStatusFailed)
	}
	if res.Outcome == tasks.OutcomeFailure {
		return fail(cmd, taskFailed(res), "Task failed")
	}

	out := followed{PollResult: res}
	if download {
		s, err := fetchAndSave(ctx, cmd, rt, taskID)
		if err != nil {
			return err
		}
		out.Saved = s
	}

	return succeed(cmd, out, func(w io.Writer) error {
		if _, err := fmt.Fprintf(w, "task %s %s after %d %s\n", res.TaskID, res.Last.Status,
			res.Attempts, plural(res.Attempts, "attempt")); err != nil {
			return err
		}
		if out.Saved != nil {
			return writeSaved(w, out.Saved)
		}
		return nil
	})
}

// taskFailed turns a FAILURE status into an error, carrying the error text
// the task reported when there is one.
func taskFailed(res tasks.PollResult) error {
	msg := fmt.Sprintf("Task %s failed", res.TaskID)
	if reason := gjson.GetBytes(res.Last.Result, "error").String(); reason != "" {
		msg += ": " + reason
	}
	return apierr.New(apierr.KindUnknown, "task "+res.TaskID, msg)
}

// fetchAndSave downloads exportID and stores it per --to.
func fetchAndSave(ctx context.Context, cmd *cli.Command, rt *runtime, exportID string) (*saved, error) {
	art, err := rt.downloader.Fetch(ctx, exportID)
	if err != nil {
		return nil, fail(cmd, err, tasks.MsgDownloadFailed)
	}
	dest, err := store(ctx, cmd.String("to"), art)
	if err != nil {
		return nil, fail(cmd, err, "Failed to save export")
	}
	return &saved{
		ExportID:    art.ExportID,
		Destination: dest,
		Bytes:       art.Size(),
		ContentType: art.ContentType,
	}, nil
}

// store persists art at to: an s3://bucket/key URL, an existing directory,
// a file path, or the local export directory when to is empty.
func store(ctx context.Context, to string, art tasks.Artifact) (string, error) {
	switch {
	case aws.IsS3URL(to):
		return upload(ctx, to, art)
	case to == "":
		return artifact.Write(art.Filename, art.Data)
	}

	if fi, err := os.Stat(to); err == nil && fi.IsDir() {
		to = filepath.Join(to, art.Filename)
	}
	return artifact.WriteTo(to, art.Data)
}

func upload(ctx context.Context, to string, art tasks.Artifact) (string, error) {
	loc, err := aws.ParseS3URL(to, art.Filename)
	if err != nil {
		return "", err
	}

	var settings aws.Settings
	settings.Profile, _ = config.GetString("exports.aws_profile", "")
	settings.Region, _ = config.GetString("exports.aws_region", "")
	settings.Endpoint, _ = config.GetString("exports.s3_endpoint", "")

	client, err := aws.NewClient(ctx, settings)
	if err != nil {
		return "", err
	}

	contentType := art.ContentType
	if contentType == "" {
		contentType = "text/csv"
	}
	if err := aws.Upload(ctx, client, loc, art.Data, contentType); err != nil {
		return "", err
	}
	return loc.String(), nil
}

func writeSaved(w io.Writer, s *saved) error {
	_, err := fmt.Fprintf(w, "saved %s to %s\n", humanize.Bytes(s.Bytes), s.Destination)
	return err
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
