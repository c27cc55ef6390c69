// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/clinicctl/internal/apierr"
	"github.com/staranto/clinicctl/internal/attrs"
	"github.com/staranto/clinicctl/internal/meta"
	"github.com/staranto/clinicctl/internal/output"
)

// stdout receives command output. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (al attrs.AttrList, err error) {
	for _, d := range defaults {
		if err = al.Set(d); err != nil {
			return nil, err
		}
	}
	if extras := cmd.String("attrs"); extras != "" {
		if err = al.Set(extras); err != nil {
			return nil, fmt.Errorf("invalid --attrs: %w", err)
		}
	}
	if err = al.SetGlobalTransformSpec(); err != nil {
		return nil, err
	}
	return al, nil
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// actionError is what a failed action returns. Its text is the message meant
// for the user while the cause stays reachable through errors.Is/As.
type actionError struct {
	msg string
	err error
}

func (e *actionError) Error() string { return e.msg }
func (e *actionError) Unwrap() error { return e.err }

// structured reports whether the output format is machine readable, in which
// case mutations and failures print an apierr.Envelope.
func structured(cmd *cli.Command) bool {
	return output.OptionsFrom(cmd).Structured()
}

// fail reports err. With structured output the failure envelope is printed
// to stdout as well.
func fail(cmd *cli.Command, err error, fallback string) error {
	msg := apierr.Message(err, fallback)
	log.WithError(err).WithField("kind", apierr.KindOf(err).String()).Debug(fallback)
	if structured(cmd) {
		if perr := output.Value(apierr.Result(nil, err, fallback), output.OptionsFrom(cmd), stdout); perr != nil {
			log.WithError(perr).Warn("failed to print result")
		}
	}
	return &actionError{msg: msg, err: err}
}

// succeed prints data, wrapped in an envelope for structured output or
// through text otherwise.
func succeed(cmd *cli.Command, data any, text func(w io.Writer) error) error {
	if structured(cmd) {
		return output.Value(apierr.Result(data, nil, ""), output.OptionsFrom(cmd), stdout)
	}
	return text(stdout)
}

// emitRows renders the list at parent of raw with the query flags.
func emitRows(cmd *cli.Command, raw []byte, parent string, defaults ...string) error {
	al, err := BuildAttrs(cmd, defaults...)
	if err != nil {
		return err
	}
	log.Debugf("attrs: %v", al.String())
	return output.SliceDiceSpit(raw, al, cmd, parent, stdout)
}

// emitDocument renders a single JSON document.
func emitDocument(cmd *cli.Command, raw []byte) error {
	return output.Document(raw, output.OptionsFrom(cmd), stdout)
}

// QueryCommandBuilder is a helper that constructs a cli.Command for the cached
// subcommands using a consistent pattern. The
// builder wires metadata, the global and connection flags, and the action.
type QueryCommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	// Namespace is the config key prefix of the flags. Defaults to Name.
	Namespace string
	Flags     []cli.Flag
	Action    func(context.Context, *cli.Command, *runtime) error
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (qcb *QueryCommandBuilder) Build() *cli.Command {
	ns := qcb.Namespace
	if ns == "" {
		ns = qcb.Name
	}
	flags := append([]cli.Flag{}, qcb.Flags...)
	flags = append(flags, NewGlobalFlags(ns)...)
	flags = append(flags, NewConnFlags(ns)...)

	return &cli.Command{
		Name:      qcb.Name,
		Usage:     qcb.Usage,
		UsageText: qcb.UsageText,
		Metadata: map[string]any{
			"meta": qcb.Meta,
		},
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			m := GetMeta(cmd)
			if len(m.Args) > 1 {
				log.Debugf("Executing action for %v", m.Args[1:])
			}
			return withRuntime(cmd, func(rt *runtime) error {
				return qcb.Action(ctx, cmd, rt)
			})
		},
	}
}
