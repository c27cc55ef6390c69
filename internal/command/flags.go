// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/clinicctl/internal/config"
	"github.com/staranto/clinicctl/internal/output"
	"github.com/staranto/clinicctl/internal/tasks"
	"github.com/staranto/clinicctl/internal/transport"
)

// DefaultHost is the API base used when neither a flag, the environment nor
// the config file names one.
const DefaultHost = "http://localhost:5000/api"

// configSource returns a yaml source for key in the loaded config file.
func configSource(key string) cli.ValueSource {
	return yaml.YAML(key, altsrc.StringSourcer(config.Config.Source))
}

// nsSources returns the namespaced and then the global config file source for
// key.
func nsSources(ns, key string) []cli.ValueSource {
	if ns == "" {
		return []cli.ValueSource{configSource(key)}
	}
	return []cli.ValueSource{configSource(ns + "." + key), configSource(key)}
}

func NewGlobalFlags(ns string) (flags []cli.Flag) {
	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
		},
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: cli.NewValueSourceChain(nsSources(ns, "color")...),
			Value:   output.ColorDefault(),
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.BoolFlag{
			Name:    "local",
			Aliases: []string{"l"},
			Usage:   "show timestamps in the local timezone",
			Sources: cli.NewValueSourceChain(nsSources(ns, "local")...),
		},
		&cli.StringFlag{
			Name:      "output",
			Aliases:   []string{"o"},
			Usage:     "output format",
			Sources:   cli.NewValueSourceChain(nsSources(ns, "output")...),
			Value:     output.FormatText,
			Validator: Validators(JammedFlagValidator, OutputValidator),
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
			Sources: cli.NewValueSourceChain(configSource(ns + ".sort")),
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: cli.NewValueSourceChain(nsSources(ns, "titles")...),
			Value:   false,
		},
	}

	return
}

// NewConnFlags returns the flags that shape the runtime: where the API lives,
// how to authenticate, and how responses are cached.
func NewConnFlags(ns string) []cli.Flag {
	return []cli.Flag{
		NewHostFlag(ns),
		NewTokenFlag(ns),
		&cli.DurationFlag{
			Name:      "timeout",
			Usage:     "per-request timeout",
			Sources:   cli.NewValueSourceChain(nsSources(ns, "timeout")...),
			Value:     transport.DefaultTimeout,
			Validator: Positive[time.Duration],
		},
		&cli.BoolFlag{
			Name:    "refresh",
			Aliases: []string{"r"},
			Usage:   "bypass cached responses and refresh them",
		},
		&cli.BoolFlag{
			Name:  "no-cache",
			Usage: "never store responses in the cache",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("CLINICCTL_NO_CACHE"),
			),
		},
		&cli.StringFlag{
			Name:  "metrics-file",
			Usage: "write cache and poll metrics to this file on exit",
			Sources: cli.NewValueSourceChain(
				append([]cli.ValueSource{cli.EnvVar("CLINICCTL_METRICS_FILE")},
					nsSources(ns, "metrics_file")...)...,
			),
		},
	}
}

// NewHostFlag constructs a cli.StringFlag for the "host" flag, namespaced to
// a command and the config file.
func NewHostFlag(ns string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:    "host",
		Aliases: []string{"H"},
		Usage:   "API base URL, or a bare hostname for https://<host>/api",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("CLINICCTL_HOST"),
		),
		Value:     DefaultHost,
		Validator: JammedFlagValidator,
	}
	return NameSpacedValueChainFlagFromConfigFile(ns, config.Config.Source, flag)
}

// NewTokenFlag constructs the bearer token flag. The value is never echoed in
// --help.
func NewTokenFlag(ns string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:  "token",
		Usage: "bearer token for the API",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("CLINICCTL_TOKEN"),
		),
		HideDefault: true,
	}
	return NameSpacedValueChainFlagFromConfigFile(ns, config.Config.Source, flag)
}

// NewPollFlags returns the flags that bound a poll session.
func NewPollFlags(ns string) []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:      "interval",
			Aliases:   []string{"i"},
			Usage:     "delay between status queries",
			Sources:   cli.NewValueSourceChain(nsSources(ns, "poll.interval")...),
			Value:     tasks.DefaultInterval,
			Validator: Positive[time.Duration],
		},
		&cli.IntFlag{
			Name:      "attempts",
			Usage:     "maximum number of status queries",
			Sources:   cli.NewValueSourceChain(nsSources(ns, "poll.attempts")...),
			Value:     tasks.DefaultMaxAttempts,
			Validator: Positive[int],
		},
	}
}

// NewWaitFlags returns the flags of submission commands that optionally wait
// for the task to finish.
func NewWaitFlags(ns string) []cli.Flag {
	return append([]cli.Flag{
		&cli.BoolFlag{
			Name:    "wait",
			Aliases: []string{"w"},
			Usage:   "poll the task until it finishes",
		},
	}, NewPollFlags(ns)...)
}

// NewDownloadFlags returns the flags of export commands that fetch the
// artifact once the task succeeds.
func NewDownloadFlags(ns string) []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "download",
			Aliases: []string{"d"},
			Usage:   "download the export once the task succeeds (implies --wait)",
		},
		NewToFlag(ns),
	}
}

// NewToFlag is the destination of a downloaded artifact: a file, a directory
// or an s3://bucket/key URL. Empty means the local export directory.
func NewToFlag(ns string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:      "to",
		Usage:     "download destination: path, directory or s3://bucket/key",
		Sources:   cli.NewValueSourceChain(nsSources(ns, "exports.to")...),
		Validator: JammedFlagValidator,
	}
}

// NewDateFlag constructs a required YYYY-MM-DD flag.
func NewDateFlag(name, usage string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:      name,
		Usage:     usage,
		Required:  true,
		Validator: Validators(JammedFlagValidator, DateValidator),
	}
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	if ns != "" {
		src := yaml.YAML(ns+"."+flag.Name, altsrc.StringSourcer(path))
		flag.Sources.Chain = append(flag.Sources.Chain, src)
	}

	src := yaml.YAML(flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	return flag
}
