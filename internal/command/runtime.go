// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/clinicctl/internal/cache"
	"github.com/staranto/clinicctl/internal/cachedapi"
	"github.com/staranto/clinicctl/internal/config"
	"github.com/staranto/clinicctl/internal/obs"
	"github.com/staranto/clinicctl/internal/tasks"
	"github.com/staranto/clinicctl/internal/transport"
)

// runtime holds the clients a command works with. It is built once per
// action by newRuntime, which is the only place the response cache is
// created, and dropped when the action returns.
type runtime struct {
	api        *cachedapi.Client
	submitter  *tasks.Submitter
	poller     *tasks.Poller
	downloader *tasks.Downloader

	metrics     *obs.Metrics
	metricsFile string
}

func newRuntime(cmd *cli.Command) (*runtime, error) {
	tr, err := transport.NewHTTP(cmd.String("host"),
		transport.WithToken(cmd.String("token")),
		transport.WithTimeout(cmd.Duration("timeout")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	ttl, _ := config.GetDuration("cache.ttl", cache.DefaultTTL)
	maxBytes, _ := config.GetInt("cache.max_bytes", int(cachedapi.DefaultMaxCacheableBytes))
	log.WithFields(log.Fields{
		"host":      tr.BaseURL.String(),
		"ttl":       ttl,
		"max_bytes": maxBytes,
	}).Debug("runtime")

	m := obs.NewMetrics()
	store := cache.New(cache.WithTTL(ttl))

	return &runtime{
		api: cachedapi.New(store, tr,
			cachedapi.WithMaxCacheableBytes(int64(maxBytes)),
			cachedapi.WithNoStore(cmd.Bool("no-cache")),
			cachedapi.WithRecorder(m),
		),
		submitter:   tasks.NewSubmitter(tr),
		poller:      tasks.NewPoller(tr, tasks.WithRecorder(m)),
		downloader:  tasks.NewDownloader(tr),
		metrics:     m,
		metricsFile: cmd.String("metrics-file"),
	}, nil
}

// Close flushes metrics to --metrics-file when one was given.
func (rt *runtime) Close() {
	if rt == nil || rt.metricsFile == "" {
		return
	}
	if err := rt.metrics.WriteTextfile(rt.metricsFile); err != nil {
		log.WithError(err).Warn("failed to write metrics file")
	}
}

// withRuntime builds a runtime for cmd and hands it to fn, closing it after.
func withRuntime(cmd *cli.Command, fn func(*runtime) error) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(rt)
}

// pollOptions reads --interval and --attempts.
func pollOptions(cmd *cli.Command) tasks.PollOptions {
	return tasks.PollOptions{
		Interval:    cmd.Duration("interval"),
		MaxAttempts: cmd.Int("attempts"),
	}
}
