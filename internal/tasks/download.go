// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/staranto/clinicctl/internal/apierr"
	"github.com/staranto/clinicctl/internal/transport"
)

// Fallback messages used when the server supplies none.
const (
	MsgDownloadFailed = "Failed to download export"
	MsgHistoryFailed  = "Failed to get export history"
)

// Artifact is a downloaded export. Data is exactly what the server sent.
type Artifact struct {
	ExportID string
	Data     []byte
	// Filename is the suggested local name.
	Filename string
	// ContentType is as reported by the server and informational only.
	ContentType string
}

// Size is len(Data) as an unsigned count for display.
func (a Artifact) Size() uint64 {
	return uint64(len(a.Data))
}

// FilenameFor returns the suggested file name for exportID.
func FilenameFor(exportID string) string {
	return fmt.Sprintf("export-%s.csv", exportID)
}

// Downloader fetches finished exports.
type Downloader struct {
	tr transport.Transport
}

// NewDownloader returns a Downloader using tr.
func NewDownloader(tr transport.Transport) *Downloader {
	return &Downloader{tr: tr}
}

// Fetch downloads exportID as raw bytes. Nothing is written to disk.
func (d *Downloader) Fetch(ctx context.Context, exportID string) (Artifact, error) {
	if exportID == "" {
		return Artifact{}, apierr.Validation("download export", "export id is required")
	}

	resp, err := d.tr.Get(ctx, "/tasks/download/"+url.PathEscape(exportID), transport.Request{ResponseType: transport.Binary})
	if err != nil {
		return Artifact{}, apierr.Wrapf(err, "download export %s", exportID)
	}

	return Artifact{
		ExportID:    exportID,
		Data:        resp.Data,
		Filename:    FilenameFor(exportID),
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// History lists the caller's previous exports verbatim.
func (d *Downloader) History(ctx context.Context) (json.RawMessage, error) {
	resp, err := d.tr.Get(ctx, "/tasks/exports/history", transport.Request{})
	if err != nil {
		return nil, apierr.Wrap(err, "export history")
	}
	return resp.Data, nil
}
