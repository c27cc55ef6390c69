// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package aws uploads downloaded exports to S3 destinations given as
// s3://bucket/key URLs.
package aws
