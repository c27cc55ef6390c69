// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI is the slice of the S3 client Upload needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3v2.PutObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.PutObjectOutput, error)
}

// Location is a parsed s3://bucket/key URL.
type Location struct {
	Bucket string
	Key    string
}

func (l Location) String() string {
	return "s3://" + l.Bucket + "/" + l.Key
}

// IsS3URL reports whether s uses the s3 scheme.
func IsS3URL(s string) bool {
	return strings.HasPrefix(s, "s3://")
}

// ParseS3URL splits s3://bucket/key. A key ending in "/" (or no key) is a
// prefix and gets filename appended.
func ParseS3URL(s, filename string) (Location, error) {
	u, err := url.Parse(s)
	if err != nil {
		return Location{}, fmt.Errorf("failed to parse %s: %w", s, err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return Location{}, fmt.Errorf("%s is not an s3://bucket/key URL", s)
	}

	key := strings.TrimPrefix(u.Path, "/")
	if key == "" || strings.HasSuffix(key, "/") {
		key += filename
	}
	if key == "" {
		return Location{}, fmt.Errorf("%s has no object key", s)
	}
	return Location{Bucket: u.Host, Key: key}, nil
}

// Upload writes data to loc.
func Upload(ctx context.Context, api PutObjectAPI, loc Location, data []byte, contentType string) error {
	in := &s3v2.PutObjectInput{
		Bucket: awsv2.String(loc.Bucket),
		Key:    awsv2.String(loc.Key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		in.ContentType = awsv2.String(contentType)
	}

	if _, err := api.PutObject(ctx, in); err != nil {
		return fmt.Errorf("failed to upload to %s: %w", loc, err)
	}
	log.Debugf("uploaded %d bytes to %s", len(data), loc)
	return nil
}
