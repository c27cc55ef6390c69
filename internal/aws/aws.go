// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"context"
	"fmt"

	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
)

// Settings picks the credentials and endpoint for export uploads. Zero
// fields fall through to the SDK's default chain (AWS_PROFILE, shared
// config, env, IMDS).
type Settings struct {
	Profile string
	Region  string
	// Endpoint targets an S3 compatible store such as MinIO or LocalStack.
	Endpoint string
}

func (s Settings) loadOptions() []func(*config.LoadOptions) error {
	var opts []func(*config.LoadOptions) error
	if s.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(s.Profile))
	}
	if s.Region != "" {
		opts = append(opts, config.WithRegion(s.Region))
	}
	return opts
}

// applyS3 switches to path style addressing when an endpoint is set.
func (s Settings) applyS3(o *s3v2.Options) {
	if s.Endpoint == "" {
		return
	}
	o.BaseEndpoint = awsv2.String(s.Endpoint)
	o.UsePathStyle = true
}

// NewClient resolves the AWS config for s and returns an S3 client.
func NewClient(ctx context.Context, s Settings) (*s3v2.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, s.loadOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	log.WithFields(log.Fields{
		"profile":  s.Profile,
		"region":   cfg.Region,
		"endpoint": s.Endpoint,
	}).Debug("s3 client")
	return s3v2.NewFromConfig(cfg, s.applyS3), nil
}
