// Package awsclient builds the AWS service clients used by the server from a
// single resolved configuration.
package awsclient

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/ses"
)

// Options selects region and, for local emulators, an endpoint override with
// static credentials.
type Options struct {
	Region           string
	EndpointOverride string
	AccessKeyID      string
	SecretAccessKey  string
}

// Clients holds one client per AWS service the server talks to.
type Clients struct {
	DynamoDB *dynamodb.Client
	KMS      *kms.Client
	SES      *ses.Client
}

// New loads the shared AWS configuration. When EndpointOverride is set every
// client is pointed at it and static credentials are used, so a local
// DynamoDB/KMS/SES emulator works without an AWS profile.
func New(ctx context.Context, opts Options) (*Clients, error) {
	cfg, err := Load(ctx, opts)
	if err != nil {
		return nil, err
	}

	override := opts.EndpointOverride
	return &Clients{
		DynamoDB: dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
			if override != "" {
				o.BaseEndpoint = aws.String(override)
			}
		}),
		KMS: kms.NewFromConfig(cfg, func(o *kms.Options) {
			if override != "" {
				o.BaseEndpoint = aws.String(override)
			}
		}),
		SES: ses.NewFromConfig(cfg, func(o *ses.Options) {
			if override != "" {
				o.BaseEndpoint = aws.String(override)
			}
		}),
	}, nil
}

// Load resolves aws.Config for opts.
func Load(ctx context.Context, opts Options) (aws.Config, error) {
	if opts.Region == "" {
		return aws.Config{}, errors.New("aws region required")
	}

	loaders := []func(*config.LoadOptions) error{
		config.WithRegion(opts.Region),
	}

	if opts.EndpointOverride != "" {
		key, secret := opts.AccessKeyID, opts.SecretAccessKey
		if key == "" {
			key = "local"
		}
		if secret == "" {
			secret = "local"
		}
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(key, secret, ""),
		))
	}

	return config.LoadDefaultConfig(ctx, loaders...)
}
