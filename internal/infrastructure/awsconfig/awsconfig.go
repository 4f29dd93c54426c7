// Package awsconfig builds the SDK configuration shared by the Lambda store.
package awsconfig

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/alexisbeaulieu97/lambda-deploy/internal/ports"
)

// DefaultSessionName is used for assumed-role sessions when none is given.
const DefaultSessionName = "lambda-deploy"

// Options select the region, retry budget and credentials of the SDK.
type Options struct {
	Region        string
	MaxAttempts   int
	AssumeRoleArn string
	SessionName   string
}

// Load resolves the default credential chain for opts.Region. When
// AssumeRoleArn is set the resulting credentials come from STS.
func Load(ctx context.Context, opts Options, logger ports.Logger) (aws.Config, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(opts.Region),
	}
	if opts.MaxAttempts > 0 {
		loadOpts = append(loadOpts,
			config.WithRetryMaxAttempts(opts.MaxAttempts),
			config.WithRetryMode(aws.RetryModeStandard),
		)
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("awsconfig: load default config: %w", err)
	}

	if opts.AssumeRoleArn != "" {
		session := opts.SessionName
		if session == "" {
			session = DefaultSessionName
		}
		provider := stscreds.NewAssumeRoleProvider(sts.NewFromConfig(cfg), opts.AssumeRoleArn, func(o *stscreds.AssumeRoleOptions) {
			o.RoleSessionName = session
		})
		cfg.Credentials = aws.NewCredentialsCache(provider)
		if logger != nil {
			logger.Info(ctx, "using assumed role credentials", "role_arn", opts.AssumeRoleArn, "session", session)
		}
	}

	if logger != nil {
		logger.Debug(ctx, "aws config loaded", "region", cfg.Region, "max_attempts", cfg.RetryMaxAttempts)
	}
	return cfg, nil
}
