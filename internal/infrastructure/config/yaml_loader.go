package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"

	cfgpkg "github.com/alexisbeaulieu97/lambda-deploy/internal/config"
	"github.com/alexisbeaulieu97/lambda-deploy/internal/domain/function"
	"github.com/alexisbeaulieu97/lambda-deploy/internal/ports"
	apperrors "github.com/alexisbeaulieu97/lambda-deploy/pkg/errors"
)

// Override mutates a decoded document before defaults and validation run.
// The CLI uses overrides to layer flag values on top of the file.
type Override func(*cfgpkg.Document)

// YAMLLoader implements the ConfigLoader port by reading YAML files from disk.
type YAMLLoader struct {
	logger    ports.Logger
	overrides []Override
}

// NewYAMLLoader constructs a loader. Overrides are applied in order.
func NewYAMLLoader(logger ports.Logger, overrides ...Override) *YAMLLoader {
	return &YAMLLoader{logger: logger, overrides: overrides}
}

// Load reads the document at path. An empty path starts from an empty
// document so a deployment can be described by overrides alone.
func (l *YAMLLoader) Load(ctx context.Context, path string) (*ports.Deployment, error) {
	if err := contextCheck(ctx); err != nil {
		return nil, err
	}

	l.logDebug(ctx, "loading deployment configuration", map[string]interface{}{"path": path, "overrides": len(l.overrides)})

	doc, err := l.decode(path)
	if err != nil {
		l.logError(ctx, "failed to parse configuration", err, map[string]interface{}{"path": path})
		return nil, convertError(err, path)
	}

	for _, override := range l.overrides {
		if override != nil {
			override(doc)
		}
	}

	if err := cfgpkg.Finalize(doc); err != nil {
		l.logError(ctx, "configuration failed validation", err, map[string]interface{}{"path": path})
		return nil, convertError(err, path)
	}

	if err := contextCheck(ctx); err != nil {
		return nil, err
	}

	deployment := mapToDomain(doc)
	if err := deployment.Spec.Validate(); err != nil {
		l.logError(ctx, "configuration failed domain validation", err, map[string]interface{}{"path": path})
		return nil, err
	}

	l.logInfo(ctx, "deployment configuration loaded", map[string]interface{}{
		"path":     path,
		"function": deployment.Spec.Name,
		"region":   deployment.Spec.Region,
	})
	return deployment, nil
}

// Validate checks the document at path without producing a deployment.
func (l *YAMLLoader) Validate(ctx context.Context, path string) error {
	if err := contextCheck(ctx); err != nil {
		return err
	}

	if path == "" {
		_, err := l.Load(ctx, path)
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		l.logError(ctx, "configuration path stat failed", err, map[string]interface{}{"path": path})
		return convertError(err, path)
	}
	if info.IsDir() {
		return domainError(function.ErrCodeValidation, "configuration path is a directory", nil, map[string]interface{}{"path": path})
	}

	ext := filepath.Ext(path)
	switch ext {
	case ".yaml", ".yml":
		l.logDebug(ctx, "validating deployment configuration", map[string]interface{}{"path": path})
		_, err = l.Load(ctx, path)
	default:
		err = domainError(function.ErrCodeValidation, "unsupported configuration file extension", nil, map[string]interface{}{"path": path, "extension": ext})
	}

	return err
}

var _ ports.ConfigLoader = (*YAMLLoader)(nil)

func (l *YAMLLoader) decode(path string) (*cfgpkg.Document, error) {
	if path == "" {
		return &cfgpkg.Document{}, nil
	}
	return cfgpkg.DecodeConfig(path)
}

func convertError(err error, path string) error {
	if err == nil {
		return nil
	}
	var parseErr *apperrors.ParseError
	if errors.As(err, &parseErr) {
		if errors.Is(parseErr.Err, os.ErrNotExist) {
			return domainError(function.ErrCodeValidation, "configuration file not found", parseErr.Err, map[string]interface{}{"path": path})
		}
		return domainError(function.ErrCodeValidation, "invalid configuration syntax", err, map[string]interface{}{"path": parseErr.Path, "line": parseErr.Line})
	}
	var valErr *apperrors.ValidationError
	if errors.As(err, &valErr) {
		context := map[string]interface{}{"path": path}
		if valErr.Field != "" {
			context["field"] = valErr.Field
		}
		if valErr.Value != nil {
			context["value"] = valErr.Value
		}
		return domainError(function.ErrCodeValidation, valErr.Error(), valErr.Err, context)
	}
	if os.IsNotExist(err) {
		return domainError(function.ErrCodeValidation, "configuration file not found", err, map[string]interface{}{"path": path})
	}
	return domainError(function.ErrCodeInternal, "configuration load failed", err, map[string]interface{}{"path": path})
}

func contextCheck(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return domainError(function.ErrCodeCancelled, "operation cancelled", err, nil)
	}
	return nil
}

func domainError(code function.ErrorCode, message string, cause error, ctx map[string]interface{}) *function.DomainError {
	return function.NewError(code, message, cause, ctx)
}

func (l *YAMLLoader) logDebug(ctx context.Context, msg string, fields map[string]interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Debug(ctx, msg, flattenFields(fields)...)
}

func (l *YAMLLoader) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Info(ctx, msg, flattenFields(fields)...)
}

func (l *YAMLLoader) logError(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if l.logger == nil {
		return
	}
	payload := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		payload[k] = v
	}
	payload["error"] = err
	l.logger.Error(ctx, msg, flattenFields(payload)...)
}

func flattenFields(fields map[string]interface{}) []interface{} {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]interface{}, 0, len(fields)*2)
	for _, k := range keys {
		args = append(args, k, fields[k])
	}
	return args
}

func mapToDomain(doc *cfgpkg.Document) *ports.Deployment {
	if doc == nil {
		return &ports.Deployment{}
	}

	fn := doc.Function
	spec := function.DesiredSpec{
		Name:                 fn.Name,
		Region:               fn.Region,
		ArtifactPath:         fn.CodeArtifactsDir,
		Role:                 fn.Role,
		Handler:              fn.Handler,
		Runtime:              fn.Runtime,
		Description:          fn.Description,
		Timeout:              fn.Timeout,
		EphemeralStorage:     fn.EphemeralStorage,
		Architectures:        cloneStrings(fn.Architectures),
		Publish:              fn.Publish == nil || *fn.Publish,
		RevisionID:           fn.RevisionID,
		PackageType:          function.PackageTypeZip,
		KMSKeyArn:            fn.KMSKeyArn,
		SourceKMSKeyArn:      fn.SourceKMSKeyArn,
		CodeSigningConfigArn: fn.CodeSigningConfigArn,
		Environment:          cloneStringMap(fn.Environment),
		Layers:               cloneStrings(fn.Layers),
		Tags:                 cloneStringMap(fn.Tags),
	}
	if fn.MemorySize != nil {
		memory := *fn.MemorySize
		spec.MemorySize = &memory
	}
	if fn.VpcConfig != nil {
		spec.VpcConfig = &function.VpcConfig{
			SubnetIDs:        cloneStrings(fn.VpcConfig.SubnetIDs),
			SecurityGroupIDs: cloneStrings(fn.VpcConfig.SecurityGroupIDs),
		}
	}
	if fn.DeadLetterConfig != nil {
		spec.DeadLetterConfig = &function.DeadLetterConfig{TargetArn: fn.DeadLetterConfig.TargetArn}
	}
	if fn.TracingConfig != nil {
		spec.TracingConfig = &function.TracingConfig{Mode: fn.TracingConfig.Mode}
	}
	if fn.FileSystemConfigs != nil {
		spec.FileSystemConfigs = make([]function.FileSystemConfig, len(fn.FileSystemConfigs))
		for i, fs := range fn.FileSystemConfigs {
			spec.FileSystemConfigs[i] = function.FileSystemConfig{Arn: fs.Arn, LocalMountPath: fs.LocalMountPath}
		}
	}
	if fn.ImageConfig != nil {
		spec.ImageConfig = &function.ImageConfig{
			Command:          cloneStrings(fn.ImageConfig.Command),
			EntryPoint:       cloneStrings(fn.ImageConfig.EntryPoint),
			WorkingDirectory: fn.ImageConfig.WorkingDirectory,
		}
	}
	if fn.SnapStart != nil {
		spec.SnapStart = &function.SnapStart{ApplyOn: fn.SnapStart.ApplyOn}
	}
	if fn.LoggingConfig != nil {
		spec.LoggingConfig = &function.LoggingConfig{
			LogFormat:           fn.LoggingConfig.LogFormat,
			ApplicationLogLevel: fn.LoggingConfig.ApplicationLogLevel,
			SystemLogLevel:      fn.LoggingConfig.SystemLogLevel,
			LogGroup:            fn.LoggingConfig.LogGroup,
		}
	}

	s := doc.Settings
	return &ports.Deployment{
		Spec: spec,
		Settings: ports.Settings{
			DryRun:              s.DryRun,
			Verbose:             s.Verbose,
			WaitMinutes:         s.WaitMinutes,
			PollIntervalSeconds: s.PollIntervalSeconds,
			MaxAttempts:         s.MaxAttempts,
			AssumeRoleArn:       s.AssumeRoleArn,
			LogFormat:           s.LogFormat,
		},
	}
}

// cloneStrings keeps the nil/empty distinction, which matters for VPC lists.
func cloneStrings(src []string) []string {
	if src == nil {
		return nil
	}
	return append(make([]string, 0, len(src)), src...)
}

func cloneStringMap(src map[string]string) map[string]string {
	if src == nil {
		return nil
	}
	clone := make(map[string]string, len(src))
	for k, v := range src {
		clone[k] = v
	}
	return clone
}
