package function

import (
	"fmt"
	"regexp"
)

const (
	MinMemorySize       = 128
	MaxMemorySize       = 10240
	MinTimeout          = 1
	MaxTimeout          = 900
	MinEphemeralStorage = 512
	MaxEphemeralStorage = 10240
)

var (
	roleArnPattern              = regexp.MustCompile(`^arn:aws(-[a-z0-9-]+)?:iam::[0-9]{12}:role/[a-zA-Z0-9+=,.@_/-]+$`)
	codeSigningConfigArnPattern = regexp.MustCompile(`^arn:aws(-[a-z0-9-]+)?:lambda:[a-z0-9-]+:[0-9]{12}:code-signing-config:[a-zA-Z0-9-]+$`)
	kmsKeyArnPattern            = regexp.MustCompile(`^arn:aws(-[a-z0-9-]+)?:kms:[a-z0-9-]+:[0-9]{12}:key/[a-zA-Z0-9-]+$`)

	tracingModes = map[string]struct{}{"Active": {}, "PassThrough": {}}
	snapStartOn  = map[string]struct{}{"PublishedVersions": {}, "None": {}}
)

// IsRoleArn reports whether s is a well-formed IAM role ARN.
func IsRoleArn(s string) bool { return roleArnPattern.MatchString(s) }

// IsKMSKeyArn reports whether s is a well-formed KMS key ARN.
func IsKMSKeyArn(s string) bool { return kmsKeyArnPattern.MatchString(s) }

// IsCodeSigningConfigArn reports whether s is a well-formed code signing
// config ARN.
func IsCodeSigningConfigArn(s string) bool { return codeSigningConfigArnPattern.MatchString(s) }

// Validate checks the spec for malformed values. It never contacts the
// control plane and returns the first violation found.
func (s DesiredSpec) Validate() error {
	if s.Name == "" {
		return newValidationError("name", "function name must be provided")
	}
	if s.Region == "" {
		return newValidationError("region", "region must be provided")
	}
	if s.ArtifactPath == "" {
		return newValidationError("artifact", "artifact path must be provided")
	}

	if s.MemorySize != nil && (*s.MemorySize < MinMemorySize || *s.MemorySize > MaxMemorySize) {
		return newValidationError("memory_size", fmt.Sprintf("must be between %d MB and %d MB, got: %d", MinMemorySize, MaxMemorySize, *s.MemorySize))
	}
	if s.Timeout != 0 && (s.Timeout < MinTimeout || s.Timeout > MaxTimeout) {
		return newValidationError("timeout", fmt.Sprintf("must be between %d and %d seconds, got: %d", MinTimeout, MaxTimeout, s.Timeout))
	}
	if s.EphemeralStorage != 0 && (s.EphemeralStorage < MinEphemeralStorage || s.EphemeralStorage > MaxEphemeralStorage) {
		return newValidationError("ephemeral_storage", fmt.Sprintf("must be between %d MB and %d MB, got: %d", MinEphemeralStorage, MaxEphemeralStorage, s.EphemeralStorage))
	}

	if s.Role != "" && !IsRoleArn(s.Role) {
		return newValidationError("role", "invalid IAM role ARN format: "+s.Role)
	}
	if s.CodeSigningConfigArn != "" && !IsCodeSigningConfigArn(s.CodeSigningConfigArn) {
		return newValidationError("code_signing_config_arn", "invalid code signing config ARN format: "+s.CodeSigningConfigArn)
	}
	if s.KMSKeyArn != "" && !IsKMSKeyArn(s.KMSKeyArn) {
		return newValidationError("kms_key_arn", "invalid KMS key ARN format: "+s.KMSKeyArn)
	}
	if s.SourceKMSKeyArn != "" && !IsKMSKeyArn(s.SourceKMSKeyArn) {
		return newValidationError("source_kms_key_arn", "invalid KMS key ARN format: "+s.SourceKMSKeyArn)
	}

	return s.validateBlocks()
}

func (s DesiredSpec) validateBlocks() error {
	if s.VpcConfig != nil {
		if s.VpcConfig.SubnetIDs == nil {
			return newValidationError("vpc_config", "must include 'SubnetIds' as an array")
		}
		if s.VpcConfig.SecurityGroupIDs == nil {
			return newValidationError("vpc_config", "must include 'SecurityGroupIds' as an array")
		}
	}
	if s.DeadLetterConfig != nil && s.DeadLetterConfig.TargetArn == "" {
		return newValidationError("dead_letter_config", "must include 'TargetArn'")
	}
	if s.TracingConfig != nil {
		if _, ok := tracingModes[s.TracingConfig.Mode]; !ok {
			return newValidationError("tracing_config", "Mode must be 'Active' or 'PassThrough'")
		}
	}
	for i, fs := range s.FileSystemConfigs {
		if fs.Arn == "" || fs.LocalMountPath == "" {
			return newValidationError(fmt.Sprintf("file_system_configs[%d]", i), "must include 'Arn' and 'LocalMountPath'")
		}
	}
	if s.SnapStart != nil {
		if _, ok := snapStartOn[s.SnapStart.ApplyOn]; !ok {
			return newValidationError("snap_start", "ApplyOn must be 'PublishedVersions' or 'None'")
		}
	}
	return nil
}
