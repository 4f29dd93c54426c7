package function

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(*DesiredSpec)
		field   string
		wantErr bool
	}{
		{name: "valid", mutate: func(*DesiredSpec) {}},
		{name: "missing name", mutate: func(s *DesiredSpec) { s.Name = "" }, field: "name", wantErr: true},
		{name: "missing artifact", mutate: func(s *DesiredSpec) { s.ArtifactPath = "" }, field: "artifact", wantErr: true},
		{name: "memory too small", mutate: func(s *DesiredSpec) { s.MemorySize = intPtr(64) }, field: "memory_size", wantErr: true},
		{name: "memory upper bound", mutate: func(s *DesiredSpec) { s.MemorySize = intPtr(10240) }},
		{name: "timeout too large", mutate: func(s *DesiredSpec) { s.Timeout = 901 }, field: "timeout", wantErr: true},
		{name: "ephemeral too small", mutate: func(s *DesiredSpec) { s.EphemeralStorage = 256 }, field: "ephemeral_storage", wantErr: true},
		{name: "bad role", mutate: func(s *DesiredSpec) { s.Role = "lambda-exec" }, field: "role", wantErr: true},
		{name: "gov partition role", mutate: func(s *DesiredSpec) { s.Role = "arn:aws-us-gov:iam::123456789012:role/path/exec" }},
		{name: "bad kms", mutate: func(s *DesiredSpec) { s.KMSKeyArn = "arn:aws:kms:us-east-1:1:key/x" }, field: "kms_key_arn", wantErr: true},
		{name: "bad source kms", mutate: func(s *DesiredSpec) { s.SourceKMSKeyArn = "key" }, field: "source_kms_key_arn", wantErr: true},
		{name: "bad code signing", mutate: func(s *DesiredSpec) { s.CodeSigningConfigArn = "csc" }, field: "code_signing_config_arn", wantErr: true},
		{name: "vpc without subnets", mutate: func(s *DesiredSpec) { s.VpcConfig = &VpcConfig{SecurityGroupIDs: []string{}} }, field: "vpc_config", wantErr: true},
		{name: "vpc detach", mutate: func(s *DesiredSpec) { s.VpcConfig = &VpcConfig{SubnetIDs: []string{}, SecurityGroupIDs: []string{}} }},
		{name: "dlq without target", mutate: func(s *DesiredSpec) { s.DeadLetterConfig = &DeadLetterConfig{} }, field: "dead_letter_config", wantErr: true},
		{name: "tracing mode", mutate: func(s *DesiredSpec) { s.TracingConfig = &TracingConfig{Mode: "On"} }, field: "tracing_config", wantErr: true},
		{name: "file system mount", mutate: func(s *DesiredSpec) { s.FileSystemConfigs = []FileSystemConfig{{Arn: "arn:fs"}} }, field: "file_system_configs[0]", wantErr: true},
		{name: "snap start", mutate: func(s *DesiredSpec) { s.SnapStart = &SnapStart{ApplyOn: "Always"} }, field: "snap_start", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			spec := baseSpec()
			tc.mutate(&spec)
			err := spec.Validate()
			if !tc.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrValidation))

			var domainErr *DomainError
			require.True(t, errors.As(err, &domainErr))
			require.Equal(t, tc.field, domainErr.Context["field"])
		})
	}
}
