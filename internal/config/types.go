package config

// Defaults applied to fields the document leaves unset.
const (
	DefaultRuntime             = "nodejs20.x"
	DefaultArchitecture        = "x86_64"
	DefaultTimeout             = 3
	DefaultEphemeralStorage    = 512
	DefaultWaitMinutes         = 5
	DefaultPollIntervalSeconds = 2
	DefaultMaxAttempts         = 3
	DefaultLogFormat           = "console"
)

// Document represents the full deployment document.
type Document struct {
	Version  string   `yaml:"version" validate:"required,semver"`
	Function Function `yaml:"function"`
	Settings Settings `yaml:"settings,omitempty"`
}

// Function describes the desired state of one function.
type Function struct {
	Name             string `yaml:"name" validate:"required,max=140"`
	Region           string `yaml:"region" validate:"required,aws_region"`
	CodeArtifactsDir string `yaml:"code_artifacts_dir" validate:"required"`

	Role                 string   `yaml:"role,omitempty" validate:"omitempty,role_arn"`
	Runtime              string   `yaml:"runtime,omitempty"`
	Handler              string   `yaml:"handler,omitempty"`
	Description          string   `yaml:"description,omitempty" validate:"max=256"`
	MemorySize           *int     `yaml:"memory_size,omitempty" validate:"omitempty,min=128,max=10240"`
	Timeout              int      `yaml:"timeout,omitempty" validate:"omitempty,min=1,max=900"`
	EphemeralStorage     int      `yaml:"ephemeral_storage,omitempty" validate:"omitempty,min=512,max=10240"`
	Architectures        []string `yaml:"architectures,omitempty" validate:"omitempty,dive,oneof=x86_64 arm64"`
	Publish              *bool    `yaml:"publish,omitempty"`
	RevisionID           string   `yaml:"revision_id,omitempty"`
	KMSKeyArn            string   `yaml:"kms_key_arn,omitempty" validate:"omitempty,kms_key_arn"`
	SourceKMSKeyArn      string   `yaml:"source_kms_key_arn,omitempty" validate:"omitempty,kms_key_arn"`
	CodeSigningConfigArn string   `yaml:"code_signing_config_arn,omitempty" validate:"omitempty,code_signing_config_arn"`

	Environment       map[string]string  `yaml:"environment,omitempty"`
	VpcConfig         *VpcConfig         `yaml:"vpc_config,omitempty"`
	DeadLetterConfig  *DeadLetterConfig  `yaml:"dead_letter_config,omitempty"`
	TracingConfig     *TracingConfig     `yaml:"tracing_config,omitempty"`
	Layers            []string           `yaml:"layers,omitempty"`
	FileSystemConfigs []FileSystemConfig `yaml:"file_system_configs,omitempty" validate:"omitempty,dive"`
	ImageConfig       *ImageConfig       `yaml:"image_config,omitempty"`
	SnapStart         *SnapStart         `yaml:"snap_start,omitempty"`
	LoggingConfig     *LoggingConfig     `yaml:"logging_config,omitempty"`
	Tags              map[string]string  `yaml:"tags,omitempty"`
}

// VpcConfig must carry both id lists; empty lists detach the function.
type VpcConfig struct {
	SubnetIDs        []string `yaml:"subnet_ids" validate:"required"`
	SecurityGroupIDs []string `yaml:"security_group_ids" validate:"required"`
}

type DeadLetterConfig struct {
	TargetArn string `yaml:"target_arn" validate:"required"`
}

type TracingConfig struct {
	Mode string `yaml:"mode" validate:"required,oneof=Active PassThrough"`
}

type FileSystemConfig struct {
	Arn            string `yaml:"arn" validate:"required"`
	LocalMountPath string `yaml:"local_mount_path" validate:"required"`
}

type ImageConfig struct {
	Command          []string `yaml:"command,omitempty"`
	EntryPoint       []string `yaml:"entry_point,omitempty"`
	WorkingDirectory string   `yaml:"working_directory,omitempty"`
}

type SnapStart struct {
	ApplyOn string `yaml:"apply_on" validate:"required,oneof=PublishedVersions None"`
}

type LoggingConfig struct {
	LogFormat           string `yaml:"log_format,omitempty" validate:"omitempty,oneof=JSON Text"`
	ApplicationLogLevel string `yaml:"application_log_level,omitempty" validate:"omitempty,oneof=TRACE DEBUG INFO WARN ERROR FATAL"`
	SystemLogLevel      string `yaml:"system_log_level,omitempty" validate:"omitempty,oneof=DEBUG INFO WARN"`
	LogGroup            string `yaml:"log_group,omitempty"`
}

// Settings holds run parameters.
type Settings struct {
	DryRun              bool   `yaml:"dry_run,omitempty"`
	Verbose             bool   `yaml:"verbose,omitempty"`
	WaitMinutes         int    `yaml:"wait_minutes,omitempty" validate:"omitempty,min=1"`
	PollIntervalSeconds int    `yaml:"poll_interval_seconds,omitempty" validate:"omitempty,min=1"`
	MaxAttempts         int    `yaml:"max_attempts,omitempty" validate:"omitempty,min=1,max=10"`
	AssumeRoleArn       string `yaml:"assume_role_arn,omitempty" validate:"omitempty,role_arn"`
	LogFormat           string `yaml:"log_format,omitempty" validate:"omitempty,oneof=console json"`
}

// ApplyDefaults fills unset fields with their defaults. Explicit values,
// including an explicit publish: false, are left alone.
func (d *Document) ApplyDefaults() {
	if d.Version == "" {
		d.Version = "1.0"
	}

	fn := &d.Function
	if fn.Runtime == "" {
		fn.Runtime = DefaultRuntime
	}
	if fn.Timeout == 0 {
		fn.Timeout = DefaultTimeout
	}
	if fn.EphemeralStorage == 0 {
		fn.EphemeralStorage = DefaultEphemeralStorage
	}
	if len(fn.Architectures) == 0 {
		fn.Architectures = []string{DefaultArchitecture}
	}
	if fn.Publish == nil {
		publish := true
		fn.Publish = &publish
	}

	s := &d.Settings
	if s.WaitMinutes == 0 {
		s.WaitMinutes = DefaultWaitMinutes
	}
	if s.PollIntervalSeconds == 0 {
		s.PollIntervalSeconds = DefaultPollIntervalSeconds
	}
	if s.MaxAttempts == 0 {
		s.MaxAttempts = DefaultMaxAttempts
	}
	if s.LogFormat == "" {
		s.LogFormat = DefaultLogFormat
	}
}
