package function

import (
	"github.com/alexisbeaulieu97/lambda-deploy/internal/domain/configtree"
)

const (
	// PackageTypeZip is the only package type this tool deploys.
	PackageTypeZip = "Zip"
	// LatestVersion is the version tag of the unpublished function code.
	LatestVersion = "$LATEST"
)

// VpcConfig attaches the function to subnets and security groups. Empty
// slices mean "detach"; nil slices mean the caller never supplied them.
type VpcConfig struct {
	SubnetIDs        []string
	SecurityGroupIDs []string
}

// DeadLetterConfig routes failed asynchronous invocations.
type DeadLetterConfig struct {
	TargetArn string
}

// TracingConfig selects X-Ray tracing.
type TracingConfig struct {
	Mode string
}

// FileSystemConfig mounts an EFS access point.
type FileSystemConfig struct {
	Arn            string
	LocalMountPath string
}

// ImageConfig overrides container image settings.
type ImageConfig struct {
	Command          []string
	EntryPoint       []string
	WorkingDirectory string
}

// SnapStart configures snapshot-based start-up.
type SnapStart struct {
	ApplyOn string
}

// LoggingConfig controls the function's log destination and format.
type LoggingConfig struct {
	LogFormat           string
	ApplicationLogLevel string
	SystemLogLevel      string
	LogGroup            string
}

// DesiredSpec is the state a caller wants the remote function to reach.
type DesiredSpec struct {
	Name         string
	Region       string
	ArtifactPath string

	Role                 string
	Handler              string
	Runtime              string
	Description          string
	MemorySize           *int
	Timeout              int
	EphemeralStorage     int
	Architectures        []string
	Publish              bool
	RevisionID           string
	PackageType          string
	KMSKeyArn            string
	SourceKMSKeyArn      string
	CodeSigningConfigArn string

	Environment       map[string]string
	VpcConfig         *VpcConfig
	DeadLetterConfig  *DeadLetterConfig
	TracingConfig     *TracingConfig
	Layers            []string
	FileSystemConfigs []FileSystemConfig
	ImageConfig       *ImageConfig
	SnapStart         *SnapStart
	LoggingConfig     *LoggingConfig
	Tags              map[string]string
}

// ComparableTree returns the configuration fields compared against the remote
// state. Blocks the caller did not supply are left out so they never count as
// changes.
func (s DesiredSpec) ComparableTree() configtree.Value {
	entries := map[string]configtree.Value{
		"Role":        configtree.String(s.Role),
		"Handler":     configtree.String(s.Handler),
		"Description": configtree.String(s.Description),
		"Timeout":     intOrNull(s.Timeout),
		"Runtime":     configtree.String(s.Runtime),
		"KMSKeyArn":   configtree.String(s.KMSKeyArn),
		"EphemeralStorage": configtree.Map(map[string]configtree.Value{
			"Size": intOrNull(s.EphemeralStorage),
		}),
	}
	if s.MemorySize != nil {
		entries["MemorySize"] = configtree.Int(*s.MemorySize)
	}
	if s.VpcConfig != nil {
		entries["VpcConfig"] = s.VpcConfig.tree()
	}
	if s.Environment != nil {
		entries["Environment"] = configtree.Map(map[string]configtree.Value{
			"Variables": configtree.StringMap(s.Environment),
		})
	}
	if s.DeadLetterConfig != nil {
		entries["DeadLetterConfig"] = configtree.Map(map[string]configtree.Value{
			"TargetArn": configtree.String(s.DeadLetterConfig.TargetArn),
		})
	}
	if s.TracingConfig != nil {
		entries["TracingConfig"] = configtree.Map(map[string]configtree.Value{
			"Mode": configtree.String(s.TracingConfig.Mode),
		})
	}
	if s.Layers != nil {
		entries["Layers"] = configtree.Strings(s.Layers)
	}
	if s.FileSystemConfigs != nil {
		entries["FileSystemConfigs"] = fileSystemTree(s.FileSystemConfigs)
	}
	if s.ImageConfig != nil {
		entries["ImageConfig"] = s.ImageConfig.tree()
	}
	if s.SnapStart != nil {
		entries["SnapStart"] = configtree.Map(map[string]configtree.Value{
			"ApplyOn": configtree.String(s.SnapStart.ApplyOn),
		})
	}
	if s.LoggingConfig != nil {
		entries["LoggingConfig"] = s.LoggingConfig.tree()
	}
	return configtree.Map(entries)
}

// ConfigurationTree is the body of an update-configuration request before
// normalization.
func (s DesiredSpec) ConfigurationTree() configtree.Value {
	return s.ComparableTree()
}

// CreateTree is the body of a create request before normalization.
func (s DesiredSpec) CreateTree() configtree.Value {
	tree := s.ComparableTree().
		With("PackageType", configtree.String(s.packageType())).
		With("Publish", configtree.Bool(s.Publish)).
		With("Architectures", configtree.Strings(s.Architectures)).
		With("CodeSigningConfigArn", configtree.String(s.CodeSigningConfigArn)).
		With("SourceKMSKeyArn", configtree.String(s.SourceKMSKeyArn))
	if s.Tags != nil {
		tree = tree.With("Tags", configtree.StringMap(s.Tags))
	}
	return tree
}

// CodeTree is the body of an update-code request before normalization.
func (s DesiredSpec) CodeTree() configtree.Value {
	return configtree.Map(map[string]configtree.Value{
		"Architectures":   configtree.Strings(s.Architectures),
		"Publish":         configtree.Bool(s.Publish),
		"RevisionId":      configtree.String(s.RevisionID),
		"SourceKMSKeyArn": configtree.String(s.SourceKMSKeyArn),
	})
}

func (s DesiredSpec) packageType() string {
	if s.PackageType == "" {
		return PackageTypeZip
	}
	return s.PackageType
}

func (v *VpcConfig) tree() configtree.Value {
	entries := map[string]configtree.Value{}
	if v.SubnetIDs != nil {
		entries["SubnetIds"] = configtree.Strings(v.SubnetIDs)
	}
	if v.SecurityGroupIDs != nil {
		entries["SecurityGroupIds"] = configtree.Strings(v.SecurityGroupIDs)
	}
	return configtree.Map(entries)
}

func (c *ImageConfig) tree() configtree.Value {
	return configtree.Map(map[string]configtree.Value{
		"Command":          configtree.Strings(c.Command),
		"EntryPoint":       configtree.Strings(c.EntryPoint),
		"WorkingDirectory": configtree.String(c.WorkingDirectory),
	})
}

func (c *LoggingConfig) tree() configtree.Value {
	return configtree.Map(map[string]configtree.Value{
		"LogFormat":           configtree.String(c.LogFormat),
		"ApplicationLogLevel": configtree.String(c.ApplicationLogLevel),
		"SystemLogLevel":      configtree.String(c.SystemLogLevel),
		"LogGroup":            configtree.String(c.LogGroup),
	})
}

func fileSystemTree(configs []FileSystemConfig) configtree.Value {
	items := make([]configtree.Value, 0, len(configs))
	for _, fs := range configs {
		items = append(items, configtree.Map(map[string]configtree.Value{
			"Arn":            configtree.String(fs.Arn),
			"LocalMountPath": configtree.String(fs.LocalMountPath),
		}))
	}
	return configtree.List(items...)
}

func intOrNull(n int) configtree.Value {
	if n == 0 {
		return configtree.Null()
	}
	return configtree.Int(n)
}
