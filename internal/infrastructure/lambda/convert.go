package lambda

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"github.com/alexisbeaulieu97/lambda-deploy/internal/domain/configtree"
	"github.com/alexisbeaulieu97/lambda-deploy/internal/domain/function"
)

func createInput(req function.CreateRequest) *sdk.CreateFunctionInput {
	body := req.Body
	return &sdk.CreateFunctionInput{
		FunctionName: aws.String(req.Name),
		Code: &types.FunctionCode{
			ZipFile:         req.ZipFile,
			SourceKMSKeyArn: stringField(body, "SourceKMSKeyArn"),
		},
		Role:                 stringField(body, "Role"),
		Handler:              stringField(body, "Handler"),
		Runtime:              types.Runtime(aws.ToString(stringField(body, "Runtime"))),
		Description:          stringField(body, "Description"),
		Timeout:              int32Field(body, "Timeout"),
		MemorySize:           int32Field(body, "MemorySize"),
		KMSKeyArn:            stringField(body, "KMSKeyArn"),
		EphemeralStorage:     ephemeralStorage(body),
		Architectures:        architectures(body),
		PackageType:          types.PackageType(aws.ToString(stringField(body, "PackageType"))),
		Publish:              boolField(body, "Publish"),
		CodeSigningConfigArn: stringField(body, "CodeSigningConfigArn"),
		Environment:          environment(body),
		VpcConfig:            vpcConfig(body),
		DeadLetterConfig:     deadLetterConfig(body),
		TracingConfig:        tracingConfig(body),
		Layers:               stringsField(body, "Layers"),
		FileSystemConfigs:    fileSystemConfigs(body),
		ImageConfig:          imageConfig(body),
		SnapStart:            snapStart(body),
		LoggingConfig:        loggingConfig(body),
		Tags:                 stringMapField(body, "Tags"),
	}
}

func updateConfigurationInput(req function.UpdateConfigurationRequest) *sdk.UpdateFunctionConfigurationInput {
	body := req.Body
	return &sdk.UpdateFunctionConfigurationInput{
		FunctionName:      aws.String(req.Name),
		Role:              stringField(body, "Role"),
		Handler:           stringField(body, "Handler"),
		Runtime:           types.Runtime(aws.ToString(stringField(body, "Runtime"))),
		Description:       stringField(body, "Description"),
		Timeout:           int32Field(body, "Timeout"),
		MemorySize:        int32Field(body, "MemorySize"),
		KMSKeyArn:         stringField(body, "KMSKeyArn"),
		EphemeralStorage:  ephemeralStorage(body),
		Environment:       environment(body),
		VpcConfig:         vpcConfig(body),
		DeadLetterConfig:  deadLetterConfig(body),
		TracingConfig:     tracingConfig(body),
		Layers:            stringsField(body, "Layers"),
		FileSystemConfigs: fileSystemConfigs(body),
		ImageConfig:       imageConfig(body),
		SnapStart:         snapStart(body),
		LoggingConfig:     loggingConfig(body),
	}
}

func updateCodeInput(req function.UpdateCodeRequest) *sdk.UpdateFunctionCodeInput {
	body := req.Body
	return &sdk.UpdateFunctionCodeInput{
		FunctionName:    aws.String(req.Name),
		ZipFile:         req.ZipFile,
		DryRun:          req.DryRun,
		Publish:         boolField(body, "Publish"),
		Architectures:   architectures(body),
		RevisionId:      stringField(body, "RevisionId"),
		SourceKMSKeyArn: stringField(body, "SourceKMSKeyArn"),
	}
}

// remoteTree projects a configuration response onto the fields a desired
// spec can express, keyed by API names.
func remoteTree(out *sdk.GetFunctionConfigurationOutput) configtree.Value {
	entries := map[string]configtree.Value{
		"Role":        configtree.String(aws.ToString(out.Role)),
		"Handler":     configtree.String(aws.ToString(out.Handler)),
		"Description": configtree.String(aws.ToString(out.Description)),
		"Runtime":     configtree.String(string(out.Runtime)),
		"KMSKeyArn":   configtree.String(aws.ToString(out.KMSKeyArn)),
	}
	if out.Timeout != nil {
		entries["Timeout"] = configtree.Int(int(*out.Timeout))
	}
	if out.MemorySize != nil {
		entries["MemorySize"] = configtree.Int(int(*out.MemorySize))
	}
	if out.EphemeralStorage != nil && out.EphemeralStorage.Size != nil {
		entries["EphemeralStorage"] = configtree.Map(map[string]configtree.Value{
			"Size": configtree.Int(int(*out.EphemeralStorage.Size)),
		})
	}
	if out.VpcConfig != nil {
		entries["VpcConfig"] = configtree.Map(map[string]configtree.Value{
			"SubnetIds":        configtree.Strings(out.VpcConfig.SubnetIds),
			"SecurityGroupIds": configtree.Strings(out.VpcConfig.SecurityGroupIds),
		})
	}
	if out.Environment != nil {
		entries["Environment"] = configtree.Map(map[string]configtree.Value{
			"Variables": configtree.StringMap(out.Environment.Variables),
		})
	}
	if out.DeadLetterConfig != nil {
		entries["DeadLetterConfig"] = configtree.Map(map[string]configtree.Value{
			"TargetArn": configtree.String(aws.ToString(out.DeadLetterConfig.TargetArn)),
		})
	}
	if out.TracingConfig != nil {
		entries["TracingConfig"] = configtree.Map(map[string]configtree.Value{
			"Mode": configtree.String(string(out.TracingConfig.Mode)),
		})
	}
	if len(out.Layers) > 0 {
		arns := make([]string, 0, len(out.Layers))
		for _, layer := range out.Layers {
			arns = append(arns, aws.ToString(layer.Arn))
		}
		entries["Layers"] = configtree.Strings(arns)
	}
	if len(out.FileSystemConfigs) > 0 {
		items := make([]configtree.Value, 0, len(out.FileSystemConfigs))
		for _, fs := range out.FileSystemConfigs {
			items = append(items, configtree.Map(map[string]configtree.Value{
				"Arn":            configtree.String(aws.ToString(fs.Arn)),
				"LocalMountPath": configtree.String(aws.ToString(fs.LocalMountPath)),
			}))
		}
		entries["FileSystemConfigs"] = configtree.List(items...)
	}
	if out.ImageConfigResponse != nil && out.ImageConfigResponse.ImageConfig != nil {
		ic := out.ImageConfigResponse.ImageConfig
		entries["ImageConfig"] = configtree.Map(map[string]configtree.Value{
			"Command":          configtree.Strings(ic.Command),
			"EntryPoint":       configtree.Strings(ic.EntryPoint),
			"WorkingDirectory": configtree.String(aws.ToString(ic.WorkingDirectory)),
		})
	}
	if out.SnapStart != nil {
		entries["SnapStart"] = configtree.Map(map[string]configtree.Value{
			"ApplyOn": configtree.String(string(out.SnapStart.ApplyOn)),
		})
	}
	if out.LoggingConfig != nil {
		lc := out.LoggingConfig
		entries["LoggingConfig"] = configtree.Map(map[string]configtree.Value{
			"LogFormat":           configtree.String(string(lc.LogFormat)),
			"ApplicationLogLevel": configtree.String(string(lc.ApplicationLogLevel)),
			"SystemLogLevel":      configtree.String(string(lc.SystemLogLevel)),
			"LogGroup":            configtree.String(aws.ToString(lc.LogGroup)),
		})
	}
	return configtree.Map(entries)
}

func stringField(body configtree.Value, key string) *string {
	v, ok := body.Get(key)
	if !ok {
		return nil
	}
	s, ok := v.AsString()
	if !ok {
		return nil
	}
	return aws.String(s)
}

func int32Field(body configtree.Value, key string) *int32 {
	v, ok := body.Get(key)
	if !ok {
		return nil
	}
	n, ok := v.AsInt32()
	if !ok {
		return nil
	}
	return aws.Int32(n)
}

func boolField(body configtree.Value, key string) bool {
	v, ok := body.Get(key)
	if !ok {
		return false
	}
	b, _ := v.AsBool()
	return b
}

// stringsField returns nil for an absent key and a non-nil slice otherwise,
// so explicit empty lists still reach the wire.
func stringsField(body configtree.Value, key string) []string {
	v, ok := body.Get(key)
	if !ok || v.Kind() != configtree.KindList {
		return nil
	}
	return v.StringSlice()
}

func stringMapField(body configtree.Value, key string) map[string]string {
	v, ok := body.Get(key)
	if !ok {
		return nil
	}
	return v.StringMapping()
}

func block(body configtree.Value, key string) (configtree.Value, bool) {
	v, ok := body.Get(key)
	if !ok || v.Kind() != configtree.KindMap {
		return configtree.Null(), false
	}
	return v, true
}

func architectures(body configtree.Value) []types.Architecture {
	names := stringsField(body, "Architectures")
	if names == nil {
		return nil
	}
	out := make([]types.Architecture, 0, len(names))
	for _, name := range names {
		out = append(out, types.Architecture(name))
	}
	return out
}

func ephemeralStorage(body configtree.Value) *types.EphemeralStorage {
	b, ok := block(body, "EphemeralStorage")
	if !ok {
		return nil
	}
	size := int32Field(b, "Size")
	if size == nil {
		return nil
	}
	return &types.EphemeralStorage{Size: size}
}

func environment(body configtree.Value) *types.Environment {
	b, ok := block(body, "Environment")
	if !ok {
		return nil
	}
	return &types.Environment{Variables: stringMapField(b, "Variables")}
}

func vpcConfig(body configtree.Value) *types.VpcConfig {
	b, ok := block(body, "VpcConfig")
	if !ok {
		return nil
	}
	return &types.VpcConfig{
		SubnetIds:        stringsField(b, "SubnetIds"),
		SecurityGroupIds: stringsField(b, "SecurityGroupIds"),
	}
}

func deadLetterConfig(body configtree.Value) *types.DeadLetterConfig {
	b, ok := block(body, "DeadLetterConfig")
	if !ok {
		return nil
	}
	return &types.DeadLetterConfig{TargetArn: stringField(b, "TargetArn")}
}

func tracingConfig(body configtree.Value) *types.TracingConfig {
	b, ok := block(body, "TracingConfig")
	if !ok {
		return nil
	}
	return &types.TracingConfig{Mode: types.TracingMode(aws.ToString(stringField(b, "Mode")))}
}

func fileSystemConfigs(body configtree.Value) []types.FileSystemConfig {
	v, ok := body.Get("FileSystemConfigs")
	if !ok || v.Kind() != configtree.KindList {
		return nil
	}
	items := v.Items()
	out := make([]types.FileSystemConfig, 0, len(items))
	for _, item := range items {
		out = append(out, types.FileSystemConfig{
			Arn:            stringField(item, "Arn"),
			LocalMountPath: stringField(item, "LocalMountPath"),
		})
	}
	return out
}

func imageConfig(body configtree.Value) *types.ImageConfig {
	b, ok := block(body, "ImageConfig")
	if !ok {
		return nil
	}
	return &types.ImageConfig{
		Command:          stringsField(b, "Command"),
		EntryPoint:       stringsField(b, "EntryPoint"),
		WorkingDirectory: stringField(b, "WorkingDirectory"),
	}
}

func snapStart(body configtree.Value) *types.SnapStart {
	b, ok := block(body, "SnapStart")
	if !ok {
		return nil
	}
	return &types.SnapStart{ApplyOn: types.SnapStartApplyOn(aws.ToString(stringField(b, "ApplyOn")))}
}

func loggingConfig(body configtree.Value) *types.LoggingConfig {
	b, ok := block(body, "LoggingConfig")
	if !ok {
		return nil
	}
	return &types.LoggingConfig{
		LogFormat:           types.LogFormat(aws.ToString(stringField(b, "LogFormat"))),
		ApplicationLogLevel: types.ApplicationLogLevel(aws.ToString(stringField(b, "ApplicationLogLevel"))),
		SystemLogLevel:      types.SystemLogLevel(aws.ToString(stringField(b, "SystemLogLevel"))),
		LogGroup:            stringField(b, "LogGroup"),
	}
}
