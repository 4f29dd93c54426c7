package main

import (
	"github.com/spf13/cobra"

	cfgpkg "github.com/alexisbeaulieu97/lambda-deploy/internal/config"
	configinfra "github.com/alexisbeaulieu97/lambda-deploy/internal/infrastructure/config"
)

// functionFlags are the document fields that can be set or overridden from
// the command line.
type functionFlags struct {
	functionName     string
	region           string
	codeArtifactsDir string
	role             string
	runtime          string
	handler          string
	description      string
	memorySize       int
	timeout          int
	architectures    []string
	publish          bool
	dryRun           bool
	waitMinutes      int
	maxAttempts      int
	assumeRoleArn    string
}

func (f *functionFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.functionName, "function-name", "", "Name of the Lambda function")
	fs.StringVar(&f.region, "region", "", "AWS region of the function")
	fs.StringVar(&f.codeArtifactsDir, "code-artifacts-dir", "", "Directory or .zip file holding the function code")
	fs.StringVar(&f.role, "role", "", "Execution role ARN, required when creating a function")
	fs.StringVar(&f.runtime, "runtime", "", "Function runtime")
	fs.StringVar(&f.handler, "handler", "", "Function handler")
	fs.StringVar(&f.description, "description", "", "Function description")
	fs.IntVar(&f.memorySize, "memory-size", 0, "Memory in MB")
	fs.IntVar(&f.timeout, "timeout", 0, "Timeout in seconds")
	fs.StringSliceVar(&f.architectures, "architectures", nil, "Instruction set architectures")
	fs.BoolVar(&f.publish, "publish", true, "Publish a new version after the code update")
	fs.BoolVar(&f.dryRun, "dry-run", false, "Validate the update without applying it")
	fs.IntVar(&f.waitMinutes, "wait-minutes", 0, "Maximum minutes to wait for a configuration update")
	fs.IntVar(&f.maxAttempts, "max-attempts", 0, "Maximum SDK attempts per request")
	fs.StringVar(&f.assumeRoleArn, "assume-role-arn", "", "Role to assume before calling Lambda")
}

// overrides turns every flag the user set into a document override. Flags
// left at their defaults never replace document values.
func (f *functionFlags) overrides(cmd *cobra.Command) []configinfra.Override {
	changed := func(name string) bool {
		flag := cmd.Flags().Lookup(name)
		return flag != nil && flag.Changed
	}

	var out []configinfra.Override
	add := func(name string, apply configinfra.Override) {
		if changed(name) {
			out = append(out, apply)
		}
	}

	add("function-name", func(d *cfgpkg.Document) { d.Function.Name = f.functionName })
	add("region", func(d *cfgpkg.Document) { d.Function.Region = f.region })
	add("code-artifacts-dir", func(d *cfgpkg.Document) { d.Function.CodeArtifactsDir = f.codeArtifactsDir })
	add("role", func(d *cfgpkg.Document) { d.Function.Role = f.role })
	add("runtime", func(d *cfgpkg.Document) { d.Function.Runtime = f.runtime })
	add("handler", func(d *cfgpkg.Document) { d.Function.Handler = f.handler })
	add("description", func(d *cfgpkg.Document) { d.Function.Description = f.description })
	add("memory-size", func(d *cfgpkg.Document) {
		memory := f.memorySize
		d.Function.MemorySize = &memory
	})
	add("timeout", func(d *cfgpkg.Document) { d.Function.Timeout = f.timeout })
	add("architectures", func(d *cfgpkg.Document) {
		d.Function.Architectures = append([]string(nil), f.architectures...)
	})
	add("publish", func(d *cfgpkg.Document) {
		publish := f.publish
		d.Function.Publish = &publish
	})
	add("dry-run", func(d *cfgpkg.Document) { d.Settings.DryRun = f.dryRun })
	add("wait-minutes", func(d *cfgpkg.Document) { d.Settings.WaitMinutes = f.waitMinutes })
	add("max-attempts", func(d *cfgpkg.Document) { d.Settings.MaxAttempts = f.maxAttempts })
	add("assume-role-arn", func(d *cfgpkg.Document) { d.Settings.AssumeRoleArn = f.assumeRoleArn })

	return out
}

// settingsOverrides applies the persistent root flags to the document.
func settingsOverrides(cmd *cobra.Command, root *rootFlags) []configinfra.Override {
	var out []configinfra.Override
	if flag := cmd.Flags().Lookup("verbose"); flag != nil && flag.Changed {
		verbose := root.verbose
		out = append(out, func(d *cfgpkg.Document) { d.Settings.Verbose = verbose })
	}
	if flag := cmd.Flags().Lookup("log-format"); flag != nil && flag.Changed {
		format := root.logFormat
		out = append(out, func(d *cfgpkg.Document) { d.Settings.LogFormat = format })
	}
	return out
}
