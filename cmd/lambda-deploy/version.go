package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// buildCommit prefers the linker-injected commit and falls back to the VCS
// revision the toolchain stamped into the binary.
func buildCommit() string {
	if commit != "none" {
		return commit
	}
	info, ok := readBuildInfo()
	if !ok {
		return commit
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && setting.Value != "" {
			return setting.Value
		}
	}
	return commit
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Display build information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "lambda-deploy %s\ncommit: %s\nbuilt: %s\ngo: %s %s/%s\n",
				version, buildCommit(), date, runtime.Version(), runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}

	return cmd
}
