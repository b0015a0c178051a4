package main

import (
	"fmt"
	"runtime"
	rtdebug "runtime/debug"

	"github.com/spf13/cobra"
)

// buildInfo captures what the Go build stamped into the binary. Version
// comes from the module version, the rest from the embedded VCS settings
// when the binary was built inside a checkout.
type buildInfo struct {
	Version   string
	Commit    string
	BuildTime string
	Dirty     bool
	GoVersion string
	Platform  string
}

func resolveBuildInfo() buildInfo {
	bi := buildInfo{
		Version:   "dev",
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	info, ok := rtdebug.ReadBuildInfo()
	if !ok {
		return bi
	}

	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		bi.Version = info.Main.Version
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			bi.Commit = setting.Value
		case "vcs.time":
			bi.BuildTime = setting.Value
		case "vcs.modified":
			bi.Dirty = setting.Value == "true"
		}
	}

	return bi
}

func (bi buildInfo) render() string {
	commit := bi.Commit
	if commit == "" {
		commit = "unknown"
	} else if len(commit) > 12 {
		commit = commit[:12]
	}
	if bi.Dirty {
		commit += "-dirty"
	}

	out := fmt.Sprintf("treekit %s (%s)\n", bi.Version, commit)
	if bi.BuildTime != "" {
		out += fmt.Sprintf("  built:    %s\n", bi.BuildTime)
	}
	out += fmt.Sprintf("  go:       %s\n", bi.GoVersion)
	out += fmt.Sprintf("  platform: %s\n", bi.Platform)

	return out
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Print(resolveBuildInfo().render())
		},
	}
}
