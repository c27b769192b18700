// Package version provides version information for the combogen CLI.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Build-time variables set via ldflags.
var (
	// Version is the CLI version (set via ldflags).
	Version = "v0.0.0-dev"

	// GitCommit is the git commit hash.
	GitCommit = "unknown"

	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)

// reportedModules are the dependencies whose versions shape rendering and
// validation output.
var reportedModules = []string{
	"cuelang.org/go",
	"github.com/gogpu/gg",
	"golang.org/x/image",
	"modernc.org/sqlite",
	"github.com/jackc/pgx/v5",
}

// Module is a dependency and the version the binary was built with.
type Module struct {
	Path    string `json:"path"`
	Version string `json:"version"`
}

// Info contains version information.
type Info struct {
	// Version is the CLI version (set via ldflags).
	Version string `json:"version"`

	// GitCommit is the git commit hash.
	GitCommit string `json:"gitCommit"`

	// BuildDate is the build timestamp.
	BuildDate string `json:"buildDate"`

	// GoVersion is the Go version used to build.
	GoVersion string `json:"goVersion"`

	// Modules lists the reported dependency versions present in the binary.
	Modules []Module `json:"modules,omitempty"`
}

// Get returns the current version information.
func Get() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.Modules = modulesFrom(bi.Deps)
	}
	return info
}

func modulesFrom(deps []*debug.Module) []Module {
	byPath := make(map[string]string, len(deps))
	for _, d := range deps {
		if d.Replace != nil {
			d = d.Replace
		}
		byPath[d.Path] = d.Version
	}

	var out []Module
	for _, path := range reportedModules {
		if v, ok := byPath[path]; ok {
			out = append(out, Module{Path: path, Version: v})
		}
	}
	return out
}

// String returns a human-readable version string.
func (i Info) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "combogen:\n  Version:  %s\n  Build ID: %s/%s\n  Go:       %s",
		i.Version, i.BuildDate, i.GitCommit, i.GoVersion)
	if len(i.Modules) > 0 {
		sb.WriteString("\n\nModules:")
		for _, m := range i.Modules {
			fmt.Fprintf(&sb, "\n  %-24s %s", m.Path, m.Version)
		}
	}
	return sb.String()
}
