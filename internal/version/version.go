// Package version carries build metadata stamped in with
//
//	-ldflags "-X github.com/Skufu/refractplan/internal/version.Version=v1.2.0
//	          -X github.com/Skufu/refractplan/internal/version.Commit=$(git rev-parse HEAD)
//	          -X github.com/Skufu/refractplan/internal/version.Date=$(date -u +%Y-%m-%d)"
package version

import (
	"runtime"
	"strings"
)

var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

const shortCommit = 7

// Info describes the build on one line, leaving out metadata that was not
// stamped in.
func Info() string {
	parts := []string{"refractplan", Version}
	if Commit != "" {
		c := Commit
		if len(c) > shortCommit {
			c = c[:shortCommit]
		}
		parts = append(parts, "commit "+c)
	}
	if Date != "" {
		parts = append(parts, "built "+Date)
	}
	parts = append(parts, runtime.Version())
	return strings.Join(parts, " ")
}

// Short is the bare version.
func Short() string {
	return Version
}
