// Package version carries build information stamped in via ldflags:
//
//	go build -ldflags "-X github.com/teranos/jsdoc-builder/version.Version=v1.2.0"
package version

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/teranos/jsdoc-builder/errors"
)

// Set at build time.
var (
	CommitHash = "dev"
	BuildTime  = "unknown"
	Version    = "dev"
)

// Info describes the running binary.
type Info struct {
	Version    string `json:"version"`
	CommitHash string `json:"commit_hash"`
	BuildTime  string `json:"build_time"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

// Get returns the current build information.
func Get() Info {
	return Info{
		Version:    Version,
		CommitHash: CommitHash,
		BuildTime:  BuildTime,
		GoVersion:  runtime.Version(),
		Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// IsRelease reports whether Version parses as a semantic version.
func (i Info) IsRelease() bool {
	_, err := semver.NewVersion(i.Version)
	return err == nil
}

// Semver returns the canonical form of Version (no leading "v"), or the
// raw string for development builds.
func (i Info) Semver() string {
	v, err := semver.NewVersion(i.Version)
	if err != nil {
		return i.Version
	}
	return v.String()
}

func (i Info) String() string {
	if !i.IsRelease() {
		return fmt.Sprintf("jsdoc-builder %s (commit %s, built %s)", i.Version, i.Short(), i.BuildTime)
	}
	return fmt.Sprintf("jsdoc-builder v%s (commit %s, built %s, %s %s)", i.Semver(), i.Short(), i.BuildTime, i.GoVersion, i.Platform)
}

// Short returns the abbreviated commit hash.
func (i Info) Short() string {
	if len(i.CommitHash) >= 7 {
		return i.CommitHash[:7]
	}
	return i.CommitHash
}

// Check reports whether the build satisfies constraint (e.g. ">= 1.2, < 2").
// Development builds satisfy nothing.
func (i Info) Check(constraint string) error {
	c, err := semver.NewConstraint(strings.TrimSpace(constraint))
	if err != nil {
		return errors.Wrapf(err, "invalid version constraint %q", constraint)
	}
	v, err := semver.NewVersion(i.Version)
	if err != nil {
		return errors.WithHint(
			errors.Newf("development build %q cannot satisfy %s", i.Version, constraint),
			"use a tagged release build")
	}
	if !c.Check(v) {
		return errors.Newf("requires jsdoc-builder %s, but running %s", constraint, v.String())
	}
	return nil
}
