package version

import (
	"fmt"
	"runtime"
)

// Build information, set via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info describes the running binary
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Date      string `json:"date" yaml:"date"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// GetVersion returns the current version
func GetVersion() string {
	if Version == "" {
		return "dev"
	}
	return Version
}

// GetInfo returns the build information of the running binary
func GetInfo() Info {
	return Info{
		Version:   GetVersion(),
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// GetFullVersion returns the full version line printed by `pygrade version`
func GetFullVersion() string {
	info := GetInfo()
	return fmt.Sprintf("%s (commit: %s, built: %s, %s, %s)",
		info.Version, info.Commit, info.Date, info.GoVersion, info.Platform)
}
