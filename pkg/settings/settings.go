// Package settings holds build metadata and the per-invocation settings of
// the paneledit CLI.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "paneledit"

// VersionInformation is populated at build time via ldflags.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build.
type VersionInfo struct {
	Commit       string `json:"commit" yaml:"commit"`
	BuildVersion string `json:"version" yaml:"version"`
	BuildTime    string `json:"buildTime" yaml:"buildTime"`
}

// Window selects a slice of list output.
type Window struct {
	Limit  int
	Offset int
	Tail   int
}

// Run holds the settings of a single invocation.
type Run struct {
	MinLogLevel  int8
	ConfigFile   string
	OutputFormat string
	Expression   string
	NoColor      bool
	Window       Window
}

// NewCliParams returns the defaults used before flags are applied.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel:  0,
		OutputFormat: "yaml",
	}
}
