// Package version holds build version information.
package version

// Version is set at build time via -ldflags
var Version = "dev"

// Info returns a human-readable version string
func Info() string {
	return "choresheet " + Version
}
