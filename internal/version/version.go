// Package version carries the build-time version stamp.
package version

// Version is set via ldflags on release builds:
// go build -ldflags "-X git.home.luguber.info/inful/sitebake/internal/version.Version=v0.3.0".
var Version = "dev"
