// Package vcs reports the source revision the running binary was built from,
// taken from the build info stamped in by the Go toolchain.
package vcs

import (
	"runtime/debug"
)

func Version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unavailable"
	}

	revision := "unavailable"
	dirty := false

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}

	if dirty {
		revision += "-dirty"
	}

	return revision
}
