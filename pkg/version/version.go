// Package version reports build information for cardfont.
package version

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"text/tabwriter"
)

var (
	Version   string // Set via ldflags.
	Branch    string
	BuildUser string
	BuildDate string

	Revision  = getRevision()
	GoVersion = runtime.Version()
	GoOS      = runtime.GOOS
	GoArch    = runtime.GOARCH
)

// GetVersion returns the release version, or the VCS revision for
// development builds.
func GetVersion() string {
	if Version != "" {
		return Version
	}

	return Revision
}

// Write prints the build information as aligned key/value lines.
func Write(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	rows := [][2]string{
		{"version", GetVersion()},
		{"revision", Revision},
		{"branch", Branch},
		{"build user", BuildUser},
		{"build date", BuildDate},
		{"go version", GoVersion},
		{"platform", GoOS + "/" + GoArch},
	}

	for _, row := range rows {
		if row[1] == "" {
			continue
		}

		_, err := fmt.Fprintf(tw, "%s:\t%s\n", row[0], row[1])
		if err != nil {
			return fmt.Errorf("write version: %w", err)
		}
	}

	err := tw.Flush()
	if err != nil {
		return fmt.Errorf("write version: %w", err)
	}

	return nil
}

func getRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	var rev, modified string
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value[:min(7, len(s.Value))]
		case "vcs.modified":
			modified = s.Value
		}
	}

	if rev == "" {
		rev = "unknown"
	}
	if modified == "true" {
		rev += "-dirty"
	}

	return rev
}
