// Package version reports which build of notepad is running.
package version

import (
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

const defaultModule = "pkt.systems/notepad"

// buildVersion is set via -ldflags "-X pkt.systems/notepad/internal/version.buildVersion=...".
var buildVersion = ""

// Info describes the running binary.
type Info struct {
	Module   string
	Version  string
	Revision string
	Modified bool
	Go       string
}

// Read collects build information for the running binary.
func Read() Info {
	info, _ := debug.ReadBuildInfo()
	return fromBuildInfo(info, buildVersion)
}

// Current returns the version string of the running binary.
func Current() string {
	return Read().Version
}

// About returns a one-line description of the running binary.
func About() string {
	return Read().String()
}

func (i Info) String() string {
	var b strings.Builder
	b.WriteString(i.Module + " " + i.Version + " (")
	if i.Revision != "" {
		b.WriteString("rev " + shortRevision(i.Revision))
		if i.Modified {
			b.WriteString(" modified")
		}
		b.WriteString(", ")
	}
	b.WriteString(i.Go + " " + runtime.GOOS + "/" + runtime.GOARCH + ")")
	return b.String()
}

func fromBuildInfo(info *debug.BuildInfo, override string) Info {
	out := Info{Module: defaultModule, Go: runtime.Version()}
	var vcsTime time.Time
	if info != nil {
		if path := strings.TrimSpace(info.Main.Path); path != "" {
			out.Module = path
		}
		if info.GoVersion != "" {
			out.Go = info.GoVersion
		}
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				out.Revision = setting.Value
			case "vcs.time":
				vcsTime, _ = time.Parse(time.RFC3339, setting.Value)
			case "vcs.modified":
				out.Modified = setting.Value == "true"
			}
		}
	}
	switch {
	case strings.TrimSpace(override) != "":
		out.Version = strings.TrimSpace(override)
	case info != nil && info.Main.Version != "" && info.Main.Version != "(devel)":
		out.Version = info.Main.Version
	case out.Revision != "" && !vcsTime.IsZero():
		out.Version = "v0.0.0-" + vcsTime.UTC().Format("20060102150405") + "-" + shortRevision(out.Revision)
	default:
		out.Version = "v0.0.0-unknown"
	}
	out.Version = strings.TrimSuffix(out.Version, "+dirty")
	return out
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
