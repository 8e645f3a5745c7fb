package config

// Linker-injected build metadata, e.g.
//
//	go build -ldflags "-X heaterwatch/internal/config.version=1.4.0 \
//	    -X heaterwatch/internal/config.commit=$(git rev-parse --short HEAD)"
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// NewBuildInfo returns the linker-injected build metadata.
func NewBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
	}
}
