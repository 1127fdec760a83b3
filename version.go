package goprobe

// Version information for the goprobe instrumentation toolkit
const (
	// Version is the current toolkit version
	Version = "development"

	// BuildDate is set during build time
	BuildDate = "development"

	// GitCommit is set during build time
	GitCommit = "unknown"
)
