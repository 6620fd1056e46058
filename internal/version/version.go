package version

import "runtime"

// Set via -ldflags at build time.
var (
	AppName   = "symbient"
	Version   = "dev"
	BuildDate = ""
	GoVersion = runtime.Version()
)
