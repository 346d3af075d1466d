package version

// Version is overridden at link time with -ldflags "-X kiln/internal/version.Version=...".
var Version = "dev"
