package version

// Version is the current safeher release version
const Version = "0.1.0"
