package sessionlock

// Version is the release of this module, reported by sessionctl.
const Version = "0.3.0"
