package fs

// Version of driveclone containing the complete version string
var Version = "v0.1.0-DEV"
