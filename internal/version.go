package internal

// Version is the current wordofday release.
const Version = "0.1.0"
