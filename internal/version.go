// Package internal holds the build information shared by the akd executables.
package internal

// Version is the version of the akd executables.
const Version = "0.1.0"
