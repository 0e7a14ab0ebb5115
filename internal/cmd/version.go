// Package cmd holds build metadata shared by the CLI and the daemon.
package cmd

var version = "dev" // Set at build time using -ldflags

// Version returns the build version of the binary.
func Version() string {
	return version
}
