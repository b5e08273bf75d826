// Package drawcal holds the release version of the drawcal service.
package drawcal

// Version is the current release of drawcal.
const Version = "0.1.0"

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}
