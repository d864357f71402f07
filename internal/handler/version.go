package handler

import (
	"net/http"
	"runtime"
	"runtime/debug"
)

// VersionInfo describes the running build
type VersionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Revision  string `json:"revision,omitempty"`
	BuiltAt   string `json:"built_at,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
}

// readBuildInfo is swapped in tests
var readBuildInfo = debug.ReadBuildInfo

// buildVersion combines the configured release with the VCS stamp the toolchain embeds
func buildVersion(release string) VersionInfo {
	info := VersionInfo{Version: release, GoVersion: runtime.Version()}
	bi, ok := readBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Revision = s.Value
		case "vcs.time":
			info.BuiltAt = s.Value
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// HandleVersion reports the build; release is the configured VERSION
// @Summary Build version
// @Tags health
// @Produce json
// @Success 200 {object} VersionInfo
// @Router /version [get]
func HandleVersion(release string) http.HandlerFunc {
	info := buildVersion(release)
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, info)
	}
}
