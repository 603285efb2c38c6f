package mime

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// extMimeMap refines "text/plain" detections for formats that content
// sniffing alone cannot distinguish.
var extMimeMap = map[string]string{
	".md":   "text/markdown",
	".yaml": "text/yaml",
	".yml":  "text/yaml",
	".csv":  "text/csv",
	".json": "application/json",
	".xml":  "application/xml",
	".sql":  "text/x-sql",
	".toml": "text/x-toml",
}

// Detect returns the MIME type of content, using the filename extension to
// refine plain-text detections.
func Detect(content []byte, filename string) string {
	detected := mimetype.Detect(content).String()

	if strings.HasPrefix(detected, "text/plain") {
		ext := strings.ToLower(filepath.Ext(filename))
		if refined, ok := extMimeMap[ext]; ok {
			return strings.Replace(detected, "text/plain", refined, 1)
		}
	}
	return detected
}
