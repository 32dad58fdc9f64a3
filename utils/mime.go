package utils

import "path/filepath"

const DefaultMimeType = "application/octet-stream"

var mimeTypes = map[string]string{
	".html": "text/html",
	".css":  "text/css",
	".js":   "text/javascript",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
}

// MimeTypeFor returns the Content-Type for a file name. Extensions are
// matched case-sensitively.
func MimeTypeFor(name string) string {
	if t, ok := mimeTypes[filepath.Ext(name)]; ok {
		return t
	}
	return DefaultMimeType
}
