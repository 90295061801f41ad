// nationportal/utils/utils.go
package utils

import (
	"encoding/base64"
	"log/slog"
	"os"
	"path/filepath"
)

// PlaceholderPath is served when an emblem field is empty.
const PlaceholderPath = "/static/placeholder.png"

// CreatePlaceholderImage generates the default emblem placeholder if one doesn't exist.
func CreatePlaceholderImage(staticDir string, logger *slog.Logger) {
	placeholderPath := filepath.Join(staticDir, "placeholder.png")
	if _, err := os.Stat(placeholderPath); err == nil {
		return // File already exists
	}

	// 1x1 grey PNG
	const placeholderBase64 = `iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mN8/x8AAuMB8DtXNJsAAAAASUVORK5CYII=`
	data, err := base64.StdEncoding.DecodeString(placeholderBase64)
	if err != nil {
		logger.Error("Error decoding placeholder image", "error", err)
		return
	}
	if err := os.MkdirAll(staticDir, 0755); err != nil {
		logger.Error("Error creating static directory", "dir", staticDir, "error", err)
		return
	}
	if err := os.WriteFile(placeholderPath, data, 0644); err != nil {
		logger.Error("Error writing placeholder image", "error", err)
	} else {
		logger.Info("Created missing placeholder.png", "dir", staticDir)
	}
}
