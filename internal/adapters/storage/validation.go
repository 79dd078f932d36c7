package storage

import (
	"fmt"
	"strings"
)

// ImageContentTypes are the MIME types accepted for avatars.
var ImageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ValidateImage checks content type and size of an image upload.
func ValidateImage(contentType string, sizeBytes, maxSize int64) error {
	normalized := strings.TrimSpace(strings.ToLower(strings.Split(contentType, ";")[0]))
	if !ImageContentTypes[normalized] {
		return fmt.Errorf("content type %q is not allowed", contentType)
	}
	if sizeBytes <= 0 {
		return fmt.Errorf("file size must be greater than 0")
	}
	if maxSize > 0 && sizeBytes > maxSize {
		return fmt.Errorf("file size %d bytes exceeds maximum allowed size of %d bytes", sizeBytes, maxSize)
	}
	return nil
}
