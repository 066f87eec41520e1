package moderation

import (
	"strings"

	"github.com/andreyxaxa/File-Moderator/internal/entity"
)

var (
	imageExtensions = map[string]struct{}{
		".jpg":  {},
		".jpeg": {},
		".png":  {},
		".gif":  {},
		".webp": {},
	}

	textExtensions = map[string]struct{}{
		".txt":  {},
		".md":   {},
		".json": {},
		".csv":  {},
	}
)

// Classify maps a declared content type and a lower-cased extension to a
// category. The image check runs first.
func Classify(contentType, extension string) entity.Category {
	if _, ok := imageExtensions[extension]; ok || strings.HasPrefix(contentType, "image/") {
		return entity.CategoryImage
	}

	if _, ok := textExtensions[extension]; ok || strings.HasPrefix(contentType, "text/") {
		return entity.CategoryText
	}

	return entity.CategoryUnsupported
}
