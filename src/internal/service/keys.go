package service

import (
	"net/url"
	"path/filepath"
	"strings"
)

// IsRemote classifies a source reference by its scheme prefix.
func IsRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// DeriveObjectKey computes the storage key for a source reference. Remote
// URLs keep their percent-decoded path; local paths are made relative to the
// project root with forward slashes. The result never starts or ends with a
// slash and never contains empty segments, so the same (sourceRef, prefix)
// pair always maps to the same key.
func DeriveObjectKey(projectRoot, sourceRef, prefix string) string {
	var key string
	if IsRemote(sourceRef) {
		if u, err := url.Parse(sourceRef); err == nil {
			key = u.Path
		} else {
			key = sourceRef
		}
	} else {
		key = sourceRef
		if rel, err := filepath.Rel(projectRoot, sourceRef); err == nil && !strings.HasPrefix(rel, "..") {
			key = rel
		}
		key = filepath.ToSlash(key)
	}

	key = normalizeKey(key)
	if p := strings.Trim(strings.TrimSpace(prefix), "/"); p != "" {
		key = p + "/" + key
	}
	return key
}

// normalizeKey strips leading and trailing slashes and collapses repeats by
// dropping empty segments.
func normalizeKey(key string) string {
	parts := strings.Split(key, "/")
	segments := parts[:0]
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return strings.Join(segments, "/")
}

// ContentTypeFor guesses the MIME type of an uploaded file by extension.
func ContentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gif":
		return "image/gif"
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
