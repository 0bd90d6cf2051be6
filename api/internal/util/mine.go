package util

import (
	"net/http"
	"path"
	"strings"
)

// MimeByExt maps an image object name to its MIME type. Unknown extensions
// fall back to image/jpeg, which is what the model endpoints expect for photos.
func MimeByExt(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "image/jpeg"
	}
}

func SniffMimeHTTP(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFF && b[1] == 0xD8 {
		return "image/jpeg"
	}
	if len(b) >= 8 &&
		b[0] == 0x89 && b[1] == 0x50 && b[2] == 0x4E && b[3] == 0x47 &&
		b[4] == 0x0D && b[5] == 0x0A && b[6] == 0x1A && b[7] == 0x0A {
		return "image/png"
	}
	return "application/octet-stream"
}

// PickMIME берём MIME по содержимому, если оно узнаваемо, иначе явный.
func PickMIME(explicit string, data []byte) string {
	if sniffed := SniffMimeHTTP(data); sniffed != "application/octet-stream" {
		return sniffed
	}
	if exp := strings.TrimSpace(explicit); exp != "" {
		return exp
	}
	if len(data) > 0 {
		return http.DetectContentType(data)
	}
	return "image/jpeg"
}
