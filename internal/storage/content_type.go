package storage

import (
	"mime"
	"path/filepath"
	"strings"
)

// MIME types of the offer document formats.
const (
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypePDF  = "application/pdf"
)

// documentExtensions maps offer document extensions to MIME types; the mime
// package does not know docx on every platform.
var documentExtensions = map[string]string{
	".docx": ContentTypeDOCX,
	".pdf":  ContentTypePDF,
}

// DetectContentType determines the MIME type of an archived object from an
// explicitly provided type or the key's extension, falling back to a generic
// binary type.
func DetectContentType(providedType, key string) string {
	if providedType != "" {
		return providedType
	}
	ext := strings.ToLower(filepath.Ext(key))
	if contentType, ok := documentExtensions[ext]; ok {
		return contentType
	}
	if contentType := mime.TypeByExtension(ext); contentType != "" {
		return contentType
	}
	return "application/octet-stream"
}

// IsDocument returns true if the content type is an offer document format.
func IsDocument(contentType string) bool {
	baseType := strings.TrimSpace(strings.ToLower(strings.Split(contentType, ";")[0]))
	return baseType == ContentTypeDOCX || baseType == ContentTypePDF
}
