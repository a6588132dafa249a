package constants

import "strings"

// Format classes routed by the pipeline.
const (
	SPREADSHEET = "SPREADSHEET"
	IMAGE       = "IMAGE"
	PDF         = "PDF"
)

// AllowedExtensions holds the default allowed file extensions for batch ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"webp": {},
	"xlsx": {},
	"xls":  {},
	"xlsm": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a (possibly dotted) extension to a format class,
// or "" when the extension is not supported.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "xlsx", "xls", "xlsm":
		return SPREADSHEET
	case "jpg", "jpeg", "png", "webp":
		return IMAGE
	case "pdf":
		return PDF
	default:
		return ""
	}
}

// MimeTypeForExt returns the MIME type sent alongside uploaded documents.
func MimeTypeForExt(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return "application/pdf"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	case "xlsx", "xlsm":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "xls":
		return "application/vnd.ms-excel"
	default:
		return "application/octet-stream"
	}
}
