package hub

import (
	"path/filepath"
	"strings"
	"time"

	"pingchat/internal/pkg/errs"
)

const (
	// MaxAttachmentSize is the maximum allowed attachment size in bytes (5 MB).
	MaxAttachmentSize = 5 * 1024 * 1024

	// MaxAttachmentsCount is the maximum number of attachments per message.
	MaxAttachmentsCount = 3

	// MaxContentBytes is the maximum allowed size of text message content.
	MaxContentBytes = 5000

	// AttachmentKeyPrefix is the storage namespace all attachment keys must live under.
	AttachmentKeyPrefix = "attachments/"

	// PresignedURLDuration is how long a generated upload or download URL stays valid.
	PresignedURLDuration = 5 * time.Minute
)

// AllowedMIMETypes is the set of permitted attachment MIME types.
var AllowedMIMETypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// ExtToMIME maps file extensions to their expected MIME types.
var ExtToMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// Attachment references an uploaded file shared into a room.
type Attachment struct {
	Key      string `json:"fileKey"`
	Name     string `json:"fileName"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"fileSize"`
}

// ValidateFileSize checks that the declared file size is positive and within limits.
func ValidateFileSize(fileSize int64) *errs.CustomError {
	if fileSize <= 0 {
		return errs.NewError(errs.ErrInvalidParams)
	}

	if fileSize > MaxAttachmentSize {
		return errs.NewError(errs.ErrFileSizeTooLarge)
	}

	return nil
}

// ValidateFileType checks that the file name extension and the declared MIME
// type agree and are both allowed.
func ValidateFileType(fileName, mimeType string) *errs.CustomError {
	lowerMimeType := strings.ToLower(mimeType)

	if _, ok := AllowedMIMETypes[lowerMimeType]; !ok {
		return errs.NewError(errs.ErrInvalidParams)
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if len(ext) < 2 {
		return errs.NewError(errs.ErrInvalidParams)
	}

	expectedMIME, ok := ExtToMIME[ext]
	if !ok || expectedMIME != lowerMimeType {
		return errs.NewError(errs.ErrInvalidParams)
	}

	return nil
}
