package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"pingchat/internal/app/hub"
	"pingchat/internal/pkg/errs"
	"pingchat/internal/pkg/req"
	"pingchat/internal/pkg/resp"
)

// PresignUploadInput defines the JSON input structure for generating an upload URL.
type PresignUploadInput struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	FileSize int64  `json:"fileSize"`
}

// HandlePresignUploadURL generates a time-limited, pre-signed URL for uploading
// an attachment. The returned key lives under the attachment namespace; the
// client uploads directly against the URL and then shares the key over the
// message transport.
func HandlePresignUploadURL(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.StorageService == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			return
		}

		var input PresignUploadInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if err := hub.ValidateFileSize(input.FileSize); err != nil {
			resp.RespondError(w, r, err)
			return
		}

		if err := hub.ValidateFileType(input.FileName, input.MimeType); err != nil {
			resp.RespondError(w, r, err)
			return
		}

		fileExt := strings.ToLower(filepath.Ext(input.FileName))
		fileKey := fmt.Sprintf("%s%s%s", hub.AttachmentKeyPrefix, uuid.New().String(), fileExt)

		url, err := deps.StorageService.PresignUpload(
			r.Context(),
			fileKey,
			input.MimeType,
			input.FileSize,
			hub.PresignedURLDuration,
		)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			return
		}

		data := map[string]any{
			"presignedUrl": url,
			"fileKey":      fileKey,
			"fileName":     input.FileName,
		}
		resp.RespondSuccess(w, r, data)
	}
}

// HandlePresignDownloadURL generates a time-limited, pre-signed URL for
// downloading an attachment key and redirects to it.
func HandlePresignDownloadURL(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.StorageService == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			return
		}

		fileKey := r.URL.Query().Get("k")
		if fileKey == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if !strings.HasPrefix(fileKey, hub.AttachmentKeyPrefix) {
			resp.RespondError(w, r, errs.NewError(errs.ErrAttachmentKeyInvalid))
			return
		}

		url, err := deps.StorageService.PresignDownload(
			r.Context(),
			fileKey,
			hub.PresignedURLDuration,
		)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			return
		}

		http.Redirect(w, r, url, http.StatusFound)
	}
}
