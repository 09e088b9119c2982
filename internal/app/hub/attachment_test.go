package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pingchat/internal/pkg/errs"
)

func TestValidateFileSize(t *testing.T) {
	assert.Nil(t, ValidateFileSize(1))
	assert.Nil(t, ValidateFileSize(MaxAttachmentSize))

	err := ValidateFileSize(0)
	require.NotNil(t, err)
	assert.Equal(t, errs.ErrInvalidParams, err.Code)

	err = ValidateFileSize(MaxAttachmentSize + 1)
	require.NotNil(t, err)
	assert.Equal(t, errs.ErrFileSizeTooLarge, err.Code)
}

func TestValidateFileType(t *testing.T) {
	assert.Nil(t, ValidateFileType("cat.png", "image/png"))
	assert.Nil(t, ValidateFileType("photo.JPG", "image/jpeg"))
	assert.Nil(t, ValidateFileType("anim.gif", "IMAGE/GIF"))

	// Disallowed MIME type.
	assert.NotNil(t, ValidateFileType("doc.pdf", "application/pdf"))

	// Extension and MIME type disagree.
	assert.NotNil(t, ValidateFileType("cat.png", "image/jpeg"))

	// Missing or bogus extension.
	assert.NotNil(t, ValidateFileType("noext", "image/png"))
	assert.NotNil(t, ValidateFileType("trailingdot.", "image/png"))
}
