// internal/models/file_test.go
package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyFileType(t *testing.T) {
	cases := map[string]FileType{
		"scan.stl":         FileTypeSTL,
		"model.OBJ":        FileTypeSTL,
		"mesh.ply":         FileTypeSTL,
		"invoice.pdf":      FileTypePDF,
		"photo.JPG":        FileTypeImage,
		"shade.png":        FileTypeImage,
		"notes.docx":       FileTypeDocument,
		"readme.txt":       FileTypeDocument,
		"archive.zip":      FileTypeOther,
		"no_extension":     FileTypeOther,
		"weird.stl.backup": FileTypeOther,
	}

	for name, want := range cases {
		assert.Equal(t, want, ClassifyFileType(name), "%s", name)
	}
}

func TestFileTokenValidation(t *testing.T) {
	future := time.Now().Add(time.Hour)
	file := &File{AccessToken: "secret-token", TokenExpiresAt: &future}

	assert.True(t, file.TokenValid("secret-token"))
	assert.False(t, file.TokenValid("wrong"))
	assert.False(t, file.TokenValid(""))

	past := time.Now().Add(-time.Hour)
	file.TokenExpiresAt = &past
	assert.False(t, file.TokenValid("secret-token"))
}

func TestFileIsAccessible(t *testing.T) {
	public := &File{IsPublic: true}
	assert.True(t, public.IsAccessible())

	future := time.Now().Add(time.Hour)
	private := &File{TokenExpiresAt: &future}
	assert.True(t, private.IsAccessible())

	past := time.Now().Add(-time.Hour)
	expired := &File{TokenExpiresAt: &past}
	assert.False(t, expired.IsAccessible())
}
