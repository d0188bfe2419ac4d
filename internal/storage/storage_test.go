package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_UploadDownloadDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	path, size, err := s.Upload(ctx, FolderDocuments, "Scope.PDF", "application/pdf", strings.NewReader("%PDF-1.7 content"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "documents/"))
	assert.True(t, strings.HasSuffix(path, ".pdf"))
	assert.EqualValues(t, 16, size)

	rc, err := s.Download(ctx, path)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 content", string(data))

	require.NoError(t, s.Delete(ctx, path))
	require.NoError(t, s.Delete(ctx, path))

	_, err = s.Download(ctx, path)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLocalStorage_RejectsEscapingPaths(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, p := range []string{"../secret", "/etc/passwd", "documents/../../x", ""} {
		_, err := s.Download(context.Background(), p)
		assert.True(t, errors.Is(err, ErrInvalidPath), p)
	}
}

func TestDocumentStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	path, _, err := s.Upload(ctx, FolderDocuments, "notes.txt", "text/plain", strings.NewReader("plain text notes"))
	require.NoError(t, err)

	docs := NewDocumentStore(s, 0)
	data, err := docs.Read(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "plain text notes", string(data))

	mt, err := docs.MimeType(ctx, path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(mt, "text/plain"), mt)

	small := NewDocumentStore(s, 4)
	_, err = small.Read(ctx, path)
	assert.ErrorIs(t, err, ErrDocumentTooLarge)

	_, err = docs.Read(ctx, "documents/missing.txt")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDetectMimeType(t *testing.T) {
	assert.Equal(t, "application/pdf", DetectMimeType([]byte("%PDF-1.4\n")))
	png := append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, bytes.Repeat([]byte{0}, 16)...)
	assert.Equal(t, "image/png", DetectMimeType(png))
}
