package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/straye-as/presales-api/internal/domain"
	"github.com/straye-as/presales-api/internal/repository"
	"github.com/straye-as/presales-api/internal/storage"
	"github.com/straye-as/presales-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDocumentService_UploadVerifyDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := NewDocumentService(repository.NewDocumentRepository(db), store, 64, zap.NewNop())
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "../../Scope.PDF", strings.NewReader("%PDF-1.4\nscope"))
	require.NoError(t, err)
	assert.Equal(t, "Scope.PDF", doc.Filename)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.True(t, strings.HasPrefix(doc.Path, storage.FolderDocuments+"/"))

	require.NoError(t, svc.VerifyPaths(ctx, []string{doc.Path, doc.Path}))
	err = svc.VerifyPaths(ctx, []string{doc.Path, "documents/other.pdf"})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, doc.ID))
	_, err = svc.Get(ctx, doc.ID)
	assert.True(t, errors.Is(err, ErrDocumentNotFound))
	_, err = store.Download(ctx, doc.Path)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestDocumentService_UploadLimits(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := NewDocumentService(repository.NewDocumentRepository(db), store, 8, zap.NewNop())
	ctx := context.Background()

	_, err = svc.Upload(ctx, "big.txt", strings.NewReader("more than eight bytes"))
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = svc.Upload(ctx, "empty.txt", strings.NewReader(""))
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = svc.Upload(ctx, "", strings.NewReader("x"))
	assert.True(t, errors.Is(err, domain.ErrValidation))
}
