package storage

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLocalStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(LocalConfig{
		BasePath: t.TempDir(),
		BaseURL:  "http://localhost:8080/files/",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return s
}

func TestLocalStoragePutGet(t *testing.T) {
	s := testLocalStorage(t)
	ctx := context.Background()
	key := "offers/2025/10/test.docx"

	err := s.Put(ctx, key, strings.NewReader("offer bytes"), PutOptions{ContentType: ContentTypeDOCX})
	require.NoError(t, err)

	rc, info, err := s.Get(ctx, key)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "offer bytes", string(data))
	assert.Equal(t, key, info.Key)
	assert.Equal(t, int64(len("offer bytes")), info.Size)
	assert.Equal(t, ContentTypeDOCX, info.ContentType)
}

func TestLocalStoragePutNoOverwrite(t *testing.T) {
	s := testLocalStorage(t)
	ctx := context.Background()
	key := "offers/2025/10/dup.pdf"

	require.NoError(t, s.Put(ctx, key, strings.NewReader("first"), PutOptions{}))

	err := s.Put(ctx, key, strings.NewReader("second"), PutOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrKeyExists)

	err = s.Put(ctx, key, strings.NewReader("second"), PutOptions{Overwrite: true})
	require.NoError(t, err)
}

func TestLocalStorageGetNotFound(t *testing.T) {
	s := testLocalStorage(t)

	_, _, err := s.Get(context.Background(), "offers/2025/10/missing.docx")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestLocalStorageDeleteIdempotent(t *testing.T) {
	s := testLocalStorage(t)
	ctx := context.Background()
	key := "offers/2025/10/gone.docx"

	require.NoError(t, s.Put(ctx, key, strings.NewReader("x"), PutOptions{}))
	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key))

	exists, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	s := testLocalStorage(t)
	ctx := context.Background()

	for _, key := range []string{"", "../etc/passwd", "offers/../../x"} {
		err := s.Put(ctx, key, strings.NewReader("x"), PutOptions{})
		require.Error(t, err, "key %q", key)
		assert.ErrorIs(t, err, ErrInvalidKey)
	}
}

func TestLocalStorageURL(t *testing.T) {
	s := testLocalStorage(t)

	url, err := s.URL(context.Background(), "offers/2025/10/a.docx", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/offers/2025/10/a.docx", url)
}

func TestOfferKey(t *testing.T) {
	at := time.Date(2025, time.October, 15, 12, 0, 0, 0, time.UTC)

	key := OfferKey(at, "docx")
	assert.True(t, strings.HasPrefix(key, "offers/2025/10/"))
	assert.True(t, strings.HasSuffix(key, ".docx"))
	assert.NotEqual(t, key, OfferKey(at, "docx"))
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, ContentTypePDF, DetectContentType("", "offers/a.pdf"))
	assert.Equal(t, ContentTypeDOCX, DetectContentType("", "offers/a.docx"))
	assert.Equal(t, "application/pdf", DetectContentType("application/pdf", "offers/a.docx"))
}
