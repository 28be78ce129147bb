package media_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/media"
)

var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xFF, 0xFF, 0xFF, 0x21, 0xF9, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x0C,
	0x0A, 0x00, 0x3B,
}

// fileHeader builds a multipart file header the way a browser upload does.
func fileHeader(t *testing.T, name string, data []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["image"][0]
}

func TestSaveUploadStoresImage(t *testing.T) {
	dir := t.TempDir()
	store, err := media.NewDiskStore(dir, "/media")
	require.NoError(t, err)

	key, err := media.SaveUpload(context.Background(), store, fileHeader(t, "small.gif", smallGIF))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "posts/"))
	assert.True(t, strings.HasSuffix(key, ".gif"))

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, smallGIF, data)

	url, err := store.URL(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "/media/"+key, url)

	require.NoError(t, store.Delete(context.Background(), key))
	require.NoError(t, store.Delete(context.Background(), key))
}

func TestSaveUploadRejectsNonImages(t *testing.T) {
	store, err := media.NewDiskStore(t.TempDir(), "/media/")
	require.NoError(t, err)

	_, err = media.SaveUpload(context.Background(), store, fileHeader(t, "evil.gif", []byte("#!/bin/sh\necho hi\n")))
	assert.ErrorIs(t, err, media.ErrNotImage)
}

func TestDiskStoreRejectsTraversal(t *testing.T) {
	store, err := media.NewDiskStore(t.TempDir(), "/media/")
	require.NoError(t, err)

	err = store.Put(context.Background(), "../escape.png", "image/png", bytes.NewReader(nil), 0)
	assert.Error(t, err)
	_, err = store.URL(context.Background(), "/etc/passwd")
	assert.Error(t, err)
}
