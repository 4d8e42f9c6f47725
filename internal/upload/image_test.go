package upload

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whatson-events/whatson-backend/internal/apperror"
)

// fileHeader builds a multipart.FileHeader carrying the given bytes by
// round-tripping through a real multipart form.
func fileHeader(t *testing.T, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="photo"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r := multipart.NewReader(&body, w.Boundary())
	form, err := r.ReadForm(10 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["image"][0]
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestIngest_ResizesToBoundingBox(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://localhost:8080/uploads")
	require.NoError(t, err)

	fh := fileHeader(t, "image/png", pngBytes(t, 1200, 800))

	url, err := Ingest(context.Background(), fh, store)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".png"))
}

func TestIngest_RejectsUnknownMime(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://localhost:8080/uploads")
	require.NoError(t, err)

	fh := fileHeader(t, "image/gif", []byte("GIF89a"))

	_, err = Ingest(context.Background(), fh, store)
	require.Error(t, err)
	ae := apperror.From(err)
	require.NotNil(t, ae)
	assert.Equal(t, apperror.Validation, ae.Kind)
}

func TestIngest_RejectsCorruptImage(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://localhost:8080/uploads")
	require.NoError(t, err)

	fh := fileHeader(t, "image/png", []byte("definitely not a png"))

	_, err = Ingest(context.Background(), fh, store)
	require.Error(t, err)
	ae := apperror.From(err)
	require.NotNil(t, ae)
	assert.Equal(t, apperror.Validation, ae.Kind)
}

func TestLocalStore_DeleteIsIdempotent(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://localhost:8080/uploads")
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "a.png", strings.NewReader("data"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), url))
	// Deleting an already-deleted object is fine.
	require.NoError(t, store.Delete(context.Background(), url))
}
