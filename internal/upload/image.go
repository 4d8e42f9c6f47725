package upload

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"mime/multipart"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/whatson-events/whatson-backend/internal/apperror"
)

// Uploaded photos are shrunk to fit this bounding box before storage.
const (
	maxWidth  = 500
	maxHeight = 500
)

// mimeExtensions maps accepted content types to file extensions. Anything
// else is rejected before any database write happens.
var mimeExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/jpg":  "jpg",
}

// Ingest validates an uploaded image, resizes it to the bounding box and
// saves it to the store under a timestamp-based key. It returns the public
// URL of the stored photo.
func Ingest(ctx context.Context, fh *multipart.FileHeader, store Store) (string, error) {
	contentType := fh.Header.Get("Content-Type")
	ext, ok := mimeExtensions[contentType]
	if !ok {
		return "", apperror.New(apperror.Validation, "That does not look like a valid image. Only PNG and JPEG files are accepted.")
	}

	f, err := fh.Open()
	if err != nil {
		return "", apperror.Wrap(apperror.Validation, "Could not read the uploaded image.", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return "", apperror.Wrap(apperror.Validation, "That does not look like a valid image. Only PNG and JPEG files are accepted.", err)
	}

	resized := imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	switch format {
	case "png":
		err = imaging.Encode(&buf, resized, imaging.PNG)
	default:
		err = imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(85))
	}
	if err != nil {
		return "", apperror.Wrap(apperror.Upstream, "Something went wrong storing the uploaded image. Please try again later.", err)
	}

	// Millisecond timestamp plus a short random suffix, so two uploads in
	// the same instant cannot collide.
	key := fmt.Sprintf("%d-%s.%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)

	url, err := store.Save(ctx, key, &buf)
	if err != nil {
		return "", apperror.Wrap(apperror.Upstream, "Something went wrong storing the uploaded image. Please try again later.", err)
	}
	return url, nil
}
