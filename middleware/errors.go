package middleware

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/whatson-events/whatson-backend/internal/apperror"
	"github.com/whatson-events/whatson-backend/internal/upload"
)

// UploadedPhotoKey marks a photo stored during the current request, so it
// can be cleaned up if a later step fails.
const UploadedPhotoKey = "uploaded_photo"

// Errors converts errors recorded on the gin context into the single
// response envelope {"message": ...}. Statuses outside [100,599] are
// normalized to 500, and a photo uploaded during a failed request is
// deleted from storage, best effort.
func Errors(store upload.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		status := 500
		message := "An unknown error occurred! Please try again later."
		if ae := apperror.From(err); ae != nil {
			status = ae.Status()
			message = ae.Message
			if ae.Err != nil {
				slog.Error("request failed", "path", c.Request.URL.Path, "error", ae.Err)
			}
		} else {
			slog.Error("request failed", "path", c.Request.URL.Path, "error", err)
		}
		if status < 100 || status > 599 {
			status = 500
		}

		// A file stored for a request that then failed is an orphan.
		if photoURL, ok := c.Get(UploadedPhotoKey); ok {
			if url, ok := photoURL.(string); ok && url != "" && store != nil {
				if delErr := store.Delete(context.WithoutCancel(c.Request.Context()), url); delErr != nil {
					slog.Warn("orphaned upload cleanup failed", "url", url, "error", delErr)
				}
			}
		}

		if !c.Writer.Written() {
			c.JSON(status, gin.H{"message": message})
		}
	}
}

// NotFound is the fallthrough handler for unknown routes.
func NotFound(c *gin.Context) {
	c.JSON(404, gin.H{"message": "Could not find the requested resource"})
}
