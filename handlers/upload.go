package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"skillshare/middleware"
	"skillshare/models"
	"skillshare/storage"
	"skillshare/store"
)

const maxFormMemory = 10 << 20

const avatarTransformation = "c_limit,w_400,h_400,q_auto"

func uploadContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), uploadTimeout)
}

// readUpload reads one multipart file and sniffs its type. It returns
// http.ErrMissingFile when the field is absent.
func readUpload(c *gin.Context, field string) (*storage.File, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, http.ErrMissingFile
	}
	if fh.Size > storage.MaxUploadSize {
		return nil, models.ValidationError("file must be at most 10 MB")
	}
	src, err := fh.Open()
	if err != nil {
		return nil, models.InternalError("open upload", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, storage.MaxUploadSize+1))
	if err != nil {
		return nil, models.InternalError("read upload", err)
	}
	if len(data) > storage.MaxUploadSize {
		return nil, models.ValidationError("file must be at most 10 MB")
	}
	mime, err := storage.Sniff(data)
	if err != nil {
		return nil, models.ValidationError("unsupported file type")
	}
	return &storage.File{Data: data, MIME: mime}, nil
}

// storeUpload saves the avatar field of a profile form. Only images are
// accepted.
func (h *Handler) storeUpload(ctx context.Context, c *gin.Context, field, folder, name string) (string, error) {
	f, err := readUpload(c, field)
	if err != nil {
		return "", err
	}
	if !storage.IsImage(f.MIME) {
		return "", models.ValidationError("avatar must be an image")
	}
	if h.Uploader == nil {
		return "", models.InternalError("upload avatar", errors.New("no uploader configured"))
	}
	f.Folder, f.Name, f.Transformation = folder, name, avatarTransformation
	url, err := h.Uploader.Upload(ctx, *f)
	if err != nil {
		return "", models.InternalError("upload avatar", err)
	}
	return url, nil
}

// Upload stores an attachment and returns its URL for use in a message.
func (h *Handler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, storage.MaxUploadSize+maxFormMemory)

	ctx, cancel := uploadContext(c)
	defer cancel()

	f, err := readUpload(c, "file")
	if errors.Is(err, http.ErrMissingFile) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "file is required"})
		return
	}
	if err != nil {
		respondError(c, "Upload", err)
		return
	}
	if h.Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Uploads are not configured"})
		return
	}

	f.Folder = "attachments"
	f.Name = store.NewID()
	url, err := h.Uploader.Upload(ctx, *f)
	if err != nil {
		respondError(c, "Upload", models.InternalError("upload "+c.GetString(middleware.ContextUserID), err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "url": url, "mime": f.MIME.String()})
}
