package handler

import (
	"io"
	"mime"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/peerroom-api/pkg/errors"
	"github.com/noah-isme/peerroom-api/pkg/response"
)

type signedFileOpener interface {
	OpenSigned(token string) (io.ReadCloser, string, error)
}

// FileHandler serves stored uploads behind signed links.
type FileHandler struct {
	files signedFileOpener
}

// NewFileHandler constructs the handler.
func NewFileHandler(files signedFileOpener) *FileHandler {
	return &FileHandler{files: files}
}

// Download godoc
// @Summary Download a stored file
// @Tags Files
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /files/{token} [get]
func (h *FileHandler) Download(c *gin.Context) {
	if h.files == nil {
		response.Error(c, appErrors.ErrServiceOffline)
		return
	}
	rc, key, err := h.files.OpenSigned(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer rc.Close() //nolint:errcheck

	serveFile(c, rc, key, "private, max-age=300")
}

// serveFile streams rc with a content type derived from the storage key.
func serveFile(c *gin.Context, rc io.Reader, key, cacheControl string) {
	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Cache-Control", cacheControl)
	c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
}
