package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UploadCourseImage stores a multipart "file" in the object store and
// returns its public URL for use as a course image_url.
func (h *Handler) UploadCourseImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	resp, err := h.Uploads.UploadCourseImage(
		c.Request.Context(),
		file,
		fileHeader.Size,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
