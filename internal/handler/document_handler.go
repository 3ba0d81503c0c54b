package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/docgate-io/docgate/internal/filestore"
	"github.com/docgate-io/docgate/internal/pkg/errcode"
	"github.com/docgate-io/docgate/internal/pkg/response"
	"github.com/docgate-io/docgate/internal/service"
)

type DocumentHandler struct {
	docs *service.DocumentService
}

func NewDocumentHandler(docs *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{docs: docs}
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "file is required")
		return
	}
	opened, err := file.Open()
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "failed to open file")
		return
	}
	reader, contentType, err := ensureReadSeekCloser(opened)
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "failed to read file")
		return
	}
	defer reader.Close()

	title := c.PostForm("title")
	if title == "" {
		title = file.Filename
	}
	doc, err := h.docs.Upload(c.Request.Context(), service.UploadRequest{
		Title:     title,
		DocType:   c.PostForm("doc_type"),
		ClientID:  c.PostForm("client_id"),
		ProjectID: c.PostForm("project_id"),
		MimeType:  contentType,
		Size:      file.Size,
		CreatedBy: getUserID(c),
		Content:   reader,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, doc)
}

func (h *DocumentHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	docs, err := h.docs.ListVisible(c.Request.Context(), getUserEmail(c), c.Query("status"), limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, docs)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.docs.GetVisible(c.Request.Context(), getUserEmail(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, doc)
}

func (h *DocumentHandler) Process(c *gin.Context) {
	if err := h.docs.RequestProcessing(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.docs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, nil)
}

func ensureReadSeekCloser(file filestore.ReadSeekCloser) (filestore.ReadSeekCloser, string, error) {
	buf := make([]byte, 512)
	read, err := file.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, "", err
	}
	contentType := http.DetectContentType(buf[:read])
	if _, err := file.Seek(0, 0); err != nil {
		return nil, "", err
	}
	return file, contentType, nil
}
