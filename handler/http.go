package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"filmroom/dto"
	"filmroom/repository"
	"filmroom/service"
)

// FilmHandler exposes the team film surface over HTTP. Responses follow the
// bare-entity / {"detail": ...} convention the clients expect.
type FilmHandler struct {
	deps     ServiceDependencies
	apiToken string
}

func NewFilmHandler(deps ServiceDependencies, apiToken string) *FilmHandler {
	return &FilmHandler{deps: deps, apiToken: apiToken}
}

func (h *FilmHandler) Register(r *gin.Engine) {
	v1 := r.Group("/api/v1", h.requireBearer)

	film := v1.Group("/teams/:teamId/film")
	film.GET("", h.ListUploads)
	film.POST("", h.CreateUpload)
	film.GET("/:uploadId", h.GetUpload)
	film.DELETE("/:uploadId", h.DeleteUpload)
	film.GET("/:uploadId/stream", h.StreamUpload)
	film.GET("/:uploadId/segments", h.ListSegments)
	film.POST("/:uploadId/segments", h.CreateSegment)
	film.POST("/:uploadId/segments/:segmentId/publish", h.PublishSegment)

	clips := v1.Group("/teams/:teamId/clips")
	clips.GET("", h.ListClips)
	clips.GET("/:clipId", h.GetClip)
	clips.DELETE("/:clipId", h.DeleteClip)
	clips.GET("/:clipId/stream", h.StreamClip)
}

func (h *FilmHandler) requireBearer(c *gin.Context) {
	auth := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || token == "" || token != h.apiToken {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
		return
	}
	c.Next()
}

func detail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"detail": message})
}

func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		detail(c, http.StatusNotFound, "Not found")
	case errors.Is(err, service.ErrUploadNotReady):
		detail(c, http.StatusConflict, "Upload is not ready")
	case errors.Is(err, service.ErrInvalidWindow):
		detail(c, http.StatusBadRequest, "End must be after start")
	case errors.Is(err, service.ErrNotClipOwner):
		detail(c, http.StatusForbidden, "Only the uploader can delete this clip")
	default:
		var verr validator.ValidationErrors
		if errors.As(err, &verr) {
			detail(c, http.StatusBadRequest, formatValidationErrors(verr))
			return
		}
		detail(c, http.StatusInternalServerError, err.Error())
	}
}

func formatValidationErrors(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		parts = append(parts, fmt.Sprintf("field %s failed on %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		detail(c, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// requesterID reads the optional X-User-Id header. Identity is owned by a
// separate service; this is only carried through for attribution and the
// clip-owner delete rule.
func requesterID(c *gin.Context) *uuid.UUID {
	raw := c.GetHeader("X-User-Id")
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

func (h *FilmHandler) ListUploads(c *gin.Context) {
	teamId, ok := pathUUID(c, "teamId")
	if !ok {
		return
	}
	uploads, err := h.deps.FilmService.ListUploads(c.Request.Context(), teamId)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, uploads)
}

func (h *FilmHandler) CreateUpload(c *gin.Context) {
	teamId, ok := pathUUID(c, "teamId")
	if !ok {
		return
	}

	title := c.PostForm("title")
	if title == "" {
		detail(c, http.StatusBadRequest, "Title is required")
		return
	}
	var notes *string
	if v := c.PostForm("notes"); v != "" {
		notes = &v
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		detail(c, http.StatusBadRequest, "File is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer file.Close()

	upload, err := h.deps.FilmService.CreateUpload(c.Request.Context(), service.NewUpload{
		TeamID:       teamId,
		UploadedById: requesterID(c),
		Title:        title,
		Notes:        notes,
		FileName:     fileHeader.Filename,
		Body:         file,
		Size:         fileHeader.Size,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, upload)
}

func (h *FilmHandler) GetUpload(c *gin.Context) {
	teamId, ok := pathUUID(c, "teamId")
	if !ok {
		return
	}
	uploadId, ok := pathUUID(c, "uploadId")
	if !ok {
		return
	}
	upload, err := h.deps.FilmService.GetUpload(c.Request.Context(), teamId, uploadId)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, upload)
}

func (h *FilmHandler) DeleteUpload(c *gin.Context) {
	teamId, ok := pathUUID(c, "teamId")
	if !ok {
		return
	}
	uploadId, ok := pathUUID(c, "uploadId")
	if !ok {
		return
	}
	if err := h.deps.FilmService.DeleteUpload(c.Request.Context(), teamId, uploadId); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FilmHandler) StreamUpload(c *gin.Context) {
	teamId, ok := pathUUID(c, "teamId")
	if !ok {
		return
	}
	uploadId, ok := pathUUID(c, "uploadId")
	if !ok {
		return
	}
	upload, err := h.deps.FilmService.GetUpload(c.Request.Context(), teamId, uploadId)
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.deps.StreamService.Stream(c.Writer, c.Request, upload.StorageKey, upload.ContentType); err != nil {
		fail(c, err)
	}
}

func (h *FilmHandler) ListSegments(c *gin.Context) {
	teamId, ok := pathUUID(c, "teamId")
	if !ok {
		return
	}
	uploadId, ok := pathUUID(c, "uploadId")
	if !ok {
		return
	}
	segments, err := h.deps.SegmentService.ListSegments(c.Request.Context(), teamId, uploadId)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, segments)
}

func (h *FilmHandler) CreateSegment(c *gin.Context) {
	teamId, ok := pathUUID(c, "teamId")
	if !ok {
		return
	}
	uploadId, ok := pathUUID(c, "uploadId")
	if !ok {
		return
	}

	var req dto.CreateSegmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}

	segment, err := h.deps.SegmentService.CreateSegment(c.Request.Context(), teamId, uploadId, requesterID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, segment)
}

func (h *FilmHandler) PublishSegment(c *gin.Context) {
	teamId, ok := pathUUID(c, "teamId")
	if !ok {
		return
	}
	uploadId, ok := pathUUID(c, "uploadId")
	if !ok {
		return
	}
	segmentId, ok := pathUUID(c, "segmentId")
	if !ok {
		return
	}

	clip, err := h.deps.SegmentService.PublishSegment(c.Request.Context(), teamId, uploadId, segmentId, requesterID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, clip)
}

func (h *FilmHandler) ListClips(c *gin.Context) {
	teamId, ok := pathUUID(c, "teamId")
	if !ok {
		return
	}
	clips, err := h.deps.ClipService.ListClips(c.Request.Context(), teamId)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, clips)
}

func (h *FilmHandler) GetClip(c *gin.Context) {
	teamId, ok := pathUUID(c, "teamId")
	if !ok {
		return
	}
	clipId, ok := pathUUID(c, "clipId")
	if !ok {
		return
	}
	clip, err := h.deps.ClipService.GetClip(c.Request.Context(), teamId, clipId)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, clip)
}

func (h *FilmHandler) DeleteClip(c *gin.Context) {
	teamId, ok := pathUUID(c, "teamId")
	if !ok {
		return
	}
	clipId, ok := pathUUID(c, "clipId")
	if !ok {
		return
	}
	if err := h.deps.ClipService.DeleteClip(c.Request.Context(), teamId, clipId, requesterID(c)); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FilmHandler) StreamClip(c *gin.Context) {
	teamId, ok := pathUUID(c, "teamId")
	if !ok {
		return
	}
	clipId, ok := pathUUID(c, "clipId")
	if !ok {
		return
	}
	clip, err := h.deps.ClipService.GetClip(c.Request.Context(), teamId, clipId)
	if err != nil {
		fail(c, err)
		return
	}
	// A published clip streams its source upload's bytes; the viewer clamps
	// playback to the clip window.
	if err := h.deps.StreamService.Stream(c.Writer, c.Request, clip.StorageKey, clip.ContentType); err != nil {
		fail(c, err)
	}
}
