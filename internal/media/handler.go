package media

import (
	"context"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/castlane/backend/internal/middleware"
	"github.com/castlane/backend/internal/models"
	"github.com/castlane/backend/pkg/queue"
	"github.com/castlane/backend/pkg/response"
	"github.com/castlane/backend/pkg/storage"
)

// IngestEnqueuer hands ingest jobs to the worker.
type IngestEnqueuer interface {
	EnqueueMediaIngest(ctx context.Context, payload queue.MediaIngestPayload) error
}

// Handler handles portfolio media HTTP endpoints.
type Handler struct {
	repo   *Repository
	s3     *storage.S3
	jobs   IngestEnqueuer
	logger *zap.Logger
}

// NewHandler creates a media handler. s3 may be nil, which disables the
// upload and download endpoints; jobs may be nil, which disables ingest.
func NewHandler(repo *Repository, s3 *storage.S3, jobs IngestEnqueuer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, s3: s3, jobs: jobs, logger: logger}
}

func validKind(kind string) bool {
	switch kind {
	case models.MediaKindHeadshot, models.MediaKindPhoto, models.MediaKindReel:
		return true
	}
	return false
}

func maxSizeFor(kind string) int64 {
	if kind == models.MediaKindReel {
		return storage.MaxReelFileSize
	}
	return storage.MaxImageFileSize
}

func (h *Handler) talentID(c *gin.Context) (uuid.UUID, bool) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	id, err := h.repo.ProfileIDByUserID(c.Request.Context(), userID)
	if err != nil {
		response.NotFound(c, "talent profile not found")
		return uuid.Nil, false
	}
	return id, true
}

// GenerateUploadURLRequest is the body for POST /talents/me/media/upload-url.
type GenerateUploadURLRequest struct {
	Kind        string `json:"kind" binding:"required"`
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type"`
	FileSize    int64  `json:"file_size" binding:"required,gt=0"`
}

// GenerateUploadURL handles POST /talents/me/media/upload-url. Returns a
// presigned PUT URL plus the object key; the client uploads directly and
// then registers the item via Create.
func (h *Handler) GenerateUploadURL(c *gin.Context) {
	if h.s3 == nil {
		response.ServiceUnavailable(c, "media storage not configured")
		return
	}
	talentID, ok := h.talentID(c)
	if !ok {
		return
	}

	var req GenerateUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !validKind(req.Kind) {
		response.BadRequest(c, "kind must be headshot, photo or reel")
		return
	}
	if req.FileSize > maxSizeFor(req.Kind) {
		response.BadRequest(c, "file size exceeds the limit for this kind")
		return
	}
	if !storage.ValidateMediaType(req.Kind, req.ContentType, req.Filename) {
		response.BadRequest(c, "file type not allowed for this kind")
		return
	}

	contentType := storage.ContentTypeForFilename(req.Filename)
	if req.ContentType != "" {
		contentType = strings.ToLower(req.ContentType)
	}

	mediaID := uuid.New()
	key := storage.MediaKey(req.Kind, talentID.String(), mediaID.String(), req.Filename)
	expire := h.s3.PresignExpire()
	uploadURL, err := h.s3.GeneratePresignedUploadURL(c.Request.Context(), h.s3.MediaBucket(), key, contentType, expire)
	if err != nil {
		h.logger.Error("presign media upload failed", zap.Error(err), zap.String("talent_id", talentID.String()))
		response.Internal(c, "failed to generate upload URL")
		return
	}

	response.OK(c, gin.H{
		"upload_url":   uploadURL,
		"s3_key":       key,
		"content_type": contentType,
		"expires_in":   int(expire.Seconds()),
	})
}

// CreateRequest is the body for POST /talents/me/media, sent after the
// client uploaded to the presigned URL.
type CreateRequest struct {
	Kind        string `json:"kind" binding:"required"`
	S3Key       string `json:"s3_key" binding:"required"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes" binding:"required,gt=0"`
}

// Create handles POST /talents/me/media. Registers an uploaded object as a
// ready portfolio item.
func (h *Handler) Create(c *gin.Context) {
	if h.s3 == nil {
		response.ServiceUnavailable(c, "media storage not configured")
		return
	}
	talentID, ok := h.talentID(c)
	if !ok {
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !validKind(req.Kind) {
		response.BadRequest(c, "kind must be headshot, photo or reel")
		return
	}
	if req.SizeBytes > maxSizeFor(req.Kind) {
		response.BadRequest(c, "file size exceeds the limit for this kind")
		return
	}

	item := &models.MediaItem{
		TalentID:    talentID,
		Kind:        req.Kind,
		S3Key:       req.S3Key,
		URL:         h.s3.PublicObjectURL(h.s3.MediaBucket(), req.S3Key),
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
		Status:      models.MediaStatusReady,
	}
	if err := h.repo.Create(c.Request.Context(), item); err != nil {
		h.logger.Error("create media item failed", zap.Error(err), zap.String("talent_id", talentID.String()))
		response.Internal(c, "failed to create media item")
		return
	}
	response.Created(c, item)
}

// IngestRequest is the body for POST /talents/me/media/ingest.
type IngestRequest struct {
	Kind      string `json:"kind" binding:"required"`
	SourceURL string `json:"source_url" binding:"required"`
}

// Ingest handles POST /talents/me/media/ingest. Creates a pending item and
// queues a job that copies the source file into the media bucket. The item
// stays pending until the worker finishes.
func (h *Handler) Ingest(c *gin.Context) {
	if h.jobs == nil {
		response.ServiceUnavailable(c, "media ingest not configured")
		return
	}
	talentID, ok := h.talentID(c)
	if !ok {
		return
	}

	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !validKind(req.Kind) {
		response.BadRequest(c, "kind must be headshot, photo or reel")
		return
	}
	src, err := url.Parse(req.SourceURL)
	if err != nil || (src.Scheme != "http" && src.Scheme != "https") || src.Host == "" {
		response.BadRequest(c, "source_url must be an http(s) URL")
		return
	}

	item := &models.MediaItem{
		TalentID:  talentID,
		Kind:      req.Kind,
		Status:    models.MediaStatusPending,
		SourceURL: req.SourceURL,
	}
	if err := h.repo.Create(c.Request.Context(), item); err != nil {
		h.logger.Error("create pending media item failed", zap.Error(err), zap.String("talent_id", talentID.String()))
		response.Internal(c, "failed to create media item")
		return
	}

	err = h.jobs.EnqueueMediaIngest(c.Request.Context(), queue.MediaIngestPayload{
		MediaID:   item.ID,
		TalentID:  talentID,
		SourceURL: req.SourceURL,
	})
	if err != nil {
		_ = h.repo.MarkFailed(c.Request.Context(), item.ID)
		h.logger.Error("enqueue media ingest failed", zap.Error(err), zap.String("media_id", item.ID.String()))
		response.Internal(c, "failed to queue media ingest")
		return
	}
	response.Created(c, item)
}

// ListMine handles GET /talents/me/media.
func (h *Handler) ListMine(c *gin.Context) {
	talentID, ok := h.talentID(c)
	if !ok {
		return
	}
	list, err := h.repo.ListForTalent(c.Request.Context(), talentID)
	if err != nil {
		h.logger.Error("list media failed", zap.Error(err), zap.String("talent_id", talentID.String()))
		response.Internal(c, "failed to list media")
		return
	}
	response.OK(c, list)
}

// GenerateDownloadURL handles GET /media/:id/download-url. Any authenticated
// user may fetch a ready item; portfolios are what studios browse.
func (h *Handler) GenerateDownloadURL(c *gin.Context) {
	if h.s3 == nil {
		response.ServiceUnavailable(c, "media storage not configured")
		return
	}
	mediaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid media id")
		return
	}
	item, err := h.repo.GetByID(c.Request.Context(), mediaID)
	if err != nil {
		response.NotFound(c, "media item not found")
		return
	}
	if item.Status != models.MediaStatusReady || item.S3Key == "" {
		response.BadRequest(c, "media item not ready for download")
		return
	}

	expire := h.s3.PresignExpire()
	downloadURL, err := h.s3.GeneratePresignedDownloadURL(c.Request.Context(), h.s3.MediaBucket(), item.S3Key, expire)
	if err != nil {
		h.logger.Error("presign media download failed", zap.Error(err), zap.String("media_id", mediaID.String()))
		response.Internal(c, "failed to generate download URL")
		return
	}
	response.OK(c, gin.H{"download_url": downloadURL, "expires_in": int(expire.Seconds())})
}

// Delete handles DELETE /media/:id. Owner only; removes the object from S3
// best-effort before dropping the row.
func (h *Handler) Delete(c *gin.Context) {
	mediaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid media id")
		return
	}
	talentID, ok := h.talentID(c)
	if !ok {
		return
	}

	item, err := h.repo.GetByID(c.Request.Context(), mediaID)
	if err != nil {
		response.NotFound(c, "media item not found")
		return
	}
	if item.TalentID != talentID {
		response.Forbidden(c, "not your media item")
		return
	}

	if item.S3Key != "" && h.s3 != nil {
		if err := h.s3.DeleteMedia(c.Request.Context(), item.S3Key); err != nil {
			h.logger.Warn("delete media object failed", zap.Error(err), zap.String("s3_key", item.S3Key))
		}
	}
	if err := h.repo.Delete(c.Request.Context(), mediaID); err != nil {
		h.logger.Error("delete media item failed", zap.Error(err), zap.String("media_id", mediaID.String()))
		response.Internal(c, "failed to delete media item")
		return
	}
	response.NoContent(c)
}
