package api

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bobarin/lyricburn/internal/apierr"
	"github.com/bobarin/lyricburn/internal/db"
	"github.com/bobarin/lyricburn/internal/metrics"
	"github.com/bobarin/lyricburn/internal/models"
	"github.com/bobarin/lyricburn/internal/queue"
	"github.com/bobarin/lyricburn/internal/services"
	"github.com/bobarin/lyricburn/internal/storage"
	"github.com/bobarin/lyricburn/internal/worker"
)

type Handler struct {
	db          *db.DB
	storage     *storage.Storage
	transcriber *services.Transcriber
	orchestrator *services.BurnOrchestrator
	admission   *queue.Semaphore
	localPool   *worker.Pool
}

func NewHandler(database *db.DB, stor *storage.Storage, transcriber *services.Transcriber, orchestrator *services.BurnOrchestrator, admission *queue.Semaphore, localPool *worker.Pool) *Handler {
	return &Handler{
		db:           database,
		storage:      stor,
		transcriber:  transcriber,
		orchestrator: orchestrator,
		admission:    admission,
		localPool:    localPool,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Transcribe handles POST /api/transcribe — ingests a multipart video
// upload, mints a Video and owner key, transcribes it via the STT
// collaborator, and stores the resulting segments.
func (h *Handler) Transcribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		respondAPIErr(w, apierr.New(apierr.KindInvalidInput, "could not parse multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondAPIErr(w, apierr.New(apierr.KindInvalidInput, "missing file field"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondAPIErr(w, apierr.Wrap(apierr.KindInvalidInput, "reading uploaded file failed", err))
		return
	}

	video := &models.Video{
		ID:       uuid.New(),
		OwnerKey: uuid.New().String(),
	}

	ext := filepath.Ext(header.Filename)
	localPath, err := h.storage.PutSource(r.Context(), video.ID, ext, data, contentTypeFor(header))
	if err != nil {
		respondAPIErr(w, apierr.Wrap(apierr.KindRenderFailed, "storing uploaded video failed", err))
		return
	}
	video.SourcePath = localPath

	if err := h.db.CreateVideo(r.Context(), video); err != nil {
		respondAPIErr(w, apierr.Wrap(apierr.KindRenderFailed, "creating video record failed", err))
		return
	}

	raw, err := h.transcriber.Transcribe(r.Context(), data, "")
	if err != nil {
		respondAPIErr(w, err)
		return
	}

	segments, err := h.db.UpsertFromTranscription(r.Context(), video.ID, raw)
	if err != nil {
		respondAPIErr(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"video_id":  video.ID,
		"owner_key": video.OwnerKey,
		"segments":  segments,
	})
}

func contentTypeFor(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// GetVideo handles GET /api/video/{id} — streams the source media
// bytes. Authorization already happened in ownerKeyAuth.
func (h *Handler) GetVideo(w http.ResponseWriter, r *http.Request) {
	video, ok := videoFromContext(r.Context())
	if !ok {
		respondAPIErr(w, apierr.New(apierr.KindNotFound, "video not found"))
		return
	}

	http.ServeFile(w, r, video.SourcePath)
}

// ListSegments handles GET /api/segments/{id}.
func (h *Handler) ListSegments(w http.ResponseWriter, r *http.Request) {
	video, ok := videoFromContext(r.Context())
	if !ok {
		respondAPIErr(w, apierr.New(apierr.KindNotFound, "video not found"))
		return
	}

	segments, err := h.db.List(r.Context(), video.ID)
	if err != nil {
		respondAPIErr(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"video_id": video.ID,
		"segments": segments,
	})
}

type replaceSegmentsRequest struct {
	Segments []models.Segment `json:"segments"`
}

// ReplaceSegments handles PUT /api/segments/{id}.
func (h *Handler) ReplaceSegments(w http.ResponseWriter, r *http.Request) {
	video, ok := videoFromContext(r.Context())
	if !ok {
		respondAPIErr(w, apierr.New(apierr.KindNotFound, "video not found"))
		return
	}

	var req replaceSegmentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondAPIErr(w, apierr.New(apierr.KindInvalidInput, "invalid request body"))
		return
	}

	segments, err := h.db.Replace(r.Context(), video.ID, req.Segments)
	if err != nil {
		respondAPIErr(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"video_id": video.ID,
		"segments": segments,
	})
}

type burnRequest struct {
	VideoID  uuid.UUID              `json:"video_id"`
	Segments []models.Segment       `json:"segments"`
	Style    *models.StyleDescriptor `json:"style,omitempty"`
}

// Burn handles POST /api/burn — the admission-gated, end-to-end
// render operation of spec.md §4.5. video_id travels in the body, so
// the owner key check happens here instead of through ownerKeyAuth.
func (h *Handler) Burn(w http.ResponseWriter, r *http.Request) {
	var req burnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondAPIErr(w, apierr.New(apierr.KindInvalidInput, "invalid request body"))
		return
	}

	ownerKey := r.Header.Get("X-Owner-Key")
	if ownerKey == "" {
		respondAPIErr(w, apierr.New(apierr.KindUnauthorized, "X-Owner-Key header is required"))
		return
	}

	video, err := h.db.GetVideo(r.Context(), req.VideoID, ownerKey)
	if err != nil {
		respondAPIErr(w, err)
		return
	}

	style := models.StyleDescriptor{}
	if req.Style != nil {
		style = *req.Style
	}
	resolved, err := services.ResolveStyle(style)
	if err != nil {
		respondAPIErr(w, err)
		return
	}

	if len(req.Segments) > 0 {
		if _, err := h.db.Replace(r.Context(), video.ID, req.Segments); err != nil {
			respondAPIErr(w, err)
			return
		}
	}

	if err := h.admission.Acquire(r.Context()); err != nil {
		respondAPIErr(w, apierr.New(apierr.KindCancelled, "burn admission cancelled"))
		return
	}
	defer h.admission.Release(context.Background())
	h.reportQueueDepth(r.Context())

	start := time.Now()
	var artifact *models.RenderArtifact
	runErr := h.localPool.Run(r.Context(), func(ctx context.Context) error {
		var innerErr error
		artifact, innerErr = h.orchestrator.Burn(ctx, video.ID, video.SourcePath, resolved)
		return innerErr
	})
	metrics.BurnDuration.Observe(time.Since(start).Seconds())

	if runErr != nil {
		metrics.EncoderFailures.WithLabelValues(string(apierr.KindOf(runErr))).Inc()
		respondAPIErr(w, runErr)
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	w.WriteHeader(http.StatusOK)
	w.Write(artifact.Bytes)
}

// reportQueueDepth samples the admission semaphore's free-ticket count
// and publishes burns-in-flight (capacity minus free) as the queue
// depth gauge. Best-effort: a Redis hiccup here shouldn't fail a burn
// that already acquired its slot.
func (h *Handler) reportQueueDepth(ctx context.Context) {
	free, err := h.admission.Len(ctx)
	if err != nil {
		return
	}
	metrics.BurnQueueDepth.Set(float64(h.admission.Capacity() - int(free)))
}

func parseVideoID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.UUID{}, apierr.New(apierr.KindInvalidInput, "invalid video id")
	}
	return id, nil
}

type contextKey int

const videoContextKey contextKey = iota

func withVideo(ctx context.Context, video *models.Video) context.Context {
	return context.WithValue(ctx, videoContextKey, video)
}

func videoFromContext(ctx context.Context) (*models.Video, bool) {
	video, ok := ctx.Value(videoContextKey).(*models.Video)
	return video, ok
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondAPIErr(w http.ResponseWriter, err error) {
	apiErr, ok := err.(*apierr.Error)
	if !ok {
		apiErr = apierr.Wrap(apierr.KindRenderFailed, "internal error", err)
	}

	status := apiErr.StatusCode()
	if status == 0 {
		// Cancelled: client already disconnected, nothing to write.
		return
	}

	respondJSON(w, status, map[string]string{"error": apiErr.Message})
}
