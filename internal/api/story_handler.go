// Package api provides HTTP handlers for the API.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lingotale/lingotale-api/internal/api/shared"
	"github.com/lingotale/lingotale-api/internal/domain"
	"github.com/lingotale/lingotale-api/internal/job"
	"github.com/lingotale/lingotale-api/internal/platform/logger"
	"github.com/lingotale/lingotale-api/internal/service"
)

// GenerateStoryRequest represents the request body for starting a story
// generation job.
type GenerateStoryRequest struct {
	Topic                   string `json:"topic"                     validate:"required,min=1,max=200"`
	LanguageCode            string `json:"language_code"             validate:"required,bcp47_language_tag"`
	TranslationLanguageCode string `json:"translation_language_code" validate:"required,bcp47_language_tag"`
}

// JobAcceptedResponse is returned when a job has been enqueued.
type JobAcceptedResponse struct {
	JobID string `json:"job_id"`
}

// JobStatusResponse represents the response data for a job status query.
type JobStatusResponse struct {
	Status       string          `json:"status"`
	Phase        string          `json:"phase,omitempty"`
	TotalSteps   int             `json:"total_steps,omitempty"`
	Value        json.RawMessage `json:"value,omitempty"`
	FailedReason string          `json:"failed_reason,omitempty"`
}

// StoryHandler handles story-related HTTP requests
type StoryHandler struct {
	storyService service.StoryService
	logger       *slog.Logger
}

// NewStoryHandler creates a new StoryHandler
func NewStoryHandler(storyService service.StoryService, log *slog.Logger) *StoryHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for StoryHandler")
	}

	return &StoryHandler{
		storyService: storyService,
		logger:       log.With(slog.String("component", "story_handler")),
	}
}

// GenerateStory handles POST /stories requests.
// It charges the user's daily quota and enqueues an asynchronous story
// generation job, returning 202 Accepted with the job ID for polling.
func (h *StoryHandler) GenerateStory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req GenerateStoryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("failed to decode request body", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		log.Warn("invalid story generation request", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request data")
		return
	}

	jobID, err := h.storyService.StartStoryGeneration(
		r.Context(),
		userID,
		req.Topic,
		req.LanguageCode,
		req.TranslationLanguageCode,
	)
	if err != nil {
		if errors.Is(err, domain.ErrDailyLimitReached) {
			shared.RespondWithErrorAndLog(w, r, http.StatusTooManyRequests,
				GetSafeErrorMessage(err), err)
			return
		}
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err),
			"Failed to start story generation", err)
		return
	}

	log.Debug("story generation accepted",
		slog.String("job_id", jobID.String()),
		slog.String("user_id", userID.String()))
	shared.RespondWithJSON(w, r, http.StatusAccepted, JobAcceptedResponse{JobID: jobID.String()})
}

// GetJobStatus handles GET /jobs/{id} requests.
// It returns the lifecycle state, last reported progress, and outcome of a
// previously enqueued job.
func (h *StoryHandler) GetJobStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	pathJobID := chi.URLParam(r, "id")
	jobID, err := uuid.Parse(pathJobID)
	if err != nil {
		log.Warn("invalid job ID format", slog.String("job_id", pathJobID))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid job ID format")
		return
	}

	status, err := h.storyService.JobStatus(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Job not found")
			return
		}
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err),
			"Failed to get job status", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, jobStatusToResponse(status))
}

// StoryResponse represents the response data for a persisted story.
type StoryResponse struct {
	ID          string    `json:"id"`
	Topic       string    `json:"topic"`
	Text        string    `json:"text"`
	Translation string    `json:"translation"`
	AudioURL    string    `json:"audio_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// GetStory handles GET /stories/{id} requests.
func (h *StoryHandler) GetStory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	pathStoryID := chi.URLParam(r, "id")
	storyID, err := uuid.Parse(pathStoryID)
	if err != nil {
		log.Warn("invalid story ID format", slog.String("story_id", pathStoryID))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid story ID format")
		return
	}

	story, err := h.storyService.GetStory(r.Context(), userID, storyID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err),
			GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, StoryResponse{
		ID:          story.ID.String(),
		Topic:       story.Topic,
		Text:        story.Text,
		Translation: story.Translation,
		AudioURL:    story.AudioURL,
		CreatedAt:   story.CreatedAt,
	})
}

func jobStatusToResponse(status *job.Status) JobStatusResponse {
	resp := JobStatusResponse{
		Status:       string(status.State),
		Value:        status.Value,
		FailedReason: status.FailedReason,
	}
	if status.Progress != nil {
		resp.Phase = status.Progress.Phase.Name
		resp.TotalSteps = status.Progress.TotalSteps
	}
	return resp
}
