package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lingotale/lingotale-api/internal/api/shared"
	"github.com/lingotale/lingotale-api/internal/domain"
	"github.com/lingotale/lingotale-api/internal/platform/logger"
	"github.com/lingotale/lingotale-api/internal/service"
)

// UpdateWordStatusRequest represents the request body for updating a word's
// learning status.
type UpdateWordStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=known learning unknown"`
}

// WordResponse represents the response data for a vocabulary word.
type WordResponse struct {
	ID                 string    `json:"id"`
	Lemma              string    `json:"lemma"`
	Translation        string    `json:"translation"`
	Article            string    `json:"article,omitempty"`
	ExampleSentence    string    `json:"example_sentence,omitempty"`
	ExampleTranslation string    `json:"example_translation,omitempty"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// WordHandler handles vocabulary-related HTTP requests
type WordHandler struct {
	wordService service.WordService
	logger      *slog.Logger
}

// NewWordHandler creates a new WordHandler
func NewWordHandler(wordService service.WordService, log *slog.Logger) *WordHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for WordHandler")
	}

	return &WordHandler{
		wordService: wordService,
		logger:      log.With(slog.String("component", "word_handler")),
	}
}

// UpdateStatus handles POST /words/{id}/status requests.
// The update runs asynchronously; the response is 202 Accepted with a job
// ID the client can poll.
func (h *WordHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	pathWordID := chi.URLParam(r, "id")
	wordID, err := uuid.Parse(pathWordID)
	if err != nil {
		log.Warn("invalid word ID format", slog.String("word_id", pathWordID))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid word ID format")
		return
	}

	var req UpdateWordStatusRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("failed to decode request body", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		log.Warn("invalid word status request", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request data")
		return
	}

	jobID, err := h.wordService.EnqueueWordStatusUpdate(
		r.Context(),
		userID,
		wordID,
		domain.WordStatus(req.Status),
	)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err),
			"Failed to enqueue word status update", err)
		return
	}

	log.Debug("word status update accepted",
		slog.String("job_id", jobID.String()),
		slog.String("word_id", wordID.String()),
		slog.String("status", req.Status))
	shared.RespondWithJSON(w, r, http.StatusAccepted, JobAcceptedResponse{JobID: jobID.String()})
}

// ListWords handles GET /words requests.
// The status query parameter selects which vocabulary bucket to return;
// it defaults to known.
func (h *WordHandler) ListWords(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	status := r.URL.Query().Get("status")
	if status == "" {
		status = string(domain.WordStatusKnown)
	}
	if !domain.IsValidWordStatus(domain.WordStatus(status)) {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid word status")
		return
	}

	var (
		words []*domain.Word
		err   error
	)
	switch domain.WordStatus(status) {
	case domain.WordStatusKnown:
		words, err = h.wordService.GetKnownWords(r.Context(), userID)
	case domain.WordStatusUnknown:
		words, err = h.wordService.GetUnknownWords(r.Context(), userID)
	default:
		words, err = h.wordService.GetLearningWords(r.Context(), userID)
	}
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err),
			"Failed to list words", err)
		return
	}

	responses := make([]WordResponse, 0, len(words))
	for _, word := range words {
		responses = append(responses, wordToResponse(word))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

func wordToResponse(word *domain.Word) WordResponse {
	return WordResponse{
		ID:                 word.ID.String(),
		Lemma:              word.Lemma,
		Translation:        word.Translation,
		Article:            word.Article,
		ExampleSentence:    word.ExampleSentence,
		ExampleTranslation: word.ExampleTranslation,
		Status:             string(word.Status),
		CreatedAt:          word.CreatedAt,
		UpdatedAt:          word.UpdatedAt,
	}
}
