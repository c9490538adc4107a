package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingotale/lingotale-api/internal/domain"
)

// mockWordService implements service.WordService.
type mockWordService struct {
	enqueueID  uuid.UUID
	enqueueErr error
	words      []*domain.Word
	wordsErr   error

	gotWordID uuid.UUID
	gotStatus domain.WordStatus
}

func (m *mockWordService) EnqueueWordStatusUpdate(ctx context.Context, userID, wordID uuid.UUID, status domain.WordStatus) (uuid.UUID, error) {
	m.gotWordID = wordID
	m.gotStatus = status
	return m.enqueueID, m.enqueueErr
}

func (m *mockWordService) UpdateWordStatus(ctx context.Context, userID, wordID uuid.UUID, status domain.WordStatus) error {
	return nil
}

func (m *mockWordService) GetKnownWords(ctx context.Context, userID uuid.UUID) ([]*domain.Word, error) {
	return m.words, m.wordsErr
}

func (m *mockWordService) GetUnknownWords(ctx context.Context, userID uuid.UUID) ([]*domain.Word, error) {
	return m.words, m.wordsErr
}

func (m *mockWordService) GetLearningWords(ctx context.Context, userID uuid.UUID) ([]*domain.Word, error) {
	return m.words, m.wordsErr
}

func TestUpdateWordStatusHandler(t *testing.T) {
	t.Parallel()

	t.Run("accepted", func(t *testing.T) {
		t.Parallel()
		svc := &mockWordService{enqueueID: uuid.New()}
		handler := NewWordHandler(svc, testLogger())

		wordID := uuid.New()
		rr := httptest.NewRecorder()
		req := withURLParam(
			authedRequest(http.MethodPost, "/api/words/x/status", `{"status":"known"}`, uuid.New()),
			"id", wordID.String())
		handler.UpdateStatus(rr, req)

		require.Equal(t, http.StatusAccepted, rr.Code)

		var resp JobAcceptedResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, svc.enqueueID.String(), resp.JobID)
		assert.Equal(t, wordID, svc.gotWordID)
		assert.Equal(t, domain.WordStatusKnown, svc.gotStatus)
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		t.Parallel()
		handler := NewWordHandler(&mockWordService{}, testLogger())

		rr := httptest.NewRecorder()
		req := withURLParam(
			authedRequest(http.MethodPost, "/api/words/x/status", `{"status":"mastered"}`, uuid.New()),
			"id", uuid.New().String())
		handler.UpdateStatus(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("bad word ID rejected", func(t *testing.T) {
		t.Parallel()
		handler := NewWordHandler(&mockWordService{}, testLogger())

		rr := httptest.NewRecorder()
		req := withURLParam(
			authedRequest(http.MethodPost, "/api/words/x/status", `{"status":"known"}`, uuid.New()),
			"id", "nope")
		handler.UpdateStatus(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing user is unauthorized", func(t *testing.T) {
		t.Parallel()
		handler := NewWordHandler(&mockWordService{}, testLogger())

		rr := httptest.NewRecorder()
		req := withURLParam(
			httptest.NewRequest(http.MethodPost, "/api/words/x/status", nil),
			"id", uuid.New().String())
		handler.UpdateStatus(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestListWordsHandler(t *testing.T) {
	t.Parallel()

	t.Run("returns vocabulary", func(t *testing.T) {
		t.Parallel()
		word, err := domain.NewWord(uuid.New(), "Hund", "dog", "der")
		require.NoError(t, err)

		handler := NewWordHandler(&mockWordService{words: []*domain.Word{word}}, testLogger())

		rr := httptest.NewRecorder()
		handler.ListWords(rr, authedRequest(http.MethodGet, "/api/words?status=known", "", uuid.New()))

		require.Equal(t, http.StatusOK, rr.Code)

		var resp []WordResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp, 1)
		assert.Equal(t, "Hund", resp[0].Lemma)
		assert.Equal(t, "dog", resp[0].Translation)
	})

	t.Run("invalid status filter rejected", func(t *testing.T) {
		t.Parallel()
		handler := NewWordHandler(&mockWordService{}, testLogger())

		rr := httptest.NewRecorder()
		handler.ListWords(rr, authedRequest(http.MethodGet, "/api/words?status=bogus", "", uuid.New()))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
