package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver

	"github.com/lingotale/lingotale-api/internal/domain"
	"github.com/lingotale/lingotale-api/internal/job"
	"github.com/lingotale/lingotale-api/internal/quota"
	"github.com/lingotale/lingotale-api/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testDB returns a *sql.DB handle that is never dialed. Tests exercising
// the transactional save path live at the integration level; unit tests
// only need a non-nil handle for constructor validation.
func testDB() *sql.DB {
	db, err := sql.Open("pgx", "postgres://localhost:1/unused")
	if err != nil {
		panic(err)
	}
	return db
}

// mockQueue implements JobQueue.
type mockQueue struct {
	mu         sync.Mutex
	enqueueErr error
	status     *job.Status
	statusErr  error

	gotKind    string
	gotPayload json.RawMessage
	enqueues   int
	nextID     uuid.UUID
}

func (m *mockQueue) Enqueue(ctx context.Context, kind string, payload json.RawMessage) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enqueues++
	m.gotKind = kind
	m.gotPayload = payload
	if m.enqueueErr != nil {
		return uuid.Nil, m.enqueueErr
	}
	if m.nextID == uuid.Nil {
		m.nextID = uuid.New()
	}
	return m.nextID, nil
}

func (m *mockQueue) GetStatus(ctx context.Context, id uuid.UUID) (*job.Status, error) {
	return m.status, m.statusErr
}

// mockQuota implements quota.Store. A zero limit means unlimited.
type mockQuota struct {
	limit  int
	incErr error
	decErr error

	increments int
	decrements int
}

func (m *mockQuota) Increment(ctx context.Context, userID uuid.UUID) (int, error) {
	if m.incErr != nil {
		return 0, m.incErr
	}
	if m.limit > 0 && m.increments >= m.limit {
		return m.increments, quota.ErrLimitExceeded
	}
	m.increments++
	return m.increments, nil
}

func (m *mockQuota) Decrement(ctx context.Context, userID uuid.UUID) error {
	if m.decErr != nil {
		return m.decErr
	}
	m.decrements++
	return nil
}

func (m *mockQuota) IsLimitReached(ctx context.Context, userID uuid.UUID) (bool, error) {
	return m.limit > 0 && m.increments >= m.limit, nil
}

func (m *mockQuota) Remove(ctx context.Context, userID uuid.UUID) error {
	return nil
}

// mockWordStore implements store.WordStore.
type mockWordStore struct {
	words        map[uuid.UUID]*domain.Word
	getErr       error
	updateErr    error
	updateCalls  int
	byStatus     []*domain.Word
	byStatusErr  error
	updatedWord  uuid.UUID
	updatedState domain.WordStatus
}

func newMockWordStore() *mockWordStore {
	return &mockWordStore{words: make(map[uuid.UUID]*domain.Word)}
}

func (m *mockWordStore) Create(ctx context.Context, word *domain.Word) error {
	m.words[word.ID] = word
	return nil
}

func (m *mockWordStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Word, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	word, ok := m.words[id]
	if !ok {
		return nil, store.ErrWordNotFound
	}
	return word, nil
}

func (m *mockWordStore) GetByUserAndLemma(ctx context.Context, userID uuid.UUID, lemma string) (*domain.Word, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, word := range m.words {
		if word.UserID == userID && strings.EqualFold(word.Lemma, lemma) {
			return word, nil
		}
	}
	return nil, store.ErrWordNotFound
}

func (m *mockWordStore) FindByUserAndStatus(ctx context.Context, userID uuid.UUID, status domain.WordStatus) ([]*domain.Word, error) {
	return m.byStatus, m.byStatusErr
}

func (m *mockWordStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.WordStatus) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updateCalls++
	m.updatedWord = id
	m.updatedState = status
	return nil
}

func (m *mockWordStore) WithTx(tx *sql.Tx) store.WordStore {
	return m
}

// mockStoryStore implements store.StoryStore.
type mockStoryStore struct {
	stories map[uuid.UUID]*domain.Story
	getErr  error
}

func newMockStoryStore() *mockStoryStore {
	return &mockStoryStore{stories: make(map[uuid.UUID]*domain.Story)}
}

func (m *mockStoryStore) Create(ctx context.Context, story *domain.Story) error {
	m.stories[story.ID] = story
	return nil
}

func (m *mockStoryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Story, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	story, ok := m.stories[id]
	if !ok {
		return nil, store.ErrStoryNotFound
	}
	return story, nil
}

func (m *mockStoryStore) LinkWords(ctx context.Context, storyID uuid.UUID, wordIDs []uuid.UUID) error {
	return nil
}

func (m *mockStoryStore) WithTx(tx *sql.Tx) store.StoryStore {
	return m
}
