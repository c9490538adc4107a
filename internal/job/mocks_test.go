package job

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lingotale/lingotale-api/internal/domain"
	"github.com/lingotale/lingotale-api/internal/generation"
	"github.com/lingotale/lingotale-api/internal/quota"
)

// memStore is an in-memory Store for queue and worker tests.
type memStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*Record

	saveErr       error
	markActiveErr error
	markFailedErr error
}

func newMemStore() *memStore {
	return &memStore{records: make(map[uuid.UUID]*Record)}
}

func (s *memStore) Save(ctx context.Context, record *Record) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *record
	s.records[record.ID] = &clone
	return nil
}

func (s *memStore) MarkActive(ctx context.Context, id uuid.UUID) (*Record, error) {
	if s.markActiveErr != nil {
		return nil, s.markActiveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	record.State = StateActive
	record.Attempts++
	record.UpdatedAt = time.Now().UTC()
	clone := *record
	return &clone, nil
}

func (s *memStore) MarkPending(ctx context.Context, id uuid.UUID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return ErrJobNotFound
	}
	record.State = StatePending
	record.FailedReason = reason
	record.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *memStore) MarkCompleted(ctx context.Context, id uuid.UUID, value json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return ErrJobNotFound
	}
	record.State = StateCompleted
	record.Value = value
	record.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *memStore) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markFailedErr != nil {
		return s.markFailedErr
	}
	record, ok := s.records[id]
	if !ok {
		return ErrJobNotFound
	}
	record.State = StateFailed
	record.FailedReason = reason
	record.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *memStore) setMarkFailedErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markFailedErr = err
}

func (s *memStore) WriteProgress(ctx context.Context, id uuid.UUID, snapshot ProgressSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return ErrJobNotFound
	}
	record.Progress = &snapshot
	return nil
}

func (s *memStore) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	clone := *record
	return &clone, nil
}

func (s *memStore) ListByState(ctx context.Context, state State) ([]*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*Record
	for _, record := range s.records {
		if record.State == state {
			clone := *record
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (s *memStore) WithTx(tx *sql.Tx) Store {
	return s
}

// mockVocab implements VocabularyReader.
type mockVocab struct {
	known      []*domain.Word
	unknown    []*domain.Word
	knownErr   error
	unknownErr error
}

func (m *mockVocab) GetKnownWords(ctx context.Context, userID uuid.UUID) ([]*domain.Word, error) {
	return m.known, m.knownErr
}

func (m *mockVocab) GetUnknownWords(ctx context.Context, userID uuid.UUID) ([]*domain.Word, error) {
	return m.unknown, m.unknownErr
}

// mockGenerator implements generation.StoryGenerator.
type mockGenerator struct {
	text      string
	err       error
	gotWords  []string
	gotTopic  string
	callCount int
}

func (m *mockGenerator) GenerateStory(ctx context.Context, words []string, topic, languageCode string) (string, error) {
	m.callCount++
	m.gotWords = words
	m.gotTopic = topic
	return m.text, m.err
}

// mockTranslator implements generation.Translator.
type mockTranslator struct {
	chunks []domain.ChunkPair
	err    error
}

func (m *mockTranslator) TranslateChunks(ctx context.Context, text, targetLanguageCode string) ([]domain.ChunkPair, error) {
	return m.chunks, m.err
}

// mockLemmatizer implements generation.Lemmatizer.
type mockLemmatizer struct {
	lemmas       []generation.Lemma
	lemmasErr    error
	items        []domain.VocabularyItem
	itemsErr     error
	gotNewLemmas []generation.Lemma
}

func (m *mockLemmatizer) Lemmatize(ctx context.Context, text string) ([]generation.Lemma, error) {
	return m.lemmas, m.lemmasErr
}

func (m *mockLemmatizer) TranslateLemmas(ctx context.Context, lemmas []generation.Lemma, targetLanguageCode string) ([]domain.VocabularyItem, error) {
	m.gotNewLemmas = lemmas
	return m.items, m.itemsErr
}

// mockSpeech implements generation.Speech with recognizable byte markers
// so tests can assert segment ordering.
type mockSpeech struct {
	err error
}

func (m *mockSpeech) Synthesize(ctx context.Context, text string, isTargetLanguage bool) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	if isTargetLanguage {
		return []byte("T[" + text + "]"), nil
	}
	return []byte("S[" + text + "]"), nil
}

func (m *mockSpeech) Pause(length generation.PauseLength) []byte {
	if length == generation.PauseShort {
		return []byte("<p>")
	}
	return []byte("<P>")
}

// mockAudioStore implements generation.AudioStore.
type mockAudioStore struct {
	url      string
	err      error
	gotAudio []byte
}

func (m *mockAudioStore) PersistAudio(ctx context.Context, audio []byte) (string, error) {
	m.gotAudio = audio
	return m.url, m.err
}

// mockPersister implements StoryPersister.
type mockPersister struct {
	storyID  uuid.UUID
	err      error
	gotStory *domain.GeneratedStory
	gotUser  uuid.UUID
}

func (m *mockPersister) SaveGeneratedStory(ctx context.Context, userID uuid.UUID, story *domain.GeneratedStory) (uuid.UUID, error) {
	m.gotUser = userID
	m.gotStory = story
	return m.storyID, m.err
}

// mockQuotaStore implements quota.Store, counting calls.
type mockQuotaStore struct {
	mu         sync.Mutex
	decrements int
	increments int
	decErr     error
}

func (m *mockQuotaStore) Increment(ctx context.Context, userID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.increments++
	return m.increments, nil
}

func (m *mockQuotaStore) Decrement(ctx context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.decErr != nil {
		return m.decErr
	}
	m.decrements++
	return nil
}

func (m *mockQuotaStore) IsLimitReached(ctx context.Context, userID uuid.UUID) (bool, error) {
	return false, nil
}

func (m *mockQuotaStore) Remove(ctx context.Context, userID uuid.UUID) error {
	return nil
}

func (m *mockQuotaStore) decrementCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.decrements
}

var _ quota.Store = (*mockQuotaStore)(nil)

// mockWordUpdater implements WordUpdater.
type mockWordUpdater struct {
	err     error
	gotUser uuid.UUID
	gotWord uuid.UUID
	gotStat domain.WordStatus
	calls   int
}

func (m *mockWordUpdater) UpdateWordStatus(ctx context.Context, userID, wordID uuid.UUID, status domain.WordStatus) error {
	m.calls++
	m.gotUser = userID
	m.gotWord = wordID
	m.gotStat = status
	return m.err
}
