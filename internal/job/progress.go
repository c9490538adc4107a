package job

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Phase is one named, ordered step within a job kind's execution, used for
// progress reporting to polling clients.
type Phase struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Catalog is the fixed, ordered list of phases for one job kind. The
// catalog is defined once; its length is the job's total step count and a
// phase's position is its stable ordinal index.
type Catalog []Phase

// PhaseInfo is the phase portion of a progress snapshot.
type PhaseInfo struct {
	Name        string `json:"name"`
	Index       int    `json:"index"`
	Description string `json:"description"`
}

// ProgressSnapshot is the progress value written atomically onto a job's
// status record at each phase transition. Across successive polls of one
// job, Phase.Index is non-decreasing and bounded by TotalSteps.
type ProgressSnapshot struct {
	Phase      PhaseInfo `json:"phase"`
	TotalSteps int       `json:"total_steps"`
}

// IndexOf returns the ordinal index of the named phase, or -1 when the
// catalog does not contain it.
func (c Catalog) IndexOf(name string) int {
	for i, p := range c {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Phase names of the story generation catalog, in execution order.
const (
	PhaseStart           = "start"
	PhaseFetchVocabulary = "fetch_vocabulary"
	PhaseGenerateText    = "generate_text"
	PhaseTranslate       = "translate"
	PhaseExtractLemmas   = "extract_lemmas"
	PhaseBuildExamples   = "build_examples"
	PhaseSynthesizeAudio = "synthesize_audio"
	PhasePersist         = "persist"
)

// StoryPhases is the phase catalog for generateStory jobs.
var StoryPhases = Catalog{
	{Name: PhaseStart, Description: "Starting story generation"},
	{Name: PhaseFetchVocabulary, Description: "Fetching your vocabulary"},
	{Name: PhaseGenerateText, Description: "Writing the story"},
	{Name: PhaseTranslate, Description: "Translating the story"},
	{Name: PhaseExtractLemmas, Description: "Finding new words"},
	{Name: PhaseBuildExamples, Description: "Building example sentences"},
	{Name: PhaseSynthesizeAudio, Description: "Narrating the story"},
	{Name: PhasePersist, Description: "Saving your story"},
}

// Tracker is the single entry point through which a job execution reports
// phase transitions. It enforces the catalog's declared order: skipping
// forward is allowed (e.g. for an empty stage), while an advance at or
// before the last stored phase writes nothing. A retry attempt re-runs its
// handler from the first phase, so the tracker is seeded from the record's
// persisted progress and early phases of the re-run are absorbed silently.
// Polling clients therefore observe a monotonic progress bar across the
// whole life of the job, retries included.
type Tracker struct {
	store     Store
	jobID     uuid.UUID
	catalog   Catalog
	lastIndex int
	logger    *slog.Logger
}

// NewTracker creates a progress tracker bound to one job execution. The
// progress argument is the record's last persisted snapshot, nil for a
// first attempt.
func NewTracker(store Store, jobID uuid.UUID, catalog Catalog, progress *ProgressSnapshot, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	lastIndex := -1
	if progress != nil {
		lastIndex = progress.Phase.Index
	}
	return &Tracker{
		store:     store,
		jobID:     jobID,
		catalog:   catalog,
		lastIndex: lastIndex,
		logger:    logger.With("component", "phase_tracker", "job_id", jobID),
	}
}

// Advance writes a progress snapshot for the named phase onto the job's
// status record. Returns an error if the phase is not in the catalog. A
// phase at or before the last stored one is skipped without writing, so the
// persisted index never decreases.
func (t *Tracker) Advance(ctx context.Context, phaseName string) error {
	idx := t.catalog.IndexOf(phaseName)
	if idx < 0 {
		return fmt.Errorf("phase %q is not in the catalog", phaseName)
	}
	if idx <= t.lastIndex {
		t.logger.Debug("phase already reported, skipping",
			"phase", phaseName,
			"index", idx,
			"last_index", t.lastIndex)
		return nil
	}

	snapshot := ProgressSnapshot{
		Phase: PhaseInfo{
			Name:        phaseName,
			Index:       idx,
			Description: t.catalog[idx].Description,
		},
		TotalSteps: len(t.catalog),
	}

	if err := t.store.WriteProgress(ctx, t.jobID, snapshot); err != nil {
		return fmt.Errorf("failed to write progress for phase %q: %w", phaseName, err)
	}

	t.lastIndex = idx
	t.logger.Debug("phase advanced",
		"phase", phaseName,
		"index", idx,
		"total_steps", len(t.catalog))
	return nil
}
