package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
	"github.com/custodia-labs/scheme-research/internal/core/ports/driven"
	"github.com/custodia-labs/scheme-research/internal/core/ports/driving"
	"github.com/custodia-labs/scheme-research/internal/logger"
)

// Ensure RetrievalSession implements the interface.
var _ driving.RetrievalService = (*RetrievalSession)(nil)

// RetrievalSession owns one vector index and one chat history and runs the
// ingest and answer pipelines against them.
//
// The index is copy-on-write: ingestion builds a candidate index, persists
// it, and only then swaps it in, so readers always see a complete index and
// a failed ingest leaves both memory and store untouched. Ingest, Save and
// Load are serialised by writeMu; mu guards the index pointer and history.
type RetrievalSession struct {
	writeMu sync.Mutex
	mu      sync.RWMutex
	index   *VectorIndex
	history *domain.ChatHistory

	embedder    driven.EmbeddingService
	indexer     *Indexer
	loader      driven.DocumentLoader
	synthesizer driven.AnswerSynthesizer
	store       driven.IndexStore
	metric      domain.DistanceMetric
	now         func() time.Time
}

// NewRetrievalSession creates a session with an empty index.
// store may be nil, in which case nothing is persisted.
func NewRetrievalSession(
	embedder driven.EmbeddingService,
	loader driven.DocumentLoader,
	synthesizer driven.AnswerSynthesizer,
	store driven.IndexStore,
	metric domain.DistanceMetric,
) (*RetrievalSession, error) {
	if embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if synthesizer == nil {
		return nil, fmt.Errorf("%w: synthesizer is required", domain.ErrInvalidInput)
	}
	index, err := NewVectorIndex(metric, 0)
	if err != nil {
		return nil, err
	}
	return &RetrievalSession{
		index:       index,
		history:     domain.NewChatHistory(),
		embedder:    embedder,
		indexer:     NewIndexer(embedder),
		loader:      loader,
		synthesizer: synthesizer,
		store:       store,
		metric:      metric,
		now:         time.Now,
	}, nil
}

// Ingest loads urls, embeds the loaded documents and installs the result
// as the session index according to mode. The empty mode means merge.
func (s *RetrievalSession) Ingest(
	ctx context.Context, urls []string, mode domain.IngestMode,
) (*domain.IngestReport, error) {
	logger.Section("Ingest")
	if len(urls) == 0 {
		return nil, domain.ErrEmptyInput
	}
	if mode == "" {
		mode = domain.IngestMerge
	}
	if !mode.IsValid() {
		return nil, fmt.Errorf("%w: ingest mode %q", domain.ErrInvalidInput, mode)
	}
	if s.loader == nil {
		return nil, fmt.Errorf("%w: no document loader configured", domain.ErrInvalidInput)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	logger.Debug("Loading %d URLs (mode=%s)", len(urls), mode)
	start := time.Now()
	loaded, err := s.loader.Load(ctx, urls)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	logger.Elapsed("load", start)
	if len(loaded) == 0 {
		return nil, domain.ErrNoDocuments
	}
	logger.Info("Loaded %d of %d URLs", len(loaded), len(urls))

	current := s.currentIndex()
	var candidate *VectorIndex
	switch {
	case mode == domain.IngestReplace || current.Len() == 0:
		candidate, err = s.indexer.Build(ctx, s.metric, loaded)
	default:
		if current.Metric() != s.metric {
			return nil, fmt.Errorf("%w: index uses %s, configured %s (re-ingest with replace)",
				domain.ErrMetricMismatch, current.Metric(), s.metric)
		}
		candidate = current.Clone()
		err = s.indexer.Add(ctx, candidate, loaded)
	}
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		if err := s.store.Save(ctx, candidate.Snapshot()); err != nil {
			return nil, fmt.Errorf("persist index: %w", err)
		}
		logger.Debug("Persisted %d documents to %s", candidate.Len(), s.store.Path())
	}

	s.mu.Lock()
	s.index = candidate
	s.mu.Unlock()

	return &domain.IngestReport{
		Requested: len(urls),
		Loaded:    len(loaded),
		Skipped:   skippedURLs(urls, loaded),
		IndexSize: candidate.Len(),
		Mode:      mode,
	}, nil
}

// skippedURLs returns the requested URLs that produced no document.
// Duplicates are matched one for one.
func skippedURLs(urls []string, loaded []domain.LoadedDocument) []string {
	remaining := make(map[string]int, len(loaded))
	for _, l := range loaded {
		remaining[l.Source]++
	}
	var skipped []string
	for _, u := range urls {
		if remaining[u] > 0 {
			remaining[u]--
			continue
		}
		skipped = append(skipped, u)
	}
	return skipped
}

// Answer embeds query, retrieves the nearest document and synthesizes a
// turn from it. A query with no match yields the no-information turn rather
// than an error. Only successful turns are added to the history.
func (s *RetrievalSession) Answer(ctx context.Context, query string) (domain.ChatTurn, error) {
	logger.Section("Answer")
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.ChatTurn{}, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	logger.Debug("Query: %q", query)

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return domain.ChatTurn{}, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
	}

	results, err := s.currentIndex().Search(vector, 1)
	if err != nil {
		return domain.ChatTurn{}, err
	}

	turn := domain.ChatTurn{Query: query, AskedAt: s.now()}
	if len(results) == 0 {
		logger.Info("No documents indexed, returning no-information answer")
		turn.Answer = domain.NoRelevantInformation
	} else {
		top := results[0]
		logger.Debug("Top document %s (%s) distance=%.4f", top.Document.ID, top.Document.Source, top.Distance)

		synthesis, err := s.synthesizer.Synthesize(ctx, query, top.Document.Content)
		if err != nil {
			if !errors.Is(err, domain.ErrSynthesis) {
				err = fmt.Errorf("%w: %w", domain.ErrSynthesis, err)
			}
			return domain.ChatTurn{}, err
		}
		turn.Answer = synthesis.Answer
		turn.Summary = synthesis.Summary
		turn.Source = top.Document.Source
	}

	s.mu.Lock()
	turn = s.history.Append(turn)
	s.mu.Unlock()
	return turn, nil
}

// Save persists the current index.
func (s *RetrievalSession) Save(ctx context.Context) error {
	if s.store == nil {
		return fmt.Errorf("%w: no index store configured", domain.ErrInvalidInput)
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	idx := s.currentIndex()
	if err := s.store.Save(ctx, idx.Snapshot()); err != nil {
		return fmt.Errorf("save index: %w", err)
	}
	logger.Info("Saved %d documents to %s", idx.Len(), s.store.Path())
	return nil
}

// Load replaces the session index with the persisted one. A missing store
// leaves the index as it is and reports false. A corrupt store is returned
// as an error wrapping domain.ErrStoreCorrupt.
func (s *RetrievalSession) Load(ctx context.Context) (bool, error) {
	if s.store == nil {
		return false, nil
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	snapshot, err := s.store.Load(ctx)
	if errors.Is(err, domain.ErrStoreNotFound) {
		logger.Info("No saved index at %s, starting empty", s.store.Path())
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load index: %w", err)
	}

	restored, err := RestoreVectorIndex(snapshot)
	if err != nil {
		return false, fmt.Errorf("load index: %w", err)
	}
	if want := s.embedder.Dimensions(); want > 0 && restored.Len() > 0 && restored.Dimensions() != want {
		return false, fmt.Errorf("load index: %w: %s has %d dimensions, %s produces %d",
			domain.ErrDimensionMismatch, s.store.Path(), restored.Dimensions(), s.embedder.ModelName(), want)
	}
	if restored.Metric() != s.metric {
		logger.Warn("Saved index uses %s distance, configured %s; keeping %s",
			restored.Metric(), s.metric, restored.Metric())
	}

	s.mu.Lock()
	s.index = restored
	s.mu.Unlock()
	logger.Info("Loaded %d documents from %s", restored.Len(), s.store.Path())
	return true, nil
}

// History returns the turns answered so far, oldest first.
func (s *RetrievalSession) History() []domain.ChatTurn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Turns()
}

// IndexSize returns the number of indexed documents.
func (s *RetrievalSession) IndexSize() int {
	return s.currentIndex().Len()
}

// Documents returns the indexed documents in insertion order.
func (s *RetrievalSession) Documents() []domain.Document {
	return s.currentIndex().Documents()
}

// StorePath returns where the index is persisted, or "" without a store.
func (s *RetrievalSession) StorePath() string {
	if s.store == nil {
		return ""
	}
	return s.store.Path()
}

// Synthesizer returns the configured answer strategy.
func (s *RetrievalSession) Synthesizer() domain.SynthesizerKind {
	return s.synthesizer.Kind()
}

// currentIndex returns the installed index. Installed indexes are never
// mutated, so the caller may use it without holding the lock.
func (s *RetrievalSession) currentIndex() *VectorIndex {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}
