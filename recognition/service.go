package recognition

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"sync/atomic"
)

// Service wires the pipeline together: normalizer, classifier, score
// combination and candidate ranking. One Recognize call is one synchronous
// computation; the service holds no per-request state, so concurrent calls
// only share the immutable store and the personalization read path.
type Service struct {
	classifier Classifier
	store      *Store
	prefs      Personalization
	normalizer *Normalizer
	ranker     *Ranker

	cfgMu sync.RWMutex
	cfg   Config

	generation atomic.Uint64
	logger     *log.Logger
}

// NewService constructs a service with the given collaborators and
// configuration. The classifier is required; prefs may be nil.
func NewService(classifier Classifier, store *Store, prefs Personalization, cfg Config, logger *log.Logger) (*Service, error) {
	if classifier == nil {
		return nil, errors.New("classifier is required")
	}
	if store == nil {
		return nil, errors.New("mapping store is required")
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ranker, err := NewRanker(store, prefs, cfg.Ranking)
	if err != nil {
		return nil, err
	}
	return &Service{
		classifier: classifier,
		store:      store,
		prefs:      prefs,
		normalizer: NewNormalizer(cfg.Normalizer),
		ranker:     ranker,
		cfg:        cfg,
		logger:     logger,
	}, nil
}

// Close releases classifier resources.
func (s *Service) Close() error {
	if s.classifier != nil {
		return s.classifier.Close()
	}
	return nil
}

// Config returns a copy of the current configuration.
func (s *Service) Config() Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg.Clone()
}

// Recognize runs the full chain on one raster: normalize, classify, softmax
// top-K, rank. The returned generation increases per call; a caller with
// overlapping requests keeps only the highest generation it has seen.
func (s *Service) Recognize(ctx context.Context, img image.Image) (Result, error) {
	gen := s.generation.Add(1)
	res := Result{Generation: gen}
	cfg := s.Config()

	tensor, err := s.normalizer.Normalize(img)
	if err != nil {
		return res, fmt.Errorf("normalize: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	scores, err := s.classifier.Predict(ctx, tensor)
	if err != nil {
		if errors.Is(err, ErrClassifierUnavailable) {
			s.logf("recognize: classifier failed, no suggestions: %v", err)
			return res, err
		}
		return res, fmt.Errorf("classify: %w: %v", ErrClassifierUnavailable, err)
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	hits, err := TopK(scores, cfg.Classifier.ClassCount, cfg.Ranking.TopKSymbols)
	if err != nil {
		return res, err
	}

	res.Suggestions = s.ranker.Rank(hits)
	return res, nil
}

func (s *Service) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
