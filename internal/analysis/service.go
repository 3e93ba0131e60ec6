package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spacesedan/kyokan/internal/extraction"
	"github.com/spacesedan/kyokan/internal/models"
	"github.com/spacesedan/kyokan/internal/scoring"
)

const defaultAITimeout = 60 * time.Second

// Model reads a screenshot and answers in free-form text.
type Model interface {
	Observe(ctx context.Context, req models.VisionRequest) (string, error)
}

// ImageEncoder prepares an upload for embedding in a model request.
type ImageEncoder interface {
	Encode(r io.Reader) (string, error)
}

// ResultStore persists analysis results by ID.
type ResultStore interface {
	Save(ctx context.Context, result models.AnalysisResult) error
	List(ctx context.Context) ([]string, error)
	Get(ctx context.Context, id string) (*models.AnalysisResult, error)
}

type Options struct {
	Table          scoring.TableVariant
	AITimeout      time.Duration
	IncludeRawText bool
	SystemPrompt   string
	UserPrompt     string
}

// Service runs the screenshot → text → counts → rate → tier pipeline.
type Service struct {
	model     Model
	encoder   ImageEncoder
	store     ResultStore
	extractor *extraction.Extractor
	opts      Options

	newID func() string
	now   func() time.Time
}

// NewService wires the pipeline. store may be nil to disable persistence.
func NewService(model Model, encoder ImageEncoder, store ResultStore, opts Options) *Service {
	if opts.Table == "" {
		opts.Table = scoring.VariantCategory
	}
	if opts.AITimeout <= 0 {
		opts.AITimeout = defaultAITimeout
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}
	if opts.UserPrompt == "" {
		opts.UserPrompt = DefaultUserPrompt
	}
	return &Service{
		model:     model,
		encoder:   encoder,
		store:     store,
		extractor: extraction.NewExtractor(extraction.DefaultRules),
		opts:      opts,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

func (s *Service) PersistenceEnabled() bool {
	return s.store != nil
}

// Analyze runs the full pipeline for one uploaded screenshot. declared
// overrides whatever category the model reports.
func (s *Service) Analyze(ctx context.Context, image io.Reader, declared models.Category) (*models.AnalysisResult, error) {
	imageURI, err := s.encoder.Encode(image)
	if err != nil {
		return nil, fmt.Errorf("prepare image: %w", err)
	}

	text, err := s.observe(ctx, imageURI)
	if err != nil {
		return nil, err
	}

	result := s.Score(text, declared)
	s.persist(ctx, &result)
	return &result, nil
}

func (s *Service) observe(ctx context.Context, imageURI string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.AITimeout)
	defer cancel()

	start := time.Now()
	text, err := s.model.Observe(ctx, models.VisionRequest{
		SystemPrompt: s.opts.SystemPrompt,
		UserPrompt:   s.opts.UserPrompt,
		ImageURI:     imageURI,
	})
	if err != nil {
		// the client may report a plain transport error after our deadline fired
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		slog.Error("[AnalysisService] model call failed",
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return "", &AIServiceError{Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &AIServiceError{Err: ErrEmptyResponse}
	}

	slog.Info("[AnalysisService] model answered",
		slog.Duration("elapsed", time.Since(start)),
		slog.Int("length", len(text)))
	return text, nil
}

// Score derives a result from model text alone. It never fails: counters
// that cannot be read default to zero.
func (s *Service) Score(text string, declared models.Category) models.AnalysisResult {
	counts := s.extractor.Extract(text)

	category := declared
	if category == "" {
		category = extraction.ExtractCategory(text)
	}

	c := scoring.Evaluate(counts, category, s.opts.Table)

	result := models.AnalysisResult{
		Likes:       counts.Likes,
		Impressions: counts.Impressions,
		KyokanRate:  c.Rate,
		Comment:     c.Comment(),
		Tier:        c.Tier.Label,
		Category:    category,
		Advisories:  c.AdvisoryCodes(),
		AIComment:   extraction.ExtractCommentary(text),
		CreatedAt:   s.now().UTC(),
	}
	if s.opts.IncludeRawText {
		result.RawText = text
	}

	slog.Debug("[AnalysisService] scored",
		slog.Int64("likes", result.Likes),
		slog.Int64("impressions", result.Impressions),
		slog.Float64("rate", result.KyokanRate),
		slog.String("tier", result.Tier))
	return result
}

// persist stores result when a store is configured. Failures only drop the ID.
func (s *Service) persist(ctx context.Context, result *models.AnalysisResult) {
	if s.store == nil {
		return
	}

	result.ResultID = s.newID()
	if err := s.store.Save(ctx, *result); err != nil {
		slog.Warn("[AnalysisService] failed to persist result",
			slog.String("result_id", result.ResultID),
			slog.String("error", err.Error()))
		result.ResultID = ""
		return
	}
	slog.Info("[AnalysisService] result persisted", slog.String("result_id", result.ResultID))
}

func (s *Service) Results(ctx context.Context) ([]string, error) {
	if s.store == nil {
		return nil, ErrPersistenceDisabled
	}
	return s.store.List(ctx)
}

func (s *Service) Result(ctx context.Context, id string) (*models.AnalysisResult, error) {
	if s.store == nil {
		return nil, ErrPersistenceDisabled
	}
	return s.store.Get(ctx, id)
}
