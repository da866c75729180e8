// Package categorize turns a free-text complaint into a category, a confidence
// score and a suggested institution. The language model is tried first; any
// failure silently falls back to the keyword heuristic in package analysis.
package categorize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"igire/backend/internal/analysis"
	"igire/backend/internal/models"
	"igire/backend/internal/routing"

	"go.uber.org/zap"
)

// Completer is a hosted language model answering in JSON.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Suggester resolves an institution for a category.
type Suggester interface {
	Suggest(ctx context.Context, name string, category models.Category) routing.Suggestion
}

// Observer is notified of which path produced each result.
type Observer func(source models.CategorySource)

// Result is what callers receive. It never carries an error.
type Result struct {
	Category             models.Category       `json:"category"`
	Confidence           int                   `json:"confidence"`
	SuggestedInstitution string                `json:"suggestedInstitution"`
	Institution          *models.Institution   `json:"-"`
	Source               models.CategorySource `json:"source"`
}

const systemPrompt = `You categorize citizen complaints submitted to a Rwandan public service portal.
Complaints may be written in English, Kinyarwanda or French.
Reply with a single JSON object and nothing else:
{"category": one of "water","sanitation","roads","electricity","other",
 "confidence": integer 0-100,
 "suggestedInstitution": name of the Rwandan institution best placed to resolve it}`

// Service categorizes complaint descriptions.
type Service struct {
	llm       Completer
	suggester Suggester
	logger    *zap.Logger
	observe   Observer
}

// NewService builds a categorizer. llm may be nil, in which case only the keyword path runs.
func NewService(llm Completer, suggester Suggester, logger *zap.Logger) *Service {
	return &Service{llm: llm, suggester: suggester, logger: logger}
}

// OnResult registers a callback fired for every categorization.
func (s *Service) OnResult(fn Observer) {
	s.observe = fn
}

type llmAnswer struct {
	Category             *string  `json:"category"`
	Confidence           *float64 `json:"confidence"`
	SuggestedInstitution string   `json:"suggestedInstitution"`
}

var errMissingFields = errors.New("missing required fields")

// Categorize never fails; it degrades to the keyword heuristic.
func (s *Service) Categorize(ctx context.Context, description string) Result {
	var (
		res           Result
		suggestedName string
	)

	answer, err := s.ask(ctx, description)
	if err == nil {
		res = Result{
			Category:   models.ParseCategory(*answer.Category),
			Confidence: int(math.Round(clamp(*answer.Confidence, 0, 100))),
			Source:     models.SourceLLM,
		}
		suggestedName = answer.SuggestedInstitution
	} else {
		if s.llm != nil {
			s.logger.Warn("LLM categorization failed, using keyword fallback", zap.Error(err))
		}
		kw := analysis.Classify(description)
		res = Result{Category: kw.Category, Confidence: kw.Confidence, Source: models.SourceKeyword}
	}

	suggestion := s.suggester.Suggest(ctx, suggestedName, res.Category)
	res.SuggestedInstitution = suggestion.Name
	res.Institution = suggestion.Institution

	if s.observe != nil {
		s.observe(res.Source)
	}
	return res
}

// Route suggests an institution for a category that was decided without the model,
// such as one the reporter picked.
func (s *Service) Route(ctx context.Context, category models.Category) string {
	return s.suggester.Suggest(ctx, "", category).Name
}

func (s *Service) ask(ctx context.Context, description string) (*llmAnswer, error) {
	if s.llm == nil {
		return nil, errors.New("no language model configured")
	}
	raw, err := s.llm.Complete(ctx, systemPrompt, "Complaint: "+description)
	if err != nil {
		return nil, err
	}
	return parseAnswer(raw)
}

func parseAnswer(raw string) (*llmAnswer, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var answer llmAnswer
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &answer); err != nil {
		return nil, fmt.Errorf("malformed model output: %w", err)
	}
	if answer.Category == nil || answer.Confidence == nil {
		return nil, errMissingFields
	}
	return &answer, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
