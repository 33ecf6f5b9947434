package narrative

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/lox/crashwatch/internal/figures"
	"github.com/lox/crashwatch/internal/metrics"
	"github.com/lox/crashwatch/internal/models"
	"github.com/lox/crashwatch/internal/stats"
)

const systemPrompt = `You write short explanatory copy for a public road-safety dashboard.
Write 3 to 5 plain paragraphs, separated by blank lines, describing the injury figures you are given.
Quote numbers exactly as given. No headings, no lists, no markdown.`

// Generator writes injury narratives with an OpenAI chat model.
type Generator struct {
	client openai.Client
	model  string
}

func NewGenerator(apiKey string) (*Generator, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key not set")
	}
	return &Generator{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  openai.ChatModelGPT4oMini,
	}, nil
}

// Generate writes paragraphs for view from the aggregate's totals. The
// title is kept from the static text.
func (g *Generator) Generate(ctx context.Context, view models.InjuryView, agg stats.InjuryAggregate) (Text, error) {
	base, ok := Static(view)
	if !ok {
		return Text{}, fmt.Errorf("unknown view %q", view)
	}

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(Prompt(view, agg)),
		},
		MaxCompletionTokens: openai.Int(600),
	})
	if err != nil {
		return Text{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Text{}, errors.New("no completion returned")
	}

	paragraphs := splitParagraphs(resp.Choices[0].Message.Content)
	if len(paragraphs) == 0 {
		return Text{}, errors.New("empty completion returned")
	}
	return Text{Title: base.Title, Paragraphs: paragraphs, Generated: true}, nil
}

// Prompt describes the aggregate in plain text for the model.
func Prompt(view models.InjuryView, agg stats.InjuryAggregate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Chart type: %s. Injuries attributed to identifiable causes, total %s.\n", view, figures.Count(agg.Total()))
	p := figures.DefaultPalette
	for _, sev := range models.Severities {
		fmt.Fprintf(&b, "%s: %s\n", p.SeverityLabel(sev), figures.Count(agg.SeverityTotal(sev)))
		for _, row := range agg.BySeverity(sev) {
			fmt.Fprintf(&b, "  %s: %s\n", row.Cause, figures.Count(row.Total))
		}
	}
	return b.String()
}

func splitParagraphs(s string) []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Writer produces narrative text for a view. *Generator implements it.
type Writer interface {
	Generate(ctx context.Context, view models.InjuryView, agg stats.InjuryAggregate) (Text, error)
}

// RetryAfter is how long a view serves static text after a failed
// generation before the writer is tried again.
const RetryAfter = 5 * time.Minute

// Service generates text at most once per view and falls back to the
// static text when no writer is configured, generation fails or another
// request is already generating that view. The lock is never held while the
// writer runs.
type Service struct {
	writer     Writer
	retryAfter time.Duration

	mu          sync.Mutex
	cache       map[models.InjuryView]Text
	failedUntil map[models.InjuryView]time.Time
	inflight    map[models.InjuryView]bool
}

// NewService returns a service backed by w. A nil w serves static text only.
func NewService(w Writer) *Service {
	return &Service{
		writer:      w,
		retryAfter:  RetryAfter,
		cache:       make(map[models.InjuryView]Text),
		failedUntil: make(map[models.InjuryView]time.Time),
		inflight:    make(map[models.InjuryView]bool),
	}
}

// Text returns the narrative for view. ok is false for an unknown view.
func (s *Service) Text(ctx context.Context, view models.InjuryView, agg stats.InjuryAggregate) (Text, bool) {
	fallback, ok := Static(view)
	if !ok {
		return Text{}, false
	}
	if s == nil || s.writer == nil {
		return fallback, true
	}

	s.mu.Lock()
	if t, ok := s.cache[view]; ok {
		s.mu.Unlock()
		return t, true
	}
	if s.inflight[view] || time.Now().Before(s.failedUntil[view]) {
		s.mu.Unlock()
		return fallback, true
	}
	s.inflight[view] = true
	s.mu.Unlock()

	t, err := s.writer.Generate(ctx, view, agg)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, view)
	if err != nil {
		s.failedUntil[view] = time.Now().Add(s.retryAfter)
		metrics.NarrativeCalls.WithLabelValues("error").Inc()
		log.Printf("narrative: generation failed for %s, using static text for %s: %v", view, s.retryAfter, err)
		return fallback, true
	}
	delete(s.failedUntil, view)
	metrics.NarrativeCalls.WithLabelValues("ok").Inc()
	s.cache[view] = t
	return t, true
}
