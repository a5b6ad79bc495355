package gemini

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/phrazzld/study-buddy/internal/config"
	"github.com/phrazzld/study-buddy/internal/domain"
	"github.com/phrazzld/study-buddy/internal/platform/logger"
	"google.golang.org/genai"
)

//go:embed prompts/flashcards.tmpl
var defaultPrompt string

// contentGenerator is the part of the genai client the generator uses.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// promptData is passed to the prompt template.
type promptData struct {
	Notes    string
	MaxCards int
}

// cardSchema is one flashcard as returned by the model.
type cardSchema struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Generator produces flashcards with a Gemini model.
type Generator struct {
	models     contentGenerator
	model      string
	prompt     *template.Template
	maxCards   int
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewGenerator creates a Generator backed by a Gemini API client.
func NewGenerator(ctx context.Context, cfg config.LLMConfig, log *slog.Logger) (*Generator, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", ErrInvalidConfig)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", ErrInvalidConfig, err)
	}
	return newGenerator(client.Models, cfg, log)
}

func newGenerator(models contentGenerator, cfg config.LLMConfig, log *slog.Logger) (*Generator, error) {
	if models == nil {
		return nil, fmt.Errorf("%w: model client cannot be nil", ErrInvalidConfig)
	}
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", ErrInvalidConfig)
	}

	text := defaultPrompt
	if cfg.PromptTemplatePath != "" {
		raw, err := os.ReadFile(cfg.PromptTemplatePath)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read prompt template from %s: %v",
				ErrInvalidConfig, cfg.PromptTemplatePath, err)
		}
		text = string(raw)
	}
	prompt, err := template.New("flashcards").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v", ErrInvalidConfig, err)
	}

	maxCards := cfg.MaxCards
	if maxCards <= 0 {
		maxCards = 12
	}
	delay := time.Duration(cfg.RetryDelaySeconds) * time.Second
	if delay <= 0 {
		delay = time.Second
	}

	return &Generator{
		models:     models,
		model:      cfg.ModelName,
		prompt:     prompt,
		maxCards:   maxCards,
		maxRetries: max(cfg.MaxRetries, 0),
		baseDelay:  delay,
		logger:     log.With("component", "gemini_generator", "model", cfg.ModelName),
		sleep:      sleepContext,
	}, nil
}

// Generate implements session.Generator.
func (g *Generator) Generate(ctx context.Context, notes string) ([]domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	prompt, err := g.createPrompt(notes)
	if err != nil {
		return nil, err
	}
	log.DebugContext(ctx, "prompt generated", "notes_length", len(notes), "prompt_length", len(prompt))

	text, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	cards, err := parseCards(text)
	if err != nil {
		log.WarnContext(ctx, "unparseable model response", "error", err, "response_length", len(text))
		return nil, err
	}
	if len(cards) > g.maxCards {
		cards = cards[:g.maxCards]
	}
	log.InfoContext(ctx, "flashcards generated", "cards", len(cards))
	return cards, nil
}

func (g *Generator) createPrompt(notes string) (string, error) {
	if strings.TrimSpace(notes) == "" {
		return "", domain.ErrNotesEmpty
	}
	var buf bytes.Buffer
	if err := g.prompt.Execute(&buf, promptData{Notes: notes, MaxCards: g.maxCards}); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}

func (g *Generator) contentConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"question": {Type: genai.TypeString},
					"answer":   {Type: genai.TypeString},
				},
				Required: []string{"question", "answer"},
			},
		},
	}
}

// callWithRetry calls the model, retrying transient failures with
// exponential backoff and jitter.
func (g *Generator) callWithRetry(ctx context.Context, prompt string) (string, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	for attempt := 0; ; attempt++ {
		text, err := g.call(ctx, prompt)
		if err == nil {
			return text, nil
		}

		if !isTransient(err) {
			log.WarnContext(ctx, "model call failed", "attempt", attempt+1, "error", err)
			return "", mapError(err)
		}
		if attempt >= g.maxRetries {
			log.WarnContext(ctx, "maximum retry attempts reached", "attempts", attempt+1, "error", err)
			var apiErr genai.APIError
			if errors.As(err, &apiErr) {
				return "", mapError(err)
			}
			return "", fmt.Errorf("%w: %d attempts: %v", ErrTransientFailure, attempt+1, err)
		}

		// delay = base * 2^attempt * [0.5, 1.0)
		delay := time.Duration(float64(g.baseDelay) * math.Pow(2, float64(attempt)) * (0.5 + rand.Float64()*0.5))
		log.InfoContext(ctx, "retrying model call", "attempt", attempt+1, "delay", delay, "error", err)
		if err := g.sleep(ctx, delay); err != nil {
			return "", fmt.Errorf("%w: %v", ErrTransientFailure, err)
		}
	}
}

func (g *Generator) call(ctx context.Context, prompt string) (string, error) {
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), g.contentConfig())
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("%w: %s", ErrContentBlocked, resp.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("%w: no candidates", ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", ErrContentBlocked
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content", ErrInvalidResponse)
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String(), nil
}

// parseCards decodes the model's JSON array, tolerating a markdown code fence.
func parseCards(text string) ([]domain.Card, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var raw []cardSchema
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	cards := make([]domain.Card, 0, len(raw))
	for _, c := range raw {
		card := domain.Card{
			Question: strings.TrimSpace(c.Question),
			Answer:   strings.TrimSpace(c.Answer),
		}
		if card.Usable() {
			cards = append(cards, card)
		}
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("%w: no usable cards", ErrInvalidResponse)
	}
	return cards, nil
}

func isTransient(err error) bool {
	if errors.Is(err, domain.ErrEmptyResult) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}
	return true
}

func mapError(err error) error {
	if errors.Is(err, domain.ErrEmptyResult) {
		return err
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &domain.ServiceError{
			Operation:  "generate",
			StatusCode: apiErr.Code,
			Message:    apiErr.Message,
		}
	}
	return fmt.Errorf("%w: %v", domain.ErrUnreachable, err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
