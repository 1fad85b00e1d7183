// Package openai is the generation gateway over an OpenAI-compatible chat API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/edukit-cloud/edukit/internal/domain"
	"github.com/edukit-cloud/edukit/internal/domain/quiz"
	"github.com/edukit-cloud/edukit/internal/domain/summary"
	"github.com/edukit-cloud/edukit/internal/metrics"
)

const systemPrompt = "You are an educational assistant specialized in generating teaching content. " +
	"Answer in the language of the provided material."

const (
	summaryMaxTokens = 1000
	quizMaxTokens    = 2000

	defaultRetryAttempts = 5
	defaultRetryMinWait  = time.Second
	defaultRetryMaxWait  = 60 * time.Second
)

// Generator is a text generation provider using the OpenAI-compatible
// chat completions API.
type Generator struct {
	client      *openai.Client
	model       string
	temperature float32
	attempts    int
	minWait     time.Duration
	maxWait     time.Duration
	logger      *zap.Logger
}

// Config holds the generation provider settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	// RetryAttempts caps completion attempts per request; 0 means the default.
	RetryAttempts int
	// RetryMinWait and RetryMaxWait bound the randomized backoff between
	// attempts; zero values mean the defaults.
	RetryMinWait time.Duration
	RetryMaxWait time.Duration
	Logger       *zap.Logger
}

// NewGenerator creates an OpenAI-compatible generation provider.
func NewGenerator(cfg *Config) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	g := &Generator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		attempts:    cfg.RetryAttempts,
		minWait:     cfg.RetryMinWait,
		maxWait:     cfg.RetryMaxWait,
		logger:      cfg.Logger,
	}
	if g.attempts <= 0 {
		g.attempts = defaultRetryAttempts
	}
	if g.minWait <= 0 {
		g.minWait = defaultRetryMinWait
	}
	if g.maxWait <= 0 {
		g.maxWait = defaultRetryMaxWait
	}
	if g.logger == nil {
		g.logger = zap.NewNop()
	}
	return g
}

// Summarize generates a summary of the given text at the requested length tier.
func (g *Generator) Summarize(ctx context.Context, text string, tier summary.LengthTier) (string, error) {
	prompt := fmt.Sprintf("%s\n\nText:\n%s", tier.Instruction(), text)

	out, err := g.complete(ctx, "summary", prompt, summaryMaxTokens)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// quizItemDTO mirrors the JSON array elements the model is asked to emit.
// correct_answer arrives as a string or, for option questions, sometimes as
// an option index.
type quizItemDTO struct {
	Question      string          `json:"question"`
	Options       []string        `json:"options"`
	CorrectAnswer json.RawMessage `json:"correct_answer"`
	Explanation   string          `json:"explanation"`
}

// GenerateQuizItems generates quiz questions over the given text and parses
// the model's JSON array output. A non-empty topic narrows the questions to
// that subject area.
func (g *Generator) GenerateQuizItems(
	ctx context.Context,
	text string,
	qType quiz.QuestionType,
	difficulty quiz.Difficulty,
	count int,
	topic string,
) ([]quiz.Item, error) {
	focus := ""
	if topic != "" {
		focus = fmt.Sprintf(" Focus the questions on %q.", topic)
	}
	prompt := fmt.Sprintf(
		"Generate exactly %d %s at %s about the following text.%s\n"+
			"Respond with a JSON array only. Each element must have the fields "+
			`"question", "options" (array of strings, empty for non-option questions), `+
			`"correct_answer" and "explanation".`+"\n\nText:\n%s",
		count, qType.Instruction(), difficulty.Instruction(), focus, text,
	)

	out, err := g.complete(ctx, "quiz", prompt, quizMaxTokens)
	if err != nil {
		return nil, err
	}

	items, err := parseQuizItems(out, qType)
	if err != nil {
		g.logger.Warn("Failed to parse quiz output", zap.Error(err))
		return nil, fmt.Errorf("parse quiz output: %w", domain.ErrGatewayFailure)
	}
	return items, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (g *Generator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// complete runs one chat completion with randomized exponential backoff
// between attempts.
func (g *Generator) complete(ctx context.Context, op, prompt string, maxTokens int) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: g.temperature,
	}

	var lastErr error
	for attempt := 0; attempt < g.attempts; attempt++ {
		if attempt > 0 {
			if err := g.waitBeforeRetry(ctx, attempt); err != nil {
				return "", err
			}
		}

		start := time.Now()
		resp, err := g.client.CreateChatCompletion(ctx, req)
		duration := time.Since(start)

		if err != nil {
			if ctxErr := gatewayContextError(ctx, err); ctxErr != nil {
				metrics.GenerationRequestsTotal.WithLabelValues(op, g.model, "timeout").Inc()
				return "", ctxErr
			}
			metrics.GenerationRequestsTotal.WithLabelValues(op, g.model, "error").Inc()
			lastErr = parseAPIError(err)
			g.logger.Warn("Completion attempt failed",
				zap.String("operation", op),
				zap.Int("attempt", attempt+1),
				zap.Error(err))
			continue
		}

		if len(resp.Choices) == 0 {
			metrics.GenerationRequestsTotal.WithLabelValues(op, g.model, "error").Inc()
			lastErr = fmt.Errorf("empty completion response: %w", domain.ErrGatewayFailure)
			continue
		}

		metrics.GenerationRequestsTotal.WithLabelValues(op, g.model, "success").Inc()
		metrics.GenerationRequestDuration.WithLabelValues(op, g.model).Observe(duration.Seconds())
		if resp.Usage.TotalTokens > 0 {
			metrics.GenerationTokensTotal.WithLabelValues(g.model, "prompt").Add(float64(resp.Usage.PromptTokens))
			metrics.GenerationTokensTotal.WithLabelValues(g.model, "completion").Add(float64(resp.Usage.CompletionTokens))
			metrics.GenerationTokensTotal.WithLabelValues(g.model, "total").Add(float64(resp.Usage.TotalTokens))
		}

		return resp.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("completion failed after %d attempts: %w: %w",
		g.attempts, lastErr, domain.ErrGatewayFailure)
}

// waitBeforeRetry sleeps a random duration up to minWait*2^attempt, capped
// at maxWait.
func (g *Generator) waitBeforeRetry(ctx context.Context, attempt int) error {
	ceil := g.minWait << uint(attempt)
	if ceil > g.maxWait || ceil <= 0 {
		ceil = g.maxWait
	}
	wait := time.Duration(rand.Int63n(int64(ceil)) + 1)

	select {
	case <-ctx.Done():
		return gatewayContextError(ctx, ctx.Err())
	case <-time.After(wait):
		return nil
	}
}

// gatewayContextError maps a context cancellation to the gateway error
// taxonomy; nil when err is not context-related.
func gatewayContextError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("completion deadline exceeded: %w", domain.ErrGatewayTimeout)
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return fmt.Errorf("completion canceled: %w", context.Canceled)
	default:
		return nil
	}
}

// parseQuizItems extracts the first JSON array embedded in the model output
// and decodes it. Models often wrap the array in prose or code fences.
func parseQuizItems(out string, qType quiz.QuestionType) ([]quiz.Item, error) {
	start := strings.Index(out, "[")
	end := strings.LastIndex(out, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in output")
	}

	var dtos []quizItemDTO
	if err := json.Unmarshal([]byte(out[start:end+1]), &dtos); err != nil {
		return nil, fmt.Errorf("decode JSON array: %w", err)
	}
	if len(dtos) == 0 {
		return nil, fmt.Errorf("empty quiz array")
	}

	items := make([]quiz.Item, 0, len(dtos))
	for i, dto := range dtos {
		if dto.Question == "" {
			return nil, fmt.Errorf("item %d has no question", i)
		}
		answer, err := decodeAnswer(dto.CorrectAnswer, dto.Options)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		if qType != quiz.MultipleChoice {
			dto.Options = nil
		}
		items = append(items, quiz.Item{
			Question:    dto.Question,
			Options:     dto.Options,
			Answer:      answer,
			Explanation: dto.Explanation,
		})
	}
	return items, nil
}

// decodeAnswer accepts a string answer or a numeric option index.
func decodeAnswer(raw json.RawMessage, options []string) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("missing correct_answer")
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var idx int
	if err := json.Unmarshal(raw, &idx); err == nil {
		if idx >= 0 && idx < len(options) {
			return options[idx], nil
		}
		return "", fmt.Errorf("correct_answer index %d out of range", idx)
	}

	return "", fmt.Errorf("unrecognized correct_answer %s", raw)
}
