// Package aimap infers a column-to-field mapping with a generative model
// when the rule-based header scan comes up empty. It retries on rate
// limits, walks an ordered list of alternate models when the requested one
// is unavailable, and degrades to an empty mapping rather than failing.
package aimap

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/roomsheet/roomsheet-go/pkg/roomsheet/models"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "gemini-1.5-flash"

	maxAttempts = 5
	retryWait   = 20 * time.Second
)

// fallbackModels are tried in order when the configured model is
// unavailable or the retry budget is spent.
var fallbackModels = []string{
	"gemini-3-flash-preview",
	"gemini-2.0-flash",
	"gemini-pro-latest",
}

// Invoker issues one generation request. The indirection keeps the retry
// protocol testable without a network.
type Invoker interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Mapper is the AI fallback column mapper. A Mapper built without an API
// key is inert: MapColumns returns an empty map without a network call.
type Mapper struct {
	invoker   Invoker
	model     string
	fallbacks []string
	wait      time.Duration
	sleep     func(time.Duration)
	log       *zap.Logger
}

// NewMapper creates a Mapper talking to the Gemini API. An empty apiKey
// yields an inert mapper; an empty model selects DefaultModel.
func NewMapper(ctx context.Context, apiKey, model string, log *zap.Logger) (*Mapper, error) {
	m := newMapper(nil, model, log)
	if apiKey == "" {
		m.log.Warn("no API key configured, AI column mapping disabled")
		return m, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	m.invoker = &genaiInvoker{client: client}
	return m, nil
}

func newMapper(invoker Invoker, model string, log *zap.Logger) *Mapper {
	if model == "" {
		model = DefaultModel
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Mapper{
		invoker:   invoker,
		model:     model,
		fallbacks: fallbackModels,
		wait:      retryWait,
		sleep:     time.Sleep,
		log:       log,
	}
}

// MapColumns asks the mapping service to assign schema fields to the
// sampled columns. It never returns an error: every failure mode degrades
// to an empty map, which callers treat as "fallback unavailable".
func (m *Mapper) MapColumns(ctx context.Context, rows [][]string) models.HeaderMap {
	if m.invoker == nil {
		return models.HeaderMap{}
	}

	prompt, err := buildPrompt(rows)
	if err != nil {
		m.log.Error("prompt rendering failed", zap.Error(err))
		return models.HeaderMap{}
	}

	st := initialState()
	for {
		model := st.model(m.model, m.fallbacks)
		hm, err := m.generate(ctx, model, prompt)
		if err == nil {
			m.log.Info("column mapping obtained",
				zap.String("model", model),
				zap.Int("columns", len(hm)))
			return hm
		}

		act, next := st.next(classify(err), maxAttempts, len(m.fallbacks))
		switch act {
		case actionWait:
			m.log.Info("rate limited, backing off",
				zap.String("model", model),
				zap.Int("attempt", st.attempt),
				zap.Duration("wait", m.wait))
			m.sleep(m.wait)
		case actionProceed:
			m.log.Warn("model attempt failed, trying alternate",
				zap.String("model", model),
				zap.Error(err))
		case actionStop:
			m.log.Error("column mapping failed",
				zap.String("model", model),
				zap.Error(err))
			return models.HeaderMap{}
		}
		st = next
	}
}

// generate performs one attempt and parses the response.
func (m *Mapper) generate(ctx context.Context, model, prompt string) (models.HeaderMap, error) {
	text, err := m.invoker.Generate(ctx, model, prompt)
	if err != nil {
		return nil, err
	}
	return m.parseMapping(text)
}

// parseMapping decodes the service response: a JSON object whose keys are
// 0-based column indices as strings and whose values are schema field
// names. Keys are translated to the pipeline's 1-based positions. Markdown
// fences and prose around the object are stripped wherever they appear.
func (m *Mapper) parseMapping(text string) (models.HeaderMap, error) {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		text = text[start : end+1]
	}

	var raw map[string]string
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("malformed mapping response: %w", err)
	}

	hm := make(models.HeaderMap, len(raw))
	for key, name := range raw {
		col, err := strconv.Atoi(key)
		if err != nil || col < 0 {
			m.log.Warn("dropping invalid column index", zap.String("key", key))
			continue
		}
		if !models.KnownField(name) {
			m.log.Warn("dropping unknown field name", zap.String("field", name))
			continue
		}
		hm[col+1] = models.Field(name)
	}
	return hm, nil
}

// genaiInvoker issues requests through the Gemini client.
type genaiInvoker struct {
	client *genai.Client
}

func (g *genaiInvoker) Generate(ctx context.Context, model, prompt string) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := g.client.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no parts in candidate content")
	}
	return candidate.Content.Parts[0].Text, nil
}
