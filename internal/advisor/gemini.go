package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"finsight/internal/core"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// Gemini asks a Google model for insight text. The report numbers stay
// authoritative: the model only writes the narrative around them.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &Gemini{client: client, model: model}, nil
}

// geminiReply is the JSON shape the prompt demands from the model.
type geminiReply struct {
	Summary    string   `json:"summary"`
	GoodHabits []string `json:"good_habits"`
	BadHabits  []string `json:"bad_habits"`
}

func (g *Gemini) Advise(ctx context.Context, report core.BenchmarkReport) (core.Insights, error) {
	prompt, err := buildPrompt(report)
	if err != nil {
		return core.Insights{}, err
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return core.Insights{}, fmt.Errorf("generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return core.Insights{}, fmt.Errorf("empty response from model %s", g.model)
	}

	var reply geminiReply
	if err := json.Unmarshal([]byte(cleanModelJSON(rawText)), &reply); err != nil {
		return core.Insights{}, fmt.Errorf("unmarshal model reply: %w", err)
	}

	return core.Insights{
		Period:      report.Period,
		Summary:     reply.Summary,
		GoodHabits:  orEmpty(reply.GoodHabits),
		BadHabits:   orEmpty(reply.BadHabits),
		Report:      report,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func buildPrompt(report core.BenchmarkReport) (string, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	return "You are a personal finance coach reviewing one month of spending.\n" +
		"The report below contains category totals, their percentage of income,\n" +
		"benchmark ceilings and an over_benchmark flag.\n\n" +
		"Report:\n" + string(data) + "\n\n" +
		"Reply with a JSON object with exactly these fields:\n" +
		`{"summary": "...", "good_habits": ["..."], "bad_habits": ["..."]}` + "\n" +
		"Rules:\n" +
		"- base every statement on the report numbers, never invent figures\n" +
		"- list a habit per category that is clearly over or under its benchmark\n" +
		"Return ONLY valid raw JSON.\n" +
		"Do NOT wrap the response in code fences.\n", nil
}

// cleanModelJSON strips Markdown fences the model may add despite the
// prompt's instructions.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
