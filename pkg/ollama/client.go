// Package ollama implements the face-analysis contract against a local
// Ollama server, for running the analysis stage without a cloud API.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/venuslab/glowup/pkg/types"
)

// DefaultModel is the vision model used when none is configured.
const DefaultModel = "llama3.2-vision"

// defaultTimeout bounds a single analysis call; local vision models on
// CPU can be slow.
const defaultTimeout = 300 * time.Second

// Client wraps the Ollama API client. It implements
// client.FaceAnalyzer.
type Client struct {
	client *api.Client
	model  string
}

// NewClient creates a Client for the Ollama server at ollamaURL.
func NewClient(ollamaURL, model string) (*Client, error) {
	parsedURL, err := url.Parse(ollamaURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}
	baseURL := &url.URL{
		Scheme: parsedURL.Scheme,
		Host:   parsedURL.Host,
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		client: api.NewClient(baseURL, http.DefaultClient),
		model:  model,
	}, nil
}

// AnalyzeFace sends the photo to the local vision model and parses its
// JSON reply into a FaceAnalysis.
func (c *Client) AnalyzeFace(ctx context.Context, imageJPEG []byte, concerns, goals []string, lang types.Language) (*types.FaceAnalysis, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
	}

	streamFalse := false
	req := &api.ChatRequest{
		Model: c.model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: analysisPrompt(concerns, goals, lang),
				Images:  []api.ImageData{api.ImageData(imageJPEG)},
			},
		},
		Stream: &streamFalse,
		Format: json.RawMessage(`"json"`),
	}

	var responseContent string
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		responseContent = resp.Message.Content
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat error: %v", err)
	}
	if responseContent == "" {
		return nil, fmt.Errorf("empty response from ollama")
	}

	return parseAnalysis(responseContent)
}

func analysisPrompt(concerns, goals []string, lang types.Language) string {
	language := "English"
	if lang == types.LangChinese {
		language = "Chinese"
	}
	concernsStr := "None"
	if len(concerns) > 0 {
		concernsStr = strings.Join(concerns, ", ")
	}
	goalsStr := "Natural enhancement"
	if len(goals) > 0 {
		goalsStr = strings.Join(goals, ", ")
	}
	return fmt.Sprintf(`Perform a professional makeup analysis of this face. Respond in %s.
User concerns: %s. Makeup goals: %s.

Respond with ONLY a JSON object in this exact shape:
{
  "faceShape": "...",
  "skinTone": "...",
  "eyeShape": "...",
  "summary": "2-3 supportive sentences that start by referencing the goals",
  "scores": [
    {"subject": "Skin Texture", "A": 0-100, "fullMark": 100},
    {"subject": "Symmetry", "A": 0-100, "fullMark": 100},
    {"subject": "Eye Brightness", "A": 0-100, "fullMark": 100},
    {"subject": "Lip Color", "A": 0-100, "fullMark": 100},
    {"subject": "Contour Definition", "A": 0-100, "fullMark": 100}
  ]
}`, language, concernsStr, goalsStr)
}

// parseAnalysis parses the model reply, tolerating fences and
// surrounding prose. Local models do not honor format constraints as
// reliably as hosted ones.
func parseAnalysis(raw string) (*types.FaceAnalysis, error) {
	raw = sanitizeModelJSON(raw)
	if !strings.HasPrefix(strings.TrimSpace(raw), "{") {
		return nil, fmt.Errorf("no JSON object in model response")
	}

	var analysis types.FaceAnalysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		// Conservative brace-slice retry.
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start >= 0 && end > start {
			if err2 := json.Unmarshal([]byte(raw[start:end+1]), &analysis); err2 == nil {
				return &analysis, nil
			}
		}
		return nil, fmt.Errorf("failed to parse analysis response: %v", err)
	}
	return &analysis, nil
}

// sanitizeModelJSON removes markdown fences and leading prose around
// the JSON payload.
func sanitizeModelJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.Index(s, "{"); idx > 0 {
		s = s[idx:]
	}
	return s
}
