// Package gemini implements the AI collaborator contracts on Google's
// generative models: face analysis, consultation chat, plan
// generation and the makeup image transfer.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/venuslab/glowup/pkg/types"
)

// Model names. The flash model serves text/JSON tasks, the image
// model the style transfer.
const (
	DefaultTextModel  = "gemini-3-flash-preview"
	DefaultImageModel = "gemini-3-pro-image-preview"
)

// Client talks to the Gemini API. It implements client.FaceAnalyzer,
// client.PlanGenerator, client.ImageTransformer and
// client.ConsultationModel.
type Client struct {
	client     *genai.Client
	textModel  string
	imageModel string
}

// NewClient creates a Client with the given API key.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is not set")
	}
	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Client{
		client:     c,
		textModel:  DefaultTextModel,
		imageModel: DefaultImageModel,
	}, nil
}

// Close releases the underlying API client.
func (c *Client) Close() error {
	return c.client.Close()
}

func targetLanguage(lang types.Language) string {
	if lang == types.LangChinese {
		return "Chinese"
	}
	return "English"
}

// AnalyzeFace performs the makeup analysis of a face photo. The five
// score subjects are fixed: skin texture, symmetry, eye brightness,
// lip color, contour definition.
func (c *Client) AnalyzeFace(ctx context.Context, imageJPEG []byte, concerns, goals []string, lang types.Language) (*types.FaceAnalysis, error) {
	model := c.client.GenerativeModel(c.textModel)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"faceShape": {Type: genai.TypeString},
			"skinTone":  {Type: genai.TypeString},
			"eyeShape":  {Type: genai.TypeString},
			"summary":   {Type: genai.TypeString},
			"scores": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"subject":  {Type: genai.TypeString},
						"A":        {Type: genai.TypeNumber},
						"fullMark": {Type: genai.TypeNumber},
					},
				},
			},
		},
	}

	concernsStr := "None"
	if len(concerns) > 0 {
		concernsStr = strings.Join(concerns, ", ")
	}
	goalsStr := "Natural enhancement"
	if len(goals) > 0 {
		goalsStr = strings.Join(goals, ", ")
	}

	prompt := fmt.Sprintf(`TASK: Perform a professional makeup analysis of this face.
RESPOND IN: %s.

CONTEXT:
- Subjective Concerns: %s.
- Makeup Goals: %s.

INSTRUCTIONS:
1. Identify objective face shape, skin tone, eye shape.
2. Provide a 2-3 sentence 'summary'. The summary MUST start by referencing their goals. Be supportive.
3. Provide 5 scores (0-100) for Skin Texture, Symmetry, Eye Brightness, Lip Color, Contour Definition. Use %s labels for the scores.`,
		targetLanguage(lang), concernsStr, goalsStr, targetLanguage(lang))

	resp, err := model.GenerateContent(ctx,
		genai.ImageData("jpeg", imageJPEG),
		genai.Text(prompt),
	)
	if err != nil {
		return nil, fmt.Errorf("face analysis failed: %w", err)
	}

	raw, err := firstText(resp)
	if err != nil {
		return nil, fmt.Errorf("face analysis: %w", err)
	}

	var analysis types.FaceAnalysis
	if err := json.Unmarshal([]byte(sanitizeModelJSON(raw)), &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse analysis response: %w", err)
	}
	return &analysis, nil
}

// GeneratePlan creates the 4-step styling plan for a selected style.
// A model-side empty array decodes into an empty plan, which callers
// treat as a degraded success.
func (c *Client) GeneratePlan(ctx context.Context, style types.MakeupStyle, analysis *types.FaceAnalysis, lang types.Language) ([]types.BreakdownStep, error) {
	model := c.client.GenerativeModel(c.textModel)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"area":                  {Type: genai.TypeString, Enum: []string{"Face", "Brows", "Eyes", "Lips"}},
				"title":                 {Type: genai.TypeString},
				"instruction":           {Type: genai.TypeString},
				"brand":                 {Type: genai.TypeString},
				"productRecommendation": {Type: genai.TypeString},
				"shade":                 {Type: genai.TypeString},
				"productUrl":            {Type: genai.TypeString},
				"colorHex":              {Type: genai.TypeString},
			},
			Required: []string{"area", "title", "instruction", "brand",
				"productRecommendation", "shade", "productUrl", "colorHex"},
		},
	}

	prompt := fmt.Sprintf(`You are a professional makeup artist and shopping consultant.
Create a 4-step makeup breakdown for a user with %s face and %s skin tone.

RESPOND IN: %s.
Style: %q.

CRITICAL INSTRUCTION FOR PRODUCTS:
1. For each step, recommend a REAL, CURRENTLY AVAILABLE makeup product.
2. PRIORITIZE products from official brand websites, or major reputable retailers:
   - Global: Sephora, Ulta, Cult Beauty, Nordstrom.
   - China: Tmall, JD, Little Red Book.
3. YOU MUST PROVIDE A VALID, CLICKABLE URL. Do not hallucinate or guess URLs. If a specific product URL is hard to find, provide the official brand store search results URL for that product.
4. Ensure the shade/color recommended matches the user's %s skin tone.

Provide:
1. The Brand Name.
2. The Specific Product Name.
3. THE RECOMMENDED SHADE/COLOR SERIES (e.g. "Shade: #101", "Color: Velvet Rose").
4. A valid URL to view/buy the product.`,
		analysis.FaceShape, analysis.SkinTone, targetLanguage(lang), style.Name, analysis.SkinTone)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("plan generation failed: %w", err)
	}

	raw, err := firstText(resp)
	if err != nil {
		return nil, fmt.Errorf("plan generation: %w", err)
	}

	var steps []types.BreakdownStep
	if err := json.Unmarshal([]byte(sanitizeModelJSON(raw)), &steps); err != nil {
		return nil, fmt.Errorf("failed to parse plan response: %w", err)
	}
	return steps, nil
}

// TransformImage applies the reference style to the source face and
// returns the transformed image bytes. A response without an inline
// image is a hard failure.
func (c *Client) TransformImage(ctx context.Context, sourceJPEG, styleJPEG []byte) ([]byte, error) {
	model := c.client.GenerativeModel(c.imageModel)

	resp, err := model.GenerateContent(ctx,
		genai.Text("Digital Makeup Transfer. Apply the reference style to the source face. Preserve identity."),
		genai.ImageData("jpeg", sourceJPEG),
		genai.ImageData("jpeg", styleJPEG),
	)
	if err != nil {
		return nil, fmt.Errorf("image transform failed: %w", err)
	}

	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if blob, ok := part.(genai.Blob); ok && len(blob.Data) > 0 {
				return blob.Data, nil
			}
		}
	}
	return nil, fmt.Errorf("no image generated")
}

// Consult runs one turn of the intake conversation.
func (c *Client) Consult(ctx context.Context, history []types.ChatMessage, input string, lang types.Language) (*types.Extraction, error) {
	model := c.client.GenerativeModel(c.textModel)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"reply_text":            {Type: genai.TypeString},
			"extracted_concerns":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"extracted_style":       {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"extracted_environment": {Type: genai.TypeString, Nullable: true},
			"is_ready":              {Type: genai.TypeBoolean},
		},
		Required: []string{"reply_text", "extracted_concerns", "extracted_style", "is_ready"},
	}
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(fmt.Sprintf(`You are a supportive, high-energy "Makeup Bestie".
ALWAYS RESPOND IN: %s.

YOUR MISSION:
Collect two key pieces of information from the user:
1. Makeup Style (e.g., Natural, Bold, Vintage, K-Pop).
2. Environment/Occasion (e.g., Office, Date, Party, Wedding).

BEHAVIOR:
- If Style is missing, ask about their desired look.
- If Environment is missing, ask where they are going.
- If both are present, confirm their choice and tell them you are ready for the face scan.
- ALWAYS keep the conversation helpful and focused.

MANDATORY: RESPONSE MUST BE A SINGLE VALID JSON OBJECT.
JSON Structure:
{
  "reply_text": "Your friendly message in %s",
  "extracted_concerns": ["concise_tag_in_en"],
  "extracted_style": ["one_main_style_in_en"],
  "extracted_environment": "one_main_env_in_en or null",
  "is_ready": true/false
}`, targetLanguage(lang), targetLanguage(lang)))},
	}

	var sb strings.Builder
	if len(history) > 0 {
		sb.WriteString("History:\n")
		for _, m := range history {
			fmt.Fprintf(&sb, "%s: %s\n", m.Role, m.Content)
		}
	}
	fmt.Fprintf(&sb, "User: %s", input)

	resp, err := model.GenerateContent(ctx, genai.Text(sb.String()))
	if err != nil {
		return nil, fmt.Errorf("consultation turn failed: %w", err)
	}

	raw, err := firstText(resp)
	if err != nil {
		return nil, fmt.Errorf("consultation: %w", err)
	}

	var extraction types.Extraction
	if err := json.Unmarshal([]byte(sanitizeModelJSON(raw)), &extraction); err != nil {
		return nil, fmt.Errorf("failed to parse consultation response: %w", err)
	}
	return &extraction, nil
}

// firstText extracts the first text part of a response.
func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from model")
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok && text != "" {
			return string(text), nil
		}
	}
	return "", fmt.Errorf("no text part in response")
}
