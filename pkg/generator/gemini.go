package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Fixed generation parameters. These are product constants, not user
// configuration.
const (
	genTemperature     = 0.7
	genTopK            = 40
	genTopP            = 0.95
	genMaxOutputTokens = 1024
)

// promptTemplate frames every request as a single-turn counselor prompt.
const promptTemplate = `You are an AI career counselor providing guidance based on the user's interests and career goals.
The user is interested in: %s.

Please provide helpful, realistic career advice that can be implemented. Focus on specific career paths,
education requirements, skills needed, and potential opportunities.

User question: %s`

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []*geminiPart `json:"parts"`
	Role  string        `json:"role,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents         []*geminiContent        `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content *geminiContent `json:"content"`
}

type geminiResponse struct {
	Candidates []*geminiCandidate `json:"candidates"`
}

// GeminiConfig carries the externally supplied endpoint settings. No
// credential or URL is embedded in code.
type GeminiConfig struct {
	APIKey  string
	BaseURL string        // e.g. https://generativelanguage.googleapis.com/v1
	Model   string        // e.g. gemini-2.0-flash
	Timeout time.Duration // per-request deadline; zero means no client timeout
}

// GeminiProvider calls the generateContent endpoint of the Google
// generative language API.
type GeminiProvider struct {
	cfg    GeminiConfig
	client *http.Client
}

func NewGeminiProvider(cfg GeminiConfig) *GeminiProvider {
	return &GeminiProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Generate makes exactly one attempt against the generation endpoint and
// extracts the first candidate's first text part.
func (p *GeminiProvider) Generate(ctx context.Context, userContext string, message string) (string, error) {
	payload := geminiRequest{
		Contents: []*geminiContent{
			{
				Parts: []*geminiPart{
					{Text: fmt.Sprintf(promptTemplate, userContext, message)},
				},
			},
		},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:     genTemperature,
			TopK:            genTopK,
			TopP:            genTopP,
			MaxOutputTokens: genMaxOutputTokens,
		},
	}

	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return "", &GenerationError{Kind: KindShape, Err: err}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", p.cfg.BaseURL, p.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payloadJson))
	if err != nil {
		return "", &GenerationError{Kind: KindTransport, Err: err}
	}
	req.Header.Set("x-goog-api-key", p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return "", &GenerationError{Kind: KindTransport, Err: err}
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", &GenerationError{Kind: KindTransport, Err: err}
	}

	if res.StatusCode != http.StatusOK {
		return "", &GenerationError{
			Kind:       KindStatus,
			StatusCode: res.StatusCode,
			Err:        fmt.Errorf("unexpected status with response body %s", string(resBody)),
		}
	}

	var geminiRes geminiResponse
	if err := json.Unmarshal(resBody, &geminiRes); err != nil {
		return "", &GenerationError{Kind: KindShape, Err: err}
	}

	if len(geminiRes.Candidates) == 0 ||
		geminiRes.Candidates[0].Content == nil ||
		len(geminiRes.Candidates[0].Content.Parts) == 0 {
		return "", &GenerationError{Kind: KindShape, Err: errors.New("response missing candidate text")}
	}

	return geminiRes.Candidates[0].Content.Parts[0].Text, nil
}
