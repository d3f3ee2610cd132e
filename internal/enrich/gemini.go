// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Backend abstracts the generative model API so tests can supply a mock.
// Generate performs one outbound call and returns the raw response text.
// Implementations classify failures by returning *APIError.
type Backend interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// geminiAPIURL is the Gemini API base endpoint. Package-level var for test
// substitution.
var geminiAPIURL = "https://generativelanguage.googleapis.com/v1beta/models"

// GeminiBackend calls the Gemini generateContent API. Per prd003-enrichment R4.1.
type GeminiBackend struct {
	APIKey string
	Model  string
	Client *http.Client
}

// geminiRequest is the request body for the generateContent API.
type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// generationConfig pins temperature to zero so identical prompts produce
// consistent, cacheable results, and requests a JSON response body.
type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMIMEType string  `json:"responseMimeType"`
}

// geminiResponse is the response body from the generateContent API.
type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

// Generate calls the Gemini API with prompt and returns the model's text.
// Failures are classified: 429 and quota rejections are rate-limited, 5xx
// and network errors are transient, auth and configuration rejections are
// fatal, and undecodable payloads are invalid responses.
func (g *GeminiBackend) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: generationConfig{
			Temperature:      0,
			ResponseMIMEType: "application/json",
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", apiErrorf(KindFatal, "marshaling request: %v", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent", geminiAPIURL, g.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", apiErrorf(KindFatal, "creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.APIKey)

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", apiErrorf(KindTransient, "calling Gemini API: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", apiErrorf(classifyStatus(resp.StatusCode),
			"Gemini API returned %d: %s", resp.StatusCode, string(body))
	}

	var gResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gResp); err != nil {
		return "", apiErrorf(KindInvalidResponse, "decoding Gemini response: %v", err)
	}

	if len(gResp.Candidates) == 0 || len(gResp.Candidates[0].Content.Parts) == 0 {
		return "", apiErrorf(KindInvalidResponse, "Gemini API returned no content")
	}

	return gResp.Candidates[0].Content.Parts[0].Text, nil
}

// classifyStatus maps an HTTP status code to a failure kind.
func classifyStatus(status int) Kind {
	switch {
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindFatal
	case status == http.StatusBadRequest:
		// The API rejects malformed model names and invalid keys with 400.
		return KindFatal
	case status >= 500:
		return KindTransient
	default:
		return KindTransient
	}
}
