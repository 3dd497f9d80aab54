package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/valpere/potrans/internal/postprocess"
)

const (
	DefaultMoonshotEndpoint    = "https://api.moonshot.cn/v1/chat/completions"
	DefaultMoonshotModel       = "moonshot-v1-8k"
	DefaultMoonshotTemperature = 0.3
)

const moonshotSystemPrompt = `You are a professional translator that translates English into a given language.
The content comes from a gettext PO file: you receive msgids and translate each of them into the requested language.
- Keep escape sequences such as \" and \n exactly as they appear, so they survive JSON encoding and decoding.

Input is a JSON object with the following fields:
- msgids: array of msgids
- lang: language to translate to

Output must be a JSON object with the following field:
- translations: array of translations, in exactly the same order and with exactly the same count as msgids.`

// MoonshotService talks to an OpenAI-compatible chat completion endpoint
// (Moonshot by default) and asks for every msgid of a batch in one request.
type MoonshotService struct {
	apiKey      string
	endpoint    string
	model       string
	temperature float64
	client      *http.Client
}

// NewMoonshotService validates the credential once and returns a ready
// provider. Empty fields of cfg fall back to the Moonshot defaults; a zero
// Timeout means no client-side timeout.
func NewMoonshotService(cfg ServiceConfig) (*MoonshotService, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: Moonshot API key required", ErrAuthorization)
	}

	s := &MoonshotService{
		apiKey:      cfg.APIKey,
		endpoint:    cfg.BaseURL,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: cfg.Timeout},
	}
	if s.endpoint == "" {
		s.endpoint = DefaultMoonshotEndpoint
	}
	if s.model == "" {
		s.model = DefaultMoonshotModel
	}
	if s.temperature == 0 {
		s.temperature = DefaultMoonshotTemperature
	}
	return s, nil
}

func (s *MoonshotService) Name() string {
	return "moonshot"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type batchPayload struct {
	MsgIDs []string `json:"msgids"`
	Lang   string   `json:"lang"`
}

func (s *MoonshotService) Translate(ctx context.Context, msgids []string, lang string) (map[string]string, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("%w: Moonshot API key required", ErrAuthorization)
	}

	body, err := buildMoonshotRequest(s.model, s.temperature, msgids, lang)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrTransport, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: API returned status %d: %s", ErrAuthorization, resp.StatusCode, truncate(string(respBody), 200))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: API returned status %d: %s", ErrTransport, resp.StatusCode, truncate(string(respBody), 200))
	}

	return parseMoonshotResponse(respBody, msgids)
}

func buildMoonshotRequest(model string, temperature float64, msgids []string, lang string) ([]byte, error) {
	if msgids == nil {
		msgids = []string{}
	}
	content, err := json.Marshal(batchPayload{MsgIDs: msgids, Lang: lang})
	if err != nil {
		return nil, err
	}

	return json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: moonshotSystemPrompt},
			{Role: "user", Content: string(content)},
		},
		Temperature: temperature,
	})
}

func parseMoonshotResponse(body []byte, msgids []string) (map[string]string, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrResponseShape, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", ErrResponseShape)
	}

	content := postprocess.CleanJSON(resp.Choices[0].Message.Content)

	var parsed map[string]any
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("%w: completion is not a JSON object: %v", ErrResponseShape, err)
	}

	translations, ok := parsed["translations"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: translations not found or not an array", ErrResponseShape)
	}

	return zipTranslations(msgids, translations), nil
}

// truncate cuts s to at most maxLen bytes without splitting a rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := 0
	for i := range s {
		if i > maxLen {
			break
		}
		cut = i
	}
	return s[:cut] + "..."
}
