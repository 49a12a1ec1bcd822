package extractor

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/synapse-edu/scholarflow-api/pkg/config"
)

// systemPrompt instructs the model to emit strict JSON with the canonical
// field names. Privacy rule: an unclear diagnosis code stays null.
const systemPrompt = `You are a school administrative assistant processing medical leave documents supplied as PDF or image.
Extract EXCLUSIVELY the following fields as strict JSON matching this schema:
{
  "professor_name": "string",
  "professor_id": "string",
  "diagnosis_code": "string | null",
  "rest_days": int,
  "start_date": "string",
  "end_date": "string",
  "issuer": "string"
}
If the document is not a legible medical leave certificate, or critical data is missing, return the fields as null but extract as much as possible.
Prioritize privacy: if "diagnosis_code" is not clear, leave it null.`

// Client calls a Gemini-style JSON-mode endpoint to turn a leave document
// into raw key/value extraction output. The document bytes stay in memory
// and are never written to disk.
type Client struct {
	http   *resty.Client
	model  string
	apiKey string
	logger *zap.Logger
}

// New constructs an extractor client from configuration.
func New(cfg config.ExtractorConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	http := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	return &Client{http: http, model: cfg.Model, apiKey: cfg.APIKey, logger: logger}
}

type generateRequest struct {
	SystemInstruction content          `json:"system_instruction"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"response_mime_type"`
	Temperature      float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Extract sends the document to the model and returns the raw field map.
// The reply is expected to be strict JSON; markdown code fences around it
// are tolerated.
func (c *Client) Extract(ctx context.Context, document []byte, mimeType string) (map[string]interface{}, error) {
	if mimeType == "" {
		mimeType = "application/pdf"
	}

	payload := generateRequest{
		SystemInstruction: content{Parts: []part{{Text: systemPrompt}}},
		Contents: []content{{
			Parts: []part{
				{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(document)}},
				{Text: "Extract data from this medical leave document."},
			},
		}},
		GenerationConfig: generationConfig{ResponseMimeType: "application/json", Temperature: 0.1},
	}

	var reply generateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(payload).
		SetResult(&reply).
		SetError(&reply).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", c.model))
	if err != nil {
		return nil, fmt.Errorf("call extraction model: %w", err)
	}
	if resp.IsError() {
		if reply.Error != nil {
			return nil, fmt.Errorf("extraction model rejected request: %s", reply.Error.Message)
		}
		return nil, fmt.Errorf("extraction model returned status %d", resp.StatusCode())
	}
	if len(reply.Candidates) == 0 || len(reply.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("extraction model returned no candidates")
	}

	text := stripCodeFences(reply.Candidates[0].Content.Parts[0].Text)
	fields := map[string]interface{}{}
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, fmt.Errorf("extraction model returned invalid JSON: %w", err)
	}
	c.logger.Debug("document extracted", zap.Int("fields", len(fields)))
	return fields, nil
}

func stripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
