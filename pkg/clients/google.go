package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// ErrMissingAPIKey is returned when the client is built without a credential.
var ErrMissingAPIKey = errors.New("gemini api key is required")

// CompleteOptions configures a single Complete call.
type CompleteOptions struct {
	// Grounding enables the Google Search tool so the response carries web sources.
	Grounding bool
}

// GroundingChunk is one web source attached to a grounded response.
type GroundingChunk struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// ModelResponse is the unwrapped model output.
type ModelResponse struct {
	Text            string           `json:"text"`
	GroundingChunks []GroundingChunk `json:"groundingChunks,omitempty"`
}

// ModelError reports any transport, authentication or quota failure from the model.
type ModelError struct {
	Model string
	Err   error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model %s request failed: %v", e.Model, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// Option customises the underlying genai client configuration.
type Option func(*genai.ClientConfig)

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(url string) Option {
	return func(cfg *genai.ClientConfig) {
		cfg.HTTPOptions.BaseURL = url
	}
}

// GeminiClient is the single point of contact with the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini API client bound to one model.
func NewGeminiClient(ctx context.Context, apiKey, model string, opts ...Option) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = DefaultModel
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiClient{client: client, model: model}, nil
}

// ModelName returns the configured model id.
func (c *GeminiClient) ModelName() string {
	return c.model
}

// Complete sends the prompt as a single user turn. It does not retry and
// imposes no timeout of its own.
func (c *GeminiClient) Complete(ctx context.Context, prompt string, opts CompleteOptions) (*ModelResponse, error) {
	var config *genai.GenerateContentConfig
	if opts.Grounding {
		config = &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
		}
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return nil, &ModelError{Model: c.model, Err: err}
	}

	return fromGenAI(resp, opts.Grounding), nil
}

// fromGenAI unwraps the first candidate's text and, when requested, its grounding chunks.
func fromGenAI(resp *genai.GenerateContentResponse, grounding bool) *ModelResponse {
	out := &ModelResponse{}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return out
	}
	candidate := resp.Candidates[0]

	if candidate.Content != nil {
		var sb strings.Builder
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			sb.WriteString(part.Text)
		}
		out.Text = sb.String()
	}

	if grounding && candidate.GroundingMetadata != nil {
		for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
			if chunk == nil || chunk.Web == nil {
				continue
			}
			out.GroundingChunks = append(out.GroundingChunks, GroundingChunk{
				URI:   chunk.Web.URI,
				Title: chunk.Web.Title,
			})
		}
	}

	return out
}
