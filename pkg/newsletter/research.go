package newsletter

import (
	"context"
	"log/slog"

	"github.com/mikeboe/newsletter-helper/pkg/clients"
)

// Researcher runs grounded topic research against the model.
type Researcher struct {
	Model  Model
	Logger *slog.Logger
}

func NewResearcher(model Model) *Researcher {
	return &Researcher{
		Model:  model,
		Logger: slog.Default(),
	}
}

// Research validates the topic, queries the model with web-search grounding
// and returns the summary verbatim together with its sources in model order.
func (r *Researcher) Research(ctx context.Context, topic string) (*ResearchResult, error) {
	if isBlank(topic) {
		return nil, &ValidationError{Field: "topic"}
	}

	r.Logger.Info("Starting research", "topic", topic)

	resp, err := r.Model.Complete(ctx, BuildResearchPrompt(topic), clients.CompleteOptions{Grounding: true})
	if err != nil {
		r.Logger.Error("Error researching topic", "topic", topic, "error", err)
		return nil, &ResearchError{Err: err}
	}

	result := &ResearchResult{
		Summary: resp.Text,
		Sources: make([]Source, 0, len(resp.GroundingChunks)),
	}
	for _, chunk := range resp.GroundingChunks {
		result.Sources = append(result.Sources, Source{URI: chunk.URI, Title: chunk.Title})
	}

	r.Logger.Info("Research complete", "topic", topic, "sources", len(result.Sources), "summary_len", len(result.Summary))
	return result, nil
}
