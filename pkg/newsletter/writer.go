package newsletter

import (
	"context"
	"log/slog"

	"github.com/mikeboe/newsletter-helper/pkg/clients"
)

// Writer generates and edits newsletters. Both operations return the model
// text verbatim; neither mutates its inputs.
type Writer struct {
	Model  Model
	Logger *slog.Logger
}

func NewWriter(model Model) *Writer {
	return &Writer{
		Model:  model,
		Logger: slog.Default(),
	}
}

// Generate drafts a newsletter from the options plus optional research and notes.
func (w *Writer) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	if isBlank(req.Options.Topic) {
		return "", &ValidationError{Field: "topic"}
	}

	w.Logger.Info("Generating newsletter",
		"topic", req.Options.Topic,
		"style", req.Options.Style,
		"tone", req.Options.Tone,
		"has_research", !isBlank(req.ResearchSummary),
		"has_notes", !isBlank(req.UserNotes))

	prompt := BuildGenerationPrompt(req.Options, req.ResearchSummary, req.UserNotes)
	resp, err := w.Model.Complete(ctx, prompt, clients.CompleteOptions{})
	if err != nil {
		w.Logger.Error("Error generating newsletter", "topic", req.Options.Topic, "error", err)
		return "", &GenerationError{Err: err}
	}

	w.Logger.Info("Newsletter generated", "length", len(resp.Text))
	return resp.Text, nil
}

// Edit revises content according to the instruction. The returned text
// replaces the original wholesale.
func (w *Writer) Edit(ctx context.Context, req EditRequest) (string, error) {
	if isBlank(req.OriginalContent) {
		return "", &ValidationError{Field: "content"}
	}
	if isBlank(req.Instruction) {
		return "", &ValidationError{Field: "instruction"}
	}

	w.Logger.Info("Editing newsletter", "instruction", req.Instruction, "original_len", len(req.OriginalContent))

	resp, err := w.Model.Complete(ctx, BuildEditPrompt(req.OriginalContent, req.Instruction), clients.CompleteOptions{})
	if err != nil {
		w.Logger.Error("Error editing newsletter", "error", err)
		return "", &EditError{Err: err}
	}

	w.Logger.Info("Newsletter edited", "length", len(resp.Text))
	return resp.Text, nil
}
