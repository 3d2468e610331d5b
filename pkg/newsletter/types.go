package newsletter

import (
	"context"
	"strings"

	"github.com/mikeboe/newsletter-helper/pkg/clients"
)

// Model is the model-client contract the pipelines depend on.
type Model interface {
	Complete(ctx context.Context, prompt string, opts clients.CompleteOptions) (*clients.ModelResponse, error)
}

// Style is the writing style of a newsletter.
type Style string

const (
	StyleInformative    Style = "Informative"
	StylePersuasive     Style = "Persuasive"
	StyleStorytelling   Style = "Storytelling"
	StyleAnalytical     Style = "Analytical"
	StyleConversational Style = "Conversational"
	StyleTechnical      Style = "Technical"
)

// Styles lists the selectable writing styles in display order.
var Styles = []Style{
	StyleInformative,
	StylePersuasive,
	StyleStorytelling,
	StyleAnalytical,
	StyleConversational,
	StyleTechnical,
}

// Tone is the voice of a newsletter.
type Tone string

const (
	ToneProfessional Tone = "Professional"
	ToneCasual       Tone = "Casual"
	ToneFriendly     Tone = "Friendly"
	ToneEnthusiastic Tone = "Enthusiastic"
	ToneFormal       Tone = "Formal"
	ToneHumorous     Tone = "Humorous"
)

// Tones lists the selectable tones in display order.
var Tones = []Tone{
	ToneProfessional,
	ToneCasual,
	ToneFriendly,
	ToneEnthusiastic,
	ToneFormal,
	ToneHumorous,
}

// ParseStyle matches a style name case-insensitively. An empty name yields the default.
func ParseStyle(s string) (Style, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return StyleInformative, nil
	}
	for _, style := range Styles {
		if strings.EqualFold(string(style), s) {
			return style, nil
		}
	}
	return "", &ValidationError{Field: "style", Reason: "unknown style " + s}
}

// ParseTone matches a tone name case-insensitively. An empty name yields the default.
func ParseTone(s string) (Tone, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ToneProfessional, nil
	}
	for _, tone := range Tones {
		if strings.EqualFold(string(tone), s) {
			return tone, nil
		}
	}
	return "", &ValidationError{Field: "tone", Reason: "unknown tone " + s}
}

// Options describes the newsletter to write.
type Options struct {
	Topic string `json:"topic"`
	Style Style  `json:"style"`
	Tone  Tone   `json:"tone"`
}

// DefaultOptions returns the initial options: no topic, Informative, Professional.
func DefaultOptions() Options {
	return Options{Style: StyleInformative, Tone: ToneProfessional}
}

// Source is a web citation returned alongside research.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// ResearchResult is the outcome of one research call.
type ResearchResult struct {
	Summary string   `json:"summary"`
	Sources []Source `json:"sources"`
}

// GenerationRequest carries everything needed to draft a newsletter.
type GenerationRequest struct {
	Options         Options `json:"options"`
	ResearchSummary string  `json:"researchSummary,omitempty"`
	UserNotes       string  `json:"userNotes,omitempty"`
}

// EditRequest asks for a revision of existing content.
type EditRequest struct {
	OriginalContent string `json:"originalContent"`
	Instruction     string `json:"instruction"`
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
