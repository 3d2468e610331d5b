// Package studio owns the application state of a newsletter session and is
// the only caller of the research and writing pipelines on behalf of a user.
package studio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/mikeboe/newsletter-helper/pkg/metrics"
	"github.com/mikeboe/newsletter-helper/pkg/newsletter"
	"github.com/mikeboe/newsletter-helper/pkg/storage"
)

var (
	// ErrBusy is returned when the same kind of request is already in flight.
	ErrBusy = errors.New("another request is already in progress")
	// ErrNothingToExport is returned by Export before any content exists.
	ErrNothingToExport = errors.New("no newsletter content to export")
)

const (
	ExportFilename    = "newsletter.txt"
	ExportContentType = "text/plain; charset=utf-8"
)

// Researcher is the research pipeline.
type Researcher interface {
	Research(ctx context.Context, topic string) (*newsletter.ResearchResult, error)
}

// Writer is the generation and editing pipeline.
type Writer interface {
	Generate(ctx context.Context, req newsletter.GenerationRequest) (string, error)
	Edit(ctx context.Context, req newsletter.EditRequest) (string, error)
}

// State is everything the UI renders.
type State struct {
	Options     newsletter.Options         `json:"options"`
	Research    *newsletter.ResearchResult `json:"research,omitempty"`
	Notes       string                     `json:"notes"`
	Content     string                     `json:"content"`
	Researching bool                       `json:"researching"`
	Generating  bool                       `json:"generating"`
	Editing     bool                       `json:"editing"`
}

type Controller struct {
	researcher Researcher
	writer     Writer
	notes      storage.Store
	metrics    metrics.Recorder
	logger     *slog.Logger

	mu    sync.Mutex
	state State
}

type Option func(*Controller)

func WithMetrics(r metrics.Recorder) Option {
	return func(c *Controller) { c.metrics = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// NewController builds a controller and restores persisted notes.
func NewController(ctx context.Context, researcher Researcher, writer Writer, notes storage.Store, opts ...Option) (*Controller, error) {
	c := &Controller{
		researcher: researcher,
		writer:     writer,
		notes:      notes,
		metrics:    metrics.Nop{},
		logger:     slog.Default(),
		state:      State{Options: newsletter.DefaultOptions()},
	}
	for _, opt := range opts {
		opt(c)
	}

	saved, _, err := notes.Get(ctx, storage.NotesKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}
	c.state.Notes = saved

	return c, nil
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	if s.Research != nil {
		r := *s.Research
		r.Sources = append([]newsletter.Source{}, s.Research.Sources...)
		s.Research = &r
	}
	return s
}

// SetOptions replaces the newsletter options after normalising style and tone.
func (c *Controller) SetOptions(opts newsletter.Options) (newsletter.Options, error) {
	style, err := newsletter.ParseStyle(string(opts.Style))
	if err != nil {
		return newsletter.Options{}, err
	}
	tone, err := newsletter.ParseTone(string(opts.Tone))
	if err != nil {
		return newsletter.Options{}, err
	}
	opts.Style, opts.Tone = style, tone

	c.mu.Lock()
	c.state.Options = opts
	c.mu.Unlock()
	return opts, nil
}

// Research runs the research pipeline and replaces the previous result on success.
func (c *Controller) Research(ctx context.Context, topic string) (*newsletter.ResearchResult, error) {
	const op = "research"

	c.mu.Lock()
	if c.state.Researching {
		c.mu.Unlock()
		c.reject(op)
		return nil, ErrBusy
	}
	c.state.Researching = true
	c.mu.Unlock()

	start := time.Now()
	result, err := c.researcher.Research(ctx, topic)

	c.mu.Lock()
	c.state.Researching = false
	if err == nil {
		c.state.Research = result
	}
	c.mu.Unlock()

	c.observe(op, start, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Generate drafts a newsletter from the current options, research summary and
// notes. Existing content is kept if generation fails.
func (c *Controller) Generate(ctx context.Context) (string, error) {
	const op = "generate"

	c.mu.Lock()
	if c.state.Generating || c.state.Editing {
		c.mu.Unlock()
		c.reject(op)
		return "", ErrBusy
	}
	req := newsletter.GenerationRequest{
		Options:   c.state.Options,
		UserNotes: c.state.Notes,
	}
	if c.state.Research != nil {
		req.ResearchSummary = c.state.Research.Summary
	}
	c.state.Generating = true
	c.mu.Unlock()

	start := time.Now()
	content, err := c.writer.Generate(ctx, req)

	c.mu.Lock()
	c.state.Generating = false
	if err == nil {
		c.state.Content = content
	}
	c.mu.Unlock()

	c.observe(op, start, err)
	return content, err
}

// Edit revises the current content. The result replaces it wholesale.
func (c *Controller) Edit(ctx context.Context, instruction string) (string, error) {
	const op = "edit"

	c.mu.Lock()
	if c.state.Generating || c.state.Editing {
		c.mu.Unlock()
		c.reject(op)
		return "", ErrBusy
	}
	req := newsletter.EditRequest{
		OriginalContent: c.state.Content,
		Instruction:     instruction,
	}
	c.state.Editing = true
	c.mu.Unlock()

	start := time.Now()
	content, err := c.writer.Edit(ctx, req)

	c.mu.Lock()
	c.state.Editing = false
	if err == nil {
		c.state.Content = content
	}
	c.mu.Unlock()

	c.observe(op, start, err)
	return content, err
}

// SetNotes persists notes and then mirrors them into the state.
func (c *Controller) SetNotes(ctx context.Context, notes string) error {
	if err := c.notes.Set(ctx, storage.NotesKey, notes); err != nil {
		c.logger.Error("Failed to save notes", "error", err)
		return fmt.Errorf("failed to save notes: %w", err)
	}

	c.mu.Lock()
	c.state.Notes = notes
	c.mu.Unlock()
	return nil
}

func (c *Controller) ClearNotes(ctx context.Context) error {
	return c.SetNotes(ctx, "")
}

// SetContent loads existing newsletter text, e.g. a file opened for editing.
func (c *Controller) SetContent(content string) {
	c.mu.Lock()
	c.state.Content = content
	c.mu.Unlock()
}

// Export writes the current content as plain UTF-8 text.
func (c *Controller) Export(w io.Writer) error {
	c.mu.Lock()
	content := c.state.Content
	c.mu.Unlock()

	if content == "" {
		return ErrNothingToExport
	}
	if _, err := io.WriteString(w, content); err != nil {
		return fmt.Errorf("failed to export newsletter: %w", err)
	}
	return nil
}

func (c *Controller) reject(op string) {
	c.logger.Warn("Rejected request while another is in flight", "operation", op)
	c.metrics.ObserveOperation(op, metrics.OutcomeBusy, 0)
}

func (c *Controller) observe(op string, start time.Time, err error) {
	var validationErr *newsletter.ValidationError

	outcome := metrics.OutcomeSuccess
	switch {
	case err == nil:
	case errors.As(err, &validationErr):
		outcome = metrics.OutcomeValidation
	default:
		outcome = metrics.OutcomeFailure
	}
	c.metrics.ObserveOperation(op, outcome, time.Since(start))
}
