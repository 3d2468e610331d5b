package studio

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikeboe/newsletter-helper/pkg/clients"
	"github.com/mikeboe/newsletter-helper/pkg/metrics"
	"github.com/mikeboe/newsletter-helper/pkg/newsletter"
	"github.com/mikeboe/newsletter-helper/pkg/newsletter/newslettertest"
	"github.com/mikeboe/newsletter-helper/pkg/storage"
)

type observation struct {
	op, outcome string
}

type fakeRecorder struct {
	mu  sync.Mutex
	obs []observation
}

func (r *fakeRecorder) ObserveOperation(op, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = append(r.obs, observation{op, outcome})
}

func (r *fakeRecorder) all() []observation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]observation(nil), r.obs...)
}

type failingStore struct{ err error }

func (s failingStore) Get(context.Context, string) (string, bool, error) { return "", false, s.err }
func (s failingStore) Set(context.Context, string, string) error         { return s.err }
func (s failingStore) Delete(context.Context, string) error              { return s.err }

type fixture struct {
	ctrl          *Controller
	researchModel *newslettertest.FakeModel
	writerModel   *newslettertest.FakeModel
	store         *storage.FileStore
	recorder      *fakeRecorder
}

func newFixture(t *testing.T, researchModel, writerModel *newslettertest.FakeModel) *fixture {
	t.Helper()
	store := storage.NewFileStore(filepath.Join(t.TempDir(), "notes.json"))
	recorder := &fakeRecorder{}

	ctrl, err := NewController(context.Background(),
		newsletter.NewResearcher(researchModel),
		newsletter.NewWriter(writerModel),
		store,
		WithMetrics(recorder),
	)
	require.NoError(t, err)

	return &fixture{ctrl: ctrl, researchModel: researchModel, writerModel: writerModel, store: store, recorder: recorder}
}

func TestNewControllerRestoresNotes(t *testing.T) {
	ctx := context.Background()
	store := storage.NewFileStore(filepath.Join(t.TempDir(), "notes.json"))
	require.NoError(t, store.Set(ctx, storage.NotesKey, "remember the launch"))

	ctrl, err := NewController(ctx, newsletter.NewResearcher(newslettertest.Returning("")), newsletter.NewWriter(newslettertest.Returning("")), store)
	require.NoError(t, err)

	state := ctrl.Snapshot()
	assert.Equal(t, "remember the launch", state.Notes)
	assert.Equal(t, newsletter.DefaultOptions(), state.Options)
	assert.Nil(t, state.Research)
	assert.Empty(t, state.Content)
}

func TestNewControllerFailsOnStoreError(t *testing.T) {
	_, err := NewController(context.Background(), nil, nil, failingStore{err: errors.New("disk gone")})
	assert.ErrorContains(t, err, "failed to load notes")
}

func TestGenerateUsesResearchAndNotes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t,
		newslettertest.Returning("Solar output grew 20%.", clients.GroundingChunk{URI: "https://solar.example", Title: "Solar"}),
		newslettertest.Returning("# Solar Weekly"),
	)

	_, err := f.ctrl.SetOptions(newsletter.Options{Topic: "Solar power", Style: "analytical", Tone: "casual"})
	require.NoError(t, err)
	require.NoError(t, f.ctrl.SetNotes(ctx, "Mention the community garden."))

	research, err := f.ctrl.Research(ctx, "Solar power")
	require.NoError(t, err)
	assert.Equal(t, "Solar output grew 20%.", research.Summary)

	content, err := f.ctrl.Generate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "# Solar Weekly", content)

	calls := f.writerModel.Calls()
	require.Len(t, calls, 1)
	want := newsletter.BuildGenerationPrompt(
		newsletter.Options{Topic: "Solar power", Style: newsletter.StyleAnalytical, Tone: newsletter.ToneCasual},
		"Solar output grew 20%.",
		"Mention the community garden.",
	)
	assert.Equal(t, want, calls[0].Prompt)

	state := f.ctrl.Snapshot()
	assert.Equal(t, "# Solar Weekly", state.Content)
	assert.False(t, state.Generating)
	assert.Equal(t, []observation{
		{"research", metrics.OutcomeSuccess},
		{"generate", metrics.OutcomeSuccess},
	}, f.recorder.all())
}

func TestResearchReplacesPreviousResult(t *testing.T) {
	ctx := context.Background()
	researchModel := newslettertest.Returning("first", clients.GroundingChunk{URI: "https://a.example"})
	f := newFixture(t, researchModel, newslettertest.Returning(""))

	_, err := f.ctrl.Research(ctx, "topic")
	require.NoError(t, err)

	researchModel.Response = clients.ModelResponse{Text: "second"}
	_, err = f.ctrl.Research(ctx, "topic")
	require.NoError(t, err)

	state := f.ctrl.Snapshot()
	require.NotNil(t, state.Research)
	assert.Equal(t, "second", state.Research.Summary)
	assert.Empty(t, state.Research.Sources)
}

func TestFailuresLeaveStateUnchanged(t *testing.T) {
	ctx := context.Background()
	researchModel := newslettertest.Returning("kept summary")
	writerModel := newslettertest.Returning("# Draft")
	f := newFixture(t, researchModel, writerModel)

	_, err := f.ctrl.SetOptions(newsletter.Options{Topic: "AI"})
	require.NoError(t, err)
	_, err = f.ctrl.Research(ctx, "AI")
	require.NoError(t, err)
	_, err = f.ctrl.Generate(ctx)
	require.NoError(t, err)

	boom := &clients.ModelError{Model: "fake", Err: errors.New("quota")}
	researchModel.Err = boom
	writerModel.Err = boom

	_, err = f.ctrl.Research(ctx, "AI")
	var researchErr *newsletter.ResearchError
	assert.ErrorAs(t, err, &researchErr)

	_, err = f.ctrl.Generate(ctx)
	var generationErr *newsletter.GenerationError
	assert.ErrorAs(t, err, &generationErr)

	_, err = f.ctrl.Edit(ctx, "shorter")
	var editErr *newsletter.EditError
	assert.ErrorAs(t, err, &editErr)

	state := f.ctrl.Snapshot()
	assert.Equal(t, "kept summary", state.Research.Summary)
	assert.Equal(t, "# Draft", state.Content)
	assert.False(t, state.Researching || state.Generating || state.Editing)
}

func TestEditRequiresContent(t *testing.T) {
	f := newFixture(t, newslettertest.Returning(""), newslettertest.Returning("unused"))

	_, err := f.ctrl.Edit(context.Background(), "Make it shorter")

	var validationErr *newsletter.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "content", validationErr.Field)
	assert.Zero(t, f.writerModel.CallCount())
	assert.Equal(t, []observation{{"edit", metrics.OutcomeValidation}}, f.recorder.all())
}

func TestEditReplacesContent(t *testing.T) {
	f := newFixture(t, newslettertest.Returning(""), newslettertest.Returning("# New\nShort body"))
	f.ctrl.SetContent("# Old\nBody")

	got, err := f.ctrl.Edit(context.Background(), "Make it shorter")
	require.NoError(t, err)
	assert.Equal(t, "# New\nShort body", got)
	assert.Equal(t, "# New\nShort body", f.ctrl.Snapshot().Content)
}

func TestWritingRejectsReentry(t *testing.T) {
	ctx := context.Background()
	writerModel := newslettertest.Returning("# Done")
	writerModel.Block = make(chan struct{})
	f := newFixture(t, newslettertest.Returning("research ok"), writerModel)

	_, err := f.ctrl.SetOptions(newsletter.Options{Topic: "AI"})
	require.NoError(t, err)
	f.ctrl.SetContent("# Existing")

	done := make(chan error, 1)
	go func() {
		_, err := f.ctrl.Generate(ctx)
		done <- err
	}()

	require.Eventually(t, func() bool { return writerModel.CallCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, f.ctrl.Snapshot().Generating)

	_, err = f.ctrl.Generate(ctx)
	assert.ErrorIs(t, err, ErrBusy)
	_, err = f.ctrl.Edit(ctx, "shorter")
	assert.ErrorIs(t, err, ErrBusy)

	// Research has its own flag and is not blocked by writing.
	_, err = f.ctrl.Research(ctx, "AI")
	assert.NoError(t, err)

	close(writerModel.Block)
	require.NoError(t, <-done)
	assert.Equal(t, "# Done", f.ctrl.Snapshot().Content)
	assert.Equal(t, 1, writerModel.CallCount())
}

func TestSetOptionsRejectsUnknownStyle(t *testing.T) {
	f := newFixture(t, newslettertest.Returning(""), newslettertest.Returning(""))

	_, err := f.ctrl.SetOptions(newsletter.Options{Topic: "AI", Style: "Limerick"})

	var validationErr *newsletter.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "style", validationErr.Field)
	assert.Equal(t, newsletter.DefaultOptions(), f.ctrl.Snapshot().Options)
}

func TestNotesPersistAndClear(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, newslettertest.Returning(""), newslettertest.Returning(""))

	require.NoError(t, f.ctrl.SetNotes(ctx, "idea"))
	saved, ok, err := f.store.Get(ctx, storage.NotesKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "idea", saved)

	require.NoError(t, f.ctrl.ClearNotes(ctx))
	saved, _, err = f.store.Get(ctx, storage.NotesKey)
	require.NoError(t, err)
	assert.Empty(t, saved)
	assert.Empty(t, f.ctrl.Snapshot().Notes)
}

func TestSetNotesKeepsStateOnStoreFailure(t *testing.T) {
	ctrl := &Controller{notes: failingStore{err: errors.New("read-only")}, logger: slog.Default(), state: State{Notes: "old"}}

	err := ctrl.SetNotes(context.Background(), "new")
	assert.Error(t, err)
	assert.Equal(t, "old", ctrl.Snapshot().Notes)
}

func TestExport(t *testing.T) {
	f := newFixture(t, newslettertest.Returning(""), newslettertest.Returning(""))

	var buf bytes.Buffer
	assert.ErrorIs(t, f.ctrl.Export(&buf), ErrNothingToExport)

	f.ctrl.SetContent("# Café ☕\nBody")
	require.NoError(t, f.ctrl.Export(&buf))
	assert.Equal(t, "# Café ☕\nBody", buf.String())
}

func TestSnapshotIsACopy(t *testing.T) {
	f := newFixture(t, newslettertest.Returning("s", clients.GroundingChunk{URI: "https://a.example", Title: "A"}), newslettertest.Returning(""))
	_, err := f.ctrl.Research(context.Background(), "topic")
	require.NoError(t, err)

	snap := f.ctrl.Snapshot()
	snap.Research.Sources[0].Title = "changed"
	snap.Research.Summary = "changed"

	again := f.ctrl.Snapshot()
	assert.Equal(t, "A", again.Research.Sources[0].Title)
	assert.Equal(t, "s", again.Research.Summary)
}
