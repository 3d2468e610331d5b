// Package newslettertest provides a scripted model for tests.
package newslettertest

import (
	"context"
	"sync"

	"github.com/mikeboe/newsletter-helper/pkg/clients"
)

// Call records one Complete invocation.
type Call struct {
	Prompt string
	Opts   clients.CompleteOptions
}

// FakeModel returns a fixed response (or error) and records every call.
type FakeModel struct {
	mu       sync.Mutex
	Response clients.ModelResponse
	Err      error
	// Block, when set, is waited on before answering.
	Block chan struct{}
	calls []Call
}

// Returning builds a FakeModel that always answers with text.
func Returning(text string, chunks ...clients.GroundingChunk) *FakeModel {
	return &FakeModel{Response: clients.ModelResponse{Text: text, GroundingChunks: chunks}}
}

// Failing builds a FakeModel that always fails with err.
func Failing(err error) *FakeModel {
	return &FakeModel{Err: err}
}

func (m *FakeModel) Complete(ctx context.Context, prompt string, opts clients.CompleteOptions) (*clients.ModelResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Prompt: prompt, Opts: opts})
	block := m.Block
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, &clients.ModelError{Model: "fake", Err: ctx.Err()}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	resp := m.Response
	resp.GroundingChunks = append([]clients.GroundingChunk(nil), m.Response.GroundingChunks...)
	return &resp, nil
}

// Calls returns a copy of the recorded calls.
func (m *FakeModel) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// CallCount returns the number of Complete invocations so far.
func (m *FakeModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
