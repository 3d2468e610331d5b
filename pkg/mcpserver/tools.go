package mcpserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mikeboe/newsletter-helper/pkg/newsletter"
)

type ResearchInput struct {
	Topic string `json:"topic" jsonschema:"the topic to research"`
}

type GenerateInput struct {
	Topic           string `json:"topic" jsonschema:"main topic of the newsletter"`
	Style           string `json:"style,omitempty" jsonschema:"writing style, e.g. Informative, Persuasive, Storytelling"`
	Tone            string `json:"tone,omitempty" jsonschema:"tone, e.g. Professional, Casual, Friendly"`
	ResearchSummary string `json:"researchSummary,omitempty" jsonschema:"research to incorporate"`
	Notes           string `json:"notes,omitempty" jsonschema:"personal notes to incorporate"`
}

type EditInput struct {
	Content     string `json:"content" jsonschema:"the current newsletter markdown"`
	Instruction string `json:"instruction" jsonschema:"how the newsletter should change"`
}

// ContentOutput carries newsletter markdown.
type ContentOutput struct {
	Content string `json:"content"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "research_topic",
		Description: "Research a topic with web search and return a summary with its sources",
	}, s.handleResearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_newsletter",
		Description: "Write a 600-1000 word markdown newsletter on a topic",
	}, s.handleGenerate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "edit_newsletter",
		Description: "Revise a newsletter according to an instruction and return the full revised text",
	}, s.handleEdit)
}

func (s *Server) handleResearch(ctx context.Context, _ *mcp.CallToolRequest, input ResearchInput) (*mcp.CallToolResult, newsletter.ResearchResult, error) {
	result, err := s.researcher.Research(ctx, input.Topic)
	if err != nil {
		return nil, newsletter.ResearchResult{}, toolError(err)
	}
	return nil, *result, nil
}

func (s *Server) handleGenerate(ctx context.Context, _ *mcp.CallToolRequest, input GenerateInput) (*mcp.CallToolResult, ContentOutput, error) {
	style, err := newsletter.ParseStyle(input.Style)
	if err != nil {
		return nil, ContentOutput{}, toolError(err)
	}
	tone, err := newsletter.ParseTone(input.Tone)
	if err != nil {
		return nil, ContentOutput{}, toolError(err)
	}

	content, err := s.writer.Generate(ctx, newsletter.GenerationRequest{
		Options:         newsletter.Options{Topic: input.Topic, Style: style, Tone: tone},
		ResearchSummary: input.ResearchSummary,
		UserNotes:       input.Notes,
	})
	if err != nil {
		return nil, ContentOutput{}, toolError(err)
	}
	return nil, ContentOutput{Content: content}, nil
}

func (s *Server) handleEdit(ctx context.Context, _ *mcp.CallToolRequest, input EditInput) (*mcp.CallToolResult, ContentOutput, error) {
	content, err := s.writer.Edit(ctx, newsletter.EditRequest{
		OriginalContent: input.Content,
		Instruction:     input.Instruction,
	})
	if err != nil {
		return nil, ContentOutput{}, toolError(err)
	}
	return nil, ContentOutput{Content: content}, nil
}

// toolError hides model failure details from the calling agent; the
// pipelines have already logged them.
func toolError(err error) error {
	return errors.New(newsletter.UserMessage(err))
}
