package newsletter

import (
	"fmt"
	"strings"
)

const (
	researchHeading = "**Research on the Topic:**"
	notesHeading    = "**Personal Notes to Incorporate:**"

	minWords = 600
	maxWords = 1000
)

// generationInstructions are the fixed structural instructions of every newsletter.
var generationInstructions = []string{
	"Start with a catchy headline.",
	"Write a compelling introduction to grab the reader's attention.",
	"Develop the main body of the newsletter, structuring it with clear headings and subheadings.",
	"Incorporate the provided research and notes seamlessly into the content.",
	"Use paragraphs, bullet points, and bold text to improve readability.",
	"Conclude with a strong summary or a call-to-action.",
	"Ensure the final output is formatted using Markdown.",
}

// BuildResearchPrompt asks the model for a structured summary of topic.
func BuildResearchPrompt(topic string) string {
	return fmt.Sprintf(`Please research the topic: "%s".
Provide a comprehensive summary that includes key points, important statistics, and any notable quotes.
The summary should be well-structured and easy to read.`, topic)
}

// BuildGenerationPrompt assembles the newsletter drafting prompt. The research
// and notes sections are only present when the corresponding text is non-blank.
func BuildGenerationPrompt(opts Options, researchSummary, userNotes string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Create a high-quality, engaging newsletter with a word count between %d and %d words.\n\n", minWords, maxWords)

	sb.WriteString("**Newsletter Details:**\n")
	fmt.Fprintf(&sb, "- **Main Topic:** \"%s\"\n", opts.Topic)
	fmt.Fprintf(&sb, "- **Writing Style:** %s\n", opts.Style)
	fmt.Fprintf(&sb, "- **Tone:** %s\n\n", opts.Tone)

	sb.WriteString("**Instructions:**\n")
	for i, instruction := range generationInstructions {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, instruction)
	}

	if !isBlank(researchSummary) {
		fmt.Fprintf(&sb, "\n%s\n%s\n", researchHeading, researchSummary)
	}
	if !isBlank(userNotes) {
		fmt.Fprintf(&sb, "\n%s\n%s\n", notesHeading, userNotes)
	}

	return sb.String()
}

// BuildEditPrompt asks for the complete revised newsletter, not a diff.
func BuildEditPrompt(originalContent, instruction string) string {
	return fmt.Sprintf(`Please edit the following newsletter based on the instruction provided.
Return the full, revised newsletter with the edits incorporated, not just the changed parts. Use Markdown for formatting.

**Instruction:** "%s"

**Original Newsletter:**
---
%s
---
`, instruction, originalContent)
}
