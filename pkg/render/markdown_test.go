package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTML(t *testing.T) {
	tests := []struct {
		name        string
		markdown    string
		contains    []string
		notContains []string
	}{
		{
			name:     "Headings and emphasis",
			markdown: "# Weekly Digest\n\nSome **bold** text.",
			contains: []string{"<h1>Weekly Digest</h1>", "<strong>bold</strong>"},
		},
		{
			name:     "Bullet list",
			markdown: "- one\n- two",
			contains: []string{"<ul>", "<li>one</li>", "<li>two</li>"},
		},
		{
			name:     "GFM table",
			markdown: "| a | b |\n|---|---|\n| 1 | 2 |",
			contains: []string{"<table>", "<td>1</td>"},
		},
		{
			name:        "Script link stripped",
			markdown:    "[click](javascript:alert(1))",
			notContains: []string{"javascript:"},
		},
		{
			name:        "Raw HTML dropped",
			markdown:    "<script>alert(1)</script>\n\nHello",
			contains:    []string{"Hello"},
			notContains: []string{"<script>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HTML(tt.markdown)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, unwanted := range tt.notContains {
				assert.NotContains(t, got, unwanted)
			}
		})
	}
}
