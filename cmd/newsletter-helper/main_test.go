package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikeboe/newsletter-helper/pkg/newsletter"
)

func TestPrintResearch(t *testing.T) {
	tests := []struct {
		name   string
		result *newsletter.ResearchResult
		want   string
	}{
		{
			name:   "no sources",
			result: &newsletter.ResearchResult{Summary: "Summary.", Sources: []newsletter.Source{}},
			want:   "Summary.\n",
		},
		{
			name: "title falls back to uri",
			result: &newsletter.ResearchResult{
				Summary: "Summary.",
				Sources: []newsletter.Source{
					{URI: "https://a.example", Title: "A"},
					{URI: "https://b.example"},
				},
			},
			want: "Summary.\n\nSources:\n  1. A <https://a.example>\n  2. https://b.example <https://b.example>\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printResearch(&buf, tt.result)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWriteOutputAndReadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "newsletter.md")
	outPath = path
	t.Cleanup(func() { outPath = "" })

	require.NoError(t, writeOutput("# Hello"))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Hello", string(b))

	got, err := readInput(path)
	require.NoError(t, err)
	assert.Equal(t, "# Hello", got)

	_, err = readInput(filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, err)
}
