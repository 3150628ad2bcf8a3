package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		// Basic normalization
		{"lowercase", "PromptStudio", "promptstudio"},
		{"spaces to hyphens", "Prompt Studio", "prompt-studio"},
		{"already normalized", "prompt-studio", "prompt-studio"},

		// Unicode
		{"accented characters", "Résumé.AI", "resume-ai"},
		{"non-ascii dropped", "日本語 Tool", "tool"},

		// Punctuation
		{"slashes", "GPT-4 Wrapper/Kit", "gpt-4-wrapper-kit"},
		{"dots", "my.cool.tool", "my-cool-tool"},
		{"apostrophes", "Dev's Helper", "dev-s-helper"},

		// Hyphen handling
		{"collapses runs", "a  --  b", "a-b"},
		{"trims leading", "--tool", "tool"},
		{"trims trailing", "tool!!", "tool"},

		// Edge cases
		{"empty string", "", ""},
		{"only punctuation", "!@#$%", ""},
		{"numbers kept", "Top10 Tools 2025", "top10-tools-2025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

func TestNormalizeTag(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase", "AGENTS", "agents"},
		{"spaces to dashes", "image gen", "image-gen"},
		{"underscores to dashes", "image_gen", "image-gen"},
		{"trim whitespace", "  agents  ", "agents"},
		{"emoji removal", "🤖 Agents!", "agents"},
		{"keeps existing dashes", "text-to-speech", "text-to-speech"},
		{"multiple dashes", "image--gen", "image-gen"},
		{"leading and trailing", "--agents--", "agents"},
		{"empty", "", ""},
		{"only special chars", "!@#$%", ""},
		{"numbers allowed", "gpt4", "gpt4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeTag(tt.input))
		})
	}
}

func TestNormalizeTags(t *testing.T) {
	t.Run("drops empties and duplicates", func(t *testing.T) {
		got := NormalizeTags([]string{"Agents", "  ", "agents", "Image Gen", "!!"})
		assert.Equal(t, []string{"agents", "image-gen"}, got)
	})

	t.Run("nil input", func(t *testing.T) {
		assert.Nil(t, NormalizeTags(nil))
	})
}
