// Package util provides common utility functions.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// Matches spaces, underscores, and slashes (for replacement with dashes).
	wordSeparatorRe = regexp.MustCompile(`[\s_/]+`)
	// Matches any non-alphanumeric character.
	nonAlphanumericRe = regexp.MustCompile(`[^a-z0-9]+`)
	// Matches non-alphanumeric characters (except dashes).
	nonAlphanumericKeepDashRe = regexp.MustCompile(`[^a-z0-9-]`)
	// Matches multiple consecutive dashes.
	multipleDashRe = regexp.MustCompile(`-+`)
)

// Slugify converts a name to a URL-safe slug.
// "Prompt Studio" -> "prompt-studio".
// "Résumé.AI" -> "resume-ai".
// "GPT-4 Wrapper/Kit" -> "gpt-4-wrapper-kit".
func Slugify(s string) string {
	// Normalize unicode (decompose accented characters).
	s = norm.NFKD.String(s)

	// Remove non-ASCII characters.
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	// Lowercase.
	s = strings.ToLower(s)

	// Replace non-alphanumeric runs with hyphens.
	s = nonAlphanumericRe.ReplaceAllString(s, "-")

	// Collapse multiple hyphens.
	s = multipleDashRe.ReplaceAllString(s, "-")

	// Trim leading/trailing hyphens.
	s = strings.Trim(s, "-")

	return s
}

// NormalizeTag converts user input to a canonical tag or tech-stack slug.
// The slug is the source of truth for tag identity.
//
// Normalization rules:
//  1. Trim whitespace and lowercase
//  2. Replace spaces and underscores with dashes
//  3. Remove non-alphanumeric characters (except dashes)
//  4. Collapse multiple dashes
//  5. Trim leading/trailing dashes
//
// Examples:
//
//	"Image Gen"     → "image-gen"
//	"image_gen"     → "image-gen"
//	"IMAGE-GEN"     → "image-gen"
//	"🤖 Agents!"    → "agents"
//	"  multi   word " → "multi-word"
//	"--leading--"   → "leading"
func NormalizeTag(input string) string {
	// 1. Trim and lowercase
	s := strings.ToLower(strings.TrimSpace(input))

	// 2. Replace word separators (spaces, underscores, slashes) with dashes
	s = wordSeparatorRe.ReplaceAllString(s, "-")

	// 3. Remove non-alphanumeric (except dashes)
	s = nonAlphanumericKeepDashRe.ReplaceAllString(s, "")

	// 4. Collapse multiple dashes
	s = multipleDashRe.ReplaceAllString(s, "-")

	// 5. Trim leading/trailing dashes
	s = strings.Trim(s, "-")

	return s
}

// NormalizeTags applies NormalizeTag to each value, dropping empties and
// duplicates while preserving order.
func NormalizeTags(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		slug := NormalizeTag(v)
		if slug == "" {
			continue
		}
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		out = append(out, slug)
	}
	return out
}
