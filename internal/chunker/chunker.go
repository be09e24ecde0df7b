// Package chunker splits long text into sentence-aligned chunks.
package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMaxLength is the default maximum chunk length in characters.
const DefaultMaxLength = 1500

var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+`)

// Sentences returns the sentences of text in order. A sentence is a run of
// non-terminator characters followed by one or more of '.', '!' or '?'.
// Text after the last terminator is returned as a final sentence, and text
// without any terminator is a single sentence.
func Sentences(text string) []string {
	locs := sentencePattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{text}
	}

	sentences := make([]string, 0, len(locs)+1)
	for _, loc := range locs {
		sentences = append(sentences, text[loc[0]:loc[1]])
	}

	// Keep an unterminated tail so no content is lost
	if tail := text[locs[len(locs)-1][1]:]; strings.TrimSpace(tail) != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

// Split splits text into chunks of at most maxLength characters without
// breaking sentences. Sentences are accumulated greedily; a single sentence
// longer than maxLength becomes its own oversized chunk.
// A maxLength <= 0 uses DefaultMaxLength. Empty text yields no chunks.
func Split(text string, maxLength int) []string {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if chunk := strings.TrimSpace(current.String()); chunk != "" {
			chunks = append(chunks, chunk)
		}
		current.Reset()
		currentLen = 0
	}

	for _, sentence := range Sentences(text) {
		n := utf8.RuneCountInString(sentence)

		// Start a new chunk if this sentence would overflow a non-empty one
		if currentLen+n > maxLength && currentLen > 0 {
			flush()
		}

		current.WriteString(sentence)
		current.WriteByte(' ')
		currentLen += n + 1
	}
	flush()

	return chunks
}
