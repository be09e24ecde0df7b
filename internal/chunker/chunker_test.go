package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSentences(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "no terminator",
			text:     "no punctuation here",
			expected: []string{"no punctuation here"},
		},
		{
			name:     "two sentences",
			text:     "Hello world. This is a test.",
			expected: []string{"Hello world.", " This is a test."},
		},
		{
			name:     "mixed terminators",
			text:     "Really?! Yes. Wow!",
			expected: []string{"Really?!", " Yes.", " Wow!"},
		},
		{
			name:     "unterminated tail kept",
			text:     "First one. and then",
			expected: []string{"First one.", " and then"},
		},
		{
			name:     "whitespace tail dropped",
			text:     "Only one.   ",
			expected: []string{"Only one."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sentences(tt.text)
			if len(got) != len(tt.expected) {
				t.Fatalf("Sentences(%q) = %q, want %q", tt.text, got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("Sentences(%q)[%d] = %q, want %q", tt.text, i, got[i], tt.expected[i])
				}
			}
		})
	}
}

// sentence100 is exactly 100 characters including its leading space.
var sentence100 = " " + strings.Repeat("a", 98) + "."

func TestSplit(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		maxLength      int
		expectedChunks int
	}{
		{
			name:           "empty input",
			text:           "",
			maxLength:      100,
			expectedChunks: 0,
		},
		{
			name:           "whitespace input",
			text:           "   \n ",
			maxLength:      100,
			expectedChunks: 0,
		},
		{
			name:           "short text fits",
			text:           "Hello world. This is a test.",
			maxLength:      100,
			expectedChunks: 1,
		},
		{
			name:           "3200 characters of prose",
			text:           strings.Repeat(sentence100, 32),
			maxLength:      1500,
			expectedChunks: 3,
		},
		{
			name:           "each sentence in own chunk",
			text:           strings.Repeat(sentence100, 3),
			maxLength:      100,
			expectedChunks: 3,
		},
		{
			name:           "oversized sentence gets own chunk",
			text:           "Small. " + strings.Repeat("x", 300) + ". Another.",
			maxLength:      50,
			expectedChunks: 3,
		},
		{
			name:           "default max length",
			text:           strings.Repeat(sentence100, 20),
			maxLength:      0,
			expectedChunks: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := Split(tt.text, tt.maxLength)
			if len(chunks) != tt.expectedChunks {
				t.Errorf("Split() returned %d chunks, want %d", len(chunks), tt.expectedChunks)
			}
		})
	}
}

func TestSplit_NoTerminalPunctuation(t *testing.T) {
	inputs := []string{
		"a line without an ending",
		"  padded text  ",
		strings.Repeat("word ", 500),
	}

	for _, in := range inputs {
		chunks := Split(in, 100)
		if len(chunks) != 1 {
			t.Fatalf("Split(%q) returned %d chunks, want 1", in, len(chunks))
		}
		if chunks[0] != strings.TrimSpace(in) {
			t.Errorf("Split(%q) = %q, want trimmed input", in, chunks[0])
		}
	}
}

func TestSplit_ChunksEndAtSentenceBoundary(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 80; i++ {
		b.WriteString("The river ran quietly past the old mill")
		switch i % 3 {
		case 0:
			b.WriteString(". ")
		case 1:
			b.WriteString("! ")
		default:
			b.WriteString("? ")
		}
	}
	text := b.String()

	chunks := Split(text, 500)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i, chunk := range chunks {
		if n := utf8.RuneCountInString(chunk); n > 500 {
			t.Errorf("chunk %d has %d characters, want <= 500", i, n)
		}
		last := chunk[len(chunk)-1]
		if last != '.' && last != '!' && last != '?' {
			t.Errorf("chunk %d ends with %q, want a sentence terminator", i, last)
		}
	}
}

func TestSplit_PreservesContent(t *testing.T) {
	text := strings.Repeat("One sentence here. Another one there! ", 60) + "And a tail"

	chunks := Split(text, 300)

	got := strings.Join(strings.Fields(strings.Join(chunks, " ")), " ")
	want := strings.Join(strings.Fields(text), " ")
	if got != want {
		t.Errorf("joined chunks do not reconstruct the input\n got: %q\nwant: %q", got, want)
	}
}

func TestSplit_CountsCharactersNotBytes(t *testing.T) {
	// Each sentence is 10 characters but 19 bytes.
	sentence := "ğğğğğğğğğ."
	text := strings.Repeat(sentence, 4)

	chunks := Split(text, 22)
	if len(chunks) != 2 {
		t.Errorf("Split() returned %d chunks, want 2", len(chunks))
	}
}
