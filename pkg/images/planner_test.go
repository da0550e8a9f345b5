package images

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"unicode/utf8"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

type describerFunc func(ctx context.Context, prompt string) (string, error)

func (f describerFunc) GenerateText(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "periods",
			text: "You walk in. The room is dark. Someone calls your name.",
			want: []string{"You walk in.", "The room is dark.", "Someone calls your name."},
		},
		{
			name: "mixed punctuation",
			text: "Stop! Are you sure? It matters.",
			want: []string{"Stop!", "Are you sure?", "It matters."},
		},
		{
			name: "no trailing terminator",
			text: "First sentence. A trailing fragment",
			want: []string{"First sentence.", "A trailing fragment"},
		},
		{
			name: "abbreviation-like periods without space do not split",
			text: "It was 3.5 miles away. You start walking.",
			want: []string{"It was 3.5 miles away.", "You start walking."},
		},
		{
			name: "empty",
			text: "",
			want: nil,
		},
		{
			name: "whitespace only",
			text: "   ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d sentences, got %d: %v", len(tt.want), len(got), got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("Sentence %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSplitSentences_Idempotent(t *testing.T) {
	text := "You walk in. The room is dark! Someone calls your name?"
	first := SplitSentences(text)
	second := SplitSentences(strings.Join(first, " "))

	if len(first) != len(second) {
		t.Fatalf("Re-split changed sentence count: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Sentence %d changed on re-split: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestPlanImages_FallbackOnlyMode(t *testing.T) {
	planner := NewPlanner(nil, testLogger())
	text := "You walk in. The room is dark. Someone calls your name."

	refs := planner.PlanImages(context.Background(), text, 2, 1)

	if len(refs) != 3 {
		t.Fatalf("Expected one ref per sentence, got %d", len(refs))
	}
	for i, ref := range refs {
		want := fmt.Sprintf("https://picsum.photos/seed/%d/1600/900", 100+2+1*10+i)
		if ref != want {
			t.Errorf("Ref %d = %q, want %q", i, ref, want)
		}
	}

	// Deterministic across calls
	again := planner.PlanImages(context.Background(), text, 2, 1)
	for i := range refs {
		if refs[i] != again[i] {
			t.Errorf("Placeholder refs must be deterministic, ref %d differed", i)
		}
	}
}

func TestPlanImages_GenerationPath(t *testing.T) {
	var calls atomic.Int32
	llm := describerFunc(func(ctx context.Context, prompt string) (string, error) {
		calls.Add(1)
		return "A dim gymnasium with lockers in shadow, tense faces lit by a phone screen.", nil
	})

	planner := NewPlanner(llm, testLogger())
	text := "You walk in. The room is dark."

	refs := planner.PlanImages(context.Background(), text, 1, 0)

	if len(refs) != 2 {
		t.Fatalf("Expected 2 refs, got %d", len(refs))
	}
	if int(calls.Load()) != 2 {
		t.Errorf("Expected one description request per sentence, got %d", calls.Load())
	}
	for i, ref := range refs {
		if !strings.HasPrefix(ref, "https://image.pollinations.ai/prompt/") {
			t.Errorf("Ref %d should be a prompt-image URL, got %q", i, ref)
		}
		if !strings.Contains(ref, fmt.Sprintf("seed=%d", 1+i)) {
			t.Errorf("Ref %d should embed seed %d, got %q", i, 1+i, ref)
		}
		if !strings.Contains(ref, "width=1600&height=900") {
			t.Errorf("Ref %d should request 16:9 dimensions, got %q", i, ref)
		}
	}
}

func TestPlanImages_TruncatesLongDescriptions(t *testing.T) {
	long := strings.Repeat("a vivid scene ", 20) // well over maxPromptChars
	llm := describerFunc(func(ctx context.Context, prompt string) (string, error) {
		return long, nil
	})

	planner := NewPlanner(llm, testLogger())
	refs := planner.PlanImages(context.Background(), "One sentence only.", 1, 0)

	if len(refs) != 1 {
		t.Fatalf("Expected 1 ref, got %d", len(refs))
	}
	escaped := refs[0][len("https://image.pollinations.ai/prompt/"):strings.Index(refs[0], "?")]
	if len(escaped) > maxPromptChars*3 { // generous bound after escaping
		t.Errorf("Description was not truncated: %d chars", len(escaped))
	}
}

func TestPromptImageRef_TruncatesOnRuneBoundary(t *testing.T) {
	// Multi-byte runes spanning the cutoff must not be split into invalid
	// UTF-8 before escaping.
	long := strings.Repeat("é", maxPromptChars+10)
	ref := promptImageRef(long, 7)

	escaped := ref[len("https://image.pollinations.ai/prompt/"):strings.Index(ref, "?")]
	decoded, err := url.PathUnescape(escaped)
	if err != nil {
		t.Fatalf("Escaped description does not round-trip: %v", err)
	}
	if !utf8.ValidString(decoded) {
		t.Error("Truncated description is not valid UTF-8")
	}
	if got := utf8.RuneCountInString(decoded); got != maxPromptChars {
		t.Errorf("Expected %d runes after truncation, got %d", maxPromptChars, got)
	}
}

func TestPlanImages_FallbackOnAnyFailure(t *testing.T) {
	var calls atomic.Int32
	llm := describerFunc(func(ctx context.Context, prompt string) (string, error) {
		if calls.Add(1) == 2 {
			return "", errors.New("quota exceeded")
		}
		return "A fine description of the scene with plenty of detail.", nil
	})

	planner := NewPlanner(llm, testLogger())
	text := "First sentence. Second sentence. Third sentence."

	refs := planner.PlanImages(context.Background(), text, 3, 2)

	if len(refs) != 3 {
		t.Fatalf("Expected 3 refs, got %d", len(refs))
	}
	// Entire stage falls back to placeholders on any failure.
	for i, ref := range refs {
		want := fmt.Sprintf("https://picsum.photos/seed/%d/1600/900", 100+3+2*10+i)
		if ref != want {
			t.Errorf("Ref %d = %q, want placeholder %q", i, ref, want)
		}
	}
}

func TestPlanImages_EmptyStory(t *testing.T) {
	planner := NewPlanner(nil, testLogger())
	if refs := planner.PlanImages(context.Background(), "", 1, 0); refs != nil {
		t.Errorf("Expected nil refs for empty story, got %v", refs)
	}
}
