// Package images derives one illustration reference per sentence of a
// stage's story text. When the generation backend is reachable it asks for a
// vivid per-sentence visual description and embeds it in an
// image-generation-by-prompt URL; otherwise it falls back to deterministic
// seeded placeholder images. Image URLs are fetched lazily by the client, so
// planning never downloads image bytes.
package images

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/crossroads-game/crossroads/pkg/story"
)

const (
	promptImageBaseURL   = "https://image.pollinations.ai/prompt"
	placeholderBaseURL   = "https://picsum.photos/seed"
	imageWidth           = 1600
	imageHeight          = 900
	maxPromptChars       = 100
	descriptionParallel  = 3
	pacingRequestsPerSec = 10 // one description request per 100ms, in aggregate
)

// Describer is the slice of the LLM service the planner needs.
type Describer interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Planner builds per-sentence image references for stage stories.
type Planner struct {
	llm     Describer // nil disables the generation path
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewPlanner creates a planner. A nil Describer is valid and puts the
// planner in fallback-only mode.
func NewPlanner(llm Describer, logger *slog.Logger) *Planner {
	return &Planner{
		llm:     llm,
		limiter: rate.NewLimiter(rate.Limit(pacingRequestsPerSec), 1),
		logger:  logger,
	}
}

// SplitSentences splits story text on sentence-terminal punctuation followed
// by whitespace, keeping the punctuation and discarding empty fragments.
func SplitSentences(text string) []string {
	var sentences []string
	var b strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		b.WriteRune(r)
		if isTerminal(r) && (i+1 >= len(runes) || unicode.IsSpace(runes[i+1])) {
			if s := strings.TrimSpace(b.String()); s != "" {
				sentences = append(sentences, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// PlanImages returns one image reference per sentence of storyText, in
// sentence order. Descriptions are requested with bounded parallelism and
// paced to respect the backend's rate limits; if the backend is absent or
// any request fails, every sentence gets a deterministic seeded placeholder
// derived from (stageNumber, sentenceIndex, priorPositiveCount) instead.
// The first element doubles as the stage's primary image.
func (p *Planner) PlanImages(ctx context.Context, storyText string, stageNumber, priorPositiveCount int) []string {
	sentences := SplitSentences(storyText)
	if len(sentences) == 0 {
		return nil
	}

	if p.llm == nil {
		return p.placeholderRefs(sentences, stageNumber, priorPositiveCount)
	}

	refs := make([]string, len(sentences))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(descriptionParallel)

	for i, sentence := range sentences {
		g.Go(func() error {
			if err := p.limiter.Wait(gctx); err != nil {
				return err
			}
			desc, err := p.llm.GenerateText(gctx, story.ImageDescriptionPrompt(sentence))
			if err != nil {
				return err
			}
			refs[i] = promptImageRef(desc, stageNumber+i)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		p.logger.Warn("Image description generation failed, using placeholders",
			"stage", stageNumber, "sentences", len(sentences), "error", err)
		return p.placeholderRefs(sentences, stageNumber, priorPositiveCount)
	}
	return refs
}

func (p *Planner) placeholderRefs(sentences []string, stageNumber, priorPositiveCount int) []string {
	refs := make([]string, len(sentences))
	for i := range sentences {
		refs[i] = placeholderRef(stageNumber, i, priorPositiveCount)
	}
	return refs
}

// promptImageRef embeds a truncated, URL-escaped description in an
// image-by-prompt URL with a seed combining stage number and sentence index.
// Truncation counts runes so a multi-byte character is never split.
func promptImageRef(description string, seed int) string {
	desc := strings.TrimSpace(description)
	if runes := []rune(desc); len(runes) > maxPromptChars {
		desc = string(runes[:maxPromptChars])
	}
	return fmt.Sprintf("%s/%s?width=%d&height=%d&seed=%d&nologo=true",
		promptImageBaseURL, url.PathEscape(desc), imageWidth, imageHeight, seed)
}

// placeholderRef derives a deterministic seeded placeholder image.
func placeholderRef(stageNumber, sentenceIndex, priorPositiveCount int) string {
	seed := 100 + stageNumber + priorPositiveCount*10 + sentenceIndex
	return fmt.Sprintf("%s/%d/%d/%d", placeholderBaseURL, seed, imageWidth, imageHeight)
}
