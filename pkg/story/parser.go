package story

import (
	"errors"
	"regexp"
	"strings"
)

// ErrMalformedResponse indicates generated text that could not be parsed
// into a story and two choices, or whose story was too short to trust.
// Callers fall back to the static bank; this error never reaches players.
var ErrMalformedResponse = errors.New("malformed generation response")

// MinStoryLength rejects truncated or off-format model output. The backend
// occasionally returns partial text; anything under this length is not a
// usable stage body.
const MinStoryLength = 50

var (
	storyRe   = regexp.MustCompile(`(?is)story:\s*(.+?)(?:\n\s*choice\s*1:|choice\s*1:|$)`)
	choice1Re = regexp.MustCompile(`(?is)choice\s*1:\s*(.+?)(?:\n\s*choice\s*2:|choice\s*2:|$)`)
	choice2Re = regexp.MustCompile(`(?is)choice\s*2:\s*(.+?)(?:\n|$)`)
)

// ParseStageResponse extracts the labeled Story / Choice 1 / Choice 2
// segments from raw model output. Matching is case-insensitive and tolerant
// of surrounding whitespace. Returns ErrMalformedResponse when the story is
// absent or shorter than MinStoryLength, or when either choice is missing.
func ParseStageResponse(raw string) (StageContent, error) {
	content := StageContent{
		Story:   extract(storyRe, raw),
		ChoiceA: extract(choice1Re, raw),
		ChoiceB: extract(choice2Re, raw),
	}

	if len(content.Story) < MinStoryLength || content.ChoiceA == "" || content.ChoiceB == "" {
		return StageContent{}, ErrMalformedResponse
	}
	return content, nil
}

func extract(re *regexp.Regexp, raw string) string {
	m := re.FindStringSubmatch(raw)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}
