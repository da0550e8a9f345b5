package story

import (
	"fmt"

	"github.com/crossroads-game/crossroads/pkg/session"
)

// responseFormat is appended to every stage prompt so the model's output can
// be extracted by ParseStageResponse.
const responseFormat = `IMPORTANT: Format your response EXACTLY as shown below (use these exact labels):
Story: [Write the story here in 80-120 words]
Choice 1: [Write the risky choice here in 12-18 words]
Choice 2: [Write the safe choice here in 12-18 words]`

// IntroPrompt builds the personalized stage 1 prompt.
func IntroPrompt(s *session.Session) string {
	interests := ""
	if s.PlayerInterests != "" {
		interests = fmt.Sprintf(" Interests: %s.", s.PlayerInterests)
	}

	return fmt.Sprintf(`Create an engaging anti-drug awareness story for %s, age %d.%s

Generate Stage 1 of a %d-stage interactive story that:
- Features realistic scenarios about drug exposure or peer pressure appropriate for age %d
- Is personalized and relatable
- Teaches the importance of making good choices
- Has exactly 2 choices where Choice 1 is risky/dangerous and Choice 2 is safe/wise
- Story: 80-120 words, engaging and descriptive
- Each choice: 12-18 words, clear and distinct

%s`, s.PlayerName, s.PlayerAge, interests, session.MaxStages, s.PlayerAge, responseFormat)
}

// ContinuationPrompt builds the prompt for stages 2..MaxStages. It embeds the
// previous stage's full story and both choice texts plus which one the
// player selected, and asks for consequences, or a conclusive resolution on
// the final stage.
func ContinuationPrompt(s *session.Session, stageNumber, selectedChoice int) string {
	prev := s.LastStage()
	if prev == nil {
		// Callers guarantee a prior stage for continuation prompts.
		return IntroPrompt(s)
	}

	choiceMade := "the safe choice (Choice 2)"
	if selectedChoice == session.ChoiceRisky {
		choiceMade = "the risky choice (Choice 1)"
	}

	consequence := "- Shows realistic consequences of their previous decision"
	message := "- Presents a new challenge or situation"
	if stageNumber == session.MaxStages {
		consequence = "- Provides a meaningful CONCLUSION showing the consequences of all their choices"
		message = "- Delivers a powerful message about drug awareness and life choices"
	}

	return fmt.Sprintf(`Continue the anti-drug awareness story for %s, age %d.

PREVIOUS STAGE (Stage %d):
Story: %s
Choice 1: %s
Choice 2: %s

The user chose %s.

Generate Stage %d of %d that:
%s
- Continues the narrative naturally from their choice
%s
- Has exactly 2 choices where Choice 1 is risky/dangerous and Choice 2 is safe/wise
- Story: 80-120 words
- Each choice: 12-18 words

%s`, s.PlayerName, s.PlayerAge,
		prev.StageNumber, prev.Story, prev.ChoiceA, prev.ChoiceB,
		choiceMade, stageNumber, session.MaxStages,
		consequence, message, responseFormat)
}

// ImageDescriptionPrompt asks the generation backend for a vivid visual
// description of one sentence of a stage, suitable as an image prompt.
func ImageDescriptionPrompt(sentence string) string {
	return fmt.Sprintf(`Generate a detailed, vivid image description for this scene in an anti-drug awareness story: %q

Create a realistic, educational image description that captures:
- The exact setting and environment described
- Key visual elements and objects mentioned (like vape pens, pills, people, etc.)
- The mood and emotional tone
- Age-appropriate but impactful imagery for anti-drug education
- 16:9 widescreen composition

Respond with ONLY a detailed image description (2-3 sentences), nothing else.`, sentence)
}
