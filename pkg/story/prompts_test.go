package story

import (
	"strings"
	"testing"

	"github.com/crossroads-game/crossroads/pkg/session"
)

func TestIntroPrompt(t *testing.T) {
	s := session.New("user-1", "Maya", 14, "soccer, drawing")
	prompt := IntroPrompt(s)

	for _, want := range []string{
		"Maya",
		"age 14",
		"Interests: soccer, drawing.",
		"Stage 1",
		"Choice 1 is risky/dangerous and Choice 2 is safe/wise",
		"Story: [",
		"Choice 1: [",
		"Choice 2: [",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Intro prompt missing %q", want)
		}
	}
}

func TestIntroPrompt_NoInterests(t *testing.T) {
	s := session.New("user-1", "Maya", 14, "")
	prompt := IntroPrompt(s)

	if strings.Contains(prompt, "Interests:") {
		t.Error("Prompt should omit interests when none were given")
	}
}

func TestContinuationPrompt(t *testing.T) {
	s := session.New("user-1", "Maya", 14, "")
	if err := s.Append(session.StageRecord{
		StageNumber:    1,
		Story:          "You are offered something at a party and everyone is watching to see what you do next.",
		ChoiceA:        "Take it",
		ChoiceB:        "Refuse it",
		SelectedChoice: session.ChoiceNone,
	}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	prompt := ContinuationPrompt(s, 2, session.ChoiceSafe)

	for _, want := range []string{
		"PREVIOUS STAGE (Stage 1)",
		"everyone is watching",
		"Choice 1: Take it",
		"Choice 2: Refuse it",
		"the safe choice (Choice 2)",
		"Stage 2 of 4",
		"consequences of their previous decision",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Continuation prompt missing %q", want)
		}
	}

	risky := ContinuationPrompt(s, 2, session.ChoiceRisky)
	if !strings.Contains(risky, "the risky choice (Choice 1)") {
		t.Error("Prompt should name the risky choice when selected")
	}
}

func TestContinuationPrompt_FinalStage(t *testing.T) {
	s := session.New("user-1", "Maya", 14, "")
	for n := 1; n <= 3; n++ {
		choice := session.ChoiceSafe
		if n == 1 {
			choice = session.ChoiceNone
		}
		if err := s.Append(session.StageRecord{
			StageNumber:    n,
			Story:          "A stage body that is comfortably long enough for the append to be realistic here.",
			ChoiceA:        "a",
			ChoiceB:        "b",
			SelectedChoice: choice,
		}); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	prompt := ContinuationPrompt(s, 4, session.ChoiceSafe)
	if !strings.Contains(prompt, "CONCLUSION") {
		t.Error("Final stage prompt should request a conclusion")
	}
	if !strings.Contains(prompt, "drug awareness and life choices") {
		t.Error("Final stage prompt should request the closing message")
	}
}

func TestImageDescriptionPrompt(t *testing.T) {
	prompt := ImageDescriptionPrompt("You walk into the gym.")

	if !strings.Contains(prompt, `"You walk into the gym."`) {
		t.Error("Prompt should embed the quoted sentence")
	}
	if !strings.Contains(prompt, "16:9") {
		t.Error("Prompt should request a 16:9 composition")
	}
	if !strings.Contains(prompt, "2-3 sentences") {
		t.Error("Prompt should bound the description length")
	}
}
