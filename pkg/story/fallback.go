// Package story holds the narrative content pipeline: prompt construction
// for the generation backend, parsing of its labeled responses, and the
// static fallback bank used whenever generation is unavailable.
package story

import (
	"github.com/crossroads-game/crossroads/pkg/session"
)

// StageContent is one stage's narrative body and its two-option dilemma.
// ChoiceA is framed as the risky option, ChoiceB as the safe one.
type StageContent struct {
	Story   string
	ChoiceA string
	ChoiceB string
}

// outcomeTier selects the stage 4 ending.
type outcomeTier string

const (
	bestEnding outcomeTier = "best"
	goodEnding outcomeTier = "good"
	badEnding  outcomeTier = "bad"
)

var stage1Templates = map[session.AgeCategory]StageContent{
	session.AgeChild: {
		Story:   "You're at a friend's birthday party. An older kid offers you a colorful pill, saying it'll make the party more fun. Your best friend looks worried and whispers that you should stay away from it. Everyone's watching to see what you'll do.",
		ChoiceA: "Take the pill to fit in with the older kids",
		ChoiceB: "Politely refuse and stick with your best friend",
	},
	session.AgeTeen: {
		Story:   "At a weekend party, someone passes around a vape pen filled with something stronger than nicotine. Your friends are pressuring you to try it, saying 'everyone does it.' Your gut tells you this isn't right, but you don't want to seem uncool.",
		ChoiceA: "Take a hit to avoid being called out",
		ChoiceB: "Say no and suggest leaving the party",
	},
	session.AgeAdult: {
		Story:   "You've been working overtime for months, feeling exhausted. A coworker offers you prescription pills, claiming they help with energy and focus. They say the doctor gives them out like candy. You're tempted but know this could be dangerous.",
		ChoiceA: "Take the pills to keep up with work demands",
		ChoiceB: "Decline and talk to your doctor about healthy solutions",
	},
}

var stage2Templates = map[bool]StageContent{
	true: {
		Story:   "Your decision to refuse paid off. Your true friends respect your choice and one even admits they were relieved you said no. You feel proud and confident. Later, you hear that the substance made several people sick. You're invited to join a community sports team where you meet supportive people.",
		ChoiceA: "Skip the team and hang with the party crowd",
		ChoiceB: "Join the team and build healthy friendships",
	},
	false: {
		Story:   "After using the substance, you feel sick and anxious. Your grades are slipping, and your family has noticed changes in your behavior. A friend who genuinely cares about you confronts you, offering to help you get support. You're at a crossroads.",
		ChoiceA: "Push your friend away and continue using",
		ChoiceB: "Accept help and talk to a counselor",
	},
}

var stage3Templates = map[bool]StageContent{
	true: {
		Story:   "Joining the team changed your life. You've made genuine friends, improved your health, and discovered new passions. A younger person looks up to you and asks for advice about peer pressure. You have a chance to make a real difference in someone else's life.",
		ChoiceA: "Tell them everyone experiments, it's no big deal",
		ChoiceB: "Share your story and guide them toward good choices",
	},
	false: {
		Story:   "With help, you're three weeks clean. It's hard, but you're seeing a counselor and attending support groups. You run into old friends who are still using. They mock your recovery and offer you 'one last time.' Your counselor's words echo: 'Recovery is a choice you make every day.'",
		ChoiceA: "Give in to the temptation one more time",
		ChoiceB: "Walk away and call your support person",
	},
}

var stage4Templates = map[outcomeTier]StageContent{
	bestEnding: {
		Story:   "Years later, you're thriving. By choosing health and honesty, you've built a life you're proud of. You now mentor youth in your community, helping them avoid the mistakes others made. Your story inspires others to make better choices. You've proven that one good decision can change everything.",
		ChoiceA: "Reflect on your journey with gratitude",
		ChoiceB: "Continue helping others find their path",
	},
	goodEnding: {
		Story:   "Your recovery journey has been challenging, but you made it. One year clean, you've rebuilt relationships and discovered your strength. You share your story at a recovery meeting, helping others see that it's never too late to change. Every day clean is a victory.",
		ChoiceA: "Celebrate your progress and stay committed",
		ChoiceB: "Become a sponsor to help others recover",
	},
	badEnding: {
		Story:   "The choices you made led to serious consequences. You've lost trust, opportunities, and your health has suffered. But in this dark moment, you realize it's not too late. A counselor offers you a path forward: treatment, support, and hope. The question is: are you ready to choose differently?",
		ChoiceA: "Accept help and begin recovery now",
		ChoiceB: "Commit to changing your life today",
	},
}

// FallbackStage returns deterministic stage content when the generation
// backend is unavailable or returned unusable output. Stage 1 is keyed by
// age category, stages 2-3 by whether the player's last choice was safe,
// and stage 4 by how many of the prior choices were safe. Every in-range
// input maps to defined content.
func FallbackStage(stageNumber, playerAge int, priorChoices []int) (StageContent, error) {
	if stageNumber < 1 || stageNumber > session.MaxStages {
		return StageContent{}, session.ErrInvalidStage
	}

	switch stageNumber {
	case 1:
		return stage1Templates[session.CategoryForAge(playerAge)], nil

	case session.MaxStages:
		positive := 0
		for _, c := range priorChoices {
			if c == session.ChoiceSafe {
				positive++
			}
		}
		switch {
		case positive == 3:
			return stage4Templates[bestEnding], nil
		case positive >= 2:
			return stage4Templates[goodEnding], nil
		default:
			return stage4Templates[badEnding], nil
		}

	default: // stages 2 and 3
		goodPath := len(priorChoices) > 0 && priorChoices[len(priorChoices)-1] == session.ChoiceSafe
		if stageNumber == 2 {
			return stage2Templates[goodPath], nil
		}
		return stage3Templates[goodPath], nil
	}
}
