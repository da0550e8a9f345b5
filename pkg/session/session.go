package session

import (
	"time"

	"github.com/google/uuid"
)

const (
	// MaxStages is the number of stages in a play-through.
	MaxStages = 4

	// MaxScore is the score for a play-through of all safe choices.
	MaxScore = 100

	// ScoreIncrement is awarded per safe choice. Derived from the stage
	// cap so the score range stays 0..MaxScore if the cap ever changes.
	ScoreIncrement = MaxScore / MaxStages

	// ChoiceNone is recorded for stage 1, which has no preceding choice.
	ChoiceNone = 0
	// ChoiceRisky is the first option of a dilemma.
	ChoiceRisky = 1
	// ChoiceSafe is the second option of a dilemma.
	ChoiceSafe = 2
)

// AgeCategory buckets a player's age for content selection.
type AgeCategory string

const (
	AgeChild AgeCategory = "child"
	AgeTeen  AgeCategory = "teen"
	AgeAdult AgeCategory = "adult"
)

// CategoryForAge buckets an age: under 13 is child, under 18 is teen.
func CategoryForAge(age int) AgeCategory {
	switch {
	case age < 13:
		return AgeChild
	case age < 18:
		return AgeTeen
	default:
		return AgeAdult
	}
}

// StageRecord is one completed stage of a session. Records are embedded in
// their Session, appended in stage order, and never mutated afterward.
type StageRecord struct {
	StageNumber    int       `json:"stage_number"`
	Story          string    `json:"story"`
	ChoiceA        string    `json:"choice1"` // risky option
	ChoiceB        string    `json:"choice2"` // safe option
	SelectedChoice int       `json:"selected_choice"` // choice that led into this stage
	PrimaryImage   string    `json:"generated_image,omitempty"`
	ImageRefs      []string  `json:"image_urls,omitempty"` // one per sentence of Story
	Timestamp      time.Time `json:"timestamp"`
}

// Session is one player's progression through the dynamic game.
type Session struct {
	ID              uuid.UUID     `json:"id"`
	OwnerID         string        `json:"owner_id"`
	PlayerName      string        `json:"user_name"`
	PlayerAge       int           `json:"user_age"`
	PlayerInterests string        `json:"user_interests,omitempty"`
	Stages          []StageRecord `json:"stages"`
	Score           int           `json:"score"`
	Completed       bool          `json:"completed"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// New creates a session at the start of a play-through.
func New(ownerID, playerName string, playerAge int, playerInterests string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		PlayerName:      playerName,
		PlayerAge:       playerAge,
		PlayerInterests: playerInterests,
		Stages:          make([]StageRecord, 0, MaxStages),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// State is the progression state of a session.
type State int

const (
	AwaitingStage1 State = iota + 1
	AwaitingStage2
	AwaitingStage3
	AwaitingStage4
	StateCompleted
)

func (s State) String() string {
	switch s {
	case AwaitingStage1:
		return "awaiting_stage_1"
	case AwaitingStage2:
		return "awaiting_stage_2"
	case AwaitingStage3:
		return "awaiting_stage_3"
	case AwaitingStage4:
		return "awaiting_stage_4"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// CurrentState derives the session's progression state.
func (s *Session) CurrentState() State {
	if s.Completed {
		return StateCompleted
	}
	return State(len(s.Stages) + 1)
}

// AgeCategory returns the content bucket for the player's age.
func (s *Session) AgeCategory() AgeCategory {
	return CategoryForAge(s.PlayerAge)
}

// PriorChoices returns the selected choices of all recorded stages, in order.
func (s *Session) PriorChoices() []int {
	choices := make([]int, 0, len(s.Stages))
	for _, st := range s.Stages {
		choices = append(choices, st.SelectedChoice)
	}
	return choices
}

// PositiveChoiceCount counts safe choices among the recorded stages.
func (s *Session) PositiveChoiceCount() int {
	count := 0
	for _, st := range s.Stages {
		if st.SelectedChoice == ChoiceSafe {
			count++
		}
	}
	return count
}

// AuthorizedFor reports whether callerID owns this session.
func (s *Session) AuthorizedFor(callerID string) error {
	if s.OwnerID != callerID {
		return ErrNotOwner
	}
	return nil
}

// Append records the next stage. It is the single transition of the
// progression state machine and rejects invalid transitions: a stage number
// outside 1..MaxStages, a stage out of sequence, or any append after
// completion. On success the score is updated for a safe choice and the
// session is marked completed when the final stage is recorded.
func (s *Session) Append(record StageRecord) error {
	if record.StageNumber < 1 || record.StageNumber > MaxStages {
		return ErrInvalidStage
	}
	if s.Completed {
		return ErrSessionCompleted
	}
	if record.StageNumber != len(s.Stages)+1 {
		return ErrStageOrder
	}

	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}
	s.Stages = append(s.Stages, record)

	if record.SelectedChoice == ChoiceSafe {
		s.Score += ScoreIncrement
	}
	if record.StageNumber == MaxStages {
		s.Completed = true
	}
	return nil
}

// LastStage returns the most recently recorded stage, or nil if none.
func (s *Session) LastStage() *StageRecord {
	if len(s.Stages) == 0 {
		return nil
	}
	return &s.Stages[len(s.Stages)-1]
}
