// Package game holds the stage orchestrator: the control component that
// decides between generation and fallback content, plans illustrations,
// updates score and completion, and persists each new stage.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/crossroads-game/crossroads/internal/services"
	"github.com/crossroads-game/crossroads/internal/storage"
	"github.com/crossroads-game/crossroads/pkg/images"
	"github.com/crossroads-game/crossroads/pkg/session"
	"github.com/crossroads-game/crossroads/pkg/story"
	"github.com/crossroads-game/crossroads/pkg/textfilter"
)

// generationTimeout bounds the story-generation call. A timeout falls back
// to the static bank like any other backend failure; the player is never
// left waiting on the backend.
const generationTimeout = 30 * time.Second

// StageProcessor advances game sessions through their stages.
// The LLM service is optional: constructed once at startup and injected, a
// nil service means every stage is served from the fallback bank.
type StageProcessor struct {
	storage storage.Storage
	llm     services.LLMService
	planner *images.Planner
	filter  *textfilter.Filter
	logger  *slog.Logger

	// Serializes advances per session. Stage numbering and the completion
	// invariant depend on the current stage list, so steps from load to
	// save must not interleave for one session. Different sessions are
	// fully independent.
	locksMu sync.Mutex
	locks   map[uuid.UUID]*sync.Mutex
}

// NewStageProcessor creates a new stage processor. llm may be nil.
func NewStageProcessor(
	st storage.Storage,
	llm services.LLMService,
	planner *images.Planner,
	logger *slog.Logger,
) *StageProcessor {
	return &StageProcessor{
		storage: st,
		llm:     llm,
		planner: planner,
		filter:  textfilter.New(),
		logger:  logger,
		locks:   make(map[uuid.UUID]*sync.Mutex),
	}
}

// AdvanceRequest asks for the next stage of a session.
type AdvanceRequest struct {
	SessionID      uuid.UUID
	CallerID       string
	StageNumber    int
	SelectedChoice int
}

// StageResult is the combined outcome of an advance.
type StageResult struct {
	Story        string   `json:"story"`
	ChoiceA      string   `json:"choice1"`
	ChoiceB      string   `json:"choice2"`
	PrimaryImage string   `json:"generated_image"`
	ImageRefs    []string `json:"image_urls"`
	StageNumber  int      `json:"stage_number"`
	Score        int      `json:"score"`
	Completed    bool     `json:"completed"`
}

// CreateSession starts a new play-through for the caller.
func (p *StageProcessor) CreateSession(ctx context.Context, ownerID, playerName string, playerAge int, playerInterests string) (*session.Session, error) {
	s := session.New(ownerID, playerName, playerAge, playerInterests)
	if err := p.storage.SaveSession(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to save new session: %w", err)
	}
	p.logger.Info("Game session created", "session_id", s.ID, "owner", ownerID, "age_category", s.AgeCategory())
	return s, nil
}

// GetSession loads a session and checks ownership.
func (p *StageProcessor) GetSession(ctx context.Context, id uuid.UUID, callerID string) (*session.Session, error) {
	s, err := p.storage.LoadSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, session.ErrNotFound
	}
	if err := s.AuthorizedFor(callerID); err != nil {
		return nil, err
	}
	return s, nil
}

// ListSessions returns the caller's most recent sessions, newest first.
func (p *StageProcessor) ListSessions(ctx context.Context, callerID string, limit int) ([]*session.Session, error) {
	return p.storage.ListSessions(ctx, callerID, limit)
}

// Advance runs one stage transition: load and authorize, produce content
// (generated or fallback), plan illustrations, update score and completion,
// and persist the appended stage. Generation and parsing failures are
// recovered via the fallback bank and never surface to the caller;
// ownership and ordering violations do.
func (p *StageProcessor) Advance(ctx context.Context, req AdvanceRequest) (*StageResult, error) {
	lock := p.sessionLock(req.SessionID)
	lock.Lock()
	defer lock.Unlock()

	s, err := p.storage.LoadSession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, session.ErrNotFound
	}
	if err := s.AuthorizedFor(req.CallerID); err != nil {
		return nil, err
	}

	// Validate the transition before any generation work. Append enforces
	// the same invariants again at record time.
	if req.StageNumber < 1 || req.StageNumber > session.MaxStages {
		return nil, session.ErrInvalidStage
	}
	if s.Completed {
		p.dropSessionLock(req.SessionID)
		return nil, session.ErrSessionCompleted
	}
	if req.StageNumber != len(s.Stages)+1 {
		return nil, session.ErrStageOrder
	}

	// The incoming choice leads into this stage; the fallback path and
	// outcome tier are selected from it together with the recorded ones.
	choices := append(s.PriorChoices(), req.SelectedChoice)
	content := p.stageContent(ctx, s, req.StageNumber, req.SelectedChoice, choices)

	imageRefs := p.planner.PlanImages(ctx, content.Story, req.StageNumber, s.PositiveChoiceCount())
	primaryImage := ""
	if len(imageRefs) > 0 {
		primaryImage = imageRefs[0]
	}

	record := session.StageRecord{
		StageNumber:    req.StageNumber,
		Story:          content.Story,
		ChoiceA:        content.ChoiceA,
		ChoiceB:        content.ChoiceB,
		SelectedChoice: req.SelectedChoice,
		PrimaryImage:   primaryImage,
		ImageRefs:      imageRefs,
	}
	if err := s.Append(record); err != nil {
		return nil, err
	}

	// Single full-session write: the stage, score, and completion flag
	// persist together or not at all.
	if err := p.storage.SaveSession(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to persist stage: %w", err)
	}

	if s.Completed {
		p.dropSessionLock(req.SessionID)
	}

	p.logger.Info("Stage advanced",
		"session_id", s.ID,
		"stage", req.StageNumber,
		"score", s.Score,
		"completed", s.Completed,
		"state", s.CurrentState().String())

	return &StageResult{
		Story:        content.Story,
		ChoiceA:      content.ChoiceA,
		ChoiceB:      content.ChoiceB,
		PrimaryImage: primaryImage,
		ImageRefs:    imageRefs,
		StageNumber:  req.StageNumber,
		Score:        s.Score,
		Completed:    s.Completed,
	}, nil
}

// stageContent attempts generation and falls back to the static bank on any
// failure. The fallback is total over valid stage numbers, so this always
// returns renderable content.
func (p *StageProcessor) stageContent(ctx context.Context, s *session.Session, stageNumber, selectedChoice int, priorChoices []int) story.StageContent {
	if p.llm != nil {
		content, err := p.generateContent(ctx, s, stageNumber, selectedChoice)
		if err == nil {
			return content
		}
		p.logger.Warn("Story generation failed, using fallback",
			"session_id", s.ID, "stage", stageNumber, "error", err)
	}

	content, err := story.FallbackStage(stageNumber, s.PlayerAge, priorChoices)
	if err != nil {
		// Unreachable: stage number was validated above.
		p.logger.Error("Fallback lookup failed", "stage", stageNumber, "error", err)
	}
	return content
}

func (p *StageProcessor) generateContent(ctx context.Context, s *session.Session, stageNumber, selectedChoice int) (story.StageContent, error) {
	var prompt string
	if stageNumber == 1 {
		prompt = story.IntroPrompt(s)
	} else {
		prompt = story.ContinuationPrompt(s, stageNumber, selectedChoice)
	}

	genCtx, cancel := context.WithTimeout(ctx, generationTimeout)
	defer cancel()

	raw, err := p.llm.GenerateText(genCtx, prompt)
	if err != nil {
		return story.StageContent{}, err
	}

	content, err := story.ParseStageResponse(raw)
	if err != nil {
		return story.StageContent{}, err
	}

	// Generated text only; the fallback bank is already clean.
	content.Story = p.filter.Clean(content.Story)
	content.ChoiceA = p.filter.Clean(content.ChoiceA)
	content.ChoiceB = p.filter.Clean(content.ChoiceB)
	return content, nil
}

func (p *StageProcessor) sessionLock(id uuid.UUID) *sync.Mutex {
	p.locksMu.Lock()
	defer p.locksMu.Unlock()
	lock, ok := p.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[id] = lock
	}
	return lock
}

// dropSessionLock evicts a completed session's lock so the table does not
// grow for the process lifetime. A goroutine already waiting on the old
// mutex proceeds normally; the session is completed, so it can only read
// and be rejected.
func (p *StageProcessor) dropSessionLock(id uuid.UUID) {
	p.locksMu.Lock()
	defer p.locksMu.Unlock()
	delete(p.locks, id)
}
