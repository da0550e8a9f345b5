package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/crossroads-game/crossroads/internal/game"
	"github.com/crossroads-game/crossroads/pkg/session"
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	api           *apiClient
	session       *session.Session
	stages        []*game.StageResult
	storyViewport viewport.Model
	metaViewport  viewport.Model
	ready         bool
	width         int
	height        int
	err           error
	loading       bool
	copied        bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type stageResultMsg struct {
	result *game.StageResult
	err    error
}

type sessionMsg struct {
	session *session.Session
	err     error
}

type progressTickMsg struct{}

var (
	storyPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	storyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	riskyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")) // salmon

	safeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(api *apiClient, s *session.Session) ConsoleUI {
	storyVp := viewport.New(50, 20)
	storyVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		api:           api,
		session:       s,
		storyViewport: storyVp,
		metaViewport:  metaVp,
		loading:       true,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	// The opening stage starts immediately, no choice made yet.
	return tea.Batch(m.advance(1, session.ChoiceNone), progressTick())
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var vpCmd, mvCmd tea.Cmd

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.storyViewport, vpCmd = m.storyViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		storyWidth := int(float64(m.width)*0.75) - 4
		metaWidth := m.width - storyWidth - 6

		m.storyViewport.Width = storyWidth - 2
		m.storyViewport.Height = m.height - 5
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4

		m.ready = true
		m.writeStoryContent()
		m.metaViewport.SetContent(m.writeMetadata())

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		}

		if m.loading {
			return m, nil
		}

		switch msg.String() {
		case "1", "2":
			if m.completed() {
				return m, nil
			}
			choice := session.ChoiceRisky
			if msg.String() == "2" {
				choice = session.ChoiceSafe
			}
			nextStage := len(m.stages) + 1
			m.loading = true
			m.copied = false
			m.progressTick = 0
			m.writeStoryContent()
			return m, tea.Batch(m.advance(nextStage, choice), progressTick())
		case "c":
			if last := m.lastStage(); last != nil {
				if err := clipboard.WriteAll(last.Story); err == nil {
					m.copied = true
					m.writeStoryContent()
				}
			}
		case "q":
			m.showQuitModal = true
			return m, nil
		}

	case stageResultMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.stages = append(m.stages, msg.result)
		}
		m.writeStoryContent()
		m.storyViewport.GotoBottom()
		return m, m.refreshSession()

	case sessionMsg:
		if msg.err == nil && msg.session != nil {
			m.session = msg.session
			m.metaViewport.SetContent(m.writeMetadata())
		}

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeStoryContent()
			return m, progressTick()
		}
	}

	m.storyViewport, vpCmd = m.storyViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(vpCmd, mvCmd)
}

func (m *ConsoleUI) completed() bool {
	last := m.lastStage()
	return last != nil && last.Completed
}

func (m *ConsoleUI) lastStage() *game.StageResult {
	if len(m.stages) == 0 {
		return nil
	}
	return m.stages[len(m.stages)-1]
}

// writeStoryContent rebuilds the story panel for the current viewport width.
func (m *ConsoleUI) writeStoryContent() {
	storyWidth := m.storyViewport.Width - 6
	if storyWidth < 10 {
		storyWidth = 10
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("CROSSROADS") + "\n\n")
	content.WriteString("Every stage ends in a choice. Choose carefully.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", storyWidth)) + "\n\n")

	for i, stage := range m.stages {
		content.WriteString(promptStyle.Render(fmt.Sprintf("Stage %d of %d", stage.StageNumber, session.MaxStages)) + "\n\n")
		content.WriteString(storyStyle.Render(wordwrap.String(stage.Story, storyWidth)) + "\n\n")

		isLast := i == len(m.stages)-1
		if !stage.Completed {
			content.WriteString(riskyStyle.Render("1) "+wordwrap.String(stage.ChoiceA, storyWidth-3)) + "\n")
			content.WriteString(safeStyle.Render("2) "+wordwrap.String(stage.ChoiceB, storyWidth-3)) + "\n\n")
		}
		if !isLast {
			content.WriteString(separatorStyle.Render(strings.Repeat("─", storyWidth)) + "\n\n")
		}
	}

	if m.completed() {
		content.WriteString(titleStyle.Render("THE END") + "\n\n")
		content.WriteString(fmt.Sprintf("Final score: %d / %d\n\n", m.lastStage().Score, session.MaxScore))
	}

	if m.err != nil {
		content.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n\n")
	}

	if m.loading {
		content.WriteString(loadingStyle.Render("The story unfolds...") + "\n")
		content.WriteString(m.renderProgressBar() + "\n")
	} else if m.copied {
		content.WriteString(promptStyle.Render("Story copied to clipboard") + "\n")
	}

	m.storyViewport.SetContent(content.String())
	m.storyViewport.GotoBottom()
}

func (m *ConsoleUI) writeMetadata() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("SESSION") + "\n\n")

	content.WriteString("Session ID:\n")
	content.WriteString(m.session.ID.String()[:8] + "...\n\n")

	content.WriteString("Player:\n")
	content.WriteString(fmt.Sprintf("%s (age %d)\n\n", m.session.PlayerName, m.session.PlayerAge))

	content.WriteString("Progress:\n")
	content.WriteString(fmt.Sprintf("%d / %d stages\n\n", len(m.session.Stages), session.MaxStages))

	content.WriteString("Score:\n")
	content.WriteString(fmt.Sprintf("%d / %d\n\n", m.session.Score, session.MaxScore))

	if last := m.lastStage(); last != nil && len(last.ImageRefs) > 0 {
		content.WriteString("Illustrations:\n")
		content.WriteString(fmt.Sprintf("%d for this stage\n\n", len(last.ImageRefs)))
	}

	content.WriteString("Commands:\n")
	content.WriteString("• 1: Risky choice\n")
	content.WriteString("• 2: Safe choice\n")
	content.WriteString("• c: Copy story\n")
	content.WriteString("• q: Quit\n")

	return content.String()
}

func (m ConsoleUI) advance(stageNumber, selectedChoice int) tea.Cmd {
	return func() tea.Msg {
		result, err := m.api.generateStory(m.session.ID, stageNumber, selectedChoice)
		return stageResultMsg{result, err}
	}
}

func (m ConsoleUI) refreshSession() tea.Cmd {
	return func() tea.Msg {
		s, err := m.api.getSession(m.session.ID)
		return sessionMsg{s, err}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				return m, nil
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Your progress is saved. Leave the story here?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue"))

	modal := modalStyle.Width(50).Render(content.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	storyWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - storyWidth - 6

	storyPanel := storyPanelStyle.Width(storyWidth).Height(m.height - 3).Render(
		m.storyViewport.View(),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, storyPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.storyViewport.Width - 6
	if usable <= 0 {
		usable = 30 // fallback before sizing
	}

	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
