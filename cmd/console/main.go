package main

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

type ConsoleConfig struct {
	APIBaseURL string
	Timeout    time.Duration
}

func main() {
	cfg := &ConsoleConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		Timeout:    2 * time.Minute,
	}

	api := &apiClient{
		baseURL: cfg.APIBaseURL,
		userID:  getEnv("GAME_USER_ID", defaultUserID()),
		client:  &http.Client{Timeout: cfg.Timeout},
	}

	if !api.testConnection() {
		fmt.Fprintf(os.Stderr, "Could not connect to API. Please ensure the API is running.\nTry: docker-compose up -d\n")
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)

	name := promptLine(reader, "Your name: ")
	if name == "" {
		fmt.Fprintf(os.Stderr, "A name is required\n")
		os.Exit(1)
	}

	ageStr := promptLine(reader, "Your age: ")
	age, err := strconv.Atoi(ageStr)
	if err != nil || age < 0 {
		fmt.Fprintf(os.Stderr, "Invalid age\n")
		os.Exit(1)
	}

	interests := promptLine(reader, "Your interests (optional): ")

	s, err := api.createSession(name, age, interests)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create game session: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(NewConsoleUI(api, s),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func promptLine(reader *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	line, err := reader.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

// defaultUserID gives a stable identity per OS user so repeat runs see the
// same session history.
func defaultUserID() string {
	if u := os.Getenv("USER"); u != "" {
		return "console-" + u
	}
	return "console-" + uuid.NewString()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
