package domain

import "strings"

// AppMode selects which view is visible.
type AppMode string

const (
	AppModeLearn AppMode = "learn"
	AppModeQuiz  AppMode = "quiz"
	AppModeStats AppMode = "stats"
)

func (m AppMode) String() string { return string(m) }

func (m AppMode) IsValid() bool {
	switch m {
	case AppModeLearn, AppModeQuiz, AppModeStats:
		return true
	}
	return false
}

// ParseAppMode parses a mode name case-insensitively.
func ParseAppMode(s string) (AppMode, error) {
	m := AppMode(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", NewValidationError("mode", "must be one of learn, quiz, stats")
	}
	return m, nil
}

// View is the visible screen together with exactly the data it needs.
// The set of implementations is closed: LearnView, QuizView, StatsView.
type View interface {
	Mode() AppMode
	isView()
}

// LearnView shows the flashcards of the current topic.
type LearnView struct {
	Topic Topic
	Words []WordEntry
}

// QuizView runs a quiz over Words.
type QuizView struct {
	Words []WordEntry
}

// StatsView shows a completed quiz.
type StatsView struct {
	Result QuizResult
}

func (LearnView) Mode() AppMode { return AppModeLearn }
func (QuizView) Mode() AppMode  { return AppModeQuiz }
func (StatsView) Mode() AppMode { return AppModeStats }

func (LearnView) isView() {}
func (QuizView) isView()  {}
func (StatsView) isView() {}
