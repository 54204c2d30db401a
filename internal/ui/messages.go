package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// tickMsg drives staleness checks and notice expiry.
type tickMsg time.Time

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refreshedMsg reports that a resource fetch finished. Views re-render from
// the resource snapshot; err is informational (the snapshot already carries
// it).
type refreshedMsg struct {
	key string
	err error
}

// refreshCmd runs a resource fetch off the event loop.
func refreshCmd(ctx context.Context, key string, fetch func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return refreshedMsg{key: key, err: fetch(ctx)}
	}
}

// noticeLevel classifies status-bar notices.
type noticeLevel int

const (
	noticeSuccess noticeLevel = iota
	noticeError
)

// noticeMsg is a transient status-bar notification.
type noticeMsg struct {
	level noticeLevel
	text  string
}

func noticeCmd(level noticeLevel, text string) tea.Cmd {
	return func() tea.Msg {
		return noticeMsg{level: level, text: text}
	}
}

// mutationDoneMsg reports a finished write. The success and failure
// callbacks have already run (cache invalidation, optimistic rollback);
// this message carries what the status bar should say and lets the owning
// view close modals or clear selections.
type mutationDoneMsg struct {
	op     string
	notice string
	err    error
}
