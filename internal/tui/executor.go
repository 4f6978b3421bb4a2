package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// completedMsg carries a finished background job back into Update, which
// is where the session's control goroutine lives.
type completedMsg struct {
	done func(error)
	err  error
}

// ProgramExecutor runs session I/O on goroutines and delivers completions
// through the bubbletea program.
type ProgramExecutor struct {
	mu      sync.Mutex
	send    func(tea.Msg)
	pending []tea.Msg
}

// NewProgramExecutor constructs an unbound executor. Completions are held
// until Bind is called.
func NewProgramExecutor() *ProgramExecutor {
	return &ProgramExecutor{}
}

// Bind sets the delivery function, usually (*tea.Program).Send.
func (e *ProgramExecutor) Bind(send func(tea.Msg)) {
	e.mu.Lock()
	e.send = send
	pending := e.pending
	e.pending = nil
	e.mu.Unlock()
	if len(pending) == 0 {
		return
	}
	go func() {
		for _, msg := range pending {
			send(msg)
		}
	}()
}

// Submit runs work on a new goroutine.
func (e *ProgramExecutor) Submit(work func() error, done func(error)) {
	go func() {
		e.deliver(completedMsg{done: done, err: work()})
	}()
}

func (e *ProgramExecutor) deliver(msg tea.Msg) {
	e.mu.Lock()
	send := e.send
	if send == nil {
		e.pending = append(e.pending, msg)
	}
	e.mu.Unlock()
	if send != nil {
		send(msg)
	}
}
