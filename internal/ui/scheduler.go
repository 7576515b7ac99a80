package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// postedFunc is a closure queued by a background component to run on the
// update loop.
type postedFunc func()

// drainMsg tells the model to process everything queued on the scheduler.
type drainMsg struct{}

// uiScheduler queues work for the Bubble Tea update loop. Posting never
// blocks, so it is safe from inside Update as well as from fetch goroutines.
// Queued messages are handled in the order they were posted.
type uiScheduler struct {
	mu    sync.Mutex
	queue []tea.Msg
	send  func(tea.Msg)
}

func newScheduler() *uiScheduler {
	return &uiScheduler{}
}

// attach wires the scheduler to a running program and flushes anything
// queued before it started.
func (s *uiScheduler) attach(send func(tea.Msg)) {
	s.mu.Lock()
	s.send = send
	pending := len(s.queue) > 0
	s.mu.Unlock()
	if pending && send != nil {
		go send(drainMsg{})
	}
}

// Post implements imageloader.Scheduler.
func (s *uiScheduler) Post(fn func()) {
	s.push(postedFunc(fn))
}

func (s *uiScheduler) push(msg tea.Msg) {
	s.mu.Lock()
	s.queue = append(s.queue, msg)
	send := s.send
	s.mu.Unlock()
	if send != nil {
		go send(drainMsg{})
	}
}

func (s *uiScheduler) drain() []tea.Msg {
	s.mu.Lock()
	defer s.mu.Unlock()
	queue := s.queue
	s.queue = nil
	return queue
}
