package console

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Spinner renders an animated progress indicator on stderr. It is disabled
// (all methods become no-ops apart from message bookkeeping) when stderr is
// not a terminal or accessibility mode is requested.
type Spinner struct {
	mu      sync.Mutex
	message string
	enabled bool
	running bool
	done    chan struct{}
	stopped chan struct{}
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// NewSpinner creates a spinner with the given message.
func NewSpinner(message string) *Spinner {
	return &Spinner{
		message: message,
		enabled: IsTerminal() && !IsAccessibleMode(),
	}
}

// IsEnabled reports whether the spinner will actually animate.
func (s *Spinner) IsEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// UpdateMessage replaces the spinner message. Safe to call at any time.
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

// Start begins the animation. Starting an already running or disabled
// spinner is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled || s.running {
		return
	}
	s.running = true
	s.done = make(chan struct{})
	s.stopped = make(chan struct{})

	go func() {
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		defer close(s.stopped)
		frame := 0
		for {
			select {
			case <-s.done:
				fmt.Fprint(os.Stderr, "\r\033[K")
				return
			case <-ticker.C:
				s.mu.Lock()
				message := s.message
				s.mu.Unlock()
				fmt.Fprintf(os.Stderr, "\r\033[K%s %s", spinnerFrames[frame%len(spinnerFrames)], message)
				frame++
			}
		}
	}()
}

// Stop halts the animation and clears the spinner line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	done := s.done
	stopped := s.stopped
	s.mu.Unlock()

	close(done)
	<-stopped
}
