package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// ProgressSpinner provides a spinner for long-running operations.
// On a non-terminal writer it prints nothing until Stop.
type ProgressSpinner struct {
	mu       sync.Mutex
	message  string
	frames   []string
	current  int
	active   bool
	writer   io.Writer
	colors   bool
	stopChan chan struct{}
	done     chan struct{}
}

// NewProgressSpinner creates a new progress spinner writing to w.
// A nil w selects os.Stderr.
func NewProgressSpinner(w io.Writer, message string) *ProgressSpinner {
	if w == nil {
		w = os.Stderr
	}
	return &ProgressSpinner{
		message:  message,
		frames:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		writer:   w,
		colors:   isTerminal(w),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the spinner animation
func (p *ProgressSpinner) Start() {
	p.mu.Lock()
	if p.active {
		p.mu.Unlock()
		return
	}
	p.active = true
	p.mu.Unlock()

	go p.animate()
}

// Stop stops the spinner and clears its line. It is safe to call more than once.
func (p *ProgressSpinner) Stop() {
	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return
	}
	p.active = false
	p.mu.Unlock()

	close(p.stopChan)
	<-p.done

	if p.colors {
		fmt.Fprint(p.writer, "\r\033[K")
	}
}

// Message updates the spinner message
func (p *ProgressSpinner) Message(msg string) {
	p.mu.Lock()
	p.message = msg
	p.mu.Unlock()
}

func (p *ProgressSpinner) animate() {
	defer close(p.done)

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.mu.Lock()
			p.draw()
			p.mu.Unlock()
		case <-p.stopChan:
			return
		}
	}
}

func (p *ProgressSpinner) draw() {
	if !p.colors {
		return
	}
	frame := p.frames[p.current%len(p.frames)]
	p.current++
	fmt.Fprintf(p.writer, "\r\033[36m%s\033[0m %s", frame, p.message)
}
