package multiplexer

import (
	"context"
	"sync"

	"claude-commander/internal/logger"
)

// SpecialKey names a non-text key in tmux send-keys vocabulary.
type SpecialKey string

const (
	KeyEnter     SpecialKey = "Enter"
	KeyTab       SpecialKey = "Tab"
	KeyEscape    SpecialKey = "Escape"
	KeyBackspace SpecialKey = "BSpace"
	KeyDelete    SpecialKey = "DC"
	KeyUp        SpecialKey = "Up"
	KeyDown      SpecialKey = "Down"
	KeyLeft      SpecialKey = "Left"
	KeyRight     SpecialKey = "Right"
	KeyHome      SpecialKey = "Home"
	KeyEnd       SpecialKey = "End"
	KeyPageUp    SpecialKey = "PPage"
	KeyPageDown  SpecialKey = "NPage"
)

// InputForwarder queues keystrokes for a tmux session and drains them on a
// background goroutine, so callers never block on the tmux process.
type InputForwarder struct {
	executor    *Executor
	sessionName string
	logger      *logger.Logger

	mu    sync.Mutex
	queue []string

	wake   chan struct{}
	done   chan struct{}
	exited chan struct{}
}

// NewInputForwarder starts the drain goroutine for a session.
func NewInputForwarder(executor *Executor, sessionName string, log *logger.Logger) *InputForwarder {
	if log == nil {
		log = logger.Disabled()
	}
	f := &InputForwarder{
		executor:    executor,
		sessionName: sessionName,
		logger:      log,
		wake:        make(chan struct{}, 1),
		done:        make(chan struct{}),
		exited:      make(chan struct{}),
	}
	go f.drain()
	return f
}

func (f *InputForwarder) drain() {
	defer close(f.exited)
	for {
		select {
		case <-f.done:
			return
		case <-f.wake:
		}

		for {
			f.mu.Lock()
			if len(f.queue) == 0 {
				f.mu.Unlock()
				break
			}
			keys := f.queue[0]
			f.queue = f.queue[1:]
			f.mu.Unlock()

			if err := f.executor.SendKeys(context.Background(), f.sessionName, keys); err != nil {
				f.logger.Debug("Failed to send keys", "session", f.sessionName, "error", err)
			}
		}
	}
}

func (f *InputForwarder) enqueue(keys string) {
	f.mu.Lock()
	f.queue = append(f.queue, keys)
	f.mu.Unlock()

	select {
	case f.wake <- struct{}{}:
	default:
	}
}

// SendText queues literal text.
func (f *InputForwarder) SendText(text string) {
	f.enqueue(text)
}

// SendKey queues a special key.
func (f *InputForwarder) SendKey(key SpecialKey) {
	f.enqueue(string(key))
}

// SendControl queues a control chord, e.g. SendControl('c') for Ctrl+C.
func (f *InputForwarder) SendControl(c rune) {
	f.enqueue("C-" + string(c))
}

// SendLine queues text followed by Enter.
func (f *InputForwarder) SendLine(text string) {
	f.SendText(text)
	f.SendKey(KeyEnter)
}

// QueueLen returns the number of pending events.
func (f *InputForwarder) QueueLen() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Close stops the drain goroutine and waits for it to exit; queued input
// may be discarded.
func (f *InputForwarder) Close() {
	close(f.done)
	<-f.exited
}
