//go:build linux || darwin

package multiplexer

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/term"

	"claude-commander/internal/logger"
)

// detachByte is the engine's own escape hatch (Ctrl+Q), independent of the
// multiplexer's detach binding.
const detachByte = 0x11

// AttachResult is the outcome of an attach handoff.
type AttachResult int

const (
	// AttachDetached means the user detached (Ctrl+Q or the multiplexer's
	// own detach).
	AttachDetached AttachResult = iota
	// AttachSessionEnded means the session or its process ended underneath
	// the attach.
	AttachSessionEnded
)

func (r AttachResult) String() string {
	switch r {
	case AttachDetached:
		return "detached"
	case AttachSessionEnded:
		return "session ended"
	default:
		return "unknown"
	}
}

// Attach hands the controlling terminal to `tmux attach-session -t name`
// through a PTY bridge and returns when the user detaches or the session
// ends. The caller must have quiesced its own stdin reader first; pending
// input is drained before returning so stray keystrokes never leak back
// into the dashboard.
func Attach(sessionName string, log *logger.Logger) (AttachResult, error) {
	if log == nil {
		log = logger.Disabled()
	}

	cols, rows := terminalSize()

	ptmx, tty, err := pty.Open()
	if err != nil {
		return AttachSessionEnded, &PtyError{Err: err}
	}
	defer ptmx.Close()

	if err := pty.Setsize(ptmx, &pty.Winsize{Rows: rows, Cols: cols}); err != nil {
		tty.Close()
		return AttachSessionEnded, &PtyError{Err: err}
	}

	cmd := exec.Command("tmux", "attach-session", "-t", sessionName)
	cmd.Stdin = tty
	cmd.Stdout = tty
	cmd.Stderr = tty
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid:  true,
		Setctty: true,
	}

	if err := cmd.Start(); err != nil {
		tty.Close()
		return AttachSessionEnded, &PtyError{Err: err}
	}
	// The child owns the slave end now.
	tty.Close()

	log.Info("Spawned tmux attach-session", "session", sessionName)

	stdinFd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(stdinFd)
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return AttachSessionEnded, &PtyError{Err: err}
	}

	result := runBridge(ptmx, cmd, log)

	_ = term.Restore(stdinFd, oldState)
	os.Stdout.Sync()

	// Closing the master hangs up the attach child if it is still running
	// (Ctrl+Q detach leaves it alive).
	ptmx.Close()

	// Drop anything the kernel buffered while raw mode was active, wait for
	// the child to be reaped, then drain once more.
	drainStdin(stdinFd)
	_ = cmd.Wait()
	drainStdin(stdinFd)

	log.Info("Attach complete", "session", sessionName, "result", result.String())

	return result, nil
}

// runBridge pumps PTY output to stdout and stdin to the PTY, watching for
// resizes and child exit. The first completion signal wins.
func runBridge(ptmx *os.File, cmd *exec.Cmd, log *logger.Logger) AttachResult {
	results := make(chan AttachResult, 3)
	var done atomic.Bool
	var once sync.Once
	report := func(r AttachResult) {
		once.Do(func() {
			done.Store(true)
			results <- r
		})
	}

	// PTY -> stdout pump. EOF and EIO are the normal end of an attach.
	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := ptmx.Read(buf)
			if n > 0 {
				if _, werr := os.Stdout.Write(buf[:n]); werr != nil {
					report(AttachSessionEnded)
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) && !errors.Is(err, syscall.EIO) {
					log.Warn("PTY read error", "error", err)
				}
				report(AttachSessionEnded)
				return
			}
		}
	}()

	// stdin -> PTY pump. A detach byte anywhere in the input ends the
	// handoff without forwarding it.
	go func() {
		buf := make([]byte, 1024)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}
			// The read may have been outstanding when the bridge finished;
			// those bytes belong to the drain, not the session.
			if done.Load() {
				return
			}
			data := buf[:n]

			for _, b := range data {
				if b == detachByte {
					log.Debug("Detach byte received")
					report(AttachDetached)
					return
				}
			}

			if _, err := ptmx.Write(data); err != nil {
				return
			}
		}
	}()

	// Resize watcher: follow the real terminal's geometry.
	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)
	defer signal.Stop(winch)
	go func() {
		for range winch {
			cols, rows := terminalSize()
			_ = pty.Setsize(ptmx, &pty.Winsize{Rows: rows, Cols: cols})
		}
	}()

	// Child exit: successful exit is a detach, anything else means the
	// session went away.
	go func() {
		state, err := cmd.Process.Wait()
		if err == nil && state.Success() {
			report(AttachDetached)
		} else {
			report(AttachSessionEnded)
		}
	}()

	return <-results
}

// terminalSize returns the controlling terminal's geometry, defaulting to
// 80x24 when it cannot be queried.
func terminalSize() (cols, rows uint16) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return 80, 24
	}
	return uint16(w), uint16(h)
}

