package multiplexer

import "golang.org/x/sys/unix"

// drainStdin flushes pending input at the kernel level so keystrokes typed
// during the attach never reach the dashboard's reader.
func drainStdin(fd int) {
	_ = unix.IoctlSetInt(fd, unix.TCFLSH, unix.TCIFLUSH)
}
