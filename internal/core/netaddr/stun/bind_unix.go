//go:build unix

package stun

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// exclusiveBind 显式关闭 SO_REUSEADDR
func exclusiveBind(_, _ string, c syscall.RawConn) error {
	var opErr error
	if err := c.Control(func(fd uintptr) {
		opErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 0)
	}); err != nil {
		return err
	}
	return opErr
}
