//go:build windows

package stun

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// SO_EXCLUSIVEADDRUSE，定义为 ^SO_REUSEADDR
const soExclusiveAddrUse = ^windows.SO_REUSEADDR

// exclusiveBind 设置 SO_EXCLUSIVEADDRUSE，
// 否则其它进程可以用 SO_REUSEADDR 抢占同一端口
func exclusiveBind(_, _ string, c syscall.RawConn) error {
	var opErr error
	if err := c.Control(func(fd uintptr) {
		opErr = windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, soExclusiveAddrUse, 1)
	}); err != nil {
		return err
	}
	return opErr
}
