//go:build !unix && !windows

package stun

import "syscall"

// exclusiveBind 其它平台使用默认绑定行为
func exclusiveBind(_, _ string, _ syscall.RawConn) error {
	return nil
}
