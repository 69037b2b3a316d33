// Package stuntest 提供用于测试的本地 STUN 会合服务器
//
//	srv := stuntest.NewServer(t, stuntest.Fixed(ext))
//	p := stun.NewProber(srv.Addr())
package stuntest

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pion/stun"

	"github.com/dep2p/go-netaddr/pkg/types"
)

// Handler 处理一个 Binding 请求，返回要依次回复的原始数据报；nil 表示不回复
type Handler func(req *stun.Message, from *net.UDPAddr) [][]byte

// Server 监听 127.0.0.1 随机端口的 STUN 服务器
type Server struct {
	conn     *net.UDPConn
	handler  Handler
	requests atomic.Int64
	wg       sync.WaitGroup
	once     sync.Once
}

// NewServer 启动服务器，测试结束时自动关闭
func NewServer(tb testing.TB, h Handler) *Server {
	tb.Helper()

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		tb.Fatalf("stuntest: listen: %v", err)
	}

	s := &Server{conn: conn, handler: h}
	s.wg.Add(1)
	go s.serve()
	tb.Cleanup(s.Close)
	return s
}

// Addr 返回服务器地址 host:port
func (s *Server) Addr() string {
	return s.conn.LocalAddr().String()
}

// Requests 返回收到的合法 STUN 请求数
func (s *Server) Requests() int {
	return int(s.requests.Load())
}

// Close 关闭服务器并等待处理循环退出
func (s *Server) Close() {
	s.once.Do(func() {
		_ = s.conn.Close()
		s.wg.Wait()
	})
}

func (s *Server) serve() {
	defer s.wg.Done()

	buf := make([]byte, 1500)
	for {
		n, from, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}

		req := &stun.Message{Raw: append([]byte(nil), buf[:n]...)}
		if err := req.Decode(); err != nil {
			continue
		}
		s.requests.Add(1)

		for _, reply := range s.handler(req, from) {
			_, _ = s.conn.WriteToUDP(reply, from)
		}
	}
}

// ============================================================================
//                              Handler
// ============================================================================

// Reflect 返回请求的源地址，与真实 STUN 服务器一致
func Reflect() Handler {
	return func(req *stun.Message, from *net.UDPAddr) [][]byte {
		return mustBuild(req, stun.BindingSuccess, &stun.XORMappedAddress{IP: from.IP, Port: from.Port})
	}
}

// Fixed 始终以 XOR-MAPPED-ADDRESS 返回 ep
func Fixed(ep types.SocketEndpoint) Handler {
	return func(req *stun.Message, _ *net.UDPAddr) [][]byte {
		addr := ep.UDPAddr()
		return mustBuild(req, stun.BindingSuccess, &stun.XORMappedAddress{IP: addr.IP, Port: addr.Port})
	}
}

// FixedMapped 始终以 MAPPED-ADDRESS 返回 ep，模拟 RFC 3489 服务器
func FixedMapped(ep types.SocketEndpoint) Handler {
	return func(req *stun.Message, _ *net.UDPAddr) [][]byte {
		addr := ep.UDPAddr()
		return mustBuild(req, stun.BindingSuccess, &stun.MappedAddress{IP: addr.IP, Port: addr.Port})
	}
}

// Silent 从不回复
func Silent() Handler {
	return func(*stun.Message, *net.UDPAddr) [][]byte { return nil }
}

// ErrorResponse 返回 Binding 错误响应
func ErrorResponse(code stun.ErrorCode) Handler {
	return func(req *stun.Message, _ *net.UDPAddr) [][]byte {
		return mustBuild(req, stun.BindingError, code)
	}
}

// NoAddress 返回不带地址属性的成功响应
func NoAddress() Handler {
	return func(req *stun.Message, _ *net.UDPAddr) [][]byte {
		return mustBuild(req, stun.BindingSuccess, stun.NewSoftware("stuntest"))
	}
}

// Garbage 返回非 STUN 数据
func Garbage() Handler {
	return func(*stun.Message, *net.UDPAddr) [][]byte {
		return [][]byte{[]byte("definitely not a stun message")}
	}
}

// WrongTransaction 先回复一个事务 ID 不同的响应，再回复 next 的结果
func WrongTransaction(stale types.SocketEndpoint, next Handler) Handler {
	return func(req *stun.Message, from *net.UDPAddr) [][]byte {
		addr := stale.UDPAddr()
		msg, err := stun.Build(stun.TransactionID, stun.BindingSuccess,
			&stun.XORMappedAddress{IP: addr.IP, Port: addr.Port})
		if err != nil {
			panic(err)
		}
		return append([][]byte{msg.Raw}, next(req, from)...)
	}
}

func mustBuild(req *stun.Message, t stun.MessageType, setters ...stun.Setter) [][]byte {
	all := append([]stun.Setter{stun.NewTransactionIDSetter(req.TransactionID), t}, setters...)
	all = append(all, stun.Fingerprint)
	msg, err := stun.Build(all...)
	if err != nil {
		panic(err)
	}
	return [][]byte{msg.Raw}
}
