package host

import (
	"sync/atomic"

	"github.com/dep2p/go-analytics/internal/core/muxer/yamux"
	pkgif "github.com/dep2p/go-analytics/pkg/interfaces"
	bandwidthif "github.com/dep2p/go-analytics/pkg/interfaces/bandwidth"
	"github.com/dep2p/go-analytics/pkg/protocol"
)

// stream 在 yamux 子流上附加协议、远端信息和流量计量
type stream struct {
	*yamux.Stream

	conn    *connection
	counter bandwidthif.Counter

	// proto 当前计量使用的协议 ID，协商完成前为 multistream
	proto atomic.Value // string
}

var _ pkgif.Stream = (*stream)(nil)

func newStream(s *yamux.Stream, conn *connection, counter bandwidthif.Counter) *stream {
	st := &stream{
		Stream:  s,
		conn:    conn,
		counter: counter,
	}
	st.proto.Store(string(protocol.Multistream))
	return st
}

// Read 读取并计入入站流量
func (s *stream) Read(p []byte) (int, error) {
	n, err := s.Stream.Read(p)
	if n > 0 && s.counter != nil {
		s.counter.LogRecvMessageStream(int64(n), s.meteredProtocol(), s.conn.remotePeer, s.conn.transport)
	}
	return n, err
}

// Write 写入并计入出站流量
func (s *stream) Write(p []byte) (int, error) {
	n, err := s.Stream.Write(p)
	if n > 0 && s.counter != nil {
		s.counter.LogSentMessageStream(int64(n), s.meteredProtocol(), s.conn.remotePeer, s.conn.transport)
	}
	return n, err
}

func (s *stream) meteredProtocol() string {
	return s.proto.Load().(string)
}

// Protocol 返回协商后的协议 ID，协商完成前为空
func (s *stream) Protocol() string {
	if p := s.meteredProtocol(); p != string(protocol.Multistream) {
		return p
	}
	return ""
}

// SetProtocol 设置协商后的协议 ID
func (s *stream) SetProtocol(p string) {
	s.proto.Store(p)
}

// RemotePeer 返回远端节点 ID
func (s *stream) RemotePeer() string {
	return s.conn.remotePeer
}

// Transport 返回底层连接的传输名称
func (s *stream) Transport() string {
	return s.conn.transport
}
