package yamux

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/yamux"
)

// ErrMuxerClosed 多路复用器已关闭
var ErrMuxerClosed = errors.New("yamux: muxer closed")

// Muxer 封装 yamux.Session
type Muxer struct {
	session  *yamux.Session
	isServer bool
	closed   atomic.Bool

	streamsMu sync.Mutex
	streams   map[uint32]*Stream
}

// New 在连接上创建多路复用器
//
// 连接两端必须一端为服务端（isServer=true），另一端为客户端。
func New(conn io.ReadWriteCloser, isServer bool, cfg Config) (*Muxer, error) {
	if conn == nil {
		return nil, fmt.Errorf("yamux: nil connection")
	}

	var (
		session *yamux.Session
		err     error
	)
	if isServer {
		session, err = yamux.Server(conn, cfg.toYamux())
	} else {
		session, err = yamux.Client(conn, cfg.toYamux())
	}
	if err != nil {
		return nil, fmt.Errorf("创建 yamux session 失败: %w", err)
	}

	return &Muxer{
		session:  session,
		isServer: isServer,
		streams:  make(map[uint32]*Stream),
	}, nil
}

// OpenStream 创建新流
//
// yamux 的 OpenStream 不支持 context，在单独的 goroutine 中打开，
// ctx 先结束时关闭迟到的流以防止泄漏。
func (m *Muxer) OpenStream(ctx context.Context) (*Stream, error) {
	if m.IsClosed() {
		return nil, ErrMuxerClosed
	}

	type result struct {
		stream *yamux.Stream
		err    error
	}
	resultCh := make(chan result, 1)
	abandoned := make(chan struct{})

	go func() {
		s, err := m.session.OpenStream()
		select {
		case resultCh <- result{stream: s, err: err}:
		case <-abandoned:
			if s != nil {
				_ = s.Close()
			}
		}
	}()

	select {
	case <-ctx.Done():
		close(abandoned)
		return nil, ctx.Err()
	case r := <-resultCh:
		if r.err != nil {
			return nil, fmt.Errorf("创建流失败: %w", r.err)
		}
		return m.track(r.stream), nil
	}
}

// AcceptStream 阻塞直到接受一个入站流
func (m *Muxer) AcceptStream() (*Stream, error) {
	if m.IsClosed() {
		return nil, ErrMuxerClosed
	}

	s, err := m.session.AcceptStream()
	if err != nil {
		return nil, fmt.Errorf("接受流失败: %w", err)
	}
	return m.track(s), nil
}

// Close 关闭多路复用器及其上所有流
func (m *Muxer) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return nil
	}

	m.streamsMu.Lock()
	streams := m.streams
	m.streams = make(map[uint32]*Stream)
	m.streamsMu.Unlock()

	for _, s := range streams {
		_ = s.Reset()
	}
	return m.session.Close()
}

// IsClosed 检查是否已关闭
func (m *Muxer) IsClosed() bool {
	return m.closed.Load() || m.session.IsClosed()
}

// CloseChan 返回 session 关闭时关闭的通道
func (m *Muxer) CloseChan() <-chan struct{} {
	return m.session.CloseChan()
}

// NumStreams 返回当前跟踪的流数量
func (m *Muxer) NumStreams() int {
	m.streamsMu.Lock()
	defer m.streamsMu.Unlock()
	return len(m.streams)
}

// IsServer 返回是否是服务端
func (m *Muxer) IsServer() bool {
	return m.isServer
}

func (m *Muxer) track(s *yamux.Stream) *Stream {
	stream := newStream(s, m.untrack)

	m.streamsMu.Lock()
	m.streams[stream.ID()] = stream
	m.streamsMu.Unlock()
	return stream
}

func (m *Muxer) untrack(id uint32) {
	m.streamsMu.Lock()
	delete(m.streams, id)
	m.streamsMu.Unlock()
}
