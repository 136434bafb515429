package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	mss "github.com/multiformats/go-multistream"
	"go.uber.org/multierr"

	"github.com/dep2p/go-analytics/internal/core/muxer/yamux"
	"github.com/dep2p/go-analytics/internal/util/logger"
	pkgif "github.com/dep2p/go-analytics/pkg/interfaces"
	bandwidthif "github.com/dep2p/go-analytics/pkg/interfaces/bandwidth"
	"github.com/dep2p/go-analytics/pkg/protocol"
)

var log = logger.Logger("host")

// 错误定义
var (
	// ErrHostClosed Host 已关闭
	ErrHostClosed = errors.New("host: closed")

	// ErrNoConnection 没有到指定节点的连接
	ErrNoConnection = errors.New("host: no connection to peer")

	// ErrAlreadyConnected 已存在到指定节点的连接
	ErrAlreadyConnected = errors.New("host: already connected to peer")

	// ErrNoProtocol NewStream 未指定协议
	ErrNoProtocol = errors.New("host: no protocol specified")
)

// connection 一条已建立的多路复用连接
type connection struct {
	remotePeer string
	transport  string
	muxer      *yamux.Muxer
}

// Host 流主机实现
type Host struct {
	config  *Config
	counter bandwidthif.Counter

	// multistream-select muxer 用于入站协议协商
	mux *mss.MultistreamMuxer[string]

	connsMu sync.RWMutex
	conns   map[string]*connection

	closed   atomic.Bool
	refCount sync.WaitGroup
}

var _ pkgif.Host = (*Host)(nil)

// New 创建新的 Host
func New(opts ...Option) (*Host, error) {
	h := &Host{
		config: DefaultConfig(),
		mux:    mss.NewMultistreamMuxer[string](),
		conns:  make(map[string]*connection),
	}

	for _, opt := range opts {
		if err := opt(h); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if h.config.ID == "" {
		h.config.ID = uuid.NewString()
	}
	return h, nil
}

// ID 返回节点 ID
func (h *Host) ID() string {
	return h.config.ID
}

// Connect 接入一条到 remotePeer 的连接
//
// isServer 决定本端在 yamux 会话中的角色，连接两端必须相反。
// transport 是该连接的传输名称（如 "tcp"），用于按传输统计流量。
func (h *Host) Connect(remotePeer string, conn net.Conn, transport string, isServer bool) error {
	if h.closed.Load() {
		return ErrHostClosed
	}
	if remotePeer == "" {
		return errors.New("host: empty remote peer")
	}

	h.connsMu.Lock()
	defer h.connsMu.Unlock()

	if _, ok := h.conns[remotePeer]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyConnected, remotePeer)
	}

	m, err := yamux.New(conn, isServer, h.config.Muxer)
	if err != nil {
		return err
	}

	c := &connection{remotePeer: remotePeer, transport: transport, muxer: m}
	h.conns[remotePeer] = c

	h.refCount.Add(1)
	go h.acceptLoop(c)

	log.Debug("连接已建立", "peer", remotePeer, "transport", transport, "server", isServer)
	return nil
}

// Disconnect 关闭到 remotePeer 的连接
func (h *Host) Disconnect(remotePeer string) error {
	h.connsMu.Lock()
	c, ok := h.conns[remotePeer]
	delete(h.conns, remotePeer)
	h.connsMu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNoConnection, remotePeer)
	}
	return c.muxer.Close()
}

// Peers 返回当前已连接的节点（已排序）
func (h *Host) Peers() []string {
	h.connsMu.RLock()
	defer h.connsMu.RUnlock()

	peers := make([]string, 0, len(h.conns))
	for p := range h.conns {
		peers = append(peers, p)
	}
	sort.Strings(peers)
	return peers
}

// NewStream 创建到指定节点的新流并完成协议协商
//
// 多个协议 ID 按优先级排列，返回流的 Protocol() 为对端选中的协议。
func (h *Host) NewStream(ctx context.Context, peerID string, protocolIDs ...string) (pkgif.Stream, error) {
	if h.closed.Load() {
		return nil, ErrHostClosed
	}
	if len(protocolIDs) == 0 {
		return nil, ErrNoProtocol
	}
	for _, id := range protocolIDs {
		if err := protocol.Validate(protocol.ID(id)); err != nil {
			return nil, fmt.Errorf("%w: %q", err, id)
		}
	}

	h.connsMu.RLock()
	c, ok := h.conns[peerID]
	h.connsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoConnection, peerID)
	}

	ys, err := c.muxer.OpenStream(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}
	s := newStream(ys, c, h.counter)

	// 协商期间使用 ctx 截止时间与协商超时中较早者
	if err := s.SetDeadline(h.negotiationDeadline(ctx)); err != nil {
		_ = s.Reset()
		return nil, err
	}

	// 使用 multistream-select 进行协议协商（客户端侧）
	selected, err := mss.SelectOneOf(protocolIDs, io.ReadWriteCloser(s))
	if err != nil {
		_ = s.Reset()
		return nil, fmt.Errorf("protocol negotiation failed: %w", err)
	}
	_ = s.SetDeadline(time.Time{})

	s.SetProtocol(selected)
	return s, nil
}

func (h *Host) negotiationDeadline(ctx context.Context) time.Time {
	var deadline time.Time
	if h.config.NegotiationTimeout > 0 {
		deadline = time.Now().Add(h.config.NegotiationTimeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	return deadline
}

// SetStreamHandler 为指定协议设置流处理器
func (h *Host) SetStreamHandler(protocolID string, handler pkgif.StreamHandler) {
	h.mux.AddHandler(protocolID, func(proto string, rwc io.ReadWriteCloser) error {
		s, ok := rwc.(pkgif.Stream)
		if !ok {
			return fmt.Errorf("unexpected stream type for protocol %s", proto)
		}
		handler(s)
		return nil
	})

	log.Debug("注册协议处理器", "protocolID", protocolID)
}

// RemoveStreamHandler 移除指定协议的流处理器
func (h *Host) RemoveStreamHandler(protocolID string) {
	h.mux.RemoveHandler(protocolID)
	log.Debug("移除协议处理器", "protocolID", protocolID)
}

// Protocols 返回已注册的协议
func (h *Host) Protocols() []string {
	return h.mux.Protocols()
}

// Close 关闭 Host 及所有连接，并等待后台任务完成
func (h *Host) Close() error {
	if !h.closed.CompareAndSwap(false, true) {
		return nil
	}

	h.connsMu.Lock()
	conns := h.conns
	h.conns = make(map[string]*connection)
	h.connsMu.Unlock()

	var err error
	for _, c := range conns {
		err = multierr.Append(err, c.muxer.Close())
	}

	h.refCount.Wait()
	log.Info("Host 已关闭", "connections", len(conns))
	return err
}

// Closed 返回 Host 是否已关闭
func (h *Host) Closed() bool {
	return h.closed.Load()
}

// acceptLoop 接受连接上的入站流，每个流在独立的 goroutine 中处理
func (h *Host) acceptLoop(c *connection) {
	defer h.refCount.Done()

	for {
		ys, err := c.muxer.AcceptStream()
		if err != nil {
			log.Debug("连接已断开", "peer", c.remotePeer, "error", err)
			h.dropConnection(c)
			return
		}

		s := newStream(ys, c, h.counter)
		h.refCount.Add(1)
		go func() {
			defer h.refCount.Done()
			h.handleInboundStream(s)
		}()
	}
}

// dropConnection 在连接断开后移除记录（若仍是同一连接）
func (h *Host) dropConnection(c *connection) {
	h.connsMu.Lock()
	if cur, ok := h.conns[c.remotePeer]; ok && cur == c {
		delete(h.conns, c.remotePeer)
	}
	h.connsMu.Unlock()
	_ = c.muxer.Close()
}

// handleInboundStream 处理入站流
//
//  1. 使用 multistream-select 进行服务端侧协议协商
//  2. 设置协商后的协议 ID 到流
//  3. 调用对应的协议处理器
func (h *Host) handleInboundStream(s *stream) {
	if h.closed.Load() {
		_ = s.Reset()
		return
	}

	if h.config.NegotiationTimeout > 0 {
		_ = s.SetDeadline(time.Now().Add(h.config.NegotiationTimeout))
	}

	selected, handler, err := h.mux.Negotiate(s)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			log.Debug("协议协商失败", "peer", s.RemotePeer(), "error", err)
		}
		_ = s.Reset()
		return
	}
	_ = s.SetDeadline(time.Time{})

	s.SetProtocol(selected)

	if handler == nil {
		_ = s.Reset()
		return
	}
	if err := handler(selected, s); err != nil {
		log.Debug("协议处理失败", "peer", s.RemotePeer(), "protocol", selected, "error", err)
		_ = s.Reset()
	}
}
