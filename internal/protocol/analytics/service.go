package analytics

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dep2p/go-analytics/internal/util/logger"
	pkgif "github.com/dep2p/go-analytics/pkg/interfaces"
	bandwidthif "github.com/dep2p/go-analytics/pkg/interfaces/bandwidth"
	pb "github.com/dep2p/go-analytics/pkg/lib/proto/analytics"
	"github.com/dep2p/go-analytics/pkg/protocol"
)

var log = logger.Logger("protocol/analytics")

// ============================================================================
//                              流状态
// ============================================================================

// StreamState 单个入站流的处理阶段
type StreamState int

const (
	// StateAwaitRequest 等待请求帧
	StateAwaitRequest StreamState = iota
	// StateDecoding 解码请求
	StateDecoding
	// StateDispatching 解析查询
	StateDispatching
	// StateEncoding 编码并写出响应
	StateEncoding
	// StateClosed 流已关闭
	StateClosed
)

// String 返回状态名
func (s StreamState) String() string {
	switch s {
	case StateAwaitRequest:
		return "AWAIT_REQUEST"
	case StateDecoding:
		return "DECODING"
	case StateDispatching:
		return "DISPATCHING"
	case StateEncoding:
		return "ENCODING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// streamTrace 记录单个流的状态迁移
type streamTrace struct {
	id    string
	peer  string
	state StreamState
}

func (t *streamTrace) enter(next StreamState) {
	log.Debug("分析流状态迁移", "stream", t.id, "peer", t.peer, "from", t.state, "to", next)
	t.state = next
}

// ============================================================================
//                              响应方服务
// ============================================================================

// Service 分析协议响应方
//
// Service 从注入的 StatsSource 读取统计，在 /libp2p/analytics/1.0.0 上
// 应答入站请求。每个入站流独立处理，只读取一个请求并写回一个响应。
type Service struct {
	config     *Config
	codec      *Codec
	dispatcher *Dispatcher
	metrics    *metrics

	mu      sync.Mutex
	host    pkgif.StreamHost
	started bool
}

// New 创建响应方服务
func New(stats bandwidthif.StatsSource, opts ...Option) (*Service, error) {
	if stats == nil {
		return nil, ErrNilStats
	}

	cfg := applyOptions(opts)
	return &Service{
		config:     cfg,
		codec:      NewCodec(cfg.MaxMessageSize),
		dispatcher: NewDispatcher(stats),
		metrics:    newMetrics(cfg.Registerer),
	}, nil
}

// Mount 将服务挂载到 Host，Start 时在其上注册协议处理器
func (s *Service) Mount(host pkgif.StreamHost) error {
	if host == nil {
		return ErrNilHost
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}
	s.host = host
	return nil
}

// Start 注册协议处理器
func (s *Service) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.host == nil {
		return ErrNotMounted
	}
	if s.started {
		return ErrAlreadyStarted
	}

	s.host.SetStreamHandler(string(protocol.Analytics), s.HandleStream)
	s.started = true

	log.Info("分析协议服务已启动", "protocol", string(protocol.Analytics), "host", s.host.ID())
	return nil
}

// Stop 移除协议处理器
//
// 已在处理中的流会继续完成。
func (s *Service) Stop(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return ErrNotStarted
	}

	s.host.RemoveStreamHandler(string(protocol.Analytics))
	s.started = false

	log.Info("分析协议服务已停止", "protocol", string(protocol.Analytics))
	return nil
}

// Close 关闭服务，未启动时不报错
func (s *Service) Close() error {
	if err := s.Stop(context.Background()); err != nil && !errors.Is(err, ErrNotStarted) {
		return err
	}
	return nil
}

// Started 服务是否已启动
func (s *Service) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Dispatcher 返回服务使用的分发器
func (s *Service) Dispatcher() *Dispatcher {
	return s.dispatcher
}

// Respond 为一个请求构造唯一的响应
//
// 解析失败时整个请求失败，不返回部分结果：
// ErrNotFound 对应 E_NO_DATA_FOR_TYPE，其他错误对应 E_INTERNAL_ERR，
// 两种情况下响应都不携带负载。
func (s *Service) Respond(req *pb.Request) *pb.Response {
	results, err := s.dispatcher.Dispatch(req)
	if err == nil {
		var payload []byte
		payload, err = pb.EncodeResults(results)
		if err == nil {
			return &pb.Response{Code: pb.Status_OK.Enum(), Response: payload}
		}
	}

	if errors.Is(err, ErrNotFound) {
		log.Debug("查询无匹配数据", "error", err)
		return &pb.Response{Code: pb.Status_E_NO_DATA_FOR_TYPE.Enum()}
	}
	log.Warn("查询解析失败", "error", err)
	return &pb.Response{Code: pb.Status_E_INTERNAL_ERR.Enum()}
}

// HandleStream 处理一个入站分析流
func (s *Service) HandleStream(stream pkgif.Stream) {
	trace := &streamTrace{
		id:    uuid.NewString(),
		peer:  stream.RemotePeer(),
		state: StateAwaitRequest,
	}
	defer trace.enter(StateClosed)

	if s.config.StreamTimeout > 0 {
		_ = stream.SetDeadline(time.Now().Add(s.config.StreamTimeout))
	}

	trace.enter(StateDecoding)
	req, err := s.codec.NewFrameReader(stream).ReadRequest()
	if err != nil {
		if errors.Is(err, io.EOF) {
			log.Debug("对端未发送请求即关闭流", "stream", trace.id, "peer", trace.peer)
		} else {
			s.metrics.decodeErrors.Inc()
			log.Debug("请求解码失败", "stream", trace.id, "peer", trace.peer, "error", err)
		}
		_ = stream.Reset()
		return
	}

	start := time.Now()
	trace.enter(StateDispatching)
	resp := s.Respond(req)

	trace.enter(StateEncoding)
	if err := s.codec.WriteResponse(stream, resp); err != nil {
		log.Debug("写出响应失败", "stream", trace.id, "peer", trace.peer, "error", err)
		_ = stream.Reset()
		return
	}

	s.metrics.requests.WithLabelValues(requestLabel(req), resp.GetCode().String()).Inc()
	s.metrics.duration.Observe(time.Since(start).Seconds())

	if err := stream.Close(); err != nil {
		log.Debug("关闭流失败", "stream", trace.id, "peer", trace.peer, "error", err)
	}
}

// requestLabel 请求的类型标签：按 ALL 展开的请求记为 ALL，否则取第一个查询的类型
func requestLabel(req *pb.Request) string {
	if pb.IsAll(req) {
		return pb.Type_ALL.String()
	}
	return req.GetQueries()[0].GetType().String()
}
