package analytics

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-analytics/internal/core/bandwidth"
	"github.com/dep2p/go-analytics/internal/core/host"
	aproto "github.com/dep2p/go-analytics/internal/protocol/analytics"
	"github.com/dep2p/go-analytics/internal/util/logger"
	pkgif "github.com/dep2p/go-analytics/pkg/interfaces"
	bandwidthif "github.com/dep2p/go-analytics/pkg/interfaces/bandwidth"
	pb "github.com/dep2p/go-analytics/pkg/lib/proto/analytics"
)

var log = logger.Logger("node")

// ════════════════════════════════════════════════════════════════════════════
//                              节点状态
// ════════════════════════════════════════════════════════════════════════════

// NodeState 节点状态
type NodeState int

const (
	// StateIdle 已创建，未启动
	StateIdle NodeState = iota

	// StateRunning 运行中
	StateRunning

	// StateStopped 已停止，连接已关闭，不能再次启动
	StateStopped

	// StateClosed 已关闭
	StateClosed
)

// String 返回状态的字符串表示
func (s NodeState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// startTimeout Fx 应用启动超时
const startTimeout = 30 * time.Second

// ════════════════════════════════════════════════════════════════════════════
//                              节点
// ════════════════════════════════════════════════════════════════════════════

// Node 分析节点
//
// Node 组装统计引擎、主机和分析协议服务，是用户交互的主入口。
type Node struct {
	opts *options
	app  *fx.App

	host    *host.Host
	counter *bandwidth.Counter
	service *aproto.Service

	mu    sync.Mutex
	state NodeState
}

// New 创建新节点
//
// 创建节点但不启动，需要调用 Start() 启动。
func New(_ context.Context, opts ...Option) (*Node, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	if o.config.Log.Level != "" {
		logger.ApplyLevelSpec(o.config.Log.Level)
	}

	node := &Node{opts: o}

	var err error
	node.app, err = buildFxApp(o, node)
	if err != nil {
		return nil, fmt.Errorf("build fx app: %w", err)
	}
	if err := node.app.Err(); err != nil {
		return nil, fmt.Errorf("build fx app: %w", err)
	}

	return node, nil
}

// Start 快捷启动函数，等价于 New() + Start()
func Start(ctx context.Context, opts ...Option) (*Node, error) {
	node, err := New(ctx, opts...)
	if err != nil {
		return nil, err
	}
	if err := node.Start(ctx); err != nil {
		return nil, fmt.Errorf("start node: %w", err)
	}
	return node, nil
}

// Start 启动节点
func (n *Node) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch n.state {
	case StateClosed, StateStopped:
		return ErrNodeClosed
	case StateRunning:
		return ErrAlreadyStarted
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()

	if err := n.app.Start(startCtx); err != nil {
		log.Error("节点启动失败", "error", err)
		return err
	}

	n.state = StateRunning
	log.Info("节点已启动", "id", n.ID(), "analytics", n.service != nil)
	return nil
}

// Stop 停止节点
//
// 停止后连接全部关闭，统计数据仍可读取。
func (n *Node) Stop(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch n.state {
	case StateClosed:
		return ErrNodeClosed
	case StateIdle:
		return ErrNotStarted
	case StateStopped:
		return nil
	}

	// 停止失败时保持运行状态，调用方可以重试 Stop 或直接 Close
	if err := n.app.Stop(ctx); err != nil {
		log.Error("停止节点失败", "state", n.state, "error", err)
		return fmt.Errorf("stop fx app: %w", err)
	}
	n.state = StateStopped
	log.Info("节点已停止")
	return nil
}

// Close 关闭节点并释放所有资源，可重复调用
func (n *Node) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state == StateClosed {
		return nil
	}
	running := n.state == StateRunning
	n.state = StateClosed

	if !running {
		return n.host.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()
	if err := n.app.Stop(ctx); err != nil {
		return fmt.Errorf("stop fx app: %w", err)
	}
	return nil
}

// State 返回节点状态
func (n *Node) State() NodeState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// ════════════════════════════════════════════════════════════════════════════
//                              连接
// ════════════════════════════════════════════════════════════════════════════

// ID 返回节点 ID
func (n *Node) ID() string {
	return n.host.ID()
}

// Connect 在已建立的双工连接上与远端节点建立会话
//
// 连接两端必须一端 isServer 为 true、另一端为 false。
// transport 为统计使用的传输名称（如 "tcp"、"memory"）。
func (n *Node) Connect(remotePeer string, conn net.Conn, transport string, isServer bool) error {
	if n.State() != StateRunning {
		return ErrNotStarted
	}
	return n.host.Connect(remotePeer, conn, transport, isServer)
}

// Disconnect 断开与远端节点的会话
func (n *Node) Disconnect(remotePeer string) error {
	return n.host.Disconnect(remotePeer)
}

// Peers 返回当前已连接的节点
func (n *Node) Peers() []string {
	return n.host.Peers()
}

// Host 返回底层主机
func (n *Node) Host() pkgif.Host {
	return n.host
}

// ════════════════════════════════════════════════════════════════════════════
//                              统计与查询
// ════════════════════════════════════════════════════════════════════════════

// Stats 返回本地统计源
func (n *Node) Stats() bandwidthif.StatsSource {
	return n.counter
}

// Counter 返回本地带宽计数器
func (n *Node) Counter() bandwidthif.Counter {
	return n.counter
}

// Analytics 返回分析协议响应方，配置关闭时返回 ErrAnalyticsDisabled
func (n *Node) Analytics() (*aproto.Service, error) {
	if n.service == nil {
		return nil, ErrAnalyticsDisabled
	}
	return n.service, nil
}

// LocalQuery 在本地解析请求，不经过网络
//
// 结果与远端对本节点发送同一请求时响应负载中的结果一致，
// 分析协议关闭时同样可用。解析失败返回 aproto.ErrNotFound 或 aproto.ErrInternal。
func (n *Node) LocalQuery(req *pb.Request) ([]pb.Result, error) {
	if n.service != nil {
		return n.service.Dispatcher().Dispatch(req)
	}
	return aproto.NewDispatcher(n.counter).Dispatch(req)
}

// Client 创建查询 remotePeer 的分析协议客户端
//
// 默认使用节点配置中的超时和帧大小，opts 可以覆盖。
func (n *Node) Client(remotePeer string, opts ...aproto.Option) (*aproto.Client, error) {
	base := []aproto.Option{aproto.WithConfig(analyticsConfig(n.opts.config, n.opts))}
	return aproto.NewClient(n.host, remotePeer, append(base, opts...)...)
}
