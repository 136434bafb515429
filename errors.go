package analytics

import "errors"

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 节点生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNotStarted 节点未启动
	ErrNotStarted = errors.New("node not started")

	// ErrAlreadyStarted 节点已启动
	ErrAlreadyStarted = errors.New("node already started")

	// ErrNodeClosed 节点已关闭
	ErrNodeClosed = errors.New("node closed")

	// ────────────────────────────────────────────────────────────────────────
	// 分析协议错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrAnalyticsDisabled 配置中关闭了分析协议响应方
	ErrAnalyticsDisabled = errors.New("analytics responder disabled")
)
