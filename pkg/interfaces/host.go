// Package interfaces 定义公共接口
//
// 本文件定义 Host 与 Stream 接口。分析协议只依赖其中的窄接口：
//   - 响应方: StreamHost（注册/移除协议处理器）
//   - 请求方: StreamOpener（按协议打开出站流）
package interfaces

import (
	"context"
	"io"
	"time"
)

// StreamHost 定义响应方所需的主机能力
type StreamHost interface {
	// ID 返回主机的 PeerID
	ID() string

	// SetStreamHandler 为指定协议设置流处理器
	//
	// 协议协商由连接层完成，处理器只会收到已协商好的流。
	SetStreamHandler(protocolID string, handler StreamHandler)

	// RemoveStreamHandler 移除指定协议的流处理器
	RemoveStreamHandler(protocolID string)
}

// StreamOpener 定义请求方所需的主机能力
type StreamOpener interface {
	// NewStream 创建到指定节点的新流
	//
	// 返回的流已完成协议协商。
	NewStream(ctx context.Context, peerID string, protocolIDs ...string) (Stream, error)
}

// Host 定义 P2P 主机接口
//
// Host 负责在已建立的连接上复用子流，并把入站流路由到协议处理器。
type Host interface {
	StreamHost
	StreamOpener

	// Peers 返回当前已连接的节点
	Peers() []string

	// Close 关闭主机
	Close() error
}

// StreamHandler 定义流处理函数类型
type StreamHandler func(Stream)

// Stream 定义双向流接口
type Stream interface {
	io.ReadWriteCloser

	// CloseWrite 关闭写端（半关闭）
	//
	// 关闭后无法继续写入，但仍可读取。
	CloseWrite() error

	// CloseRead 关闭读端（半关闭）
	CloseRead() error

	// Reset 重置流（异常关闭）
	Reset() error

	// SetDeadline 设置读写超时
	//
	// 传入零值 time.Time{} 表示不超时。
	SetDeadline(t time.Time) error

	// SetReadDeadline 设置读超时
	SetReadDeadline(t time.Time) error

	// SetWriteDeadline 设置写超时
	SetWriteDeadline(t time.Time) error

	// Protocol 返回流使用的协议 ID
	Protocol() string

	// SetProtocol 设置流使用的协议 ID（协议协商时使用）
	SetProtocol(protocol string)

	// RemotePeer 返回远端节点 ID
	RemotePeer() string

	// Transport 返回底层连接的传输名称
	Transport() string

	// IsClosed 检查流是否已关闭
	IsClosed() bool
}
