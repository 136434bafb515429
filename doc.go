// Package analytics 提供 /libp2p/analytics/1.0.0 分析查询节点
//
// 节点在多路复用连接上统计流量（全局、按 Peer、按协议、按传输），
// 并通过分析协议向远端暴露这些统计；同时可以作为请求方查询其他节点。
//
// # 快速开始
//
//	import analytics "github.com/dep2p/go-analytics"
//
//	a, _ := analytics.Start(ctx, analytics.WithID("peerA"))
//	b, _ := analytics.Start(ctx, analytics.WithID("peerB"))
//	defer a.Close()
//	defer b.Close()
//
//	// 任意双工连接都可以作为底层连接
//	ca, cb := net.Pipe()
//	_ = a.Connect("peerB", ca, "memory", false)
//	_ = b.Connect("peerA", cb, "memory", true)
//
//	client, _ := b.Client("peerA")
//	resp, err := client.QueryTransports(ctx, "")
//
// # 组成
//
//	┌────────────────────────────────────────────┐
//	│  Node                                      │
//	│  ┌──────────┐  ┌───────────┐  ┌─────────┐  │
//	│  │ analytics│→ │ bandwidth │← │  host   │  │
//	│  │ Service  │  │  Counter  │  │ (yamux) │  │
//	│  └──────────┘  └───────────┘  └─────────┘  │
//	└────────────────────────────────────────────┘
//
// host 为每条连接建立 yamux 会话，使用 multistream-select 协商子流协议，
// 并把子流上的读写计入 bandwidth.Counter；analytics.Service 从同一个
// Counter 读取统计并应答查询。
//
// # 配置
//
// 使用 WithConfig 传入 config.Config，或使用 WithID、WithLogLevel 等选项。
// 日志级别也可通过 ANALYTICS_LOG_LEVEL 环境变量设置。
package analytics
