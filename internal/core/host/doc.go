// Package host 实现最小化的流主机
//
// Host 在外部提供的连接（任意 net.Conn，例如 TCP 连接或 net.Pipe）上
// 建立 yamux 多路复用会话，使用 multistream-select 协商子流协议，
// 并把入站流路由到已注册的协议处理器。
//
// 所有子流的读写字节都会计入带宽计数器：协商阶段的流量计入内部协议
// /multistream/1.0.0，协商完成后计入实际协议。
//
// # 使用示例
//
//	h, err := host.New(host.WithCounter(counter))
//
//	// 接入连接（两端一端为服务端）
//	err = h.Connect(remotePeerID, conn, "tcp", false)
//
//	// 注册协议
//	h.SetStreamHandler("/my/proto/1.0.0", handler)
//
//	// 创建流
//	stream, err := h.NewStream(ctx, remotePeerID, "/my/proto/1.0.0")
//
//	// 关闭 Host
//	err = h.Close()
package host
