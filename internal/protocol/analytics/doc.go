// Package analytics 实现 /libp2p/analytics/1.0.0 分析查询协议
//
// 响应方把本地统计引擎的带宽统计（全局、按 Peer、按协议、按传输）
// 暴露给远端请求方。协议在单条子流上交换一个请求帧和一个响应帧：
//
//	请求方                               响应方
//	  │── uvarint(len) || Request ──────▶ │ 解码 → 分发 → 规范化
//	  │◀───────── uvarint(len) || Response│ 编码 → 关闭
//
// # 组成
//
//   - Codec: 长度前缀帧的编解码，单帧大小受 MaxMessageSize 限制
//   - Normalize: 把统计引擎的 Stats 转换为可传输的 StatsView
//   - Dispatcher: 按查询类型解析统计，ALL 展开为四个固定顺序的结果
//   - Service: 响应方，挂载到 StreamHost 后处理入站流
//   - Client: 请求方，每次查询打开一条新流
//
// # 错误
//
// 响应方把解析失败转换为带非 OK 状态的响应：ErrNotFound 对应
// E_NO_DATA_FOR_TYPE，其他错误对应 E_INTERNAL_ERR。请求帧格式错误时
// 直接重置流，不写响应。请求方只在传输失败时返回错误（包装 ErrTransport），
// 非 OK 状态作为数据返回。
//
// # 使用
//
//	svc, _ := analytics.New(counter)
//	_ = svc.Mount(host)
//	_ = svc.Start(ctx)
//
//	client, _ := analytics.NewClient(host, remotePeer)
//	resp, err := client.QueryTransports(ctx, "")
package analytics
