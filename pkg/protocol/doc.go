// Package protocol 定义协议标识符
//
// 本包是所有协议 ID 的单一真相源 (Single Source of Truth)。
// 所有模块应从此包引用协议常量，而不是自行定义字符串。
//
// # 协议列表
//
//   - Analytics: /libp2p/analytics/1.0.0 流量统计查询
//   - Multistream: /multistream/1.0.0 协议协商（内部）
//
// # 使用示例
//
//	host.SetStreamHandler(string(protocol.Analytics), handler)
//
//	if err := protocol.Validate(id); err != nil {
//	    return err
//	}
package protocol
