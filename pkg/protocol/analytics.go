package protocol

// ============================================================================
//                           分析协议 ID
// ============================================================================

const (
	// Analytics 流量统计查询协议
	// 请求方发送一个 Request 帧，响应方回复一个 Response 帧后关闭流
	Analytics ID = "/libp2p/analytics/1.0.0"

	// Multistream multistream-select 协商协议
	// 协商阶段产生的流量计入内部统计桶，不出现在协议列表中
	Multistream ID = "/multistream/1.0.0"
)
