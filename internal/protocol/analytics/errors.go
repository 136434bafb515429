package analytics

import "errors"

// 错误定义
var (
	// ErrDecode 帧格式错误或被截断，只影响当前流
	ErrDecode = errors.New("analytics: malformed frame")

	// ErrFrameTooLarge 帧长度超过 MaxMessageSize
	ErrFrameTooLarge = errors.New("analytics: frame exceeds max message size")

	// ErrNotFound 带过滤条件的查询没有匹配的条目
	ErrNotFound = errors.New("analytics: no data for query")

	// ErrInternal 统计引擎缺少应有的计数器或窗口
	ErrInternal = errors.New("analytics: internal error")

	// ErrTransport 无法打开流，或对端在完整响应到达前关闭
	ErrTransport = errors.New("analytics: transport failure")

	// ErrInvalidQuery 查询类型无法解析
	ErrInvalidQuery = errors.New("analytics: invalid query")

	// ErrNilStats 统计源为 nil
	ErrNilStats = errors.New("analytics: stats source is nil")

	// ErrNilHost Host 接口为 nil
	ErrNilHost = errors.New("analytics: host is nil")

	// ErrNotMounted 服务尚未挂载到 Host
	ErrNotMounted = errors.New("analytics: service not mounted")

	// ErrAlreadyStarted 服务已启动
	ErrAlreadyStarted = errors.New("analytics: service already started")

	// ErrNotStarted 服务未启动
	ErrNotStarted = errors.New("analytics: service not started")
)
