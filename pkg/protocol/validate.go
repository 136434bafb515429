package protocol

import (
	"errors"
	"strings"
)

// 验证错误
var (
	// ErrInvalidProtocol 无效的协议 ID
	ErrInvalidProtocol = errors.New("invalid protocol ID")

	// ErrEmptyProtocol 空协议 ID
	ErrEmptyProtocol = errors.New("empty protocol ID")

	// ErrMissingVersion 缺少版本号
	ErrMissingVersion = errors.New("missing protocol version")
)

// Validate 验证协议 ID 格式
// 返回 nil 表示格式正确
func Validate(id ID) error {
	s := string(id)

	if s == "" {
		return ErrEmptyProtocol
	}

	if !strings.HasPrefix(s, "/") || strings.Contains(s, "\n") {
		return ErrInvalidProtocol
	}

	// 格式: /[<namespace>/]<protocol>/<version>，最后一段为版本号
	parts := strings.Split(s, "/")
	if len(parts) < 3 || parts[1] == "" {
		return ErrInvalidProtocol
	}
	if parts[len(parts)-1] == "" {
		return ErrMissingVersion
	}

	return nil
}

// IsInternal 检查是否为内部协议
// 内部协议（如 multistream-select 协商）只用于统计分桶，不对外枚举
func IsInternal(id ID) bool {
	return strings.HasPrefix(string(id), PrefixMultistream+"/")
}
