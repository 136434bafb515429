package protocol

// ID 协议标识符
//
// 格式: /<namespace>/<protocol>/<version>
type ID string

// String 返回协议 ID 的字符串表示
func (id ID) String() string {
	return string(id)
}

// 协议前缀常量
const (
	// PrefixLibp2p libp2p 协议命名空间
	PrefixLibp2p = "/libp2p"

	// PrefixMultistream multistream-select 协商命名空间
	PrefixMultistream = "/multistream"
)
