// Package analytics 包含分析协议的 protobuf 定义
//
// 消息结构见 analytics.proto（proto2）。编解码直接基于 protowire 实现，
// 字段号与枚举值必须与其他实现保持一致。
package analytics

import (
	"errors"
	"fmt"
	"strconv"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrInvalidMessage 表示无效的消息数据
var ErrInvalidMessage = errors.New("invalid analytics message")

// ============================================================================
//                              枚举
// ============================================================================

// Status 响应状态
type Status int32

const (
	Status_OK                 Status = 1
	Status_E_NO_DATA_FOR_TYPE Status = 100
	Status_E_INTERNAL_ERR     Status = 101
)

var (
	Status_name = map[int32]string{
		1:   "OK",
		100: "E_NO_DATA_FOR_TYPE",
		101: "E_INTERNAL_ERR",
	}
	Status_value = map[string]int32{
		"OK":                 1,
		"E_NO_DATA_FOR_TYPE": 100,
		"E_INTERNAL_ERR":     101,
	}
)

// Enum 返回指向 x 副本的指针
func (x Status) Enum() *Status {
	p := new(Status)
	*p = x
	return p
}

// String 返回枚举名
func (x Status) String() string {
	if name, ok := Status_name[int32(x)]; ok {
		return name
	}
	return strconv.Itoa(int(x))
}

// IsValid 检查是否为已定义的枚举值
func (x Status) IsValid() bool {
	_, ok := Status_name[int32(x)]
	return ok
}

// Type 查询类型
type Type int32

const (
	Type_ALL       Type = 1
	Type_PEER      Type = 2
	Type_PROTO     Type = 3
	Type_TRANSPORT Type = 4
)

var (
	Type_name = map[int32]string{
		1: "ALL",
		2: "PEER",
		3: "PROTO",
		4: "TRANSPORT",
	}
	Type_value = map[string]int32{
		"ALL":       1,
		"PEER":      2,
		"PROTO":     3,
		"TRANSPORT": 4,
	}
)

// Enum 返回指向 x 副本的指针
func (x Type) Enum() *Type {
	p := new(Type)
	*p = x
	return p
}

// String 返回枚举名
func (x Type) String() string {
	if name, ok := Type_name[int32(x)]; ok {
		return name
	}
	return strconv.Itoa(int(x))
}

// IsValid 检查是否为已定义的枚举值
func (x Type) IsValid() bool {
	_, ok := Type_name[int32(x)]
	return ok
}

// ============================================================================
//                              Query
// ============================================================================

// Default_Query_Type 是 Query.type 的默认值
const Default_Query_Type = Type_ALL

// Query 单个查询
//
// 指针字段为 nil 表示字段缺失（proto2 optional）。
type Query struct {
	Type  *Type
	Query *string
}

// GetType 返回查询类型，缺失时为 ALL
func (m *Query) GetType() Type {
	if m != nil && m.Type != nil {
		return *m.Type
	}
	return Default_Query_Type
}

// GetQuery 返回过滤字符串，缺失时为空
func (m *Query) GetQuery() string {
	if m != nil && m.Query != nil {
		return *m.Query
	}
	return ""
}

// HasQuery 检查是否设置了过滤字符串
func (m *Query) HasQuery() bool {
	return m != nil && m.Query != nil
}

// Marshal 序列化 Query
//
// 使用 protobuf wire format 编码：
//   - Field 1 (type): varint
//   - Field 2 (query): length-delimited
func (m *Query) Marshal() ([]byte, error) {
	return m.appendTo(nil), nil
}

func (m *Query) appendTo(b []byte) []byte {
	if m == nil {
		return b
	}
	if m.Type != nil {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(int64(*m.Type)))
	}
	if m.Query != nil {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, *m.Query)
	}
	return b
}

func (m *Query) size() int {
	if m == nil {
		return 0
	}
	n := 0
	if m.Type != nil {
		n += protowire.SizeTag(1) + protowire.SizeVarint(uint64(int64(*m.Type)))
	}
	if m.Query != nil {
		n += protowire.SizeTag(2) + protowire.SizeBytes(len(*m.Query))
	}
	return n
}

// Unmarshal 反序列化 Query
func (m *Query) Unmarshal(data []byte) error {
	*m = Query{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return wrapParseError("query tag", n)
		}
		data = data[n:]

		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return wrapParseError("query.type", n)
			}
			t := Type(int32(v))
			if !t.IsValid() {
				return fmt.Errorf("%w: unknown query type %d", ErrInvalidMessage, int32(v))
			}
			m.Type = &t
			data = data[n:]
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return wrapParseError("query.query", n)
			}
			m.Query = &v
			data = data[n:]
		default:
			// 未知字段静默跳过（向前兼容）
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return wrapParseError("query unknown field", n)
			}
			data = data[n:]
		}
	}
	return nil
}

// ============================================================================
//                              Request
// ============================================================================

// Request 查询请求
type Request struct {
	Queries []*Query
}

// GetQueries 返回查询列表
func (m *Request) GetQueries() []*Query {
	if m != nil {
		return m.Queries
	}
	return nil
}

// Marshal 序列化 Request
//
//   - Field 1 (queries): repeated, length-delimited 子消息
func (m *Request) Marshal() ([]byte, error) {
	var b []byte
	for _, q := range m.GetQueries() {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendVarint(b, uint64(q.size()))
		b = q.appendTo(b)
	}
	return b, nil
}

// Unmarshal 反序列化 Request
func (m *Request) Unmarshal(data []byte) error {
	*m = Request{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return wrapParseError("request tag", n)
		}
		data = data[n:]

		if num == 1 && typ == protowire.BytesType {
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return wrapParseError("request.queries", n)
			}
			q := &Query{}
			if err := q.Unmarshal(v); err != nil {
				return err
			}
			m.Queries = append(m.Queries, q)
			data = data[n:]
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, data)
		if n < 0 {
			return wrapParseError("request unknown field", n)
		}
		data = data[n:]
	}
	return nil
}

// ============================================================================
//                              Response
// ============================================================================

// Response 查询响应
//
// Response 为 nil 表示字段缺失；非 nil 的空切片表示存在但为空。
type Response struct {
	Code     *Status
	Response []byte
}

// GetCode 返回响应状态，缺失时为第一个枚举值 OK
func (m *Response) GetCode() Status {
	if m != nil && m.Code != nil {
		return *m.Code
	}
	return Status_OK
}

// GetResponse 返回结果负载
func (m *Response) GetResponse() []byte {
	if m != nil {
		return m.Response
	}
	return nil
}

// Marshal 序列化 Response
//
//   - Field 1 (code): varint
//   - Field 2 (response): length-delimited
func (m *Response) Marshal() ([]byte, error) {
	var b []byte
	if m == nil {
		return b, nil
	}
	if m.Code != nil {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(int64(*m.Code)))
	}
	if m.Response != nil {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Response)
	}
	return b, nil
}

// Unmarshal 反序列化 Response
func (m *Response) Unmarshal(data []byte) error {
	*m = Response{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return wrapParseError("response tag", n)
		}
		data = data[n:]

		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return wrapParseError("response.code", n)
			}
			s := Status(int32(v))
			if !s.IsValid() {
				return fmt.Errorf("%w: unknown status %d", ErrInvalidMessage, int32(v))
			}
			m.Code = &s
			data = data[n:]
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return wrapParseError("response.response", n)
			}
			m.Response = append([]byte{}, v...)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return wrapParseError("response unknown field", n)
			}
			data = data[n:]
		}
	}
	return nil
}

// ============================================================================
//                              辅助函数
// ============================================================================

// NewQuery 创建查询，filter 为空表示不过滤
func NewQuery(t Type, filter string) *Query {
	q := &Query{Type: t.Enum()}
	if filter != "" {
		q.Query = &filter
	}
	return q
}

// IsAll 检查请求是否应按 ALL 展开
//
// 空请求或任意一个查询类型为 ALL（包括缺省类型）时返回 true。
func IsAll(req *Request) bool {
	queries := req.GetQueries()
	if len(queries) == 0 {
		return true
	}
	for _, q := range queries {
		if q.GetType() == Type_ALL {
			return true
		}
	}
	return false
}

func wrapParseError(field string, n int) error {
	return fmt.Errorf("%w: %s: %v", ErrInvalidMessage, field, protowire.ParseError(n))
}
