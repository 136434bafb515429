package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func strPtr(s string) *string { return &s }

// ============================================================================
//                              枚举测试
// ============================================================================

func TestEnums_WireValues(t *testing.T) {
	assert.Equal(t, int32(1), int32(Status_OK))
	assert.Equal(t, int32(100), int32(Status_E_NO_DATA_FOR_TYPE))
	assert.Equal(t, int32(101), int32(Status_E_INTERNAL_ERR))

	assert.Equal(t, int32(1), int32(Type_ALL))
	assert.Equal(t, int32(2), int32(Type_PEER))
	assert.Equal(t, int32(3), int32(Type_PROTO))
	assert.Equal(t, int32(4), int32(Type_TRANSPORT))

	assert.Equal(t, "E_NO_DATA_FOR_TYPE", Status_E_NO_DATA_FOR_TYPE.String())
	assert.Equal(t, "TRANSPORT", Type_TRANSPORT.String())
	assert.Equal(t, "7", Type(7).String())
	assert.False(t, Status(2).IsValid())
}

// ============================================================================
//                              Query / Request 测试
// ============================================================================

func TestQuery_Defaults(t *testing.T) {
	var q *Query
	assert.Equal(t, Type_ALL, q.GetType())
	assert.Equal(t, "", q.GetQuery())
	assert.False(t, q.HasQuery())

	q = &Query{}
	assert.Equal(t, Type_ALL, q.GetType(), "缺省类型应为 ALL")
}

func TestRequest_MarshalUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		req  *Request
	}{
		{
			name: "空请求",
			req:  &Request{},
		},
		{
			name: "单个 PEER 查询",
			req:  &Request{Queries: []*Query{{Type: Type_PEER.Enum(), Query: strPtr("peerX")}}},
		},
		{
			name: "缺省类型",
			req:  &Request{Queries: []*Query{{Query: strPtr("tcp")}}},
		},
		{
			name: "空过滤字符串与缺失区分",
			req: &Request{Queries: []*Query{
				{Type: Type_PROTO.Enum(), Query: strPtr("")},
				{Type: Type_PROTO.Enum()},
			}},
		},
		{
			name: "多个查询保持顺序",
			req: &Request{Queries: []*Query{
				{Type: Type_TRANSPORT.Enum()},
				{Type: Type_PEER.Enum(), Query: strPtr("b")},
				{Type: Type_PEER.Enum(), Query: strPtr("a")},
				{},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.req.Marshal()
			require.NoError(t, err)

			got := &Request{}
			require.NoError(t, got.Unmarshal(data))
			require.Len(t, got.Queries, len(tt.req.Queries))
			for i, want := range tt.req.Queries {
				assert.Equal(t, want, got.Queries[i], "query %d", i)
			}
		})
	}
}

func TestRequest_Unmarshal_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{
			name: "长度超出数据",
			data: []byte{0x0a, 0x05, 0x08},
		},
		{
			name: "未知查询类型",
			data: []byte{0x0a, 0x02, 0x08, 0x09},
		},
		{
			name: "截断的 tag",
			data: []byte{0x80},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&Request{}).Unmarshal(tt.data)
			assert.ErrorIs(t, err, ErrInvalidMessage)
		})
	}
}

func TestRequest_Unmarshal_SkipsUnknownFields(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 9, protowire.BytesType)
	b = protowire.AppendString(b, "future")
	q := &Query{Type: Type_PEER.Enum()}
	qb, err := q.Marshal()
	require.NoError(t, err)
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendBytes(b, qb)

	got := &Request{}
	require.NoError(t, got.Unmarshal(b))
	require.Len(t, got.Queries, 1)
	assert.Equal(t, Type_PEER, got.Queries[0].GetType())
}

func TestIsAll(t *testing.T) {
	assert.True(t, IsAll(nil))
	assert.True(t, IsAll(&Request{}))
	assert.True(t, IsAll(&Request{Queries: []*Query{NewQuery(Type_PEER, ""), {}}}))
	assert.True(t, IsAll(&Request{Queries: []*Query{NewQuery(Type_PEER, ""), NewQuery(Type_ALL, "")}}))
	assert.False(t, IsAll(&Request{Queries: []*Query{NewQuery(Type_PEER, "x"), NewQuery(Type_PROTO, "")}}))
}

func TestNewQuery(t *testing.T) {
	q := NewQuery(Type_TRANSPORT, "")
	assert.Equal(t, Type_TRANSPORT, q.GetType())
	assert.Nil(t, q.Query, "空过滤字符串视为缺失")

	q = NewQuery(Type_PEER, "peerX")
	assert.Equal(t, "peerX", q.GetQuery())
}

// ============================================================================
//                              Response 测试
// ============================================================================

func TestResponse_MarshalUnmarshal(t *testing.T) {
	t.Run("完整响应", func(t *testing.T) {
		resp := &Response{Code: Status_OK.Enum(), Response: []byte(`[{}]`)}
		data, err := resp.Marshal()
		require.NoError(t, err)

		got := &Response{}
		require.NoError(t, got.Unmarshal(data))
		assert.Equal(t, Status_OK, *got.Code)
		assert.Equal(t, []byte(`[{}]`), got.Response)
	})

	t.Run("负载缺失", func(t *testing.T) {
		resp := &Response{Code: Status_E_NO_DATA_FOR_TYPE.Enum()}
		data, err := resp.Marshal()
		require.NoError(t, err)

		got := &Response{}
		require.NoError(t, got.Unmarshal(data))
		assert.Equal(t, Status_E_NO_DATA_FOR_TYPE, got.GetCode())
		assert.Nil(t, got.Response)
	})

	t.Run("负载存在但为空", func(t *testing.T) {
		resp := &Response{Code: Status_OK.Enum(), Response: []byte{}}
		data, err := resp.Marshal()
		require.NoError(t, err)

		got := &Response{}
		require.NoError(t, got.Unmarshal(data))
		assert.NotNil(t, got.Response)
		assert.Empty(t, got.Response)
	})

	t.Run("状态缺失取默认值", func(t *testing.T) {
		got := &Response{}
		require.NoError(t, got.Unmarshal(nil))
		assert.Nil(t, got.Code)
		assert.Equal(t, Status_OK, got.GetCode())
	})
}

func TestResponse_Unmarshal_UnknownStatus(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, 42)

	err := (&Response{}).Unmarshal(b)
	assert.ErrorIs(t, err, ErrInvalidMessage)
}
