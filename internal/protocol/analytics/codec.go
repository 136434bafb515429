package analytics

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/multiformats/go-varint"

	pb "github.com/dep2p/go-analytics/pkg/lib/proto/analytics"
)

// ============================================================================
//                              帧编解码
// ============================================================================

// Codec 帧编解码器
//
// 帧格式: uvarint(len) || payload，payload 为 protobuf 编码的消息。
// 读取时逐字节解析长度前缀，不会越过当前帧读取底层流。
type Codec struct {
	maxSize int
}

// NewCodec 创建编解码器，maxSize 非正时使用默认值
func NewCodec(maxSize int) *Codec {
	if maxSize <= 0 {
		maxSize = DefaultConfig().MaxMessageSize
	}
	return &Codec{maxSize: maxSize}
}

// MaxMessageSize 返回单帧最大字节数
func (c *Codec) MaxMessageSize() int {
	return c.maxSize
}

// WriteRequest 将请求写入流
func (c *Codec) WriteRequest(w io.Writer, req *pb.Request) error {
	data, err := req.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.writeFrame(w, data)
}

// WriteResponse 将响应写入流
func (c *Codec) WriteResponse(w io.Writer, resp *pb.Response) error {
	data, err := resp.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	return c.writeFrame(w, data)
}

// ReadRequest 从流中读取一个请求
//
// 在第一个字节之前遇到 EOF 时返回 io.EOF，其他错误均包装 ErrDecode。
func (c *Codec) ReadRequest(r io.Reader) (*pb.Request, error) {
	data, err := c.readFrame(r)
	if err != nil {
		return nil, err
	}
	req := &pb.Request{}
	if err := req.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return req, nil
}

// ReadResponse 从流中读取一个响应
func (c *Codec) ReadResponse(r io.Reader) (*pb.Response, error) {
	data, err := c.readFrame(r)
	if err != nil {
		return nil, err
	}
	resp := &pb.Response{}
	if err := resp.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return resp, nil
}

// writeFrame 以一次 Write 写出长度前缀和数据
func (c *Codec) writeFrame(w io.Writer, data []byte) error {
	if len(data) > c.maxSize {
		return fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, len(data), c.maxSize)
	}

	frame := make([]byte, 0, varint.UvarintSize(uint64(len(data)))+len(data))
	frame = append(frame, varint.ToUvarint(uint64(len(data)))...)
	frame = append(frame, data...)

	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

// readFrame 读取一个完整帧
func (c *Codec) readFrame(r io.Reader) ([]byte, error) {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = &byteReader{r: r}
	}

	length, err := varint.ReadUvarint(br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: length prefix: %w", ErrDecode, err)
	}
	if length > uint64(c.maxSize) {
		return nil, fmt.Errorf("%w: %w: %d > %d", ErrDecode, ErrFrameTooLarge, length, c.maxSize)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("%w: payload: %w", ErrDecode, err)
	}
	return data, nil
}

// byteReader 逐字节读取，避免越过帧边界
type byteReader struct {
	r   io.Reader
	buf [1]byte
}

func (b *byteReader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(b.r, b.buf[:]); err != nil {
		return 0, err
	}
	return b.buf[0], nil
}

// ============================================================================
//                              顺序读取
// ============================================================================

// FrameReader 带缓冲的帧读取器
//
// 用于读取对端写完即半关闭的流：响应方读取唯一的请求，请求方读取唯一的响应。
// 内部使用 bufio.Reader，每次只解码一个帧；创建后不应再直接读取底层流。
type FrameReader struct {
	codec *Codec
	r     *bufio.Reader
}

// NewFrameReader 创建顺序读取器
func (c *Codec) NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{codec: c, r: bufio.NewReader(r)}
}

// ReadRequest 读取下一个请求
func (f *FrameReader) ReadRequest() (*pb.Request, error) {
	return f.codec.ReadRequest(f.r)
}

// ReadResponse 读取下一个响应
func (f *FrameReader) ReadResponse() (*pb.Response, error) {
	return f.codec.ReadResponse(f.r)
}
