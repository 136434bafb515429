package yamux

import (
	"sync"
	"time"

	"github.com/hashicorp/yamux"
)

// Stream 封装 yamux.Stream
type Stream struct {
	stream *yamux.Stream
	id     uint32

	writeClosed sync.Once
	closeOnce   sync.Once
	closed      chan struct{}
	onClose     func(id uint32)
}

func newStream(s *yamux.Stream, onClose func(uint32)) *Stream {
	return &Stream{
		stream:  s,
		id:      s.StreamID(),
		closed:  make(chan struct{}),
		onClose: onClose,
	}
}

// Read 从流中读取数据
func (s *Stream) Read(p []byte) (int, error) {
	return s.stream.Read(p)
}

// Write 向流写入数据
func (s *Stream) Write(p []byte) (int, error) {
	return s.stream.Write(p)
}

// ID 返回流 ID
func (s *Stream) ID() uint32 {
	return s.id
}

// CloseWrite 关闭写端
//
// yamux 的 Close 发送 FIN 后仍可读取，直到对端也关闭，
// 因此它本身就是半关闭。
func (s *Stream) CloseWrite() error {
	var err error
	s.writeClosed.Do(func() {
		err = s.stream.Close()
	})
	return err
}

// CloseRead 关闭读端
//
// yamux 不支持读端半关闭，这里通过过期的读截止时间阻止后续读取。
func (s *Stream) CloseRead() error {
	return s.stream.SetReadDeadline(time.Unix(1, 0))
}

// Close 关闭流
func (s *Stream) Close() error {
	err := s.CloseWrite()
	s.release()
	return err
}

// Reset 立即关闭流，挂起的读写返回错误
func (s *Stream) Reset() error {
	_ = s.stream.SetDeadline(time.Unix(1, 0))
	err := s.CloseWrite()
	s.release()
	return err
}

func (s *Stream) release() {
	s.closeOnce.Do(func() {
		close(s.closed)
		if s.onClose != nil {
			s.onClose(s.id)
		}
	})
}

// IsClosed 检查流是否已关闭
func (s *Stream) IsClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// SetDeadline 设置读写超时
func (s *Stream) SetDeadline(t time.Time) error {
	return s.stream.SetDeadline(t)
}

// SetReadDeadline 设置读超时
func (s *Stream) SetReadDeadline(t time.Time) error {
	return s.stream.SetReadDeadline(t)
}

// SetWriteDeadline 设置写超时
func (s *Stream) SetWriteDeadline(t time.Time) error {
	return s.stream.SetWriteDeadline(t)
}
