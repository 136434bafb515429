package yamux

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createMuxerPair 在 net.Pipe 上创建一对 Muxer（服务端和客户端）
func createMuxerPair(t *testing.T) (*Muxer, *Muxer) {
	t.Helper()
	serverConn, clientConn := net.Pipe()

	cfg := DefaultConfig()
	cfg.EnableKeepAlive = false

	server, err := New(serverConn, true, cfg)
	require.NoError(t, err)
	client, err := New(clientConn, false, cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
		_ = server.Close()
	})
	return server, client
}

func TestMuxer_OpenAccept(t *testing.T) {
	server, client := createMuxerPair(t)

	accepted := make(chan *Stream, 1)
	go func() {
		s, err := server.AcceptStream()
		if err == nil {
			accepted <- s
		}
	}()

	cs, err := client.OpenStream(context.Background())
	require.NoError(t, err)

	_, err = cs.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, cs.CloseWrite())

	var ss *Stream
	select {
	case ss = <-accepted:
	case <-time.After(5 * time.Second):
		t.Fatal("accept 超时")
	}

	data, err := io.ReadAll(ss)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	// 半关闭后对端仍可写回
	_, err = ss.Write([]byte("world"))
	require.NoError(t, err)
	require.NoError(t, ss.Close())

	reply, err := io.ReadAll(cs)
	require.NoError(t, err)
	assert.Equal(t, "world", string(reply))
	require.NoError(t, cs.Close())
	assert.True(t, cs.IsClosed())
}

func TestMuxer_TracksStreams(t *testing.T) {
	server, client := createMuxerPair(t)
	go func() {
		for {
			if _, err := server.AcceptStream(); err != nil {
				return
			}
		}
	}()

	s1, err := client.OpenStream(context.Background())
	require.NoError(t, err)
	s2, err := client.OpenStream(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, client.NumStreams())
	assert.NotEqual(t, s1.ID(), s2.ID())

	require.NoError(t, s1.Reset())
	assert.Equal(t, 1, client.NumStreams())
	assert.False(t, client.IsServer())
	assert.True(t, server.IsServer())
}

func TestMuxer_Close(t *testing.T) {
	_, client := createMuxerPair(t)

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
	assert.True(t, client.IsClosed())

	_, err := client.OpenStream(context.Background())
	assert.ErrorIs(t, err, ErrMuxerClosed)

	select {
	case <-client.CloseChan():
	case <-time.After(time.Second):
		t.Fatal("CloseChan 未关闭")
	}
}

func TestMuxer_OpenStreamCanceled(t *testing.T) {
	_, client := createMuxerPair(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.OpenStream(ctx)
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestNew_NilConn(t *testing.T) {
	_, err := New(nil, false, DefaultConfig())
	assert.Error(t, err)
}

func TestConfig_ToYamux(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AcceptBacklog = 16
	cfg.KeepAliveInterval = time.Minute

	y := cfg.toYamux()
	assert.Equal(t, 16, y.AcceptBacklog)
	assert.Equal(t, time.Minute, y.KeepAliveInterval)
	assert.Equal(t, uint32(256*1024), y.MaxStreamWindowSize)
	assert.Equal(t, io.Discard, y.LogOutput)
}
