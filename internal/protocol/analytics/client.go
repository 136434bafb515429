package analytics

import (
	"context"
	"errors"
	"fmt"
	"io"

	pkgif "github.com/dep2p/go-analytics/pkg/interfaces"
	pb "github.com/dep2p/go-analytics/pkg/lib/proto/analytics"
	"github.com/dep2p/go-analytics/pkg/protocol"
)

// ============================================================================
//                              请求方客户端
// ============================================================================

// Client 分析协议请求方
//
// 每次调用打开一条新流，写出一个请求，读取一个响应后关闭。
// 非 OK 的状态作为数据返回，调用方需检查 Response.GetCode()。
type Client struct {
	opener     pkgif.StreamOpener
	remotePeer string
	codec      *Codec
	config     *Config
}

// NewClient 创建面向指定节点的客户端
func NewClient(opener pkgif.StreamOpener, remotePeer string, opts ...Option) (*Client, error) {
	if opener == nil {
		return nil, ErrNilHost
	}
	cfg := applyOptions(opts)
	return &Client{
		opener:     opener,
		remotePeer: remotePeer,
		codec:      NewCodec(cfg.MaxMessageSize),
		config:     cfg,
	}, nil
}

// RemotePeer 返回查询目标节点
func (c *Client) RemotePeer() string {
	return c.remotePeer
}

// QueryPeers 查询 Peer 统计，filter 为空时返回所有 Peer
func (c *Client) QueryPeers(ctx context.Context, filter string) (*pb.Response, error) {
	return c.querySingle(ctx, pb.Type_PEER, filter)
}

// QueryTransports 查询传输统计，filter 为空时返回所有传输
func (c *Client) QueryTransports(ctx context.Context, filter string) (*pb.Response, error) {
	return c.querySingle(ctx, pb.Type_TRANSPORT, filter)
}

// QueryProtocols 查询协议统计，filter 为空时返回所有公开协议
func (c *Client) QueryProtocols(ctx context.Context, filter string) (*pb.Response, error) {
	return c.querySingle(ctx, pb.Type_PROTO, filter)
}

// QueryAll 查询所有类别
//
// 成功时负载依次为 Peer 映射、协议映射、传输映射和全局视图。
func (c *Client) QueryAll(ctx context.Context) (*pb.Response, error) {
	return c.querySingle(ctx, pb.Type_ALL, "")
}

// QueryGlobal 查询全局统计
//
// 全局视图取自 ALL 展开的第四个结果。状态非 OK 时视图为 nil。
func (c *Client) QueryGlobal(ctx context.Context) (*pb.StatsView, pb.Status, error) {
	resp, err := c.QueryAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	if resp.GetCode() != pb.Status_OK {
		return nil, resp.GetCode(), nil
	}

	results, err := pb.DecodeResults(resp.GetResponse())
	if err != nil {
		return nil, resp.GetCode(), fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if len(results) != 4 {
		return nil, resp.GetCode(), fmt.Errorf("%w: expected 4 results, got %d", ErrTransport, len(results))
	}
	view, err := results[3].AsView()
	if err != nil {
		return nil, resp.GetCode(), fmt.Errorf("%w: %w", ErrTransport, err)
	}
	return view, resp.GetCode(), nil
}

func (c *Client) querySingle(ctx context.Context, t pb.Type, filter string) (*pb.Response, error) {
	return c.Query(ctx, &pb.Request{Queries: []*pb.Query{pb.NewQuery(t, filter)}})
}

// Query 发送任意请求并返回响应
func (c *Client) Query(ctx context.Context, req *pb.Request) (*pb.Response, error) {
	if c.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.RequestTimeout)
		defer cancel()
	}

	stream, err := c.opener.NewStream(ctx, c.remotePeer, string(protocol.Analytics))
	if err != nil {
		return nil, fmt.Errorf("%w: open stream: %w", ErrTransport, err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = stream.Reset()
	})
	defer stop()

	if err := c.codec.WriteRequest(stream, req); err != nil {
		_ = stream.Reset()
		if errors.Is(err, ErrFrameTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if err := stream.CloseWrite(); err != nil {
		_ = stream.Reset()
		return nil, fmt.Errorf("%w: close write: %w", ErrTransport, err)
	}

	resp, err := c.codec.NewFrameReader(stream).ReadResponse()
	if err != nil {
		_ = stream.Reset()
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrTransport, ctxErr)
		}
		return nil, fmt.Errorf("%w: read response: %w", ErrTransport, err)
	}

	_ = stream.Close()
	return resp, nil
}
