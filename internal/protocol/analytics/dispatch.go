package analytics

import (
	"fmt"

	bandwidthif "github.com/dep2p/go-analytics/pkg/interfaces/bandwidth"
	pb "github.com/dep2p/go-analytics/pkg/lib/proto/analytics"
)

// ============================================================================
//                              查询分发
// ============================================================================

// Dispatcher 将查询类型映射到统计解析
//
// 统计源在构造时注入，Dispatcher 本身不持有可变状态，可并发使用。
type Dispatcher struct {
	stats bandwidthif.StatsSource
}

// NewDispatcher 创建分发器
func NewDispatcher(stats bandwidthif.StatsSource) *Dispatcher {
	return &Dispatcher{stats: stats}
}

// Dispatch 解析整个请求
//
// 请求为空或包含任意 ALL 查询时，整个请求按 ALL 展开，其余查询被忽略，
// 结果固定为 [PEER 全部, PROTO 全部, TRANSPORT 全部, 全局] 四项。
// 否则逐个解析查询，结果与查询按位置对齐；任一查询失败即返回该错误。
func (d *Dispatcher) Dispatch(req *pb.Request) ([]pb.Result, error) {
	if pb.IsAll(req) {
		return d.expandAll()
	}

	queries := req.GetQueries()
	results := make([]pb.Result, 0, len(queries))
	for _, q := range queries {
		r, err := d.Resolve(q.GetType(), q.Query)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

// expandAll 按枚举声明顺序展开 ALL，最后追加全局统计
func (d *Dispatcher) expandAll() ([]pb.Result, error) {
	results := make([]pb.Result, 0, 4)
	for _, t := range []pb.Type{pb.Type_PEER, pb.Type_PROTO, pb.Type_TRANSPORT} {
		r, err := d.Resolve(t, nil)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}

	global, err := d.Global()
	if err != nil {
		return nil, err
	}
	return append(results, pb.SingleResult(global)), nil
}

// Resolve 解析单个查询
//
// filter 为 nil 或空字符串时返回该类型所有条目的映射；
// 否则返回单个视图，条目不存在时返回 ErrNotFound。
// ALL 不是可解析的类型，由 Dispatch 展开。
func (d *Dispatcher) Resolve(t pb.Type, filter *string) (pb.Result, error) {
	switch t {
	case pb.Type_PEER:
		return resolve(t, filter, d.stats.ForPeer, d.stats.Peers)
	case pb.Type_PROTO:
		return resolve(t, filter, d.stats.ForProtocol, d.publicProtocols)
	case pb.Type_TRANSPORT:
		return resolve(t, filter, d.stats.ForTransport, d.stats.Transports)
	case pb.Type_ALL:
		return pb.Result{}, fmt.Errorf("%w: ALL must be expanded by Dispatch", ErrInvalidQuery)
	default:
		return pb.Result{}, fmt.Errorf("%w: unknown type %d", ErrInvalidQuery, int32(t))
	}
}

// Global 返回进程级统计视图
func (d *Dispatcher) Global() (*pb.StatsView, error) {
	return Normalize(d.stats.Global())
}

// publicProtocols 返回可枚举的协议 ID，内部键只能按 ID 精确查询
func (d *Dispatcher) publicProtocols() []string {
	keys := d.stats.Protocols()
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		if k.Internal {
			continue
		}
		ids = append(ids, k.ID)
	}
	return ids
}

type lookupFunc func(id string) (*bandwidthif.Stats, bool)

func resolve(t pb.Type, filter *string, lookup lookupFunc, list func() []string) (pb.Result, error) {
	if filter != nil && *filter != "" {
		stats, ok := lookup(*filter)
		if !ok {
			return pb.Result{}, fmt.Errorf("%w: %s %q", ErrNotFound, t, *filter)
		}
		view, err := Normalize(stats)
		if err != nil {
			return pb.Result{}, err
		}
		return pb.SingleResult(view), nil
	}

	ids := list()
	views := make(map[string]*pb.StatsView, len(ids))
	for _, id := range ids {
		stats, ok := lookup(id)
		if !ok {
			// 枚举之后被清理的条目
			continue
		}
		view, err := Normalize(stats)
		if err != nil {
			return pb.Result{}, err
		}
		views[id] = view
	}
	return pb.MapResult(views), nil
}
