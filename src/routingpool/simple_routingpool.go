// 实现了一个最简单的协程池，由调用方指定worker函数
// worker需要自行监听ctx，ctx结束后退出，Stop等待所有worker退出
// NOTE: 注意当前实现没有处理worker崩溃、需要重启等问题
package routingpool

import (
	"context"
	"errors"
	"sync"
)

var ErrInvalidSize = errors.New("routing pool size must be positive")

type SimpleRoutingPool struct {
	wg sync.WaitGroup

	ctx      context.Context
	size     uint32
	workerFn func(context.Context)
}

func NewSimpleRoutingPool(ctx context.Context, size uint32, workerFn func(context.Context)) RoutingPool {
	return &SimpleRoutingPool{
		ctx:      ctx,
		size:     size,
		workerFn: workerFn,
	}
}

func (s *SimpleRoutingPool) Start() error {
	if s.size == 0 {
		return ErrInvalidSize
	}
	var i uint32
	for ; i != s.size; i++ {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.workerFn(s.ctx)
		}()
	}
	return nil
}

func (s *SimpleRoutingPool) Stop() {
	s.wg.Wait()
}
