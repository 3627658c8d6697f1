package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// slidingWindow 按客户端记录窗口内的请求时间
type slidingWindow struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	clients map[string][]time.Time
}

func newSlidingWindow(limit int, window time.Duration) *slidingWindow {
	return &slidingWindow{
		limit:   limit,
		window:  window,
		clients: make(map[string][]time.Time),
	}
}

// allow 判断 key 在 now 时刻是否还能再发一次请求，允许时记录本次请求
func (w *slidingWindow) allow(key string, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	ts := prune(w.clients[key], now.Add(-w.window))
	if len(ts) >= w.limit {
		w.clients[key] = ts
		return false
	}
	w.clients[key] = append(ts, now)
	return true
}

// sweep 清理已无窗口内记录的客户端
func (w *slidingWindow) sweep(now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := now.Add(-w.window)
	for key, ts := range w.clients {
		ts = prune(ts, cutoff)
		if len(ts) == 0 {
			delete(w.clients, key)
		} else {
			w.clients[key] = ts
		}
	}
}

// run 每隔 every 清理一次，ctx 结束时返回
func (w *slidingWindow) run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			w.sweep(now)
		}
	}
}

func prune(ts []time.Time, cutoff time.Time) []time.Time {
	kept := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// isWrite 只统计会修改账本的请求
func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// WriteRateLimit 写请求限流中间件
// 每个客户端 IP 在 window 内最多 maxRequests 次写请求，超过则返回 429；
// maxRequests <= 0 时不限流；过期数据的清理在 ctx 结束时停止
func WriteRateLimit(ctx context.Context, maxRequests int, window time.Duration) gin.HandlerFunc {
	if maxRequests <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiter := newSlidingWindow(maxRequests, window)
	// 定期清理过期数据
	go limiter.run(ctx, window)

	return func(c *gin.Context) {
		if !isWrite(c.Request.Method) {
			c.Next()
			return
		}
		if !limiter.allow(c.ClientIP(), time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "写入过于频繁，请稍后再试",
			})
			return
		}
		c.Next()
	}
}
