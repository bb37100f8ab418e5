package services

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// FetchLimiter applies two-tier rate limiting to outbound trend-source
// fetches: a global cap protecting this process and a per-host cap so one
// refresh cannot hammer a single upstream.
type FetchLimiter struct {
	global  *rate.Limiter
	perHost *sync.Map // map[string]*rate.Limiter
	hostQPS float64
}

// NewFetchLimiter creates a limiter with the given global and per-host
// requests-per-second budgets.
func NewFetchLimiter(globalQPS, hostQPS float64) *FetchLimiter {
	return &FetchLimiter{
		global:  rate.NewLimiter(rate.Limit(globalQPS), int(globalQPS*2)),
		perHost: &sync.Map{},
		hostQPS: hostQPS,
	}
}

// Wait blocks until both tiers admit one request to host, or ctx is done.
func (l *FetchLimiter) Wait(ctx context.Context, host string) error {
	if err := l.global.Wait(ctx); err != nil {
		return err
	}
	return l.hostLimiter(host).Wait(ctx)
}

func (l *FetchLimiter) hostLimiter(host string) *rate.Limiter {
	if limiter, ok := l.perHost.Load(host); ok {
		return limiter.(*rate.Limiter)
	}

	limiter := rate.NewLimiter(rate.Limit(l.hostQPS), 1)
	actual, _ := l.perHost.LoadOrStore(host, limiter)
	return actual.(*rate.Limiter)
}
