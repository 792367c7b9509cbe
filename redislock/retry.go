package redislock

import "time"

// RetryStrategy 加锁失败之后的重试策略
type RetryStrategy interface {
	// Next 返回下一次重试的间隔，第二个返回值为 false 代表不要再重试了
	Next() (time.Duration, bool)
}

// FixedIntervalRetryStrategy 固定间隔，最多重试 MaxCnt 次
type FixedIntervalRetryStrategy struct {
	Interval time.Duration
	MaxCnt   int
	cnt      int
}

func (f *FixedIntervalRetryStrategy) Next() (time.Duration, bool) {
	if f.cnt >= f.MaxCnt {
		return 0, false
	}
	f.cnt++
	return f.Interval, true
}
