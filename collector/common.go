package collector

import (
	"context"
	"time"
)

func contextWithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, sampleDeadline)
}

func nowUnix() int64 {
	return time.Now().Unix()
}
