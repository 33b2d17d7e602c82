package sync

import "time"

const (
	backoffBase = time.Second
	backoffCap  = 10 * time.Second
)

// backoffDelay returns the wait before reconnect attempt n (1-based):
// 1s, 2s, 4s, 8s, 10s, 10s, ... capped at backoffCap.
func backoffDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 4 {
		return backoffCap
	}
	d := backoffBase << (attempt - 1)
	if d > backoffCap {
		return backoffCap
	}
	return d
}
