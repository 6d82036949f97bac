// Package jitter считает паузы между повторами внешних вызовов.
// Случайная добавка разводит повторы разных запросов во времени.
package jitter

import (
	"context"
	"math/rand/v2"
	"time"
)

// DefaultJitter — добавка до 50% к базовой паузе.
const DefaultJitter = 0.5

// Duration возвращает d плюс случайную добавку в диапазоне [0, d*jitterFactor).
func Duration(d time.Duration, jitterFactor float64) time.Duration {
	if d <= 0 || jitterFactor <= 0 {
		return d
	}

	return d + time.Duration(rand.Float64()*jitterFactor*float64(d))
}

// ExponentialBackoff удваивает base на каждую попытку (attempt с нуля), не выходя за max,
// и добавляет джиттер.
func ExponentialBackoff(base, max time.Duration, attempt int, jitterFactor float64) time.Duration {
	backoff := base
	for i := 0; i < attempt && backoff < max; i++ {
		backoff *= 2
	}
	if backoff > max {
		backoff = max
	}

	return Duration(backoff, jitterFactor)
}

// Sleep ждёт d или отмены ctx. Возвращает ctx.Err(), если ожидание прервано.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
