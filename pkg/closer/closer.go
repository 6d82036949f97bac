// Package closer останавливает ресурсы приложения в порядке, обратном регистрации.
package closer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

const defaultForcedTimeout = 2 * time.Second

// Func — функция остановки ресурса.
type Func func(ctx context.Context) error

type resource struct {
	name  string
	close Func
}

// Closer хранит зарегистрированные ресурсы. Close выполняется один раз.
type Closer struct {
	mu            sync.Mutex
	resources     []resource
	once          sync.Once
	err           error
	forcedTimeout time.Duration
}

// NewCloser создаёт Closer. forcedTimeout ограничивает принудительную остановку ресурсов,
// не успевших закрыться до отмены контекста Close. Ноль означает 2 секунды.
func NewCloser(forcedTimeout time.Duration) *Closer {
	if forcedTimeout <= 0 {
		forcedTimeout = defaultForcedTimeout
	}

	return &Closer{forcedTimeout: forcedTimeout}
}

// Add регистрирует ресурс. name попадает в текст ошибки остановки.
func (c *Closer) Add(name string, f Func) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resources = append(c.resources, resource{name: name, close: f})
}

// Close останавливает ресурсы по одному, начиная с последнего добавленного.
// Если ctx отменён раньше, оставшиеся ресурсы (включая прерванный) останавливаются
// параллельно с отдельным таймаутом forcedTimeout.
func (c *Closer) Close(ctx context.Context) error {
	c.once.Do(func() {
		c.mu.Lock()
		resources := append([]resource(nil), c.resources...)
		c.mu.Unlock()

		var errs []error
		for i := len(resources) - 1; i >= 0; i-- {
			finished, err := closeOne(ctx, resources[i])
			if !finished {
				forced := c.forceClose(resources[:i+1])
				errs = append(errs, fmt.Errorf("shutdown interrupted, %d of %d resources forced", i+1, len(resources)))
				errs = append(errs, forced...)
				break
			}
			if err != nil {
				errs = append(errs, err)
			}
		}

		c.err = errors.Join(errs...)
	})

	return c.err
}

// closeOne ждёт остановки ресурса или отмены ctx. finished == false, если ctx отменён первым.
func closeOne(ctx context.Context, r resource) (finished bool, err error) {
	done := make(chan error, 1)
	go func() {
		done <- r.close(ctx)
	}()

	select {
	case cerr := <-done:
		if cerr != nil {
			return true, fmt.Errorf("%s: %w", r.name, cerr)
		}
		return true, nil
	case <-ctx.Done():
		return false, nil
	}
}

func (c *Closer) forceClose(resources []resource) []error {
	ctx, cancel := context.WithTimeout(context.Background(), c.forcedTimeout)
	defer cancel()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, r := range resources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.close(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s (forced): %w", r.name, err))
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return errs
}
