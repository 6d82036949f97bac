package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

const defaultSaveTimeout = 3 * time.Second

// cartSession — корзина одной сессии. mu сериализует изменения: один писатель на сессию.
type cartSession struct {
	mu      sync.Mutex
	cart    domain.Cart
	loaded  bool
	evicted bool
	subs    map[chan domain.Cart]struct{}

	// lastAccess и subCount защищены CartUseCase.mu
	lastAccess time.Time
	subCount   int
}

// CartUseCase — хранилище корзин в памяти с зеркалированием в Redis.
// Каждое изменение выполняется одним шагом редьюсера над неизменяемым снимком domain.Cart.
type CartUseCase struct {
	repo        CartRepository
	catalog     CatalogRepository
	cfg         *cfg.CartCfg
	logger      logger.Logger
	saveTimeout time.Duration
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*cartSession
}

func NewCartUC(repo CartRepository, catalog CatalogRepository, cfg *cfg.CartCfg, logger logger.Logger) *CartUseCase {
	return &CartUseCase{
		repo:        repo,
		catalog:     catalog,
		cfg:         cfg,
		logger:      logger,
		saveTimeout: defaultSaveTimeout,
		now:         time.Now,
		sessions:    make(map[string]*cartSession),
	}
}

// Get возвращает текущий снимок корзины. При первом обращении корзина читается из Redis.
func (c *CartUseCase) Get(ctx context.Context, sessionID string) domain.Cart {
	s := c.acquire(ctx, sessionID)
	defer s.mu.Unlock()

	return s.cart
}

// AddItem добавляет товар каталога в корзину. Позиция строится из данных каталога, а не клиента.
// Товар в валюте, отличной от валюты корзины, отклоняется с ErrCurrencyMismatch.
func (c *CartUseCase) AddItem(ctx context.Context, sessionID string, productID string) (domain.Cart, error) {
	const op = "CartUseCase.AddItem"

	p, ok := c.catalog.GetProduct(productID)
	if !ok {
		return domain.Cart{}, e.Wrap(op, e.ErrProductNotFound)
	}

	ref := p.ProductRef()
	cart, err := c.tryUpdate(ctx, sessionID, func(cart domain.Cart) (domain.Cart, error) {
		if !cart.AcceptsCurrency(ref.Currency) {
			return cart, e.ErrCurrencyMismatch
		}
		return cart.AddItem(ref), nil
	})
	if err != nil {
		return cart, e.Wrap(op, err)
	}

	return cart, nil
}

func (c *CartUseCase) RemoveItem(ctx context.Context, sessionID string, productID string) domain.Cart {
	return c.update(ctx, sessionID, func(cart domain.Cart) domain.Cart {
		return cart.RemoveItem(productID)
	})
}

// UpdateQuantity: qty <= 0 удаляет позицию. Верхняя граница не проверяется.
func (c *CartUseCase) UpdateQuantity(ctx context.Context, sessionID string, productID string, qty int) domain.Cart {
	return c.update(ctx, sessionID, func(cart domain.Cart) domain.Cart {
		return cart.UpdateQuantity(productID, qty)
	})
}

// Clear очищает позиции и выбранную доставку одним шагом.
func (c *CartUseCase) Clear(ctx context.Context, sessionID string) domain.Cart {
	return c.update(ctx, sessionID, func(cart domain.Cart) domain.Cart {
		return cart.Clear()
	})
}

func (c *CartUseCase) SetShippingMethod(ctx context.Context, sessionID string, method *domain.ShippingMethod) domain.Cart {
	return c.update(ctx, sessionID, func(cart domain.Cart) domain.Cart {
		return cart.SetShippingMethod(method)
	})
}

// Subscribe возвращает канал снимков корзины и функцию отписки.
// В канал сразу кладётся текущий снимок. Медленный подписчик получает только последний снимок.
// Сессия с подписчиками не вытесняется из памяти.
func (c *CartUseCase) Subscribe(ctx context.Context, sessionID string) (<-chan domain.Cart, func()) {
	ch := make(chan domain.Cart, 1)

	s := c.acquire(ctx, sessionID)
	if s.subs == nil {
		s.subs = make(map[chan domain.Cart]struct{})
	}
	s.subs[ch] = struct{}{}
	ch <- s.cart
	s.mu.Unlock()

	c.mu.Lock()
	s.subCount++
	c.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, ch)
			close(ch)
			s.mu.Unlock()

			c.mu.Lock()
			s.subCount--
			s.lastAccess = c.now()
			c.mu.Unlock()
		})
	}

	return ch, unsubscribe
}

// Run периодически вытесняет из памяти давно не используемые корзины. Блокируется до отмены ctx.
func (c *CartUseCase) Run(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.JanitorPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.evictIdle(); n > 0 {
				c.logger.Debugf("Evicted %d idle cart sessions", n)
			}
		}
	}
}

// evictIdle удаляет сессии без подписчиков, к которым не обращались дольше IdleEvict.
// Сессия, занятая в данный момент, пропускается до следующего прохода.
func (c *CartUseCase) evictIdle() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	deadline := c.now().Add(-c.cfg.IdleEvict)
	evicted := 0
	for id, s := range c.sessions {
		if s.subCount > 0 || s.lastAccess.After(deadline) {
			continue
		}
		if !s.mu.TryLock() {
			continue
		}
		s.evicted = true
		s.mu.Unlock()

		delete(c.sessions, id)
		evicted++
	}

	return evicted
}

// update применяет fn к текущему снимку под блокировкой сессии, сохраняет результат и рассылает подписчикам.
func (c *CartUseCase) update(ctx context.Context, sessionID string, fn func(domain.Cart) domain.Cart) domain.Cart {
	cart, _ := c.tryUpdate(ctx, sessionID, func(cart domain.Cart) (domain.Cart, error) {
		return fn(cart), nil
	})

	return cart
}

// tryUpdate — update, в котором fn может отказать. При ошибке снимок не меняется и не сохраняется.
func (c *CartUseCase) tryUpdate(ctx context.Context, sessionID string, fn func(domain.Cart) (domain.Cart, error)) (domain.Cart, error) {
	s := c.acquire(ctx, sessionID)
	defer s.mu.Unlock()

	next, err := fn(s.cart)
	if err != nil {
		return s.cart, err
	}

	s.cart = next
	c.save(ctx, sessionID, s.cart)
	s.publish()

	return s.cart, nil
}

// acquire возвращает загруженную сессию с захваченной блокировкой. Вызывающий обязан вызвать s.mu.Unlock().
func (c *CartUseCase) acquire(ctx context.Context, sessionID string) *cartSession {
	for {
		c.mu.Lock()
		s, ok := c.sessions[sessionID]
		if !ok {
			s = &cartSession{cart: domain.NewCart()}
			c.sessions[sessionID] = s
		}
		s.lastAccess = c.now()
		c.mu.Unlock()

		s.mu.Lock()
		if s.evicted {
			s.mu.Unlock()
			continue
		}
		if !s.loaded {
			s.cart = c.load(ctx, sessionID)
			s.loaded = true
		}

		return s
	}
}

// load читает сохранённую корзину. Любая ошибка чтения даёт пустую корзину.
func (c *CartUseCase) load(ctx context.Context, sessionID string) domain.Cart {
	const op = "CartUseCase.load"

	cart, err := c.repo.Load(ctx, sessionID)
	if err != nil {
		c.logger.Warnf("Failed to load cart, starting empty. session: %s, error: %v", sessionID, e.Wrap(op, err))
		return domain.NewCart()
	}
	if cart == nil {
		return domain.NewCart()
	}

	return *cart
}

// save пишет снимок в Redis. Ошибка записи только логируется.
func (c *CartUseCase) save(ctx context.Context, sessionID string, cart domain.Cart) {
	const op = "CartUseCase.save"

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.saveTimeout)
	defer cancel()

	if err := c.repo.Save(saveCtx, sessionID, cart); err != nil {
		c.logger.Warnf("Failed to persist cart. session: %s, error: %v", sessionID, e.Wrap(op, err))
	}
}

// publish отправляет снимок подписчикам, заменяя непрочитанный предыдущий. Вызывается под s.mu.
func (s *cartSession) publish() {
	for ch := range s.subs {
		select {
		case ch <- s.cart:
			continue
		default:
		}

		select {
		case <-ch:
		default:
		}
		ch <- s.cart
	}
}
