package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/repository/static"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCartUC(repo CartRepository) *CartUseCase {
	return NewCartUC(
		repo,
		static.NewProductRepo(),
		&cfg.CartCfg{IdleEvict: time.Minute, JanitorPeriod: time.Hour},
		logger.NewNopLogger(),
	)
}

func TestCartUseCase_AddItemTwiceIncrementsQuantity(t *testing.T) {
	repo := newMemCartRepo()
	uc := newTestCartUC(repo)
	ctx := context.Background()

	_, err := uc.AddItem(ctx, "s1", "prod_lumen_one")
	require.NoError(t, err)
	cart, err := uc.AddItem(ctx, "s1", "prod_lumen_one")
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, 2, cart.ItemCount())
	assert.True(t, cart.Total().Equal(decimal.RequireFromString("498.00")))

	stored, ok := repo.stored("s1")
	require.True(t, ok)
	assert.Equal(t, 2, stored.Items[0].Quantity)
}

func TestCartUseCase_AddUnknownProduct(t *testing.T) {
	uc := newTestCartUC(newMemCartRepo())

	_, err := uc.AddItem(context.Background(), "s1", "prod_missing")
	require.ErrorIs(t, err, e.ErrProductNotFound)
	assert.True(t, uc.Get(context.Background(), "s1").IsEmpty())
}

func TestCartUseCase_AddItemRejectsOtherCurrency(t *testing.T) {
	repo := newMemCartRepo()
	uc := NewCartUC(
		repo,
		static.NewProductRepoFrom([]domain.Product{
			{ID: "prod_eu", Name: "EU lamp", Price: decimal.RequireFromString("10.00"), Currency: "EUR", Category: domain.CategoryMain},
			{ID: "prod_us", Name: "US lamp", Price: decimal.RequireFromString("12.00"), Currency: "USD", Category: domain.CategoryMain},
			{ID: "prod_eu_lower", Name: "EU cable", Price: decimal.RequireFromString("3.00"), Currency: "eur", Category: domain.CategoryAccessory},
		}),
		&cfg.CartCfg{IdleEvict: time.Minute, JanitorPeriod: time.Hour},
		logger.NewNopLogger(),
	)
	ctx := context.Background()

	_, err := uc.AddItem(ctx, "s1", "prod_eu")
	require.NoError(t, err)

	cart, err := uc.AddItem(ctx, "s1", "prod_us")
	require.ErrorIs(t, err, e.ErrCurrencyMismatch)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "prod_eu", cart.Items[0].ID)

	stored, ok := repo.stored("s1")
	require.True(t, ok)
	assert.Len(t, stored.Items, 1)

	cart, err = uc.AddItem(ctx, "s1", "prod_eu_lower")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
	assert.Equal(t, "EUR", cart.Currency("USD"))
}

func TestCartUseCase_SessionsAreIsolated(t *testing.T) {
	uc := newTestCartUC(newMemCartRepo())
	ctx := context.Background()

	_, err := uc.AddItem(ctx, "a", "prod_lumen_mini")
	require.NoError(t, err)

	assert.Equal(t, 1, uc.Get(ctx, "a").ItemCount())
	assert.True(t, uc.Get(ctx, "b").IsEmpty())
}

func TestCartUseCase_UpdateQuantityZeroRemoves(t *testing.T) {
	uc := newTestCartUC(newMemCartRepo())
	ctx := context.Background()

	_, err := uc.AddItem(ctx, "s1", "prod_wall_mount")
	require.NoError(t, err)

	cart := uc.UpdateQuantity(ctx, "s1", "prod_wall_mount", 25)
	assert.Equal(t, 25, cart.ItemCount())

	cart = uc.UpdateQuantity(ctx, "s1", "prod_wall_mount", 0)
	assert.True(t, cart.IsEmpty())
}

func TestCartUseCase_ClearDropsShippingMethod(t *testing.T) {
	uc := newTestCartUC(newMemCartRepo())
	ctx := context.Background()

	_, err := uc.AddItem(ctx, "s1", "prod_lumen_pro")
	require.NoError(t, err)
	cart := uc.SetShippingMethod(ctx, "s1", &domain.ShippingMethod{ID: 8, Name: "Standard", Price: "9.95", Currency: "EUR"})
	assert.True(t, cart.TotalWithShipping().Equal(decimal.RequireFromString("408.95")))

	cart = uc.Clear(ctx, "s1")
	assert.True(t, cart.IsEmpty())
	assert.Nil(t, cart.SelectedShippingMethod)
	assert.True(t, cart.TotalWithShipping().IsZero())
}

func TestCartUseCase_LoadsPersistedCartOnFirstAccess(t *testing.T) {
	repo := newMemCartRepo()
	persisted := domain.NewCart().AddItem(domain.ProductRef{
		ID: "prod_travel_case", Name: "Travel Case", Price: decimal.RequireFromString("39.00"), Currency: "EUR", Weight: 0.5,
	})
	require.NoError(t, repo.Save(context.Background(), "s1", persisted))

	uc := newTestCartUC(repo)
	cart := uc.Get(context.Background(), "s1")

	require.Len(t, cart.Items, 1)
	assert.Equal(t, "prod_travel_case", cart.Items[0].ID)
}

func TestCartUseCase_LoadFailureStartsEmpty(t *testing.T) {
	repo := newMemCartRepo()
	repo.loadErr = errors.New("corrupt record")
	uc := newTestCartUC(repo)
	ctx := context.Background()

	assert.True(t, uc.Get(ctx, "s1").IsEmpty())

	cart, err := uc.AddItem(ctx, "s1", "prod_lumen_one")
	require.NoError(t, err)
	assert.Equal(t, 1, cart.ItemCount())
}

func TestCartUseCase_SaveFailureDoesNotFailMutation(t *testing.T) {
	repo := newMemCartRepo()
	repo.saveErr = errors.New("quota exceeded")
	uc := newTestCartUC(repo)
	ctx := context.Background()

	cart, err := uc.AddItem(ctx, "s1", "prod_lumen_one")
	require.NoError(t, err)
	assert.Equal(t, 1, cart.ItemCount())
	assert.Equal(t, 1, uc.Get(ctx, "s1").ItemCount())
	assert.Equal(t, 1, repo.saves)
}

func TestCartUseCase_SubscribeReceivesLatestSnapshot(t *testing.T) {
	uc := newTestCartUC(newMemCartRepo())
	ctx := context.Background()

	updates, unsubscribe := uc.Subscribe(ctx, "s1")
	defer unsubscribe()

	initial := <-updates
	assert.True(t, initial.IsEmpty())

	_, err := uc.AddItem(ctx, "s1", "prod_lumen_one")
	require.NoError(t, err)
	_, err = uc.AddItem(ctx, "s1", "prod_lumen_mini")
	require.NoError(t, err)

	// непрочитанный снимок заменяется более новым
	latest := <-updates
	assert.Equal(t, 2, latest.ItemCount())

	select {
	case extra := <-updates:
		t.Fatalf("unexpected extra snapshot: %+v", extra)
	default:
	}
}

func TestCartUseCase_UnsubscribeClosesChannel(t *testing.T) {
	uc := newTestCartUC(newMemCartRepo())

	updates, unsubscribe := uc.Subscribe(context.Background(), "s1")
	<-updates
	unsubscribe()
	unsubscribe()

	_, ok := <-updates
	assert.False(t, ok)
}

func TestCartUseCase_EvictIdleReloadsFromRepository(t *testing.T) {
	repo := newMemCartRepo()
	uc := newTestCartUC(repo)
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return now }

	_, err := uc.AddItem(ctx, "idle", "prod_lumen_one")
	require.NoError(t, err)
	_, unsubscribe := uc.Subscribe(ctx, "watched")
	defer unsubscribe()

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, uc.evictIdle())

	uc.mu.Lock()
	_, idleKept := uc.sessions["idle"]
	_, watchedKept := uc.sessions["watched"]
	uc.mu.Unlock()
	assert.False(t, idleKept)
	assert.True(t, watchedKept)

	assert.Equal(t, 1, uc.Get(ctx, "idle").ItemCount())
}
