package carrier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/jitter"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"
)

const (
	maxResponseBytes = 4 << 20
	breakerFailures  = 5
	breakerTimeout   = 30 * time.Second
)

// Carrier — клиент API перевозчика. Любой отказ API закрывается локальным расчётом,
// поэтому GetShippingRates всегда возвращает непустой список.
type Carrier struct {
	httpClient *http.Client
	cfg        *cfg.CarrierCfg
	cache      usecase.ShippingMethodsCache
	breaker    *gobreaker.CircuitBreaker[[]byte] // только для списка способов
	logger     logger.Logger

	baseBackoff time.Duration
	maxBackoff  time.Duration
}

func NewCarrier(cfg *cfg.CarrierCfg, cache usecase.ShippingMethodsCache, logger logger.Logger) *Carrier {
	c := &Carrier{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		cfg:         cfg,
		cache:       cache,
		logger:      logger,
		baseBackoff: 200 * time.Millisecond,
		maxBackoff:  2 * time.Second,
	}

	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "carrier-api",
		Timeout: breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailures
		},
		// отмена запроса клиентом не говорит о здоровье API
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return c
}

// GetShippingRates возвращает способы доставки выбранного перевозчика с ценами для посылки.
func (c *Carrier) GetShippingRates(ctx context.Context, parcel domain.Parcel) []domain.ShippingMethod {
	if !c.cfg.Enabled() {
		return FallbackRates(parcel.ToCountry, parcel.WeightKg)
	}

	methods, err := c.listMethods(ctx)
	if err != nil {
		c.logger.Warnf("Carrier listing failed, using fallback rates: %v", err)
		return FallbackRates(parcel.ToCountry, parcel.WeightKg)
	}

	methods = filterByCarrier(methods, c.cfg.CarrierFilter)
	if len(methods) == 0 {
		c.logger.Debugf("No %q methods in carrier listing, using fallback rates", c.cfg.CarrierFilter)
		return FallbackRates(parcel.ToCountry, parcel.WeightKg)
	}

	return c.priceMethods(ctx, parcel, methods)
}

// listMethods читает список способов из кэша, при промахе запрашивает API с повторами.
func (c *Carrier) listMethods(ctx context.Context) ([]domain.ShippingMethod, error) {
	const op = "Carrier.listMethods"

	cached, err := c.cache.GetMethods(ctx)
	if err != nil {
		c.logger.Debugf("Shipping methods cache read failed: %v", e.Wrap(op, err))
	}
	if len(cached) > 0 {
		return cached, nil
	}

	attempts := c.cfg.MaxRetries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		methods, err := c.fetchMethods(ctx)
		if err == nil {
			if err := c.cache.SetMethods(ctx, methods); err != nil {
				c.logger.Warnf("Failed to cache shipping methods: %v", e.Wrap(op, err))
			}
			return methods, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) || attempt == attempts-1 {
			return nil, e.Wrap(op, err)
		}

		sleepTime := jitter.ExponentialBackoff(c.baseBackoff, c.maxBackoff, attempt, jitter.DefaultJitter)
		c.logger.Warnf("carrier listing failed, retrying in %v (attempt %d): %v", sleepTime, attempt+1, err)
		if err := jitter.Sleep(ctx, sleepTime); err != nil {
			return nil, e.Wrap(op, err)
		}
	}

	return nil, e.Wrap(op, e.ErrCarrierUnavailable)
}

// fetchMethods запрашивает список через circuit breaker. Цены запрашиваются мимо него:
// отказ цены одного способа закрывается локальным расчётом и не влияет на остальные запросы.
func (c *Carrier) fetchMethods(ctx context.Context) ([]domain.ShippingMethod, error) {
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.get(ctx, "/shipping_methods", nil)
	})
	if err != nil {
		return nil, err
	}

	var res shippingMethodsResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	methods := make([]domain.ShippingMethod, 0, len(res.ShippingMethods))
	for _, m := range res.ShippingMethods {
		methods = append(methods, m.toDomain())
	}

	return methods, nil
}

// priceMethods запрашивает цены параллельно, не более MaxConcurrent запросов одновременно.
// Порядок результата совпадает с порядком списка перевозчика.
func (c *Carrier) priceMethods(ctx context.Context, parcel domain.Parcel, methods []domain.ShippingMethod) []domain.ShippingMethod {
	priced := make([]domain.ShippingMethod, len(methods))

	g, gctx := errgroup.WithContext(ctx)
	if c.cfg.MaxConcurrent > 0 {
		g.SetLimit(c.cfg.MaxConcurrent)
	}

	for i, m := range methods {
		g.Go(func() error {
			priced[i] = c.priceMethod(gctx, parcel, m)
			return nil
		})
	}
	_ = g.Wait()

	return priced
}

// priceMethod проставляет цену одному способу. Ошибка или отсутствие цены для страны дают локальный расчёт.
func (c *Carrier) priceMethod(ctx context.Context, parcel domain.Parcel, m domain.ShippingMethod) domain.ShippingMethod {
	price, currency, err := c.fetchPrice(ctx, parcel, m.ID)
	if err != nil {
		c.logger.Debugf("Pricing method %d failed, using fallback price: %v", m.ID, err)
		m.Price = FallbackPrice(parcel.ToCountry, parcel.WeightKg).StringFixed(2)
		m.Currency = FallbackCurrency
		return m
	}

	m.Price = price
	m.Currency = currency
	return m
}

func (c *Carrier) fetchPrice(ctx context.Context, parcel domain.Parcel, methodID int64) (string, string, error) {
	q := url.Values{}
	q.Set("shipping_method_id", strconv.FormatInt(methodID, 10))
	q.Set("from_country", parcel.FromCountry)
	q.Set("to_country", parcel.ToCountry)
	q.Set("weight", strconv.FormatInt(parcel.WeightGrams(), 10))
	q.Set("weight_unit", "gram")
	if parcel.FromPostalCode != "" {
		q.Set("from_postal_code", parcel.FromPostalCode)
	}
	if parcel.ToPostalCode != "" {
		q.Set("to_postal_code", parcel.ToPostalCode)
	}

	body, err := c.get(ctx, "/shipping-price", q)
	if err != nil {
		return "", "", err
	}

	var entries []shippingPriceModel
	if err := json.Unmarshal(body, &entries); err != nil {
		return "", "", e.Wrap(whereami.WhereAmI(), err)
	}

	for _, entry := range entries {
		if !strings.EqualFold(entry.ToCountry, parcel.ToCountry) || entry.Price == nil {
			continue
		}
		price, err := decimal.NewFromString(*entry.Price)
		if err != nil {
			return "", "", e.Wrap(whereami.WhereAmI(), err)
		}
		currency := strings.ToUpper(entry.Currency)
		if currency == "" {
			currency = FallbackCurrency
		}

		return price.StringFixed(2), currency, nil
	}

	return "", "", fmt.Errorf("no price for method %d to %s", methodID, parcel.ToCountry)
}

// get выполняет GET с basic-авторизацией.
func (c *Carrier) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.cfg.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	req.SetBasicAuth(c.cfg.PublicKey, c.cfg.SecretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s %s returned %d", e.ErrCarrierUnavailable, http.MethodGet, path, resp.StatusCode)
	}

	return body, nil
}

// filterByCarrier оставляет способы, у которых имя перевозчика содержит filter (без учёта регистра).
func filterByCarrier(methods []domain.ShippingMethod, filter string) []domain.ShippingMethod {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" {
		return methods
	}

	res := make([]domain.ShippingMethod, 0, len(methods))
	for _, m := range methods {
		if strings.Contains(strings.ToLower(m.Carrier), filter) {
			res = append(res, m)
		}
	}

	return res
}
