package usecase

import (
	"context"
	"strings"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
)

// ShippingUseCase рассчитывает доставку со склада отправителя до адреса покупателя.
type ShippingUseCase struct {
	carrier CarrierInfra
	cfg     *cfg.CarrierCfg
}

func NewShippingUC(carrier CarrierInfra, cfg *cfg.CarrierCfg) *ShippingUseCase {
	return &ShippingUseCase{
		carrier: carrier,
		cfg:     cfg,
	}
}

// GetShippingRates возвращает непустой список способов доставки.
// Ошибка возможна только при некорректном запросе: отказ перевозчика закрывается локальным расчётом.
func (s *ShippingUseCase) GetShippingRates(ctx context.Context, req *ShippingRatesReq) ([]domain.ShippingMethod, error) {
	const op = "ShippingUseCase.GetShippingRates"

	addr := req.ShippingAddress.Normalize()
	if len(addr.Country) != 2 {
		return nil, e.Wrap(op, e.ErrIncompleteAddress)
	}
	if req.Weight <= 0 {
		return nil, e.Wrap(op, e.ErrInvalidWeight)
	}

	return s.carrier.GetShippingRates(ctx, s.parcel(addr, req.Weight)), nil
}

func (s *ShippingUseCase) parcel(to domain.Address, weight float64) domain.Parcel {
	return domain.Parcel{
		FromCountry:    strings.ToUpper(s.cfg.OriginCountry),
		FromPostalCode: s.cfg.OriginPostalCode,
		ToCountry:      to.Country,
		ToPostalCode:   to.PostalCode,
		WeightKg:       weight,
	}
}
