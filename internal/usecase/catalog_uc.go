// File: internal/usecase/catalog_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pagarme-checkout/internal/domain"
	"pagarme-checkout/internal/domain/model"
	"pagarme-checkout/internal/domain/ports/adapter"
	"pagarme-checkout/internal/domain/ports/repository"
)

// Compile-time check
var _ CatalogUseCase = (*catalogUC)(nil)

type CatalogUseCase interface {
	// AvailableItem loads an item by slug and enforces its availability
	// window (or the injected override strategy).
	AvailableItem(ctx context.Context, slug string) (*model.ItemConfig, error)
	// PaymentPlans returns the installment choices rendered at checkout.
	PaymentPlans(ctx context.Context, slug string) (*model.ItemConfig, []model.PaymentPlan, error)
	Profile(ctx context.Context, userID string) (*model.UserPaymentProfile, error)

	CreateConfig(ctx context.Context, name string, maxInstallments, defaultInstallment, freeInstallment int, interestRate float64, methods []string) (*model.FormConfig, error)
	CreateItem(ctx context.Context, slug, name string, price int64, tangible bool, configID string, availableFrom, availableUntil *time.Time) (*model.ItemConfig, error)
	ListItems(ctx context.Context) ([]*model.ItemConfig, error)
}

type catalogUC struct {
	items        repository.ItemConfigRepository
	profiles     repository.UserProfileRepository
	availability adapter.AvailabilityStrategy
}

func NewCatalogUseCase(items repository.ItemConfigRepository, profiles repository.UserProfileRepository, availability adapter.AvailabilityStrategy) *catalogUC {
	if availability == nil {
		availability = adapter.WindowAvailability
	}
	return &catalogUC{items: items, profiles: profiles, availability: availability}
}

func (u *catalogUC) AvailableItem(ctx context.Context, slug string) (*model.ItemConfig, error) {
	item, err := u.items.FindBySlug(ctx, repository.NoTX, slug)
	if err != nil {
		return nil, err
	}
	if !u.availability(item, time.Now()) {
		return nil, domain.ErrItemUnavailable
	}
	return item, nil
}

func (u *catalogUC) PaymentPlans(ctx context.Context, slug string) (*model.ItemConfig, []model.PaymentPlan, error) {
	item, err := u.AvailableItem(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	var plans []model.PaymentPlan
	for p := range item.Config.PaymentPlans(item.Price) {
		plans = append(plans, p)
	}
	return item, plans, nil
}

func (u *catalogUC) Profile(ctx context.Context, userID string) (*model.UserPaymentProfile, error) {
	return u.profiles.FindByUserID(ctx, repository.NoTX, userID)
}

func (u *catalogUC) CreateConfig(ctx context.Context, name string, maxInstallments, defaultInstallment, freeInstallment int, interestRate float64, methods []string) (*model.FormConfig, error) {
	cfg, err := model.NewFormConfig(uuid.NewString(), name, maxInstallments, defaultInstallment, freeInstallment, interestRate, methods)
	if err != nil {
		return nil, err
	}
	if err := u.items.SaveConfig(ctx, repository.NoTX, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (u *catalogUC) CreateItem(ctx context.Context, slug, name string, price int64, tangible bool, configID string, availableFrom, availableUntil *time.Time) (*model.ItemConfig, error) {
	item, err := model.NewItemConfig(uuid.NewString(), slug, name, price, tangible, &model.FormConfig{ID: configID})
	if err != nil {
		return nil, err
	}
	item.AvailableFrom = availableFrom
	item.AvailableUntil = availableUntil
	if err := u.items.Save(ctx, repository.NoTX, item); err != nil {
		return nil, err
	}
	return u.items.FindBySlug(ctx, repository.NoTX, slug)
}

func (u *catalogUC) ListItems(ctx context.Context) ([]*model.ItemConfig, error) {
	return u.items.ListAll(ctx, nil)
}
