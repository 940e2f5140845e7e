// File: internal/usecase/stats_uc.go
package usecase

import (
	"context"

	"pagarme-checkout/internal/domain/ports/repository"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

type StatsUseCase interface {
	// Revenue returns paid totals for the current week, month and year.
	Revenue(ctx context.Context) (week, month, year int64, err error)
}

type statsUC struct {
	payments repository.PaymentRepository
}

func NewStatsUseCase(payments repository.PaymentRepository) *statsUC {
	return &statsUC{payments: payments}
}

func (u *statsUC) Revenue(ctx context.Context) (int64, int64, int64, error) {
	week, err := u.payments.SumPaidByPeriod(ctx, repository.NoTX, "week")
	if err != nil {
		return 0, 0, 0, err
	}
	month, err := u.payments.SumPaidByPeriod(ctx, repository.NoTX, "month")
	if err != nil {
		return 0, 0, 0, err
	}
	year, err := u.payments.SumPaidByPeriod(ctx, repository.NoTX, "year")
	if err != nil {
		return 0, 0, 0, err
	}
	return week, month, year, nil
}
