package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"pagarme-checkout/internal/domain"
	"pagarme-checkout/internal/domain/model"
	"pagarme-checkout/internal/domain/ports/repository"
)

var _ repository.PlanRepository = (*planRepo)(nil)

type planRepo struct{ pool *pgxpool.Pool }

func NewPlanRepo(pool *pgxpool.Pool) *planRepo {
	return &planRepo{pool: pool}
}

const planColumns = `id, gateway_plan_id, name, amount, days, trial_days, payment_methods, created_at`

func (r *planRepo) Save(ctx context.Context, tx repository.Tx, plan *model.Plan) error {
	const q = `
INSERT INTO plans (id, gateway_plan_id, name, amount, days, trial_days, payment_methods, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (gateway_plan_id) DO UPDATE SET
  name=$3, amount=$4, days=$5, trial_days=$6, payment_methods=$7;`

	_, err := execSQL(ctx, r.pool, tx, q,
		plan.ID, plan.GatewayPlanID, plan.Name, plan.Amount, plan.Days,
		plan.TrialDays, model.JoinMethods(plan.PaymentMethods), plan.CreatedAt,
	)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func scanPlan(row pgx.Row) (*model.Plan, error) {
	p := &model.Plan{}
	var methods string
	if err := row.Scan(&p.ID, &p.GatewayPlanID, &p.Name, &p.Amount, &p.Days, &p.TrialDays, &methods, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	p.PaymentMethods = model.ParseMethods(methods)
	return p, nil
}

func (r *planRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	const q = `SELECT ` + planColumns + ` FROM plans WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanPlan(row)
}

func (r *planRepo) FindByGatewayID(ctx context.Context, tx repository.Tx, gatewayPlanID string) (*model.Plan, error) {
	const q = `SELECT ` + planColumns + ` FROM plans WHERE gateway_plan_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, gatewayPlanID)
	if err != nil {
		return nil, err
	}
	return scanPlan(row)
}

func (r *planRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	const q = `SELECT ` + planColumns + ` FROM plans ORDER BY created_at;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()
	var out []*model.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
