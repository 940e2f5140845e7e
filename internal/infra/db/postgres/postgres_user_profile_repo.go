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

var _ repository.UserProfileRepository = (*userProfileRepo)(nil)

type userProfileRepo struct{ pool *pgxpool.Pool }

func NewUserProfileRepo(pool *pgxpool.Pool) *userProfileRepo {
	return &userProfileRepo{pool: pool}
}

func (r *userProfileRepo) Upsert(ctx context.Context, tx repository.Tx, profile *model.UserPaymentProfile) error {
	const q = `
INSERT INTO user_payment_profiles (
  user_id, customer_external_id, customer_name, customer_email, customer_document, customer_phone,
  street, street_number, complementary, neighborhood, city, state, zipcode, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
ON CONFLICT (user_id) DO UPDATE SET
  customer_external_id=$2, customer_name=$3, customer_email=$4, customer_document=$5, customer_phone=$6,
  street=$7, street_number=$8, complementary=$9, neighborhood=$10, city=$11, state=$12, zipcode=$13, updated_at=$14;`

	_, err := execSQL(ctx, r.pool, tx, q,
		profile.UserID,
		profile.Customer.ExternalID, profile.Customer.Name, profile.Customer.Email,
		profile.Customer.Document, profile.Customer.Phone,
		profile.Billing.Street, profile.Billing.StreetNumber, profile.Billing.Complementary,
		profile.Billing.Neighborhood, profile.Billing.City, profile.Billing.State, profile.Billing.Zipcode,
		profile.UpdatedAt,
	)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *userProfileRepo) FindByUserID(ctx context.Context, tx repository.Tx, userID string) (*model.UserPaymentProfile, error) {
	const q = `
SELECT user_id, customer_external_id, customer_name, customer_email, customer_document, customer_phone,
       street, street_number, complementary, neighborhood, city, state, zipcode, updated_at
  FROM user_payment_profiles WHERE user_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	p := &model.UserPaymentProfile{}
	if err := row.Scan(
		&p.UserID,
		&p.Customer.ExternalID, &p.Customer.Name, &p.Customer.Email, &p.Customer.Document, &p.Customer.Phone,
		&p.Billing.Street, &p.Billing.StreetNumber, &p.Billing.Complementary,
		&p.Billing.Neighborhood, &p.Billing.City, &p.Billing.State, &p.Billing.Zipcode,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}
