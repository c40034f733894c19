package database

import (
	"context"

	"github.com/01moynul/taptosell-cart/internal/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

func (s *CartStore) InsertAddress(ctx context.Context, a models.Address) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO addresses (address_id, user_id, line1, line2, city, state, postcode, country, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Line1, a.Line2, a.City, a.State, a.Postcode, a.Country, a.CreatedAt)
	return errors.Wrap(err, "insert address")
}

func (s *CartStore) ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT address_id, user_id, line1, line2, city, state, postcode, country, created_at
		FROM addresses
		WHERE user_id = ?
		ORDER BY created_at`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "query addresses")
	}
	defer rows.Close()

	addresses := []models.Address{}
	for rows.Next() {
		var a models.Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.Line1, &a.Line2, &a.City, &a.State, &a.Postcode, &a.Country, &a.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan address")
		}
		addresses = append(addresses, a)
	}
	return addresses, errors.Wrap(rows.Err(), "iterate addresses")
}
