package cart

import (
	"context"

	"github.com/01moynul/taptosell-cart/internal/models"
	"go.opentelemetry.io/otel/attribute"
)

// AddAddress stores a shipping address for the principal. Checkout only
// accepts addresses created here by the same user.
func (s *Service) AddAddress(ctx context.Context, p models.Principal, in AddressInput) (address models.Address, err error) {
	ctx, span := s.start(ctx, "AddAddress", p)
	defer func() { finish(span, err) }()

	if err := authorize(p, models.CapabilityManageCart); err != nil {
		return models.Address{}, err
	}
	in, err = s.parseAddress(in)
	if err != nil {
		return models.Address{}, err
	}

	address = models.Address{
		ID:        s.newID(),
		UserID:    p.UserID,
		Line1:     in.Line1,
		Line2:     in.Line2,
		City:      in.City,
		State:     in.State,
		Postcode:  in.Postcode,
		Country:   in.Country,
		CreatedAt: s.now(),
	}
	err = s.store.Atomic(ctx, func(tx Store) error {
		return tx.InsertAddress(ctx, address)
	})
	if err != nil {
		return models.Address{}, storageFault("insert address", err)
	}
	span.SetAttributes(attribute.String("address.id", address.ID.String()))
	return address, nil
}

// ListAddresses returns the principal's addresses, oldest first.
func (s *Service) ListAddresses(ctx context.Context, p models.Principal) (addresses []models.Address, err error) {
	ctx, span := s.start(ctx, "ListAddresses", p)
	defer func() { finish(span, err) }()

	if err := authorize(p, models.CapabilityManageCart); err != nil {
		return nil, err
	}
	addresses, err = s.store.ListAddresses(ctx, p.UserID)
	if err != nil {
		return nil, storageFault("list addresses", err)
	}
	if addresses == nil {
		addresses = []models.Address{}
	}
	return addresses, nil
}
