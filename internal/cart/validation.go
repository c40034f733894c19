package cart

import (
	"errors"
	"reflect"
	"strings"

	"github.com/01moynul/taptosell-cart/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// MaxQuantity caps a single line of a cart. Increments may not push a
// stored quantity past it either.
const MaxQuantity = 1000000

// ItemInput is one {product_id, quantity} pair as submitted by a client.
type ItemInput struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"gte=1,lte=1000000"`
}

// ItemsInput is the body of the add/increment endpoints.
type ItemsInput struct {
	Items []ItemInput `json:"items" validate:"required,min=1,dive"`
}

// QuantityInput is the body of the update endpoint.
type QuantityInput struct {
	Quantity int `json:"quantity" validate:"gte=1,lte=1000000"`
}

// CheckoutInput is the body of the checkout endpoint.
type CheckoutInput struct {
	AddressID string `json:"address_id"`
}

// AddressInput is the body of the address book endpoint.
type AddressInput struct {
	Line1    string  `json:"line1" validate:"required,max=255"`
	Line2    *string `json:"line2" validate:"omitempty,max=255"`
	City     string  `json:"city" validate:"required,max=128"`
	State    string  `json:"state" validate:"required,max=128"`
	Postcode string  `json:"postcode" validate:"required,max=32"`
	Country  string  `json:"country" validate:"required,max=64"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *Service) parseID(field, raw string) (uuid.UUID, error) {
	if err := s.validate.Var(raw, "required,uuid"); err != nil {
		return uuid.Nil, invalidInput("%s must be a UUID", field)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, invalidInput("%s must be a UUID", field)
	}
	return id, nil
}

func (s *Service) parseItems(cartID uuid.UUID, in ItemsInput) ([]models.CartItem, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, invalidInput("%s", describe(err))
	}

	items := make([]models.CartItem, 0, len(in.Items))
	for i, it := range in.Items {
		productID, err := uuid.Parse(it.ProductID)
		if err != nil {
			return nil, invalidInput("items[%d].product_id must be a UUID", i)
		}
		items = append(items, models.CartItem{
			CartID:    cartID,
			ProductID: productID,
			Quantity:  it.Quantity,
		})
	}
	return items, nil
}

func (s *Service) parseQuantity(in QuantityInput) error {
	if err := s.validate.Struct(in); err != nil {
		return invalidInput("%s", describe(err))
	}
	return nil
}

func (s *Service) parseAddress(in AddressInput) (AddressInput, error) {
	in.Line1 = strings.TrimSpace(in.Line1)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
	in.Postcode = strings.TrimSpace(in.Postcode)
	in.Country = strings.TrimSpace(in.Country)
	if err := s.validate.Struct(in); err != nil {
		return AddressInput{}, invalidInput("%s", describe(err))
	}
	return in, nil
}

// checkIncrement rejects an increment that would raise a stored quantity
// above MaxQuantity. Repeated products in one request accumulate.
func checkIncrement(stored, items []models.CartItem) error {
	totals := make(map[uuid.UUID]int, len(stored))
	for _, it := range stored {
		totals[it.ProductID] = it.Quantity
	}
	for i, it := range items {
		totals[it.ProductID] += it.Quantity
		if totals[it.ProductID] > MaxQuantity {
			return invalidInput("items[%d].quantity would raise the stored quantity above %d", i, MaxQuantity)
		}
	}
	return nil
}

// describe flattens validator output into one line naming the JSON paths.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "min":
			parts = append(parts, field+" must contain at least "+fe.Param()+" entry")
		case "uuid":
			parts = append(parts, field+" must be a UUID")
		case "gte":
			parts = append(parts, field+" must be at least "+fe.Param())
		case "lte":
			parts = append(parts, field+" must be at most "+fe.Param())
		case "max":
			parts = append(parts, field+" must be at most "+fe.Param()+" characters")
		default:
			parts = append(parts, field+" failed "+fe.Tag())
		}
	}
	return strings.Join(parts, "; ")
}
