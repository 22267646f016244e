// Package order places orders from a cart and moves them through their
// statuses.
package order

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Skotchmaster/pharma_ruche/internal/cart"
	"github.com/Skotchmaster/pharma_ruche/internal/gateway"
	"github.com/Skotchmaster/pharma_ruche/internal/models"
	"github.com/Skotchmaster/pharma_ruche/pkg/logging"
)

var (
	ErrEmptyCart  = errors.New("cart is empty")
	ErrValidation = errors.New("validation")
	ErrPersist    = errors.New("order not saved")
	ErrNotFound   = errors.New("order not found")
)

// Cart is the part of the cart engine an order needs.
type Cart interface {
	Items() []models.CartItem
	Clear(ctx context.Context)
}

type Observer interface {
	OrderPlaced(o models.Order)
	OrderFailed(reason string)
	StatusChanged(to models.OrderStatus)
}

type Manager struct {
	Orders   gateway.Collection[models.Order]
	Now      func() time.Time
	Observer Observer

	validate *validator.Validate
}

func NewManager(orders gateway.Collection[models.Order]) *Manager {
	return &Manager{
		Orders:   orders,
		Now:      func() time.Time { return time.Now().UTC() },
		validate: NewValidator(),
	}
}

// NewValidator reports json field names and knows the "wilaya" rule.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("wilaya", func(fl validator.FieldLevel) bool {
		return IsWilaya(fl.Field().String())
	})
	return v
}

// PlaceOrder saves the cart as a pending order and clears the cart. The
// cart is left untouched on any error.
func (m *Manager) PlaceOrder(ctx context.Context, c Cart, details models.ShippingDetails) (*models.Order, error) {
	l := logging.FromContext(ctx).With("component", "order")

	items := c.Items()
	if len(items) == 0 {
		m.failed("empty_cart")
		return nil, ErrEmptyCart
	}

	details = details.Trimmed()
	if err := m.validateDetails(details); err != nil {
		m.failed("validation")
		return nil, err
	}

	o := models.Order{
		CustomerName: details.Name,
		Phone:        details.Phone,
		Wilaya:       details.Wilaya,
		Address:      details.Address,
		Items:        items,
		Total:        cart.Total(items),
		Status:       models.OrderStatusPending,
		CreatedAt:    m.Now(),
	}

	id, err := m.Orders.Create(ctx, o)
	if err != nil {
		l.Error("place_order_failed", "reason", "persist", "error", err)
		m.failed("persist")
		return nil, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	o.ID = id

	c.Clear(ctx)
	l.Info("order_placed", "order_id", id, "total", o.Total, "items", len(items))
	if m.Observer != nil {
		m.Observer.OrderPlaced(o)
	}
	return &o, nil
}

func (m *Manager) validateDetails(d models.ShippingDetails) error {
	err := m.validate.Struct(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return fmt.Errorf("%w: invalid %s", ErrValidation, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

// UpdateStatus sets any valid status, including back to pending.
func (m *Manager) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	if strings.TrimSpace(orderID) == "" {
		return fmt.Errorf("%w: order id required", ErrValidation)
	}

	if err := m.Orders.Update(ctx, orderID, models.StatusPatch{Status: status}); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, orderID)
		}
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}

	logging.FromContext(ctx).Info("order_status_updated", "order_id", orderID, "status", status)
	if m.Observer != nil {
		m.Observer.StatusChanged(status)
	}
	return nil
}

func (m *Manager) Subscribe(ctx context.Context) (*gateway.Feed[models.Order], error) {
	return m.Orders.Subscribe(ctx)
}

func (m *Manager) failed(reason string) {
	if m.Observer != nil {
		m.Observer.OrderFailed(reason)
	}
}
