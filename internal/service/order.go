package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/zefir_shop/internal/apperr"
	"github.com/Skotchmaster/zefir_shop/internal/events"
	"github.com/Skotchmaster/zefir_shop/internal/models"
	"github.com/Skotchmaster/zefir_shop/internal/repo"
	"github.com/Skotchmaster/zefir_shop/pkg/logging"
)

// DeadlineLayouts are tried in order. The first is the documented format.
var DeadlineLayouts = []string{"01-02-2006", "2006-01-02", "01/02/2006", "1/2/2006"}

type OrderService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

type OrderInput struct {
	ProductIDs []uint
	Deadline   string
}

func parseDeadline(s string) (time.Time, bool) {
	for _, layout := range DeadlineLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CreateOrder checks the deadline, then the owner, then the products, and
// stops at the first failure. Unknown product ids are dropped; the sum is
// fixed from the prices at this moment.
func (s *OrderService) CreateOrder(ctx context.Context, id Identity, in OrderInput) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.create", "user_id", id.UserID)

	deadline, ok := parseDeadline(in.Deadline)
	if !ok {
		l.Warn("create_order_error", "status", 400, "reason", "invalid deadline", "deadline", in.Deadline)
		return nil, apperr.BadRequest("Deadline", "invalid date. Format: mm-dd-yyyy")
	}

	if _, err := s.Repo.GetUserByID(ctx, id.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.BadRequest("userId", "User with such id is not exists")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	products, err := s.Repo.GetProductsByIDs(ctx, in.ProductIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve products: %w", err)
	}
	if len(products) == 0 {
		l.Warn("create_order_error", "status", 400, "reason", "no products resolved")
		return nil, apperr.BadRequest("ProductsId", "Invalid products id")
	}

	sum := decimal.Zero
	for _, p := range products {
		sum = sum.Add(p.Price)
	}

	order := &models.Order{
		UserID:   id.UserID,
		Products: products,
		Status:   models.StatusDefault,
		Deadline: deadline,
		Sum:      sum,
	}
	if err := s.Repo.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	l.Info("order_created", "order_id", order.ID, "sum", sum.String())
	s.notify(ctx, events.OrderCreated, order)
	return order, nil
}

// UpdateOrderStatus overwrites the status. Any known status may follow any other.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID uint, status models.OrderStatus) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("No order with such id")
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if !status.Valid() {
		return nil, apperr.BadRequest("Status", "Invalid status")
	}

	if err := s.Repo.UpdateOrderStatus(ctx, orderID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("No order with such id")
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}
	order.Status = status

	if _, err := s.Repo.GetUserByID(ctx, order.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User is undefined")
		}
		return nil, fmt.Errorf("find order owner: %w", err)
	}

	logging.FromContext(ctx).Info("order_status_changed", "svc", "order.update_status", "order_id", orderID, "status", status.String())
	s.notify(ctx, events.OrderStatusChanged, order)
	return order, nil
}

// ListOrders returns every order when ownerID is nil.
func (s *OrderService) ListOrders(ctx context.Context, ownerID *uint) ([]models.Order, error) {
	orders, err := s.Repo.ListOrders(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) notify(ctx context.Context, typ string, o *models.Order) {
	ids := make([]uint, 0, len(o.Products))
	for _, p := range o.Products {
		ids = append(ids, p.ID)
	}
	publish(ctx, s.Events, events.TopicOrders, strconv.FormatUint(uint64(o.ID), 10), events.OrderEvent{
		Type:     typ,
		OrderID:  o.ID,
		UserID:   o.UserID,
		Status:   o.Status.String(),
		Sum:      o.Sum.InexactFloat64(),
		Products: ids,
		At:       time.Now().UTC(),
	})
}
