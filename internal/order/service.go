package order

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/albaqer/gemstone-ecom/internal/events"
)

const DefaultLowStockThreshold = 5

// UserDirectory answers identity questions owned by the user service.
type UserDirectory interface {
	ValidateUser(ctx context.Context, id string) (bool, error)
	// Role returns ErrUnknownUser when the user does not exist.
	Role(ctx context.Context, id string) (string, error)
}

type Publisher interface {
	Publish(ctx context.Context, key string, env events.Envelope) error
}

type StatusCache interface {
	GetStatus(ctx context.Context, orderID string) (string, bool, error)
	SetStatus(ctx context.Context, orderID, value string) error
	Delete(ctx context.Context, orderID string) error
}

type Service struct {
	repo     Repository
	users    UserDirectory
	pub      Publisher
	cache    StatusCache
	lowStock int
	producer string
	now      func() time.Time
	tracer   trace.Tracer
	log      zerolog.Logger
}

type Option func(*Service)

func WithPublisher(p Publisher) Option { return func(s *Service) { s.pub = p } }

func WithCache(c StatusCache) Option { return func(s *Service) { s.cache = c } }

func WithLowStockThreshold(n int) Option { return func(s *Service) { s.lowStock = n } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithLogger(l zerolog.Logger) Option { return func(s *Service) { s.log = l } }

func WithProducer(name string) Option { return func(s *Service) { s.producer = name } }

func NewService(repo Repository, users UserDirectory, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		users:    users,
		lowStock: DefaultLowStockThreshold,
		producer: "order-service",
		now:      time.Now,
		tracer:   otel.Tracer("github.com/albaqer/gemstone-ecom/internal/order"),
		log:      log.Logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func newOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), uuid.NewString()[:6])
}

func checkCreate(in CreateInput) error {
	if in.UserID == "" {
		return ErrUnknownUser
	}
	if len(in.Items) == 0 {
		return ErrNoItems
	}
	for _, amt := range []decimal.Decimal{in.TotalAmount, in.TaxAmount, in.ShippingCost, in.DiscountAmount} {
		if amt.IsNegative() {
			return ErrNegativeAmount
		}
	}
	seen := make(map[string]struct{}, len(in.Items))
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return ErrInvalidQuantity
		}
		if it.PriceAtPurchase != nil && it.PriceAtPurchase.IsNegative() {
			return ErrNegativeAmount
		}
		if _, dup := seen[it.ProductID]; dup {
			return ErrDuplicateItem
		}
		seen[it.ProductID] = struct{}{}
	}
	return nil
}

// validateStock checks every item and reports all problems at once.
func (s *Service) validateStock(ctx context.Context, tx Tx, items []ItemInput) (map[string]StockLevel, []LowStockWarning, error) {
	levels := make(map[string]StockLevel, len(items))
	warnings := []LowStockWarning{}
	var issues []StockIssue
	for _, it := range items {
		lvl, ok, err := tx.StockLevel(ctx, it.ProductID)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			issues = append(issues, StockIssue{ProductID: it.ProductID, Requested: it.Quantity, Issue: IssueProductNotFound})
			continue
		}
		if it.Quantity > lvl.Quantity {
			issues = append(issues, StockIssue{
				ProductID:   it.ProductID,
				ProductName: lvl.Name,
				Requested:   it.Quantity,
				Available:   lvl.Quantity,
				Issue:       IssueInsufficientStock,
			})
			continue
		}
		levels[it.ProductID] = lvl
		if remaining := lvl.Quantity - it.Quantity; remaining < s.lowStock {
			warnings = append(warnings, LowStockWarning{ProductID: it.ProductID, ProductName: lvl.Name, RemainingAfterOrder: remaining})
		}
	}
	if len(issues) > 0 {
		return nil, nil, &StockError{Issues: issues}
	}
	return levels, warnings, nil
}

// Create validates stock, inserts the order and its items and takes the
// stock, all in one unit of work.
func (s *Service) Create(ctx context.Context, in CreateInput) (*CreateResult, error) {
	ctx, span := s.tracer.Start(ctx, "order.Create", trace.WithAttributes(
		attribute.String("user.id", in.UserID), attribute.Int("order.items", len(in.Items))))
	defer span.End()

	if err := checkCreate(in); err != nil {
		return nil, fail(span, err)
	}
	ok, err := s.users.ValidateUser(ctx, in.UserID)
	if err != nil {
		return nil, fail(span, errors.Wrap(err, "validate user"))
	}
	if !ok {
		return nil, fail(span, ErrUnknownUser)
	}

	var res *CreateResult
	err = s.repo.WithTx(ctx, func(tx Tx) error {
		levels, warnings, err := s.validateStock(ctx, tx, in.Items)
		if err != nil {
			return err
		}

		o := &Order{
			ID:                uuid.NewString(),
			UserID:            in.UserID,
			OrderNumber:       in.OrderNumber,
			TotalAmount:       in.TotalAmount,
			TaxAmount:         in.TaxAmount,
			ShippingCost:      in.ShippingCost,
			DiscountAmount:    in.DiscountAmount,
			ShippingAddressID: in.ShippingAddressID,
			BillingAddressID:  in.BillingAddressID,
			Notes:             in.Notes,
			Status:            StatusPending,
		}
		if o.OrderNumber == "" {
			o.OrderNumber = newOrderNumber(s.now())
		}
		if err := tx.InsertOrder(ctx, o); err != nil {
			return err
		}

		items := make([]Item, 0, len(in.Items))
		for _, line := range in.Items {
			price := levels[line.ProductID].Price
			if line.PriceAtPurchase != nil {
				price = *line.PriceAtPurchase
			}
			it := Item{ID: uuid.NewString(), OrderID: o.ID, ProductID: line.ProductID, Quantity: line.Quantity, PriceAtPurchase: price}
			if err := tx.InsertItem(ctx, &it); err != nil {
				return err
			}
			items = append(items, it)
		}
		for _, it := range byProduct(items) {
			took, err := tx.DecrementStock(ctx, it.ProductID, it.Quantity)
			if err != nil {
				return err
			}
			if !took {
				return &StockConflictError{ProductID: it.ProductID, Requested: it.Quantity}
			}
		}
		res = &CreateResult{Order: o, Items: items, LowStockWarnings: warnings}
		return nil
	})
	if err != nil {
		var se *StockError
		var ce *StockConflictError
		switch {
		case errors.As(err, &se):
			stockConflicts.WithLabelValues("validation").Inc()
		case errors.As(err, &ce):
			stockConflicts.WithLabelValues("commit").Inc()
		}
		return nil, fail(span, err)
	}

	ordersCreated.Inc()
	lowStockWarnings.Add(float64(len(res.LowStockWarnings)))
	span.SetAttributes(attribute.String("order.id", res.Order.ID))
	s.log.Info().Str("order_id", res.Order.ID).Str("order_number", res.Order.OrderNumber).
		Int("items", len(res.Items)).Int("low_stock_warnings", len(res.LowStockWarnings)).Msg("order created")

	s.cacheStatus(ctx, res.Order)
	lines := make([]events.ItemQty, 0, len(res.Items))
	for _, it := range res.Items {
		lines = append(lines, events.ItemQty{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	s.publish(ctx, events.OrderCreated, res.Order.ID, events.OrderCreatedPayload{
		OrderID:     res.Order.ID,
		OrderNumber: res.Order.OrderNumber,
		UserID:      res.Order.UserID,
		TotalAmount: res.Order.TotalAmount.String(),
		Items:       lines,
	})
	for _, w := range res.LowStockWarnings {
		s.publish(ctx, events.StockLow, res.Order.ID, events.StockLowPayload{
			OrderID:             res.Order.ID,
			ProductID:           w.ProductID,
			ProductName:         w.ProductName,
			RemainingAfterOrder: w.RemainingAfterOrder,
		})
	}
	return res, nil
}

// byProduct returns a copy of items sorted by product id. Every unit of work
// touches product rows in this order so concurrent orders cannot deadlock.
func byProduct(items []Item) []Item {
	out := append([]Item(nil), items...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

// restoreStock returns every item of the order to its product.
func restoreStock(ctx context.Context, tx Tx, orderID string) error {
	items, err := tx.Items(ctx, orderID)
	if err != nil {
		return err
	}
	for _, it := range byProduct(items) {
		if err := tx.RestoreStock(ctx, it.ProductID, it.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// UpdateStatus moves an order through the workflow. Cancelling returns the
// order's stock in the same unit of work; cancelling twice is a no-op.
func (s *Service) UpdateStatus(ctx context.Context, in StatusInput) (*StatusResult, error) {
	ctx, span := s.tracer.Start(ctx, "order.UpdateStatus", trace.WithAttributes(
		attribute.String("order.id", in.OrderID), attribute.String("order.target_status", in.Status)))
	defer span.End()

	target, err := ParseStatus(in.Status)
	if err != nil {
		return nil, fail(span, err)
	}

	var (
		res  *StatusResult
		from Status
	)
	err = s.repo.WithTx(ctx, func(tx Tx) error {
		cur, err := tx.LockOrder(ctx, in.OrderID)
		if err != nil {
			return err
		}
		if in.Authorize != nil {
			if err := in.Authorize(cur, target); err != nil {
				return err
			}
		}
		from = cur.Status
		if cur.Status == StatusCancelled && target == StatusCancelled {
			res = &StatusResult{Order: cur}
			return nil
		}
		if !cur.Status.CanTransitionTo(target) {
			return &TransitionError{From: cur.Status, To: target}
		}

		restored := false
		if target == StatusCancelled {
			if err := restoreStock(ctx, tx, cur.ID); err != nil {
				return err
			}
			restored = true
		}
		o, err := tx.SetStatus(ctx, cur.ID, target, in.TrackingNumber)
		if err != nil {
			return err
		}
		res = &StatusResult{Order: o, StockRestored: restored}
		return nil
	})
	if err != nil {
		return nil, fail(span, err)
	}

	if res.StockRestored {
		ordersCancelled.Inc()
		stockRestorations.WithLabelValues("cancel").Inc()
	}
	if from == target && !res.StockRestored {
		return res, nil
	}
	s.log.Info().Str("order_id", res.Order.ID).Str("from", string(from)).Str("to", string(target)).
		Bool("stock_restored", res.StockRestored).Msg("order status changed")
	s.cacheStatus(ctx, res.Order)
	s.publish(ctx, events.OrderStatusChanged, res.Order.ID, events.OrderStatusChangedPayload{
		OrderID:       res.Order.ID,
		From:          string(from),
		To:            string(target),
		StockRestored: res.StockRestored,
	})
	return res, nil
}

// Delete removes an order. Stock is returned unless the order was already
// cancelled, which returned it at that time.
func (s *Service) Delete(ctx context.Context, orderID string) (*DeleteResult, error) {
	ctx, span := s.tracer.Start(ctx, "order.Delete", trace.WithAttributes(attribute.String("order.id", orderID)))
	defer span.End()

	res := &DeleteResult{}
	err := s.repo.WithTx(ctx, func(tx Tx) error {
		cur, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		restored := false
		if cur.Status != StatusCancelled {
			if err := restoreStock(ctx, tx, cur.ID); err != nil {
				return err
			}
			restored = true
		}
		if err := tx.DeleteOrder(ctx, cur.ID); err != nil {
			return err
		}
		res.Deleted, res.StockRestored = true, restored
		return nil
	})
	if err != nil {
		return nil, fail(span, err)
	}

	if res.StockRestored {
		stockRestorations.WithLabelValues("delete").Inc()
	}
	s.log.Info().Str("order_id", orderID).Bool("stock_restored", res.StockRestored).Msg("order deleted")
	if s.cache != nil {
		if err := s.cache.Delete(ctx, orderID); err != nil {
			s.log.Warn().Err(err).Str("order_id", orderID).Msg("status cache delete failed")
		}
	}
	s.publish(ctx, events.OrderDeleted, orderID, events.OrderDeletedPayload{OrderID: orderID, StockRestored: res.StockRestored})
	return res, nil
}

func (s *Service) AssignDelivery(ctx context.Context, orderID, deliveryManID string) (*Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.AssignDelivery", trace.WithAttributes(
		attribute.String("order.id", orderID), attribute.String("delivery_man.id", deliveryManID)))
	defer span.End()

	if err := s.checkDeliveryMan(ctx, deliveryManID); err != nil {
		return nil, fail(span, err)
	}

	dm := deliveryManID
	at := s.now().UTC()
	return s.setDelivery(ctx, span, orderID, &dm, &at, StatusAssigned)
}

// checkDeliveryMan returns ErrUnknownUser or ErrNotDeliveryMan unless id
// names a delivery man.
func (s *Service) checkDeliveryMan(ctx context.Context, id string) error {
	role, err := s.users.Role(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUnknownUser) {
			return err
		}
		return errors.Wrap(err, "lookup delivery man")
	}
	if role != "delivery_man" {
		return ErrNotDeliveryMan
	}
	return nil
}

func (s *Service) UnassignDelivery(ctx context.Context, orderID string) (*Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.UnassignDelivery", trace.WithAttributes(attribute.String("order.id", orderID)))
	defer span.End()
	return s.setDelivery(ctx, span, orderID, nil, nil, StatusConfirmed)
}

func (s *Service) setDelivery(ctx context.Context, span trace.Span, orderID string, dm *string, at *time.Time, st Status) (*Order, error) {
	var (
		out  *Order
		from Status
	)
	err := s.repo.WithTx(ctx, func(tx Tx) error {
		cur, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if cur.Status.Terminal() {
			return ErrTerminalOrder
		}
		from = cur.Status
		out, err = tx.SetDelivery(ctx, orderID, dm, at, st)
		return err
	})
	if err != nil {
		return nil, fail(span, err)
	}

	payload := events.OrderStatusChangedPayload{OrderID: out.ID, From: string(from), To: string(st)}
	if dm != nil {
		payload.DeliveryManID = *dm
	}
	s.log.Info().Str("order_id", out.ID).Str("from", string(from)).Str("to", string(st)).Msg("delivery assignment changed")
	s.cacheStatus(ctx, out)
	s.publish(ctx, events.OrderStatusChanged, out.ID, payload)
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Items(ctx context.Context, orderID string) ([]Item, error) {
	items, err := s.repo.GetItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

func (s *Service) ListAll(ctx context.Context, limit, offset int) ([]Order, error) {
	return s.repo.List(ctx, ListFilter{Limit: limit, Offset: offset})
}

func (s *Service) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Order, error) {
	return s.repo.List(ctx, ListFilter{UserID: userID, Limit: limit, Offset: offset})
}

// ListByDeliveryMan lists active deliveries first (assigned, in_transit, delivered), newest first within each.
func (s *Service) ListByDeliveryMan(ctx context.Context, deliveryManID string, limit, offset int) ([]Order, error) {
	return s.repo.List(ctx, ListFilter{DeliveryManID: deliveryManID, DeliveryPriorities: true, Limit: limit, Offset: offset})
}

// DeliveryManOrders is ListByDeliveryMan for managers: the id must name a delivery man.
func (s *Service) DeliveryManOrders(ctx context.Context, deliveryManID string, limit, offset int) ([]Order, error) {
	if err := s.checkDeliveryMan(ctx, deliveryManID); err != nil {
		return nil, err
	}
	return s.ListByDeliveryMan(ctx, deliveryManID, limit, offset)
}

// ListAwaitingAssignment lists confirmed orders nobody is delivering yet.
func (s *Service) ListAwaitingAssignment(ctx context.Context, limit, offset int) ([]Order, error) {
	return s.repo.List(ctx, ListFilter{Status: StatusConfirmed, OnlyUnassigned: true, Limit: limit, Offset: offset})
}

// StatusView is the cached projection behind GET /orders/:id/status. It
// carries the owner and delivery man so callers can authorize without the full row.
type StatusView struct {
	OrderID       string  `json:"order_id"`
	Status        Status  `json:"status"`
	UserID        string  `json:"user_id"`
	DeliveryManID *string `json:"delivery_man_id,omitempty"`
}

func viewOf(o *Order) StatusView {
	return StatusView{OrderID: o.ID, Status: o.Status, UserID: o.UserID, DeliveryManID: o.DeliveryManID}
}

// Status reads through the cache.
func (s *Service) Status(ctx context.Context, orderID string) (*StatusView, error) {
	if s.cache != nil {
		raw, ok, err := s.cache.GetStatus(ctx, orderID)
		if err != nil {
			s.log.Warn().Err(err).Str("order_id", orderID).Msg("status cache read failed")
		}
		if ok {
			var v StatusView
			if err := json.Unmarshal([]byte(raw), &v); err == nil && v.Status != "" {
				return &v, nil
			}
		}
	}
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.cacheStatus(ctx, o)
	v := viewOf(o)
	return &v, nil
}

func (s *Service) cacheStatus(ctx context.Context, o *Order) {
	if s.cache == nil {
		return
	}
	b, _ := json.Marshal(viewOf(o))
	if err := s.cache.SetStatus(ctx, o.ID, string(b)); err != nil {
		s.log.Warn().Err(err).Str("order_id", o.ID).Msg("status cache write failed")
	}
}

// publish is best effort: the unit of work has already committed.
func (s *Service) publish(ctx context.Context, t events.Type, orderID string, payload any) {
	if s.pub == nil {
		return
	}
	traceID := ""
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		traceID = sc.TraceID().String()
	}
	env, err := events.New(t, s.producer, orderID, traceID, payload)
	if err == nil {
		err = s.pub.Publish(ctx, orderID, env)
	}
	if err != nil {
		s.log.Warn().Err(err).Str("order_id", orderID).Str("event_type", string(t)).Msg("publish failed")
	}
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
