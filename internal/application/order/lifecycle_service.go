package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/portal/backend/internal/domain/checkout"
	"github.com/portal/backend/internal/domain/order"
	"github.com/portal/backend/internal/domain/partner"
	"github.com/portal/backend/internal/domain/shared"
)

// LifecycleService manages orders from creation at the end of checkout
// through payment capture and backorder splits.
type LifecycleService struct {
	orders   order.Repository
	partners partner.Repository
	validate *validator.Validate
	logger   *zap.Logger
	// numberFn generates order numbers; swapped in tests
	numberFn func(prefix string) string
}

// NewLifecycleService creates the order lifecycle service
func NewLifecycleService(orders order.Repository, partners partner.Repository, logger *zap.Logger) *LifecycleService {
	return &LifecycleService{
		orders:   orders,
		partners: partners,
		validate: validator.New(),
		logger:   logger,
		numberFn: generateNumber,
	}
}

func generateNumber(prefix string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().Format("20060102"), suffix)
}

// CreateFromSession builds the local order for a completed checkout session,
// records the payment authorization and attributes the order to a sales rep.
func (s *LifecycleService) CreateFromSession(ctx context.Context, session *checkout.Session, remoteOrderID, authorizationID string) (*order.Order, error) {
	items := make([]order.OrderItem, len(session.Lines))
	for i, l := range session.Lines {
		items[i] = order.OrderItem{
			ID:        uuid.New(),
			ProductID: l.ProductID,
			VariantID: l.VariantID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			UnitCost:  l.UnitCost,
		}
	}

	o, err := order.NewOrder(s.numberFn("SO"), session.UserID, items,
		session.Subtotal, session.Tax, session.Shipping, session.Total)
	if err != nil {
		return nil, err
	}
	o.OrganizationID = session.OrganizationID
	o.LocationID = session.LocationID
	sessionID := session.ID
	o.SessionID = &sessionID
	o.RemoteOrderID = remoteOrderID
	o.ShippingAddress = session.ShippingAddress
	o.BillingAddress = session.BillingAddress

	if session.OrganizationID != nil {
		repID, repErr := partner.ResolveRep(ctx, s.partners, *session.OrganizationID)
		if repErr != nil {
			// Attribution must not block order creation.
			s.logger.Warn("sales rep resolution failed",
				zap.String("organization_id", session.OrganizationID.String()),
				zap.Error(repErr))
		} else {
			o.SalesRepID = repID
		}
	}

	if err := o.Authorize(authorizationID); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}
	s.logger.Info("order created",
		zap.String("order_id", o.ID.String()),
		zap.String("number", o.Number),
		zap.String("remote_order_id", remoteOrderID))
	return o, nil
}

// CapturePayment settles the authorized payment when the order ships.
// Safe to replay.
func (s *LifecycleService) CapturePayment(ctx context.Context, orderID uuid.UUID) (*OrderResult, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	alreadyCaptured := o.PaymentStatus == order.PaymentStatusCaptured
	if err := o.Capture(); err != nil {
		return nil, err
	}
	if !alreadyCaptured {
		if err := s.orders.SaveWithLock(ctx, o); err != nil {
			return nil, err
		}
		s.logger.Info("payment captured",
			zap.String("order_id", o.ID.String()),
			zap.String("amount", o.Total.String()))
	}
	return NewOrderResult(o), nil
}

// SplitOrder carves the backordered quantities into a new order. Both halves
// are written in one transaction so money is never lost between them.
func (s *LifecycleService) SplitOrder(ctx context.Context, orderID uuid.UUID, input SplitOrderInput) (*SplitResult, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, shared.NewDomainErrorWithCause("INVALID_INPUT", "invalid split input", err)
	}

	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	specs := make([]order.BackorderSpec, len(input.Items))
	for i, item := range input.Items {
		specs[i] = order.BackorderSpec{ProductID: item.ProductID, VariantID: item.VariantID, Quantity: item.Quantity}
	}

	backorder, err := o.SplitByBackorder(specs, func() string { return s.numberFn("BO") })
	if err != nil {
		return nil, err
	}
	if err := s.orders.SaveSplit(ctx, o, backorder); err != nil {
		return nil, err
	}
	s.logger.Info("order split",
		zap.String("order_id", o.ID.String()),
		zap.String("backorder_id", backorder.ID.String()),
		zap.String("backorder_total", backorder.Total.String()))
	return &SplitResult{Original: NewOrderResult(o), Backorder: NewOrderResult(backorder)}, nil
}

// GetOrder returns one order
func (s *LifecycleService) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderResult, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return NewOrderResult(o), nil
}

// GetRelatedOrders returns the order's whole family, oldest first: the
// family root plus every order split off it.
func (s *LifecycleService) GetRelatedOrders(ctx context.Context, orderID uuid.UUID) ([]*OrderResult, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	rootID := o.ID
	if o.ParentOrderID != nil {
		rootID = *o.ParentOrderID
	}
	family, err := s.orders.FindFamily(ctx, rootID)
	if err != nil {
		return nil, err
	}
	results := make([]*OrderResult, len(family))
	for i, member := range family {
		results[i] = NewOrderResult(member)
	}
	return results, nil
}

// ListOrders returns the user's orders, newest first
func (s *LifecycleService) ListOrders(ctx context.Context, userID uuid.UUID, page shared.Pagination) ([]*OrderResult, int64, error) {
	orders, total, err := s.orders.FindByUser(ctx, userID, page)
	if err != nil {
		return nil, 0, err
	}
	results := make([]*OrderResult, len(orders))
	for i, o := range orders {
		results[i] = NewOrderResult(o)
	}
	return results, total, nil
}
