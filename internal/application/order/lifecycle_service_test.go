package order

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/portal/backend/internal/domain/checkout"
	"github.com/portal/backend/internal/domain/order"
	"github.com/portal/backend/internal/domain/partner"
	"github.com/portal/backend/internal/domain/shared"
	"github.com/portal/backend/internal/domain/shared/valueobject"
)

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*order.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*order.Order)}
}

func (r *fakeOrderRepo) Save(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
	return nil
}

func (r *fakeOrderRepo) SaveWithLock(ctx context.Context, o *order.Order) error {
	o.IncrementVersion()
	return r.Save(ctx, o)
}

func (r *fakeOrderRepo) SaveSplit(ctx context.Context, original, backorder *order.Order) error {
	if err := r.SaveWithLock(ctx, original); err != nil {
		return err
	}
	return r.Save(ctx, backorder)
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return o, nil
}

func (r *fakeOrderRepo) FindByNumber(_ context.Context, number string) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.Number == number {
			return o, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeOrderRepo) FindFamily(_ context.Context, rootID uuid.UUID) ([]*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*order.Order
	if root, ok := r.orders[rootID]; ok {
		out = append(out, root)
	}
	for _, o := range r.orders {
		if o.ParentOrderID != nil && *o.ParentOrderID == rootID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) FindByUser(_ context.Context, userID uuid.UUID, _ shared.Pagination) ([]*order.Order, int64, error) {
	var out []*order.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, int64(len(out)), nil
}

type fakePartnerRepo struct {
	org  *partner.Organization
	reps []*partner.SalesRep
}

func (r *fakePartnerRepo) FindOrganization(_ context.Context, id uuid.UUID) (*partner.Organization, error) {
	if r.org == nil || r.org.ID != id {
		return nil, shared.ErrNotFound
	}
	return r.org, nil
}

func (r *fakePartnerRepo) FindActiveReps(_ context.Context, _ uuid.UUID) ([]*partner.SalesRep, error) {
	return r.reps, nil
}

func money(f float64) valueobject.Money {
	return valueobject.NewMoneyFromFloat(f, "USD")
}

func paidSession(t *testing.T, orgID *uuid.UUID) *checkout.Session {
	t.Helper()
	lines := []checkout.CartLine{
		{ProductID: 1001, Name: "Widget", UnitPrice: decimal.NewFromInt(20), Quantity: 3},
		{ProductID: 1002, Name: "Gadget", UnitPrice: decimal.NewFromInt(40), Quantity: 2},
	}
	session, err := checkout.NewSession(uuid.New(), orgID, nil, lines, "key")
	require.NoError(t, err)
	session.Subtotal = money(140)
	session.Tax = money(11.20)
	session.Shipping = money(10)
	session.Total = money(161.20)
	return session
}

func newService(repo *fakeOrderRepo, partners partner.Repository) *LifecycleService {
	if partners == nil {
		partners = &fakePartnerRepo{}
	}
	return NewLifecycleService(repo, partners, zap.NewNop())
}

func TestCreateFromSession(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an authorized order from the session", func(t *testing.T) {
		repo := newFakeOrderRepo()
		svc := newService(repo, nil)
		session := paidSession(t, nil)

		o, err := svc.CreateFromSession(ctx, session, "remote-1", "auth-1")
		require.NoError(t, err)

		assert.Equal(t, order.OrderStatusPending, o.Status)
		assert.Equal(t, order.PaymentStatusAuthorized, o.PaymentStatus)
		assert.Equal(t, "auth-1", o.AuthorizationID)
		assert.Equal(t, "remote-1", o.RemoteOrderID)
		assert.Len(t, o.Items, 2)
		assert.True(t, o.Total.Amount.Equal(decimal.NewFromFloat(161.20)))
		require.NotNil(t, o.SessionID)
		assert.Equal(t, session.ID, *o.SessionID)

		stored, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, o.Number, stored.Number)
	})

	t.Run("attributes the order to the organization's rep", func(t *testing.T) {
		orgID := uuid.New()
		rep := &partner.SalesRep{BaseEntity: shared.NewBaseEntity(), OrganizationID: orgID, Active: true}
		org := &partner.Organization{BaseEntity: shared.NewBaseEntity(), DefaultRepID: &rep.ID}
		org.ID = orgID
		svc := newService(newFakeOrderRepo(), &fakePartnerRepo{org: org, reps: []*partner.SalesRep{rep}})

		o, err := svc.CreateFromSession(ctx, paidSession(t, &orgID), "remote-1", "auth-1")
		require.NoError(t, err)
		require.NotNil(t, o.SalesRepID)
		assert.Equal(t, rep.ID, *o.SalesRepID)
	})

	t.Run("rep resolution failure does not block the order", func(t *testing.T) {
		orgID := uuid.New()
		svc := newService(newFakeOrderRepo(), &fakePartnerRepo{})

		o, err := svc.CreateFromSession(ctx, paidSession(t, &orgID), "remote-1", "auth-1")
		require.NoError(t, err)
		assert.Nil(t, o.SalesRepID)
	})
}

func TestCapturePayment(t *testing.T) {
	ctx := context.Background()
	repo := newFakeOrderRepo()
	svc := newService(repo, nil)

	o, err := svc.CreateFromSession(ctx, paidSession(t, nil), "remote-1", "auth-1")
	require.NoError(t, err)

	result, err := svc.CapturePayment(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentStatusCaptured, result.PaymentStatus)
	assert.NotNil(t, result.CapturedAt)

	// Replaying the capture is a no-op.
	again, err := svc.CapturePayment(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, result.CapturedAt.Unix(), again.CapturedAt.Unix())
}

func TestSplitOrder(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*LifecycleService, *order.Order) {
		t.Helper()
		repo := newFakeOrderRepo()
		svc := newService(repo, nil)
		o, err := svc.CreateFromSession(ctx, paidSession(t, nil), "remote-1", "auth-1")
		require.NoError(t, err)
		return svc, o
	}

	t.Run("splits and conserves money", func(t *testing.T) {
		svc, o := setup(t)

		result, err := svc.SplitOrder(ctx, o.ID, SplitOrderInput{
			Items: []BackorderItemInput{{ProductID: 1002, Quantity: 2}},
		})
		require.NoError(t, err)

		assert.Equal(t, order.OrderTypePartial, result.Original.OrderType)
		assert.Equal(t, order.OrderTypeBackorder, result.Backorder.OrderType)
		assert.Equal(t, order.OrderStatusBackorder, result.Backorder.Status)

		sumTotal := result.Original.Total.Add(result.Backorder.Total)
		assert.True(t, sumTotal.Equal(decimal.NewFromFloat(161.20)), "totals were %s", sumTotal)
	})

	t.Run("empty input is rejected", func(t *testing.T) {
		svc, o := setup(t)
		_, err := svc.SplitOrder(ctx, o.ID, SplitOrderInput{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no backordered items specified")
	})

	t.Run("family query returns both halves", func(t *testing.T) {
		svc, o := setup(t)
		_, err := svc.SplitOrder(ctx, o.ID, SplitOrderInput{
			Items: []BackorderItemInput{{ProductID: o.Items[0].ProductID, Quantity: 1}},
		})
		require.NoError(t, err)

		family, err := svc.GetRelatedOrders(ctx, o.ID)
		require.NoError(t, err)
		assert.Len(t, family, 2)
	})
}
