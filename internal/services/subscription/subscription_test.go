package subscription_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/techcfa/cfa-backend/internal/models"
	"github.com/techcfa/cfa-backend/internal/razorpay"
	"github.com/techcfa/cfa-backend/internal/services/subscription"
	"github.com/techcfa/cfa-backend/internal/storage"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) CountUsers(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) CancelSubscription(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *RepoMock) GetPlanByID(ctx context.Context, planID string) (*models.Plan, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

func (m *RepoMock) ListActivePlans(ctx context.Context) ([]models.Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Plan), args.Error(1)
}

func (m *RepoMock) ListAllPlans(ctx context.Context) ([]models.Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Plan), args.Error(1)
}

func (m *RepoMock) CreatePlan(ctx context.Context, p models.Plan) (string, error) {
	args := m.Called(ctx, p)
	return args.String(0), args.Error(1)
}

func (m *RepoMock) UpdatePlan(ctx context.Context, p models.Plan) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *RepoMock) CreatePayment(ctx context.Context, p models.Payment) (string, error) {
	args := m.Called(ctx, p)
	return args.String(0), args.Error(1)
}

func (m *RepoMock) GetPaymentByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *RepoMock) CompletePaymentAndActivate(ctx context.Context, userID, orderID, paymentID string,
	durationMonths int, planName string, members []models.Member) (*models.Payment, error) {
	args := m.Called(ctx, userID, orderID, paymentID, durationMonths, planName, members)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *RepoMock) ListPaymentsByUser(ctx context.Context, userID string) ([]models.Payment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Payment), args.Error(1)
}

type OrderCreatorMock struct {
	mock.Mock
}

func (m *OrderCreatorMock) CreateOrder(ctx context.Context, req razorpay.OrderRequest) (*razorpay.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*razorpay.Order), args.Error(1)
}

type CacheMock struct {
	mock.Mock
}

func (m *CacheMock) Get(ctx context.Context, key string, result any) (bool, error) {
	args := m.Called(ctx, key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *CacheMock) Invalidate(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type SheetsMock struct {
	mock.Mock
}

func (m *SheetsMock) CreateHeaders(ctx context.Context, spreadsheetID string) error {
	args := m.Called(ctx, spreadsheetID)
	return args.Error(0)
}

func (m *SheetsMock) AppendRow(ctx context.Context, spreadsheetID string, row []any) error {
	args := m.Called(ctx, spreadsheetID, row)
	return args.Error(0)
}

const (
	testSecret      = "test-key-secret"
	testSpreadsheet = "sheet-1"
	freeLimit       = 500
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newService(repo *RepoMock, orders *OrderCreatorMock, c *CacheMock, sh *SheetsMock) *subscription.Service {
	return subscription.New(repo, orders, c, sh, testSecret, testSpreadsheet,
		freeLimit, 5*time.Minute, newNoopLogger())
}

func sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func intPtr(v int) *int { return &v }

func basicPlan() *models.Plan {
	return &models.Plan{
		PlanID: "basic", PlanName: "Basic Protection",
		Price: 1999, DurationMonths: 12, IsActive: true,
	}
}

func TestCreateOrder_Amounts(t *testing.T) {
	tests := []struct {
		name       string
		plan       *models.Plan
		totalUsers int
		wantAmount int
		wantFree   bool
	}{
		{
			name:       "standard price after threshold",
			plan:       basicPlan(),
			totalUsers: freeLimit + 1,
			wantAmount: 1999,
		},
		{
			name: "special price wins",
			plan: &models.Plan{
				PlanID: "basic", PlanName: "Basic Protection",
				Price: 1999, SpecialPrice: intPtr(999),
				DurationMonths: 12, IsActive: true,
			},
			totalUsers: freeLimit + 1,
			wantAmount: 999,
		},
		{
			name:       "free below threshold",
			plan:       basicPlan(),
			totalUsers: freeLimit,
			wantAmount: 0,
			wantFree:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			orders := new(OrderCreatorMock)

			repo.On("GetPlanByID", mock.Anything, "basic").Return(tt.plan, nil).Once()
			repo.On("CountUsers", mock.Anything).Return(tt.totalUsers, nil).Once()
			orders.On("CreateOrder", mock.Anything, mock.MatchedBy(func(req razorpay.OrderRequest) bool {
				return req.Amount == tt.wantAmount*100 && req.Currency == "INR" && req.Receipt != ""
			})).Return(&razorpay.Order{ID: "order_abc", Amount: tt.wantAmount * 100}, nil).Once()
			repo.On("CreatePayment", mock.Anything, mock.MatchedBy(func(p models.Payment) bool {
				return p.RazorpayOrderID == "order_abc" && p.Amount == tt.wantAmount &&
					p.UserID == "user-1" && p.PlanID == "basic"
			})).Return("payment-1", nil).Once()

			svc := newService(repo, orders, new(CacheMock), new(SheetsMock))
			user := &models.User{ID: "user-1"}
			res, err := svc.CreateOrder(context.Background(), user, "basic", nil)

			require.NoError(t, err)
			assert.Equal(t, "order_abc", res.OrderID)
			assert.Equal(t, tt.wantAmount, res.Amount)
			assert.Equal(t, tt.wantFree, res.IsFreeUser)
			repo.AssertExpectations(t)
			orders.AssertExpectations(t)
		})
	}
}

func TestCreateOrder_AlreadyActive(t *testing.T) {
	svc := newService(new(RepoMock), new(OrderCreatorMock), new(CacheMock), new(SheetsMock))

	user := &models.User{
		ID:           "user-1",
		Subscription: models.UserSubscription{Status: models.SubscriptionActive},
	}
	_, err := svc.CreateOrder(context.Background(), user, "basic", nil)

	assert.ErrorIs(t, err, subscription.ErrAlreadyActive)
}

func TestCreateOrder_InactivePlan(t *testing.T) {
	repo := new(RepoMock)
	plan := basicPlan()
	plan.IsActive = false
	repo.On("GetPlanByID", mock.Anything, "basic").Return(plan, nil).Once()

	svc := newService(repo, new(OrderCreatorMock), new(CacheMock), new(SheetsMock))
	_, err := svc.CreateOrder(context.Background(), &models.User{ID: "user-1"}, "basic", nil)

	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestVerifyPayment_BadSignature(t *testing.T) {
	repo := new(RepoMock)
	svc := newService(repo, new(OrderCreatorMock), new(CacheMock), new(SheetsMock))

	user := &models.User{ID: "user-1"}
	_, err := svc.VerifyPayment(context.Background(), user, "order_abc", "pay_xyz", "bogus", nil)

	assert.ErrorIs(t, err, subscription.ErrInvalidSignature)
	// Nothing was read or written.
	repo.AssertNotCalled(t, "GetPaymentByOrderID", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "CompletePaymentAndActivate",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyPayment_Success(t *testing.T) {
	repo := new(RepoMock)
	sheetsMock := new(SheetsMock)

	members := []models.Member{{Name: "Kid", Email: "kid@example.com"}}
	payment := &models.Payment{
		ID: "payment-1", UserID: "user-1", PlanID: "basic",
		RazorpayOrderID: "order_abc", Amount: 1999, Status: models.PaymentPending,
	}
	repo.On("GetPaymentByOrderID", mock.Anything, "order_abc").Return(payment, nil).Once()
	repo.On("GetPlanByID", mock.Anything, "basic").Return(basicPlan(), nil).Once()
	repo.On("CompletePaymentAndActivate", mock.Anything,
		"user-1", "order_abc", "pay_xyz", 12, "Basic Protection", members).
		Return(&models.Payment{ID: "payment-1", Status: models.PaymentCompleted}, nil).Once()

	updated := &models.User{
		ID: "user-1", FullName: "A", Email: "a@b.com",
		Subscription: models.UserSubscription{
			PlanID: "basic", PlanName: "Basic Protection",
			Status: models.SubscriptionActive, Amount: 1999,
		},
	}
	repo.On("GetUserByID", mock.Anything, "user-1").Return(updated, nil).Once()
	sheetsMock.On("AppendRow", mock.Anything, testSpreadsheet, mock.Anything).Return(nil).Once()

	svc := newService(repo, new(OrderCreatorMock), new(CacheMock), sheetsMock)
	user := &models.User{ID: "user-1"}
	sub, err := svc.VerifyPayment(context.Background(), user,
		"order_abc", "pay_xyz", sign("order_abc", "pay_xyz"), members)

	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionActive, sub.Status)
	assert.Equal(t, "Basic Protection", sub.PlanName)
	repo.AssertExpectations(t)
	sheetsMock.AssertExpectations(t)
}

func TestVerifyPayment_EmptyMembersKeepExisting(t *testing.T) {
	repo := new(RepoMock)
	sheetsMock := new(SheetsMock)

	existing := []models.Member{{Name: "Kid", Email: "kid@example.com"}}
	payment := &models.Payment{
		ID: "payment-1", UserID: "user-1", PlanID: "basic",
		RazorpayOrderID: "order_abc", Amount: 1999, Status: models.PaymentPending,
	}
	repo.On("GetPaymentByOrderID", mock.Anything, "order_abc").Return(payment, nil).Once()
	repo.On("GetPlanByID", mock.Anything, "basic").Return(basicPlan(), nil).Once()
	// The stored member list survives a callback without members.
	repo.On("CompletePaymentAndActivate", mock.Anything,
		"user-1", "order_abc", "pay_xyz", 12, "Basic Protection", existing).
		Return(&models.Payment{ID: "payment-1", Status: models.PaymentCompleted}, nil).Once()
	repo.On("GetUserByID", mock.Anything, "user-1").Return(&models.User{
		ID:           "user-1",
		Members:      existing,
		Subscription: models.UserSubscription{Status: models.SubscriptionActive},
	}, nil).Once()
	sheetsMock.On("AppendRow", mock.Anything, testSpreadsheet, mock.Anything).Return(nil).Once()

	svc := newService(repo, new(OrderCreatorMock), new(CacheMock), sheetsMock)
	user := &models.User{ID: "user-1", Members: existing}
	_, err := svc.VerifyPayment(context.Background(), user,
		"order_abc", "pay_xyz", sign("order_abc", "pay_xyz"), []models.Member{})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestVerifyPayment_SheetsFailureSwallowed(t *testing.T) {
	repo := new(RepoMock)
	sheetsMock := new(SheetsMock)

	payment := &models.Payment{
		ID: "payment-1", UserID: "user-1", PlanID: "basic",
		RazorpayOrderID: "order_abc", Amount: 1999, Status: models.PaymentPending,
	}
	repo.On("GetPaymentByOrderID", mock.Anything, "order_abc").Return(payment, nil).Once()
	repo.On("GetPlanByID", mock.Anything, "basic").Return(basicPlan(), nil).Once()
	repo.On("CompletePaymentAndActivate", mock.Anything,
		"user-1", "order_abc", "pay_xyz", 12, "Basic Protection", mock.Anything).
		Return(&models.Payment{ID: "payment-1", Status: models.PaymentCompleted}, nil).Once()
	repo.On("GetUserByID", mock.Anything, "user-1").Return(&models.User{
		ID:           "user-1",
		Subscription: models.UserSubscription{Status: models.SubscriptionActive},
	}, nil).Once()
	sheetsMock.On("AppendRow", mock.Anything, testSpreadsheet, mock.Anything).
		Return(assert.AnError).Once()

	svc := newService(repo, new(OrderCreatorMock), new(CacheMock), sheetsMock)
	sub, err := svc.VerifyPayment(context.Background(), &models.User{ID: "user-1"},
		"order_abc", "pay_xyz", sign("order_abc", "pay_xyz"), nil)

	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionActive, sub.Status)
}

func TestVerifyPayment_AlreadyCompleted(t *testing.T) {
	repo := new(RepoMock)

	payment := &models.Payment{
		ID: "payment-1", UserID: "user-1", PlanID: "basic",
		RazorpayOrderID: "order_abc", Status: models.PaymentCompleted,
	}
	repo.On("GetPaymentByOrderID", mock.Anything, "order_abc").Return(payment, nil).Once()
	repo.On("GetPlanByID", mock.Anything, "basic").Return(basicPlan(), nil).Once()
	// No pending row matches, the conditional update reports not found.
	repo.On("CompletePaymentAndActivate", mock.Anything,
		"user-1", "order_abc", "pay_xyz", 12, "Basic Protection", mock.Anything).
		Return(nil, storage.ErrNotFound).Once()

	svc := newService(repo, new(OrderCreatorMock), new(CacheMock), new(SheetsMock))
	_, err := svc.VerifyPayment(context.Background(), &models.User{ID: "user-1"},
		"order_abc", "pay_xyz", sign("order_abc", "pay_xyz"), nil)

	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCancel(t *testing.T) {
	t.Run("active subscription cancelled", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("CancelSubscription", mock.Anything, "user-1").Return(nil).Once()

		svc := newService(repo, new(OrderCreatorMock), new(CacheMock), new(SheetsMock))
		require.NoError(t, svc.Cancel(context.Background(), "user-1"))
	})

	t.Run("not active", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("CancelSubscription", mock.Anything, "user-1").
			Return(storage.ErrNotFound).Once()

		svc := newService(repo, new(OrderCreatorMock), new(CacheMock), new(SheetsMock))
		err := svc.Cancel(context.Background(), "user-1")
		assert.ErrorIs(t, err, subscription.ErrNotActive)
	})
}

func TestListPlans_Cache(t *testing.T) {
	t.Run("cache miss populates", func(t *testing.T) {
		repo := new(RepoMock)
		c := new(CacheMock)
		plans := []models.Plan{*basicPlan()}

		c.On("Get", mock.Anything, "plans:active", mock.Anything).Return(false, nil).Once()
		repo.On("ListActivePlans", mock.Anything).Return(plans, nil).Once()
		c.On("Set", mock.Anything, "plans:active", plans, 5*time.Minute).Return(nil).Once()

		svc := newService(repo, new(OrderCreatorMock), c, new(SheetsMock))
		got, err := svc.ListPlans(context.Background())

		require.NoError(t, err)
		assert.Equal(t, plans, got)
		c.AssertExpectations(t)
	})

	t.Run("catalog write invalidates", func(t *testing.T) {
		repo := new(RepoMock)
		c := new(CacheMock)
		plan := *basicPlan()

		repo.On("CreatePlan", mock.Anything, plan).Return("plan-1", nil).Once()
		c.On("Invalidate", mock.Anything, "plans:active").Return(nil).Once()

		svc := newService(repo, new(OrderCreatorMock), c, new(SheetsMock))
		_, err := svc.CreatePlan(context.Background(), plan)

		require.NoError(t, err)
		c.AssertExpectations(t)
	})
}
