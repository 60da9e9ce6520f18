package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"storefront/internal/checkout"
	"storefront/internal/domain"
	"storefront/internal/mocks"
	"storefront/internal/repository"
	"storefront/internal/repository/memory"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validRequest() PlaceOrderRequest {
	return PlaceOrderRequest{
		MinecraftUsername:    "Steve 123",
		Edition:              domain.EditionBedrock,
		TransactionReference: TestTxnRef,
		Items:                []checkout.Line{{ProductID: TestProductID, Quantity: 2}},
	}
}

func TestOrderService_PlaceOrder(t *testing.T) {
	knight := CreateMockProduct(TestProductID, TestProductName, TestProductPrice, domain.CategoryRanks)

	tests := []struct {
		name          string
		req           func() PlaceOrderRequest
		setupMocks    func(*mocks.MockCatalog, *mocks.MockOrderRepository, *mocks.MockPublisher)
		expectedError string
		expectedIs    error
		expectedTotal string
		expectedUser  string
		expectedID    string
	}{
		{
			name: "bedrock order priced from catalog",
			req:  validRequest,
			setupMocks: func(c *mocks.MockCatalog, r *mocks.MockOrderRepository, p *mocks.MockPublisher) {
				c.On("GetProduct", mock.Anything, TestProductID).Return(knight, nil)
				r.On("Insert", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
				p.On("Publish", mock.Anything, domain.OrderCreatedPattern, mock.AnythingOfType("domain.OrderCreatedEvent")).Return(nil)
			},
			expectedTotal: "19.98",
			expectedUser:  ".Steve_123",
			expectedID:    "ORD-1-TEST1",
		},
		{
			name: "java username submitted verbatim",
			req: func() PlaceOrderRequest {
				r := validRequest()
				r.MinecraftUsername = "  Steve_123 "
				r.Edition = domain.EditionJava
				r.Items[0].Quantity = 1
				return r
			},
			setupMocks: func(c *mocks.MockCatalog, r *mocks.MockOrderRepository, p *mocks.MockPublisher) {
				c.On("GetProduct", mock.Anything, TestProductID).Return(knight, nil)
				r.On("Insert", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
				p.On("Publish", mock.Anything, domain.OrderCreatedPattern, mock.Anything).Return(nil)
			},
			expectedTotal: "9.99",
			expectedUser:  "Steve_123",
			expectedID:    "ORD-1-TEST1",
		},
		{
			name: "notification failure does not fail the order",
			req:  validRequest,
			setupMocks: func(c *mocks.MockCatalog, r *mocks.MockOrderRepository, p *mocks.MockPublisher) {
				c.On("GetProduct", mock.Anything, TestProductID).Return(knight, nil)
				r.On("Insert", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
				p.On("Publish", mock.Anything, domain.OrderCreatedPattern, mock.Anything).Return(errors.New("broker down"))
			},
			expectedTotal: "19.98",
			expectedUser:  ".Steve_123",
			expectedID:    "ORD-1-TEST1",
		},
		{
			name: "id collision retried with a fresh id",
			req:  validRequest,
			setupMocks: func(c *mocks.MockCatalog, r *mocks.MockOrderRepository, p *mocks.MockPublisher) {
				c.On("GetProduct", mock.Anything, TestProductID).Return(knight, nil)
				r.On("Insert", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(repository.ErrDuplicateKey).Once()
				r.On("Insert", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil).Once()
				p.On("Publish", mock.Anything, domain.OrderCreatedPattern, mock.Anything).Return(nil)
			},
			expectedTotal: "19.98",
			expectedUser:  ".Steve_123",
			expectedID:    "ORD-2-TEST2",
		},
		{
			name: "persistent id collision fails without overwriting",
			req:  validRequest,
			setupMocks: func(c *mocks.MockCatalog, r *mocks.MockOrderRepository, p *mocks.MockPublisher) {
				c.On("GetProduct", mock.Anything, TestProductID).Return(knight, nil)
				r.On("Insert", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(repository.ErrDuplicateKey).Times(maxIDAttempts)
			},
			expectedIs: ErrOrderIDCollision,
		},
		{
			name: "empty username",
			req: func() PlaceOrderRequest {
				r := validRequest()
				r.MinecraftUsername = ""
				return r
			},
			setupMocks:    func(*mocks.MockCatalog, *mocks.MockOrderRepository, *mocks.MockPublisher) {},
			expectedError: checkout.MsgUsernameRequired,
			expectedIs:    checkout.ErrInvalidInput,
		},
		{
			name: "unknown edition",
			req: func() PlaceOrderRequest {
				r := validRequest()
				r.Edition = "pocket"
				return r
			},
			setupMocks:    func(*mocks.MockCatalog, *mocks.MockOrderRepository, *mocks.MockPublisher) {},
			expectedError: checkout.MsgEditionInvalid,
			expectedIs:    checkout.ErrInvalidInput,
		},
		{
			name: "eleven digit transaction reference",
			req: func() PlaceOrderRequest {
				r := validRequest()
				r.TransactionReference = "41234567890"
				return r
			},
			setupMocks:    func(*mocks.MockCatalog, *mocks.MockOrderRepository, *mocks.MockPublisher) {},
			expectedError: checkout.MsgTxnRefInvalid,
			expectedIs:    checkout.ErrInvalidInput,
		},
		{
			name: "empty cart",
			req: func() PlaceOrderRequest {
				r := validRequest()
				r.Items = nil
				return r
			},
			setupMocks:    func(*mocks.MockCatalog, *mocks.MockOrderRepository, *mocks.MockPublisher) {},
			expectedError: checkout.MsgCartEmpty,
			expectedIs:    checkout.ErrInvalidInput,
		},
		{
			name: "unknown product names the id and persists nothing",
			req: func() PlaceOrderRequest {
				r := validRequest()
				r.Items = append(r.Items, checkout.Line{ProductID: "rank-deleted", Quantity: 1})
				return r
			},
			setupMocks: func(c *mocks.MockCatalog, r *mocks.MockOrderRepository, p *mocks.MockPublisher) {
				c.On("GetProduct", mock.Anything, TestProductID).Return(knight, nil)
				c.On("GetProduct", mock.Anything, "rank-deleted").Return(nil, repository.ErrNotFound)
			},
			expectedError: "rank-deleted",
			expectedIs:    ErrUnknownProduct,
		},
		{
			name: "zero quantity names the id",
			req: func() PlaceOrderRequest {
				r := validRequest()
				r.Items[0].Quantity = 0
				return r
			},
			setupMocks: func(c *mocks.MockCatalog, r *mocks.MockOrderRepository, p *mocks.MockPublisher) {
				c.On("GetProduct", mock.Anything, TestProductID).Return(knight, nil)
			},
			expectedError: TestProductID,
			expectedIs:    checkout.ErrInvalidInput,
		},
		{
			name: "catalog unavailable",
			req:  validRequest,
			setupMocks: func(c *mocks.MockCatalog, r *mocks.MockOrderRepository, p *mocks.MockPublisher) {
				c.On("GetProduct", mock.Anything, TestProductID).Return(nil, errors.New("connection refused"))
			},
			expectedError: "connection refused",
		},
		{
			name: "database error",
			req:  validRequest,
			setupMocks: func(c *mocks.MockCatalog, r *mocks.MockOrderRepository, p *mocks.MockPublisher) {
				c.On("GetProduct", mock.Anything, TestProductID).Return(knight, nil)
				r.On("Insert", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(errors.New("database error"))
			},
			expectedError: "database error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockCatalog := new(mocks.MockCatalog)
			mockRepo := new(mocks.MockOrderRepository)
			mockPublisher := new(mocks.MockPublisher)

			tt.setupMocks(mockCatalog, mockRepo, mockPublisher)

			service := NewOrderService(mockCatalog, mockRepo, mockPublisher)
			service.SetIDGenerator(&seqIDs{})

			result, err := service.PlaceOrder(context.Background(), tt.req())
			require.NoError(t, service.Wait(context.Background()))

			if tt.expectedError != "" || tt.expectedIs != nil {
				require.Error(t, err)
				if tt.expectedError != "" {
					assert.Contains(t, err.Error(), tt.expectedError)
				}
				if tt.expectedIs != nil {
					assert.ErrorIs(t, err, tt.expectedIs)
				}
				assert.Nil(t, result)
				mockPublisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				require.NotNil(t, result)
				assert.Equal(t, tt.expectedID, result.OrderID)
				assert.Equal(t, tt.expectedUser, result.MinecraftUsername)
				assert.Equal(t, tt.expectedTotal, result.Total.StringFixed(2))
				assert.Equal(t, domain.StatusPending, result.Status)
				assert.Equal(t, TestProductName, result.Items[0].Name)
				assert.True(t, decimal.RequireFromString(TestProductPrice).Equal(result.Items[0].UnitPrice))
			}

			mockCatalog.AssertExpectations(t)
			mockRepo.AssertExpectations(t)
			mockPublisher.AssertExpectations(t)
		})
	}
}

func TestOrderService_UnknownProductNotPersisted(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Products().Create(ctx, CreateMockProduct(TestProductID, TestProductName, TestProductPrice, domain.CategoryRanks)))

	service := NewOrderService(NewCatalogService(store.Products()), store.Orders(), nil)
	req := validRequest()
	req.Items = []checkout.Line{{ProductID: "rank-gone", Quantity: 1}}

	_, err := service.PlaceOrder(ctx, req)
	var unknown *UnknownProductError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "rank-gone", unknown.ProductID)

	orders, err := store.Orders().List(ctx, repository.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderService_PublishesSummaryAfterCommit(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Products().Create(ctx, CreateMockProduct(TestProductID, TestProductName, TestProductPrice, domain.CategoryRanks)))

	pub := new(mocks.MockPublisher)
	var evt domain.OrderCreatedEvent
	pub.On("Publish", mock.Anything, domain.OrderCreatedPattern, mock.Anything).
		Run(func(args mock.Arguments) {
			evt = args.Get(2).(domain.OrderCreatedEvent)
			// The order must already be readable when the sink runs.
			_, err := store.Orders().FindByID(context.Background(), evt.OrderID)
			assert.NoError(t, err)
		}).
		Return(nil)

	service := NewOrderService(NewCatalogService(store.Products()), store.Orders(), pub)
	order, err := service.PlaceOrder(ctx, validRequest())
	require.NoError(t, err)
	require.NoError(t, service.Wait(context.Background()))

	assert.Equal(t, order.OrderID, evt.OrderID)
	assert.Equal(t, TestTxnRef, evt.TransactionReference)
	assert.Equal(t, "19.98", evt.Total.StringFixed(2))
	pub.AssertExpectations(t)
}

func TestOrderService_WaitGivesUpOnDeadline(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Products().Create(ctx, CreateMockProduct(TestProductID, TestProductName, TestProductPrice, domain.CategoryRanks)))

	release := make(chan struct{})
	pub := new(mocks.MockPublisher)
	pub.On("Publish", mock.Anything, domain.OrderCreatedPattern, mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(nil)

	service := NewOrderService(NewCatalogService(store.Products()), store.Orders(), pub)
	_, err := service.PlaceOrder(ctx, validRequest())
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, service.Wait(waitCtx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, service.Wait(context.Background()))
	pub.AssertExpectations(t)
}

// Property: the stored total is the sum of catalog price times quantity,
// rounded to cents, for any cart.
func TestOrderService_TotalFromCatalogProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("total equals sum of catalog price * quantity", prop.ForAll(
		func(cents []int, qtys []int) bool {
			n := len(cents)
			if len(qtys) < n {
				n = len(qtys)
			}
			if n == 0 {
				return true
			}

			ctx := context.Background()
			store := memory.NewStore()
			lines := make([]checkout.Line, 0, n)
			want := decimal.Zero
			for i := 0; i < n; i++ {
				price := decimal.New(int64(cents[i]), -2)
				id := fmt.Sprintf("item-%d", i)
				if err := store.Products().Create(ctx, &domain.Product{ID: id, Name: id, Price: price, Category: domain.CategoryMisc}); err != nil {
					return false
				}
				lines = append(lines, checkout.Line{ProductID: id, Quantity: qtys[i]})
				want = want.Add(price.Mul(decimal.NewFromInt(int64(qtys[i]))))
			}

			service := NewOrderService(NewCatalogService(store.Products()), store.Orders(), nil)
			order, err := service.PlaceOrder(ctx, PlaceOrderRequest{
				MinecraftUsername:    "Steve_123",
				Edition:              domain.EditionJava,
				TransactionReference: TestTxnRef,
				Items:                lines,
			})
			if err != nil {
				return false
			}
			stored, err := store.Orders().FindByID(ctx, order.OrderID)
			if err != nil {
				return false
			}
			return stored.Total.Equal(want) && order.Total.Equal(want)
		},
		gen.SliceOf(gen.IntRange(0, 100000)),
		gen.SliceOf(gen.IntRange(1, 64)),
	))

	properties.TestingRun(t)
}
