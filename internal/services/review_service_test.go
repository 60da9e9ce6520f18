package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/mocks"
	"storefront/internal/repository"
	"storefront/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func seedOrders(t *testing.T, repo repository.OrderRepository, ids ...string) {
	t.Helper()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range ids {
		require.NoError(t, repo.Insert(context.Background(), CreateMockOrder(id, domain.StatusPending, base.Add(time.Duration(i)*time.Minute))))
	}
}

func TestReviewService_Transitions(t *testing.T) {
	tests := []struct {
		name           string
		steps          func(*ReviewService) error
		orderID        string
		expectedStatus domain.OrderStatus
		expectedIs     error
	}{
		{
			name: "approve pending",
			steps: func(s *ReviewService) error {
				_, err := s.Approve(context.Background(), "ORD-1")
				return err
			},
			orderID:        "ORD-1",
			expectedStatus: domain.StatusSuccess,
		},
		{
			name: "reject pending",
			steps: func(s *ReviewService) error {
				_, err := s.Reject(context.Background(), "ORD-1")
				return err
			},
			orderID:        "ORD-1",
			expectedStatus: domain.StatusRejected,
		},
		{
			name: "approve twice is a no-op",
			steps: func(s *ReviewService) error {
				if _, err := s.Approve(context.Background(), "ORD-1"); err != nil {
					return err
				}
				_, err := s.Approve(context.Background(), "ORD-1")
				return err
			},
			orderID:        "ORD-1",
			expectedStatus: domain.StatusSuccess,
		},
		{
			name: "reject twice is a no-op",
			steps: func(s *ReviewService) error {
				if _, err := s.Reject(context.Background(), "ORD-1"); err != nil {
					return err
				}
				_, err := s.Reject(context.Background(), "ORD-1")
				return err
			},
			orderID:        "ORD-1",
			expectedStatus: domain.StatusRejected,
		},
		{
			name: "reject after approve is refused",
			steps: func(s *ReviewService) error {
				if _, err := s.Approve(context.Background(), "ORD-1"); err != nil {
					return err
				}
				_, err := s.Reject(context.Background(), "ORD-1")
				return err
			},
			orderID:        "ORD-1",
			expectedStatus: domain.StatusSuccess,
			expectedIs:     ErrInvalidTransition,
		},
		{
			name: "approve after reject is refused",
			steps: func(s *ReviewService) error {
				if _, err := s.Reject(context.Background(), "ORD-1"); err != nil {
					return err
				}
				_, err := s.Approve(context.Background(), "ORD-1")
				return err
			},
			orderID:        "ORD-1",
			expectedStatus: domain.StatusRejected,
			expectedIs:     ErrInvalidTransition,
		},
		{
			name: "unknown order",
			steps: func(s *ReviewService) error {
				_, err := s.Approve(context.Background(), "ORD-404")
				return err
			},
			orderID:        "ORD-1",
			expectedStatus: domain.StatusPending,
			expectedIs:     ErrOrderNotFound,
		},
		{
			name: "blank order id",
			steps: func(s *ReviewService) error {
				_, err := s.Reject(context.Background(), "  ")
				return err
			},
			orderID:        "ORD-1",
			expectedStatus: domain.StatusPending,
			expectedIs:     ErrInvalidOrderQuery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewStore()
			seedOrders(t, store.Orders(), "ORD-1")
			service := NewReviewService(store.Orders())

			err := tt.steps(service)
			if tt.expectedIs != nil {
				assert.ErrorIs(t, err, tt.expectedIs)
			} else {
				assert.NoError(t, err)
			}

			o, err := service.Get(context.Background(), tt.orderID)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, o.Status)
		})
	}
}

func TestReviewService_ApproveKeepsContent(t *testing.T) {
	store := memory.NewStore()
	seedOrders(t, store.Orders(), "ORD-1")
	before, err := store.Orders().FindByID(context.Background(), "ORD-1")
	require.NoError(t, err)

	service := NewReviewService(store.Orders())
	later := before.CreatedAt.Add(time.Hour)
	service.now = func() time.Time { return later }

	after, err := service.Approve(context.Background(), "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, before.Items, after.Items)
	assert.True(t, before.Total.Equal(after.Total))
	assert.Equal(t, before.MinecraftUsername, after.MinecraftUsername)
	assert.Equal(t, before.TransactionReference, after.TransactionReference)
	assert.Equal(t, before.CreatedAt, after.CreatedAt)
	assert.Equal(t, later, after.UpdatedAt)
}

func TestReviewService_Overview(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedOrders(t, store.Orders(), "ORD-A", "ORD-B", "ORD-C")
	service := NewReviewService(store.Orders())

	_, err := service.Approve(ctx, "ORD-A")
	require.NoError(t, err)
	_, err = service.Reject(ctx, "ORD-B")
	require.NoError(t, err)

	pending, counts, err := service.Overview(ctx, domain.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "ORD-C", pending[0].OrderID)
	assert.Equal(t, StatusCounts{All: 3, Pending: 1, Success: 1, Rejected: 1}, counts)

	all, counts, err := service.Overview(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"ORD-C", "ORD-B", "ORD-A"}, []string{all[0].OrderID, all[1].OrderID, all[2].OrderID})
	assert.Equal(t, 3, counts.All)

	_, _, err = service.Overview(ctx, "shipped")
	assert.ErrorIs(t, err, ErrInvalidOrderQuery)

	listed, err := service.List(ctx, domain.StatusSuccess)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "ORD-A", listed[0].OrderID)
}

func TestReviewService_RepositoryErrors(t *testing.T) {
	tests := []struct {
		name          string
		setupMocks    func(*mocks.MockOrderRepository)
		expectedError string
	}{
		{
			name: "update fails",
			setupMocks: func(r *mocks.MockOrderRepository) {
				r.On("UpdateStatus", mock.Anything, "ORD-1", domain.StatusPending, domain.StatusSuccess, mock.AnythingOfType("time.Time")).
					Return(false, errors.New("database error"))
			},
			expectedError: "database error",
		},
		{
			name: "read back fails",
			setupMocks: func(r *mocks.MockOrderRepository) {
				r.On("UpdateStatus", mock.Anything, "ORD-1", domain.StatusPending, domain.StatusSuccess, mock.AnythingOfType("time.Time")).
					Return(true, nil)
				r.On("FindByID", mock.Anything, "ORD-1").Return(nil, errors.New("connection reset"))
			},
			expectedError: "connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(mocks.MockOrderRepository)
			tt.setupMocks(mockRepo)

			service := NewReviewService(mockRepo)
			result, err := service.Approve(context.Background(), "ORD-1")

			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedError)
			assert.Nil(t, result)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestCountByStatus(t *testing.T) {
	now := time.Now()
	orders := []domain.Order{
		*CreateMockOrder("a", domain.StatusPending, now),
		*CreateMockOrder("b", domain.StatusPending, now),
		*CreateMockOrder("c", domain.StatusSuccess, now),
	}
	assert.Equal(t, StatusCounts{All: 3, Pending: 2, Success: 1}, CountByStatus(orders))
	assert.Equal(t, StatusCounts{}, CountByStatus(nil))
}
