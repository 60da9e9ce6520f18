package mysql

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var orderColumns = []string{
	"order_id", "minecraft_username", "edition", "transaction_reference",
	"items", "total", "status", "created_at", "updated_at",
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func testOrder() *domain.Order {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Order{
		OrderID:              "ORD-1772366400000-AB12C",
		MinecraftUsername:    "Steve_123",
		Edition:              domain.EditionJava,
		TransactionReference: "412345678901",
		Items: []domain.OrderItem{{
			ProductID: "rank-knight", Name: "Knight Rank",
			UnitPrice: decimal.RequireFromString("9.99"), Quantity: 2,
			LineTotal: decimal.RequireFromString("19.98"),
		}},
		Total:     decimal.RequireFromString("19.98"),
		Status:    domain.StatusPending,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func TestOrderRepo_Insert(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedIs    error
		expectedError string
	}{
		{
			name: "inserted",
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta("INSERT INTO `orders`")).WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "duplicate id",
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta("INSERT INTO `orders`")).
					WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry for key 'PRIMARY'"})
			},
			expectedIs: repository.ErrDuplicateKey,
		},
		{
			name: "database error",
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta("INSERT INTO `orders`")).WillReturnError(errors.New("connection reset"))
			},
			expectedError: "connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tt.setupMock(mock)

			err := NewOrderRepository(db).Insert(context.Background(), testOrder())
			switch {
			case tt.expectedIs != nil:
				assert.ErrorIs(t, err, tt.expectedIs)
			case tt.expectedError != "":
				assert.ErrorContains(t, err, tt.expectedError)
				assert.NotErrorIs(t, err, repository.ErrDuplicateKey)
			default:
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestOrderRepo_FindByID(t *testing.T) {
	db, mock := newMockDB(t)
	o := testOrder()
	rows := sqlmock.NewRows(orderColumns).AddRow(
		o.OrderID, o.MinecraftUsername, string(o.Edition), o.TransactionReference,
		`[{"productId":"rank-knight","name":"Knight Rank","unitPrice":9.99,"quantity":2,"lineTotal":19.98}]`,
		"19.98", string(o.Status), o.CreatedAt, o.UpdatedAt,
	)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `orders` WHERE order_id = ?")).WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `orders` WHERE order_id = ?")).WillReturnRows(sqlmock.NewRows(orderColumns))

	repo := NewOrderRepository(db)
	got, err := repo.FindByID(context.Background(), o.OrderID)
	require.NoError(t, err)
	assert.Equal(t, o.OrderID, got.OrderID)
	assert.Equal(t, "19.98", got.Total.StringFixed(2))
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.True(t, got.Items[0].UnitPrice.Equal(decimal.RequireFromString("9.99")))

	_, err = repo.FindByID(context.Background(), "ORD-missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_UpdateStatus(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		expected bool
	}{
		{name: "pending order moved", affected: 1, expected: true},
		{name: "already reviewed", affected: 0, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			at := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)
			mock.ExpectExec(regexp.QuoteMeta("UPDATE `orders` SET")).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			ok, err := NewOrderRepository(db).UpdateStatus(context.Background(), "ORD-1", domain.StatusPending, domain.StatusSuccess, at)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestOrderRepo_ListFiltersByStatus(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `orders` WHERE status = ? ORDER BY created_at DESC")).
		WithArgs("pending").
		WillReturnRows(sqlmock.NewRows(orderColumns))

	out, err := NewOrderRepository(db).List(context.Background(), repository.OrderFilter{Status: domain.StatusPending})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepo_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `products` WHERE id = ?")).
		WithArgs("kit-pvp").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `products` WHERE id = ?")).
		WithArgs("kit-gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewProductRepository(db)
	assert.NoError(t, repo.Delete(context.Background(), "kit-pvp"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "kit-gone"), repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepo_CreateDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `products`")).
		WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := NewProductRepository(db).Create(context.Background(), &domain.Product{
		ID: "kit-pvp", Name: "PvP Kit", Price: decimal.RequireFromString("4.99"), Category: domain.CategoryKits,
	})
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepo_ListByCategory(t *testing.T) {
	db, mock := newMockDB(t)
	rows := sqlmock.NewRows([]string{"id", "name", "price", "category", "description", "perks", "badge", "popular", "created_at", "updated_at"}).
		AddRow("key-vote", "Vote Key", "2.49", "keys", "", `["1 crate"]`, "", false, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `products` WHERE category = ? ORDER BY category ASC, id ASC")).
		WithArgs("keys").
		WillReturnRows(rows)

	out, err := NewProductRepository(db).List(context.Background(), repository.ProductFilter{Category: domain.CategoryKeys})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "2.49", out[0].Price.StringFixed(2))
	assert.Equal(t, []string{"1 crate"}, out[0].Perks)
	assert.NoError(t, mock.ExpectationsWereMet())
}
