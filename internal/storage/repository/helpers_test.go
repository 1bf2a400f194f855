package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/lms/internal/migrations"
	"github.com/magabrotheeeer/lms/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))
	require.NoError(t, CheckDatabaseReady(storage))

	return storage
}

// TestDataFactory создаёт тестовые данные через методы Storage.
type TestDataFactory struct {
	t       *testing.T
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(t *testing.T, storage *Storage) *TestDataFactory {
	return &TestDataFactory{t: t, storage: storage}
}

func (f *TestDataFactory) User(email string, groups ...string) *models.User {
	f.t.Helper()
	u, err := f.storage.CreateUser(context.Background(), &models.User{
		Email:        email,
		PasswordHash: "hash",
		IsActive:     true,
	})
	require.NoError(f.t, err)
	for _, g := range groups {
		require.NoError(f.t, f.storage.AddUserToGroup(context.Background(), email, g))
	}
	if len(groups) > 0 {
		u, err = f.storage.GetUserByID(context.Background(), u.ID)
		require.NoError(f.t, err)
	}
	return u
}

func (f *TestDataFactory) Course(title string, ownerID int64) *models.Course {
	f.t.Helper()
	c, err := f.storage.CreateCourse(context.Background(), &models.Course{Title: title, OwnerID: &ownerID})
	require.NoError(f.t, err)
	return c
}

func (f *TestDataFactory) Lesson(title string, courseID *int64, ownerID int64) *models.Lesson {
	f.t.Helper()
	l, err := f.storage.CreateLesson(context.Background(), &models.Lesson{Title: title, CourseID: courseID, OwnerID: &ownerID})
	require.NoError(f.t, err)
	return l
}

func (f *TestDataFactory) Payment(userID int64, amount string, method models.PaymentMethod) *models.Payment {
	f.t.Helper()
	p, err := f.storage.CreatePayment(context.Background(), &models.Payment{
		UserID: userID,
		Amount: decimal.RequireFromString(amount),
		Method: method,
		Status: models.PaymentStatusPaid,
	})
	require.NoError(f.t, err)
	return p
}

func ptr[T any](v T) *T { return &v }
