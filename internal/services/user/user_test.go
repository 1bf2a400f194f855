package user

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/lms/internal/models"
	"github.com/magabrotheeeer/lms/internal/policy"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) ListUsers(ctx context.Context, search string, onlyID *int64, page models.Page) ([]*models.User, int, error) {
	args := m.Called(ctx, search, onlyID, page)
	return args.Get(0).([]*models.User), args.Int(1), args.Error(2)
}

func (m *RepoMock) UpdateUser(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *RepoMock) DeleteUser(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type PaymentsMock struct{ mock.Mock }

func (m *PaymentsMock) ListPayments(ctx context.Context, f models.PaymentFilter, page models.Page) ([]*models.Payment, int, error) {
	args := m.Called(ctx, f, page)
	return args.Get(0).([]*models.Payment), args.Int(1), args.Error(2)
}

var (
	self      = policy.Actor{ID: 1, Authenticated: true}
	moderator = policy.Actor{ID: 2, Authenticated: true, Groups: []string{models.GroupModerators}}
	stranger  = policy.Actor{ID: 3, Authenticated: true}
)

func ptr[T any](v T) *T { return &v }

func newService(r *RepoMock, p *PaymentsMock) *Service {
	return New(r, p, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func storedUser() *models.User {
	return &models.User{ID: 1, Email: "a@example.com", FirstName: "Ann", IsActive: true, Groups: []string{}}
}

func TestService_Get(t *testing.T) {
	tests := []struct {
		name    string
		actor   policy.Actor
		wantErr error
	}{
		{name: "self", actor: self},
		{name: "moderator", actor: moderator},
		{name: "stranger", actor: stranger, wantErr: models.ErrPolicyDenied},
		{name: "anonymous", actor: policy.Actor{}, wantErr: models.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, p := new(RepoMock), new(PaymentsMock)
			r.On("GetUserByID", mock.Anything, int64(1)).Return(storedUser(), nil).Once()
			payments := []*models.Payment{{ID: 9, UserID: 1, Amount: decimal.RequireFromString("10.50"), Method: models.PaymentCash}}
			p.On("ListPayments", mock.Anything, models.PaymentFilter{UserID: ptr(int64(1)), OrderDesc: true}, models.Page{Limit: profilePayments}).
				Return(payments, 1, nil).Maybe()

			got, err := newService(r, p).Get(context.Background(), tt.actor, 1)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				p.AssertNotCalled(t, "ListPayments", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, payments, got.Payments)
		})
	}
}

func TestService_List(t *testing.T) {
	r, p := new(RepoMock), new(PaymentsMock)
	page := models.Page{Limit: 10}
	r.On("ListUsers", mock.Anything, "example", (*int64)(nil), page).
		Return([]*models.User{storedUser(), {ID: 3}}, 2, nil).Once()
	r.On("ListUsers", mock.Anything, "", ptr(int64(3)), page).
		Return([]*models.User{{ID: 3}}, 1, nil).Once()
	s := newService(r, p)

	got, err := s.List(context.Background(), moderator, "example", page)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Count)

	got, err = s.List(context.Background(), stranger, "", page)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count)
	r.AssertExpectations(t)
}

func TestService_Update(t *testing.T) {
	t.Run("partial update keeps other fields", func(t *testing.T) {
		r, p := new(RepoMock), new(PaymentsMock)
		r.On("GetUserByID", mock.Anything, int64(1)).Return(storedUser(), nil).Once()
		r.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.FirstName == "Ann" && *u.City == "Kazan"
		})).Return(nil).Once()

		got, err := newService(r, p).Update(context.Background(), self, 1,
			models.ProfileUpdate{City: ptr("Kazan")}, policy.OpPartialUpdate)
		require.NoError(t, err)
		assert.Equal(t, "Kazan", *got.City)
		r.AssertExpectations(t)
	})

	t.Run("stranger denied", func(t *testing.T) {
		r, p := new(RepoMock), new(PaymentsMock)
		r.On("GetUserByID", mock.Anything, int64(1)).Return(storedUser(), nil).Once()

		_, err := newService(r, p).Update(context.Background(), stranger, 1,
			models.ProfileUpdate{City: ptr("Kazan")}, policy.OpUpdate)
		require.ErrorIs(t, err, models.ErrPolicyDenied)
		r.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything)
	})
}

func TestService_Delete(t *testing.T) {
	tests := []struct {
		name    string
		actor   policy.Actor
		wantErr error
	}{
		{name: "self", actor: self},
		{name: "moderator cannot delete others", actor: moderator, wantErr: models.ErrPolicyDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, p := new(RepoMock), new(PaymentsMock)
			r.On("GetUserByID", mock.Anything, int64(1)).Return(storedUser(), nil).Once()
			r.On("DeleteUser", mock.Anything, int64(1)).Return(nil).Maybe()

			err := newService(r, p).Delete(context.Background(), tt.actor, 1)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				r.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
		})
	}

	t.Run("missing", func(t *testing.T) {
		r, p := new(RepoMock), new(PaymentsMock)
		r.On("GetUserByID", mock.Anything, int64(5)).Return(nil, models.ErrNotFound).Once()
		require.ErrorIs(t, newService(r, p).Delete(context.Background(), self, 5), models.ErrNotFound)
	})
}
