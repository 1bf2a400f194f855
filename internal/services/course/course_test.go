package course

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/lms/internal/models"
	"github.com/magabrotheeeer/lms/internal/policy"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateCourse(ctx context.Context, c *models.Course) (*models.Course, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *RepoMock) GetCourse(ctx context.Context, id int64) (*models.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *RepoMock) ListCourses(ctx context.Context, ownerID *int64, page models.Page) ([]*models.Course, int, error) {
	args := m.Called(ctx, ownerID, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Course), args.Int(1), args.Error(2)
}

// UpdateCourse применяет mutate к копии курса, заданного в ожидании, как это делает хранилище.
func (m *RepoMock) UpdateCourse(ctx context.Context, id int64, mutate func(*models.Course) error) (*models.Course, []string, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	c := *args.Get(0).(*models.Course)
	if err := mutate(&c); err != nil {
		return nil, nil, err
	}
	return &c, args.Get(1).([]string), args.Error(2)
}

func (m *RepoMock) DeleteCourse(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(ctx context.Context, key string, result any) (bool, error) {
	args := m.Called(ctx, key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}

func (m *CacheMock) Invalidate(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) Submit(ctx context.Context, courseID int64, email string) error {
	return m.Called(ctx, courseID, email).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	now       = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	owner     = policy.Actor{ID: 1, Authenticated: true}
	moderator = policy.Actor{ID: 2, Authenticated: true, Groups: []string{models.GroupModerators}}
	stranger  = policy.Actor{ID: 3, Authenticated: true}
)

func ptr[T any](v T) *T { return &v }

func newService(r *RepoMock, c *CacheMock, n *NotifierMock) *Service {
	s := New(r, c, n, newNoopLogger(), 4*time.Hour, time.Hour)
	s.now = func() time.Time { return now }
	return s
}

func courseUpdatedAgo(ago *time.Duration) *models.Course {
	c := &models.Course{ID: 10, Title: "Go basics", OwnerID: ptr(int64(1))}
	if ago != nil {
		c.UpdatedAt = ptr(now.Add(-*ago))
	}
	return c
}

func TestService_Update_Guard(t *testing.T) {
	tests := []struct {
		name        string
		updatedAgo  *time.Duration
		subscribers []string
		wantErr     error
	}{
		{
			name:        "never updated before",
			updatedAgo:  nil,
			subscribers: []string{"a@example.com"},
		},
		{
			name:        "updated five hours ago",
			updatedAgo:  ptr(5 * time.Hour),
			subscribers: []string{"a@example.com", "b@example.com"},
		},
		{
			name:        "updated exactly at cooldown boundary",
			updatedAgo:  ptr(4 * time.Hour),
			subscribers: []string{"a@example.com"},
		},
		{
			name:        "updated one hour ago is rejected",
			updatedAgo:  ptr(time.Hour),
			subscribers: []string{"a@example.com", "b@example.com"},
			wantErr:     models.ErrCourseRecentlyUpdated,
		},
		{
			name:        "updated a second ago is rejected",
			updatedAgo:  ptr(time.Second),
			subscribers: nil,
			wantErr:     models.ErrCourseRecentlyUpdated,
		},
		{
			name:        "no subscribers",
			updatedAgo:  ptr(5 * time.Hour),
			subscribers: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, c, n := new(RepoMock), new(CacheMock), new(NotifierMock)
			stored := courseUpdatedAgo(tt.updatedAgo)
			r.On("GetCourse", mock.Anything, int64(10)).Return(stored, nil).Once()
			r.On("UpdateCourse", mock.Anything, int64(10)).Return(stored, tt.subscribers, nil).Once()
			if tt.wantErr == nil {
				c.On("Invalidate", mock.Anything, []string{"course:10"}).Return(nil).Once()
				for _, email := range tt.subscribers {
					n.On("Submit", mock.Anything, int64(10), email).Return(nil).Once()
				}
			}

			got, err := newService(r, c, n).Update(context.Background(), owner, 10,
				models.CourseUpdate{Title: ptr("Go advanced")}, policy.OpUpdate)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				n.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
				c.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Go advanced", got.Title)
			require.NotNil(t, got.UpdatedAt)
			assert.Equal(t, now, *got.UpdatedAt)
			n.AssertNumberOfCalls(t, "Submit", len(tt.subscribers))
			r.AssertExpectations(t)
			c.AssertExpectations(t)
			n.AssertExpectations(t)
		})
	}
}

func TestService_Update_FanOutPerSubscriber(t *testing.T) {
	for _, count := range []int{0, 1, 3, 25} {
		t.Run(fmt.Sprintf("%d subscribers", count), func(t *testing.T) {
			r, c, n := new(RepoMock), new(CacheMock), new(NotifierMock)
			emails := make([]string, count)
			for i := range emails {
				emails[i] = fmt.Sprintf("s%d@example.com", i)
			}
			stored := courseUpdatedAgo(nil)
			r.On("GetCourse", mock.Anything, int64(10)).Return(stored, nil).Once()
			r.On("UpdateCourse", mock.Anything, int64(10)).Return(stored, emails, nil).Once()
			c.On("Invalidate", mock.Anything, mock.Anything).Return(nil)
			n.On("Submit", mock.Anything, int64(10), mock.AnythingOfType("string")).Return(nil)

			_, err := newService(r, c, n).Update(context.Background(), owner, 10, models.CourseUpdate{}, policy.OpPartialUpdate)
			require.NoError(t, err)

			n.AssertNumberOfCalls(t, "Submit", count)
			for _, email := range emails {
				n.AssertCalled(t, "Submit", mock.Anything, int64(10), email)
			}
		})
	}
}

func TestService_Update_NotifierFailureKeepsEdit(t *testing.T) {
	r, c, n := new(RepoMock), new(CacheMock), new(NotifierMock)
	stored := courseUpdatedAgo(nil)
	r.On("GetCourse", mock.Anything, int64(10)).Return(stored, nil).Once()
	r.On("UpdateCourse", mock.Anything, int64(10)).Return(stored, []string{"a@example.com", "b@example.com"}, nil).Once()
	c.On("Invalidate", mock.Anything, mock.Anything).Return(errors.New("redis down"))
	n.On("Submit", mock.Anything, int64(10), "a@example.com").Return(errors.New("broker down")).Once()
	n.On("Submit", mock.Anything, int64(10), "b@example.com").Return(nil).Once()

	got, err := newService(r, c, n).Update(context.Background(), owner, 10,
		models.CourseUpdate{Title: ptr("New")}, policy.OpUpdate)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	n.AssertExpectations(t)
}

func TestService_Update_PartialKeepsOtherFields(t *testing.T) {
	r, c, n := new(RepoMock), new(CacheMock), new(NotifierMock)
	stored := courseUpdatedAgo(nil)
	stored.Description = ptr("about go")
	r.On("GetCourse", mock.Anything, int64(10)).Return(stored, nil).Once()
	r.On("UpdateCourse", mock.Anything, int64(10)).Return(stored, []string{}, nil).Once()
	c.On("Invalidate", mock.Anything, mock.Anything).Return(nil)

	patch := models.CoursePatchRequest{Title: ptr("Renamed")}
	got, err := newService(r, c, n).Update(context.Background(), moderator, 10, patch.Update(), policy.OpPartialUpdate)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, "about go", *got.Description)
}

func TestService_Update_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		actor   policy.Actor
		getErr  error
		wantErr error
	}{
		{name: "unknown course", actor: owner, getErr: models.ErrNotFound, wantErr: models.ErrNotFound},
		{name: "stranger", actor: stranger, wantErr: models.ErrPolicyDenied},
		{name: "anonymous", actor: policy.Actor{}, wantErr: models.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, c, n := new(RepoMock), new(CacheMock), new(NotifierMock)
			if tt.getErr != nil {
				r.On("GetCourse", mock.Anything, int64(10)).Return(nil, tt.getErr).Once()
			} else {
				r.On("GetCourse", mock.Anything, int64(10)).Return(courseUpdatedAgo(nil), nil).Once()
			}

			_, err := newService(r, c, n).Update(context.Background(), tt.actor, 10, models.CourseUpdate{}, policy.OpUpdate)
			require.ErrorIs(t, err, tt.wantErr)
			r.AssertNotCalled(t, "UpdateCourse", mock.Anything, mock.Anything)
			n.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestService_Get(t *testing.T) {
	t.Run("cache miss loads and caches", func(t *testing.T) {
		r, c, n := new(RepoMock), new(CacheMock), new(NotifierMock)
		stored := courseUpdatedAgo(nil)
		c.On("Get", mock.Anything, "course:10", mock.Anything).Return(false, nil).Once()
		r.On("GetCourse", mock.Anything, int64(10)).Return(stored, nil).Once()
		c.On("Set", mock.Anything, "course:10", stored, time.Hour).Return(nil).Once()

		got, err := newService(r, c, n).Get(context.Background(), owner, 10)
		require.NoError(t, err)
		assert.Equal(t, stored, got)
		c.AssertExpectations(t)
	})

	t.Run("cache hit skips repository", func(t *testing.T) {
		r, c, n := new(RepoMock), new(CacheMock), new(NotifierMock)
		c.On("Get", mock.Anything, "course:10", mock.Anything).Run(func(args mock.Arguments) {
			out := args.Get(2).(*models.Course)
			*out = *courseUpdatedAgo(nil)
		}).Return(true, nil).Once()

		got, err := newService(r, c, n).Get(context.Background(), moderator, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(10), got.ID)
		r.AssertNotCalled(t, "GetCourse", mock.Anything, mock.Anything)
	})

	t.Run("stranger denied", func(t *testing.T) {
		r, c, n := new(RepoMock), new(CacheMock), new(NotifierMock)
		c.On("Get", mock.Anything, "course:10", mock.Anything).Return(false, errors.New("redis down")).Once()
		r.On("GetCourse", mock.Anything, int64(10)).Return(courseUpdatedAgo(nil), nil).Once()
		c.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		_, err := newService(r, c, n).Get(context.Background(), stranger, 10)
		require.ErrorIs(t, err, models.ErrPolicyDenied)
	})
}

func TestService_List_Scope(t *testing.T) {
	r, c, n := new(RepoMock), new(CacheMock), new(NotifierMock)
	page := models.Page{Limit: 10}
	r.On("ListCourses", mock.Anything, (*int64)(nil), page).Return([]*models.Course{}, 0, nil).Once()
	r.On("ListCourses", mock.Anything, ptr(int64(3)), page).Return([]*models.Course{{ID: 1}}, 1, nil).Once()
	s := newService(r, c, n)

	_, err := s.List(context.Background(), moderator, page)
	require.NoError(t, err)

	got, err := s.List(context.Background(), stranger, page)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count)
	r.AssertExpectations(t)
}

func TestService_Create(t *testing.T) {
	r, c, n := new(RepoMock), new(CacheMock), new(NotifierMock)
	r.On("CreateCourse", mock.Anything, mock.MatchedBy(func(c *models.Course) bool {
		return c.Title == "Go basics" && *c.OwnerID == stranger.ID && c.Description == nil && c.UpdatedAt == nil
	})).Return(&models.Course{ID: 5, Title: "Go basics", OwnerID: ptr(stranger.ID)}, nil).Once()

	got, err := newService(r, c, n).Create(context.Background(), stranger, models.CourseRequest{Title: "Go basics"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.ID)

	_, err = newService(r, c, n).Create(context.Background(), policy.Actor{}, models.CourseRequest{Title: "x"})
	require.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestService_Delete(t *testing.T) {
	tests := []struct {
		name    string
		actor   policy.Actor
		wantErr error
	}{
		{name: "owner deletes", actor: owner},
		{name: "moderator cannot delete", actor: moderator, wantErr: models.ErrPolicyDenied},
		{name: "stranger cannot delete", actor: stranger, wantErr: models.ErrPolicyDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, c, n := new(RepoMock), new(CacheMock), new(NotifierMock)
			r.On("GetCourse", mock.Anything, int64(10)).Return(courseUpdatedAgo(nil), nil).Once()
			r.On("DeleteCourse", mock.Anything, int64(10)).Return(nil).Maybe()
			c.On("Invalidate", mock.Anything, []string{"course:10"}).Return(nil).Maybe()

			err := newService(r, c, n).Delete(context.Background(), tt.actor, 10)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				r.AssertNotCalled(t, "DeleteCourse", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			r.AssertCalled(t, "DeleteCourse", mock.Anything, int64(10))
		})
	}
}
