package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/lms/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestAllowed_Table(t *testing.T) {
	owner := Actor{ID: 1, Authenticated: true}
	moderator := Actor{ID: 2, Authenticated: true, Groups: []string{models.GroupModerators}}
	stranger := Actor{ID: 3, Authenticated: true}
	anonymous := Actor{}

	course := &models.Course{ID: 10, OwnerID: ptr(int64(1))}

	tests := []struct {
		name  string
		actor Actor
		op    Operation
		want  bool
	}{
		{name: "owner retrieve", actor: owner, op: OpRetrieve, want: true},
		{name: "owner update", actor: owner, op: OpUpdate, want: true},
		{name: "owner partial update", actor: owner, op: OpPartialUpdate, want: true},
		{name: "owner destroy", actor: owner, op: OpDestroy, want: true},
		{name: "moderator retrieve", actor: moderator, op: OpRetrieve, want: true},
		{name: "moderator update", actor: moderator, op: OpUpdate, want: true},
		{name: "moderator partial update", actor: moderator, op: OpPartialUpdate, want: true},
		{name: "moderator destroy denied", actor: moderator, op: OpDestroy, want: false},
		{name: "stranger retrieve denied", actor: stranger, op: OpRetrieve, want: false},
		{name: "stranger update denied", actor: stranger, op: OpUpdate, want: false},
		{name: "stranger destroy denied", actor: stranger, op: OpDestroy, want: false},
		{name: "stranger create", actor: stranger, op: OpCreate, want: true},
		{name: "anonymous create denied", actor: anonymous, op: OpCreate, want: false},
		{name: "anonymous retrieve denied", actor: anonymous, op: OpRetrieve, want: false},
		{name: "unknown operation", actor: owner, op: Operation("archive"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(tt.actor, tt.op, course))
		})
	}
}

func TestIsOwner(t *testing.T) {
	actor := Actor{ID: 5, Authenticated: true}

	tests := []struct {
		name     string
		resource any
		want     bool
	}{
		{name: "own course", resource: &models.Course{OwnerID: ptr(int64(5))}, want: true},
		{name: "course without owner", resource: &models.Course{}, want: false},
		{name: "foreign lesson", resource: &models.Lesson{OwnerID: ptr(int64(6))}, want: false},
		{name: "own payment", resource: &models.Payment{UserID: 5}, want: true},
		{name: "self as user", resource: &models.User{ID: 5}, want: true},
		{name: "other user", resource: &models.User{ID: 6}, want: false},
		{name: "own collection", resource: Collection{OwnerID: ptr(int64(5))}, want: true},
		{name: "unscoped collection", resource: Collection{}, want: false},
		{name: "nil resource", resource: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOwner(actor, tt.resource))
		})
	}
}

func TestCheck(t *testing.T) {
	course := &models.Course{OwnerID: ptr(int64(1))}

	err := Check(Actor{}, OpRetrieve, course)
	require.ErrorIs(t, err, models.ErrUnauthorized)

	err = Check(Actor{ID: 2, Authenticated: true}, OpDestroy, course)
	require.ErrorIs(t, err, models.ErrPolicyDenied)

	require.NoError(t, Check(Actor{ID: 1, Authenticated: true}, OpDestroy, course))
}

func TestListScope(t *testing.T) {
	moderator := Actor{ID: 2, Authenticated: true, Groups: []string{models.GroupModerators}}
	user := Actor{ID: 3, Authenticated: true}

	assert.Nil(t, ListScope(moderator))
	require.NotNil(t, ListScope(user))
	assert.Equal(t, int64(3), *ListScope(user))

	assert.True(t, Allowed(moderator, OpList, Collection{OwnerID: ListScope(moderator)}))
	assert.True(t, Allowed(user, OpList, Collection{OwnerID: ListScope(user)}))
	assert.False(t, Allowed(user, OpList, Collection{}))
}
