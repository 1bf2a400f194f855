package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/lms/internal/models"
)

func TestStorage_Lessons(t *testing.T) {
	storage := setupTestDatabase(t)
	f := NewTestDataFactory(t, storage)
	ctx := context.Background()

	owner := f.User("owner@example.com")
	course := f.Course("Go basics", owner.ID)
	lesson := f.Lesson("Intro", &course.ID, owner.ID)

	t.Run("unknown course", func(t *testing.T) {
		_, err := storage.CreateLesson(ctx, &models.Lesson{Title: "x", CourseID: ptr(int64(9999)), OwnerID: &owner.ID})
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("update and unlink", func(t *testing.T) {
		lesson.Title = "Introduction"
		lesson.VideoLink = ptr("https://youtube.com/watch?v=1")
		lesson.CourseID = nil
		require.NoError(t, storage.UpdateLesson(ctx, lesson))

		got, err := storage.GetLesson(ctx, lesson.ID)
		require.NoError(t, err)
		assert.Equal(t, "Introduction", got.Title)
		assert.Nil(t, got.CourseID)
		assert.Equal(t, "https://youtube.com/watch?v=1", *got.VideoLink)
	})

	t.Run("list", func(t *testing.T) {
		got, total, err := storage.ListLessons(ctx, &owner.ID, models.Page{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Len(t, got, 1)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, storage.DeleteLesson(ctx, lesson.ID))
		assert.ErrorIs(t, storage.DeleteLesson(ctx, lesson.ID), models.ErrNotFound)
	})
}
