package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyplanner/planner/internal/errors"
	"github.com/studyplanner/planner/internal/models"
	"github.com/studyplanner/planner/internal/store"
	"github.com/studyplanner/planner/internal/testutil"
)

func TestTagStore(t *testing.T) {
	s := store.New(testutil.SetupTestDB(t))

	t.Run("Create With Explicit Color", func(t *testing.T) {
		tag, err := s.CreateTag(models.Tag{Name: "  Tajweed ", Color: "#123456", Category: "Quran"})
		require.NoError(t, err)
		assert.NotZero(t, tag.ID)
		assert.Equal(t, "Tajweed", tag.Name)
		assert.Equal(t, "#123456", tag.Color)
	})

	t.Run("Default Color From Well-Known Name", func(t *testing.T) {
		tag, err := s.CreateTag(models.Tag{Name: "exam prep"})
		require.NoError(t, err)
		assert.Equal(t, models.DefaultTagColors["Exam Prep"], tag.Color)

		other, err := s.CreateTag(models.Tag{Name: "Revision", IsBlockOnly: true})
		require.NoError(t, err)
		assert.Equal(t, store.FallbackTagColor, other.Color)
	})

	t.Run("Duplicate Names Conflict", func(t *testing.T) {
		_, err := s.CreateTag(models.Tag{Name: "TAJWEED"})
		assert.True(t, errors.Is(err, errors.ErrConflict))
	})

	t.Run("Empty Name Rejected", func(t *testing.T) {
		_, err := s.CreateTag(models.Tag{Name: "   "})
		assert.True(t, errors.Is(err, errors.ErrValidation))
	})

	t.Run("List And Get", func(t *testing.T) {
		tags, err := s.ListTags()
		require.NoError(t, err)
		require.Len(t, tags, 3)
		assert.Equal(t, []string{"exam prep", "Revision", "Tajweed"}, []string{tags[0].Name, tags[1].Name, tags[2].Name})
		assert.True(t, tags[1].IsBlockOnly)

		tag, err := s.GetTagByID(tags[2].ID)
		require.NoError(t, err)
		assert.Equal(t, "Quran", tag.Category)

		_, err = s.GetTagByID(999)
		assert.True(t, errors.Is(err, errors.ErrNotFound))
	})

	t.Run("Delete", func(t *testing.T) {
		tags, _ := s.ListTags()
		require.NoError(t, s.DeleteTag(tags[0].ID))
		assert.True(t, errors.Is(s.DeleteTag(tags[0].ID), errors.ErrNotFound))
	})
}
