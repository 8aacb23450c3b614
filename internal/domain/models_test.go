package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFeedType(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected FeedType
		ok       bool
	}{
		{name: "new feed", input: "new", expected: FeedTypeNew, ok: true},
		{name: "alphabetical feed", input: "alphabetical", expected: FeedTypeAlphabetical, ok: true},
		{name: "mixed case", input: "New", expected: FeedTypeNew, ok: true},
		{name: "unknown feed", input: "trending", ok: false},
		{name: "empty", input: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft, ok := ParseFeedType(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, ft)
			}
		})
	}
}

func TestExhibitValidateForWrite(t *testing.T) {
	valid := func() Exhibit {
		return Exhibit{
			Title:       "a title",
			Description: "and a description",
			Tags:        []string{"a", "b"},
		}
	}

	t.Run("valid exhibit passes", func(t *testing.T) {
		ex := valid()
		assert.NoError(t, ex.ValidateForWrite())
	})

	t.Run("missing title", func(t *testing.T) {
		ex := valid()
		ex.Title = ""
		err := ex.ValidateForWrite()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidInput))

		var ve *ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "title", ve.Field)
	})

	t.Run("missing description", func(t *testing.T) {
		ex := valid()
		ex.Description = ""
		err := ex.ValidateForWrite()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidInput))
	})

	t.Run("absent tags are rejected", func(t *testing.T) {
		ex := valid()
		ex.Tags = nil
		err := ex.ValidateForWrite()
		require.Error(t, err)

		var ve *ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "tags", ve.Field)
	})

	t.Run("empty tag list is allowed", func(t *testing.T) {
		ex := valid()
		ex.Tags = []string{}
		assert.NoError(t, ex.ValidateForWrite())
	})
}

func TestErrorUnwrapping(t *testing.T) {
	t.Run("not found unwraps to sentinel", func(t *testing.T) {
		err := NewNotFoundError("exhibit", "42")
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.Contains(t, err.Error(), "exhibit")
	})

	t.Run("forbidden unwraps to sentinel", func(t *testing.T) {
		err := NewForbiddenError("someone", "delete", "exhibit", "42")
		assert.True(t, errors.Is(err, ErrForbidden))
	})

	t.Run("validation unwraps to invalid input", func(t *testing.T) {
		err := NewValidationError("title", "title is required")
		assert.True(t, errors.Is(err, ErrInvalidInput))
	})
}

func TestNewEvent(t *testing.T) {
	t.Run("serializes payload and assigns id", func(t *testing.T) {
		ev, err := NewEvent(EventTypeExhibitCreated, 7, "author", map[string]string{"title": "a title"})
		require.NoError(t, err)
		assert.NotEmpty(t, ev.EventID)
		assert.Equal(t, EventTypeExhibitCreated, ev.EventType)
		assert.Equal(t, int64(7), ev.ExhibitID)
		assert.Equal(t, "author", ev.Actor)
		assert.JSONEq(t, `{"title":"a title"}`, string(ev.Payload))
		assert.False(t, ev.CreatedAt.IsZero())
	})

	t.Run("rejects unserializable payload", func(t *testing.T) {
		_, err := NewEvent(EventTypeExhibitUpdated, 7, "author", make(chan int))
		assert.Error(t, err)
	})
}
