package reviews

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homestay/internal/domain/listings"
)

func TestSubmit(t *testing.T) {
	review, err := Submit(SubmitParams{
		ID:        "rev-1",
		ListingID: listings.ListingID("lst-1"),
		GuestID:   "guest-1",
		Rating:    4,
		Comment:   "  great place  ",
		CreatedAt: time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "great place", review.Comment)
	assert.Len(t, review.PendingEvents(), 1)
}

func TestSubmitRejectsOutOfRangeRating(t *testing.T) {
	for _, rating := range []int{0, -1, 6, 100} {
		_, err := Submit(SubmitParams{ID: "rev-1", ListingID: "lst-1", GuestID: "g", Rating: rating})
		assert.ErrorIs(t, err, ErrInvalidRating, "rating %d", rating)
	}
	for _, rating := range []int{1, 5} {
		_, err := Submit(SubmitParams{ID: "rev-1", ListingID: "lst-1", GuestID: "g", Rating: rating})
		assert.NoError(t, err, "rating %d", rating)
	}
}

func TestAverageRating(t *testing.T) {
	_, ok := AverageRating(nil)
	assert.False(t, ok, "no reviews means no average")

	avg, ok := AverageRating([]*Review{{Rating: 4}, {Rating: 5}, {Rating: 3}})
	assert.True(t, ok)
	assert.InDelta(t, 4.0, avg, 0.0001)

	avg, ok = AverageRating([]*Review{{Rating: 4}, {Rating: 5}})
	assert.True(t, ok)
	assert.InDelta(t, 4.5, avg, 0.0001)
}
