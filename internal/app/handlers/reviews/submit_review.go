package reviews

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	"homestay/internal/app/outbox"
	"homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
	domainlistings "homestay/internal/domain/listings"
	domainreviews "homestay/internal/domain/reviews"
)

const submitReviewKey = "reviews.submit"

// SubmitReviewCommand creates the one review a guest may leave per listing.
type SubmitReviewCommand struct {
	ListingID string `validate:"required"`
	GuestID   string `validate:"required"`
	BookingID string
	Rating    int `validate:"gte=1,lte=5"`
	Comment   string
	Now       time.Time
}

func (c SubmitReviewCommand) Key() string { return submitReviewKey }

// SubmitReviewHandler guards review creation: the guest needs a completed stay
// on the listing and must not have reviewed it before. The optional booking
// reference is attached only when it resolves; an unresolvable id is dropped,
// not rejected.
type SubmitReviewHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

func (h *SubmitReviewHandler) Handle(ctx context.Context, cmd SubmitReviewCommand) (dto.Review, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return dto.Review{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return dto.Review{}, err
		}
		ctx = uow.BindContext(ctx, unit)
		managed = true
	}
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	now := cmd.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	if cmd.Rating < 1 || cmd.Rating > 5 {
		return dto.Review{}, domainreviews.ErrInvalidRating
	}

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return dto.Review{}, err
	}

	completed, err := hasCompletedStay(ctx, unit, listing.ID, cmd.GuestID, now)
	if err != nil {
		return dto.Review{}, err
	}
	if !completed {
		return dto.Review{}, domainreviews.ErrNotEligible
	}

	if existing, err := unit.Reviews().ByGuestListing(ctx, cmd.GuestID, listing.ID); err == nil && existing != nil {
		return dto.Review{}, domainreviews.ErrDuplicateReview
	} else if err != nil && !errors.Is(err, domainreviews.ErrNotFound) {
		return dto.Review{}, err
	}

	bookingRef := resolveBookingRef(ctx, unit, cmd.BookingID, h.Logger)

	review, err := domainreviews.Submit(domainreviews.SubmitParams{
		ID:        domainreviews.ReviewID(uuid.NewString()),
		ListingID: listing.ID,
		GuestID:   cmd.GuestID,
		BookingID: bookingRef,
		Rating:    cmd.Rating,
		Comment:   cmd.Comment,
		CreatedAt: now,
	})
	if err != nil {
		return dto.Review{}, err
	}
	if err := unit.Reviews().Save(ctx, review); err != nil {
		return dto.Review{}, err
	}

	if err := recalculateListingRating(ctx, unit, listing, now); err != nil {
		return dto.Review{}, err
	}

	pending := review.PendingEvents()
	review.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return dto.Review{}, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return dto.Review{}, err
		}
		committed = true
	}

	if h.Logger != nil {
		h.Logger.Info("review submitted", "listing_id", listing.ID, "guest_id", cmd.GuestID, "rating", cmd.Rating)
	}

	return dto.MapReview(review), nil
}

// resolveBookingRef attaches the supplied booking id only if it exists. An
// unresolvable reference is silently ignored rather than failing the request;
// the review stands on the completed-stay check, not on this anchor.
func resolveBookingRef(ctx context.Context, unit uow.UnitOfWork, bookingID string, logger *slog.Logger) domainbooking.BookingID {
	if bookingID == "" {
		return ""
	}
	record, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(bookingID))
	if err != nil || record == nil {
		if logger != nil {
			logger.Warn("review booking reference not found, dropping", "booking_id", bookingID)
		}
		return ""
	}
	return record.ID
}

func (h *SubmitReviewHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[SubmitReviewCommand, dto.Review] = (*SubmitReviewHandler)(nil)
