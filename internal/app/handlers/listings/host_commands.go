package listings

import (
	"context"
	"time"

	"github.com/google/uuid"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	"homestay/internal/app/outbox"
	"homestay/internal/app/uow"
	domainlistings "homestay/internal/domain/listings"
)

const (
	createListingKey   = "listings.create"
	updateListingKey   = "listings.update"
	setAvailabilityKey = "listings.set_availability"
)

type CreateListingCommand struct {
	HostID           string `validate:"required"`
	Title            string `validate:"required"`
	Description      string
	Location         string
	PropertyType     string
	NightlyRateCents int64 `validate:"gt=0"`
	MaxGuests        int   `validate:"gte=1"`
	Bedrooms         int
	Bathrooms        int
	Amenities        string
	Available        bool
	Now              time.Time
}

func (c CreateListingCommand) Key() string { return createListingKey }

type UpdateListingCommand struct {
	ListingID        string `validate:"required"`
	HostID           string `validate:"required"`
	Title            string `validate:"required"`
	Description      string
	Location         string
	PropertyType     string
	NightlyRateCents int64 `validate:"gt=0"`
	MaxGuests        int   `validate:"gte=1"`
	Bedrooms         int
	Bathrooms        int
	Amenities        string
	Now              time.Time
}

func (c UpdateListingCommand) Key() string { return updateListingKey }

type SetAvailabilityCommand struct {
	ListingID string `validate:"required"`
	HostID    string `validate:"required"`
	Available bool
	Now       time.Time
}

func (c SetAvailabilityCommand) Key() string { return setAvailabilityKey }

// CreateListingHandler registers a new catalog entry owned by the host.
type CreateListingHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *CreateListingHandler) Handle(ctx context.Context, cmd CreateListingCommand) (dto.Listing, error) {
	unit, managed, err := beginUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Listing{}, err
	}
	committed := false
	if managed {
		ctx = uow.BindContext(ctx, unit)
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

	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:               domainlistings.ListingID(uuid.NewString()),
		Host:             domainlistings.HostID(cmd.HostID),
		Title:            cmd.Title,
		Description:      cmd.Description,
		Location:         cmd.Location,
		PropertyType:     cmd.PropertyType,
		NightlyRateCents: cmd.NightlyRateCents,
		MaxGuests:        cmd.MaxGuests,
		Bedrooms:         cmd.Bedrooms,
		Bathrooms:        cmd.Bathrooms,
		Amenities:        cmd.Amenities,
		Available:        cmd.Available,
		Now:              now,
	})
	if err != nil {
		return dto.Listing{}, err
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return dto.Listing{}, err
	}
	if err := drainEvents(ctx, h.Outbox, h.Encoder, listing); err != nil {
		return dto.Listing{}, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return dto.Listing{}, err
		}
		committed = true
	}
	return dto.MapListing(listing), nil
}

// UpdateListingHandler mutates catalog attributes; only the owning host may.
type UpdateListingHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *UpdateListingHandler) Handle(ctx context.Context, cmd UpdateListingCommand) (dto.Listing, error) {
	unit, managed, err := beginUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Listing{}, err
	}
	committed := false
	if managed {
		ctx = uow.BindContext(ctx, unit)
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

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return dto.Listing{}, err
	}
	if string(listing.Host) != cmd.HostID {
		return dto.Listing{}, domainlistings.ErrForbidden
	}
	if err := listing.UpdateAttributes(domainlistings.UpdateParams{
		Title:            cmd.Title,
		Description:      cmd.Description,
		Location:         cmd.Location,
		PropertyType:     cmd.PropertyType,
		NightlyRateCents: cmd.NightlyRateCents,
		MaxGuests:        cmd.MaxGuests,
		Bedrooms:         cmd.Bedrooms,
		Bathrooms:        cmd.Bathrooms,
		Amenities:        cmd.Amenities,
		Now:              now,
	}); err != nil {
		return dto.Listing{}, err
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return dto.Listing{}, err
	}
	if err := drainEvents(ctx, h.Outbox, h.Encoder, listing); err != nil {
		return dto.Listing{}, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return dto.Listing{}, err
		}
		committed = true
	}
	return dto.MapListing(listing), nil
}

// SetAvailabilityHandler soft-disables or re-enables a listing. Listings are
// never deleted while bookings reference them.
type SetAvailabilityHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *SetAvailabilityHandler) Handle(ctx context.Context, cmd SetAvailabilityCommand) (dto.Listing, error) {
	unit, managed, err := beginUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Listing{}, err
	}
	committed := false
	if managed {
		ctx = uow.BindContext(ctx, unit)
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

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return dto.Listing{}, err
	}
	if string(listing.Host) != cmd.HostID {
		return dto.Listing{}, domainlistings.ErrForbidden
	}
	listing.SetAvailability(cmd.Available, now)
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return dto.Listing{}, err
	}
	if err := drainEvents(ctx, h.Outbox, h.Encoder, listing); err != nil {
		return dto.Listing{}, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return dto.Listing{}, err
		}
		committed = true
	}
	return dto.MapListing(listing), nil
}

func beginUnit(ctx context.Context, factory uow.Factory) (uow.UnitOfWork, bool, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, false, nil
	}
	if factory == nil {
		return nil, false, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, false, err
	}
	return unit, true, nil
}

func drainEvents(ctx context.Context, box outbox.Outbox, encoder outbox.EventEncoder, listing *domainlistings.Listing) error {
	pending := listing.PendingEvents()
	listing.ClearEvents()
	if encoder == nil {
		encoder = outbox.JSONEventEncoder{}
	}
	return outbox.RecordDomainEvents(ctx, box, encoder, pending)
}

var _ commands.Handler[CreateListingCommand, dto.Listing] = (*CreateListingHandler)(nil)
var _ commands.Handler[UpdateListingCommand, dto.Listing] = (*UpdateListingHandler)(nil)
var _ commands.Handler[SetAvailabilityCommand, dto.Listing] = (*SetAvailabilityHandler)(nil)
