package listings

import "time"

type ListingCreated struct {
	ListingID ListingID
	HostID    HostID
	At        time.Time
}

func (e ListingCreated) EventName() string     { return "listing.created" }
func (e ListingCreated) AggregateID() string   { return string(e.ListingID) }
func (e ListingCreated) OccurredAt() time.Time { return e.At }

type ListingUpdated struct {
	ListingID ListingID
	At        time.Time
}

func (e ListingUpdated) EventName() string     { return "listing.updated" }
func (e ListingUpdated) AggregateID() string   { return string(e.ListingID) }
func (e ListingUpdated) OccurredAt() time.Time { return e.At }

type ListingAvailabilityChanged struct {
	ListingID ListingID
	Available bool
	At        time.Time
}

func (e ListingAvailabilityChanged) EventName() string     { return "listing.availability_changed" }
func (e ListingAvailabilityChanged) AggregateID() string   { return string(e.ListingID) }
func (e ListingAvailabilityChanged) OccurredAt() time.Time { return e.At }
