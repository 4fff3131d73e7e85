package homeownerRepo

import (
	"context"

	"homeserve/models"
)

// HomeownerRepository maintains the booking back-references on homeowner records.
type HomeownerRepository interface {
	GetByID(ctx context.Context, id string) (*models.Homeowner, error)
	// AddBookingRef adds bookingID to the homeowner's bookingIds, creating the
	// record if the account service has not written one yet.
	AddBookingRef(ctx context.Context, homeownerID, bookingID string) error
	// RemoveBookingRef removes bookingID; a missing homeowner is not an error.
	RemoveBookingRef(ctx context.Context, homeownerID, bookingID string) error
}
