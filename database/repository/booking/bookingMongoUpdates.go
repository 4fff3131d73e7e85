package bookingRepo

import (
	"context"
	"errors"
	"time"

	"homeserve/models"
	"homeserve/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Claim sets the provider on a pending, unclaimed booking. The filter on isBooked makes
// the write a compare-and-swap: of several concurrent claims exactly one matches.
func (r *MongoBookingRepo) Claim(ctx context.Context, id, providerID string, at time.Time) (*models.Booking, bool, error) {
	filter := bson.M{
		"id":          id,
		"isBooked":    false,
		"isCancelled": false,
		"status":      string(models.StatusPending),
	}
	update := bson.M{
		"$set": bson.M{
			"isBooked":   true,
			"providerId": providerID,
			"status":     string(models.StatusAccepted),
			"acceptedAt": at,
		},
	}

	booking, err := r.conditionalUpdate(ctx, id, filter, update)
	if err == nil {
		return booking, true, nil
	}
	if !errors.Is(err, errPreconditionFailed) {
		return nil, false, err
	}

	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, false, getErr
	}
	return resolveClaimConflict(current, providerID)
}

// resolveClaimConflict explains why a claim did not match. A booking already held by
// the same provider is an idempotent success.
func resolveClaimConflict(current *models.Booking, providerID string) (*models.Booking, bool, error) {
	switch {
	case current.IsCancelled:
		return nil, false, utils.ConflictError("booking %s is cancelled", current.ID)
	case current.IsBooked && current.ProviderID == providerID:
		return current, false, nil
	case current.IsBooked:
		return nil, false, utils.ConflictError("booking %s already accepted by another provider", current.ID)
	default:
		return nil, false, utils.ConflictError("booking %s is %s and cannot be accepted", current.ID, current.Status)
	}
}

// Transition applies a conditional status change.
func (r *MongoBookingRepo) Transition(ctx context.Context, id string, upd StatusUpdate) (*models.Booking, error) {
	filter := bson.M{
		"id":          id,
		"isCancelled": false,
		"status":      bson.M{"$in": statusStrings(upd.From)},
	}
	if upd.ExpectProvider != "" {
		filter["providerId"] = upd.ExpectProvider
	}

	set := bson.M{"status": string(upd.To)}
	unset := bson.M{}
	if upd.Release {
		set["isBooked"] = false
		unset["providerId"] = ""
		unset["acceptedAt"] = ""
	}
	if upd.Unbook {
		set["isBooked"] = false
	}
	if upd.To == models.StatusCompleted {
		set["completedAt"] = upd.At
	}
	if upd.Cancel {
		set["isCancelled"] = true
		set["cancelledAt"] = upd.At
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	booking, err := r.conditionalUpdate(ctx, id, filter, update)
	if errors.Is(err, errPreconditionFailed) {
		current, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, transitionConflict(current, upd)
	}
	return booking, err
}

// SetProviderEarning records the provider's earning once, on a completed booking.
func (r *MongoBookingRepo) SetProviderEarning(ctx context.Context, id string, earning float64) (*models.Booking, error) {
	filter := bson.M{
		"id":              id,
		"status":          string(models.StatusCompleted),
		"providerEarning": bson.M{"$exists": false},
	}
	update := bson.M{"$set": bson.M{"providerEarning": earning}}

	booking, err := r.conditionalUpdate(ctx, id, filter, update)
	if errors.Is(err, errPreconditionFailed) {
		return nil, r.explainConflict(ctx, id)
	}
	return booking, err
}

// SetRating records the homeowner's rating once, on a completed booking.
func (r *MongoBookingRepo) SetRating(ctx context.Context, id string, rating int) (*models.Booking, error) {
	filter := bson.M{
		"id":     id,
		"status": string(models.StatusCompleted),
		"rating": bson.M{"$exists": false},
	}
	update := bson.M{"$set": bson.M{"rating": rating}}

	booking, err := r.conditionalUpdate(ctx, id, filter, update)
	if errors.Is(err, errPreconditionFailed) {
		return nil, r.explainConflict(ctx, id)
	}
	return booking, err
}

var errPreconditionFailed = errors.New("precondition failed")

// conditionalUpdate runs FindOneAndUpdate and returns the post-image.
func (r *MongoBookingRepo) conditionalUpdate(ctx context.Context, id string, filter, update bson.M) (*models.Booking, error) {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var booking models.Booking
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errPreconditionFailed
		}
		return nil, utils.StoreError(err, "failed to update booking %s", id)
	}
	return &booking, nil
}

// explainConflict turns a missed conditional update into NotFound or Conflict.
func (r *MongoBookingRepo) explainConflict(ctx context.Context, id string) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return conflictFor(current)
}

// transitionConflict explains a Transition whose guard did not hold.
func transitionConflict(current *models.Booking, upd StatusUpdate) error {
	if !current.IsCancelled && containsStatus(upd.From, current.Status) &&
		upd.ExpectProvider != "" && current.ProviderID != upd.ExpectProvider {
		return utils.ConflictError("booking %s is held by another provider", current.ID)
	}
	return conflictFor(current)
}

func conflictFor(current *models.Booking) error {
	if current.IsCancelled {
		return utils.ConflictError("booking %s is cancelled", current.ID)
	}
	return utils.ConflictError("booking %s is %s", current.ID, current.Status)
}
