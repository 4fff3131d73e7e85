package providerRepo

import (
	"context"
	"errors"
	"time"

	"homeserve/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *MongoProviderRepo) RecordAppointment(ctx context.Context, providerID, bookingID, homeownerID string) (bool, error) {
	now := time.Now().UTC()

	matched, err := r.guardedUpdate(ctx, bson.M{"id": providerID, "bookingIds": bson.M{"$ne": bookingID}}, bson.M{
		"$addToSet": bson.M{"bookingIds": bookingID},
		"$inc":      bson.M{"totalAppointments": 1},
		"$set":      bson.M{"updatedAt": now},
	})
	if err != nil {
		return false, err
	}
	if !matched {
		if err := r.exists(ctx, providerID); err != nil {
			return false, err
		}
	}

	// Set-add and increment in one conditional write so concurrent bookings from the
	// same new homeowner count once.
	newClient, err := r.guardedUpdate(ctx, bson.M{"id": providerID, "servedClients": bson.M{"$ne": homeownerID}}, bson.M{
		"$addToSet": bson.M{"servedClients": homeownerID},
		"$inc":      bson.M{"totalClients": 1},
		"$set":      bson.M{"updatedAt": now},
	})
	if err != nil {
		return false, err
	}
	return newClient, nil
}

func (r *MongoProviderRepo) DetachBooking(ctx context.Context, providerID, bookingID string) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.UpdateOne(ctx, bson.M{"id": providerID}, bson.M{
		"$pull": bson.M{"bookingIds": bookingID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return utils.StoreError(err, "failed to detach booking %s from provider %s", bookingID, providerID)
	}
	if result.MatchedCount == 0 {
		return utils.NotFoundError("provider %s not found", providerID)
	}
	return nil
}

func (r *MongoProviderRepo) CreditEarning(ctx context.Context, providerID, bookingID string, amount float64) (CreditResult, error) {
	filter := bson.M{"id": providerID, "earnedBookingIds": bson.M{"$ne": bookingID}}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"earnings": bson.M{"$round": bson.A{
				bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$earnings", 0}}, amount}},
				2,
			}},
			"earnedBookingIds": bson.M{"$concatArrays": bson.A{
				bson.M{"$ifNull": bson.A{"$earnedBookingIds", bson.A{}}},
				bson.A{bookingID},
			}},
			"earnedAmounts": recordPerBooking("$earnedAmounts", bookingID, amount),
			"updatedAt":     time.Now().UTC(),
		}}},
	}

	applied, err := r.guardedUpdate(ctx, filter, pipeline)
	if err != nil {
		return CreditResult{}, err
	}
	if applied {
		return CreditResult{Amount: amount, Applied: true}, nil
	}

	current, err := r.GetByID(ctx, providerID)
	if err != nil {
		return CreditResult{}, err
	}
	return CreditResult{Amount: current.EarnedAmounts[bookingID]}, nil
}

// ApplyRating computes the new mean inside the document with a pipeline update, so the
// read of the previous average and count cannot interleave with another rating.
func (r *MongoProviderRepo) ApplyRating(ctx context.Context, providerID, bookingID string, rating int) (RatingResult, error) {
	count := bson.M{"$ifNull": bson.A{"$ratingCount", 0}}
	avg := bson.M{"$ifNull": bson.A{"$averageRating", 0}}

	filter := bson.M{"id": providerID, "ratedBookingIds": bson.M{"$ne": bookingID}}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"averageRating": bson.M{"$divide": bson.A{
				bson.M{"$add": bson.A{bson.M{"$multiply": bson.A{avg, count}}, rating}},
				bson.M{"$add": bson.A{count, 1}},
			}},
			"ratingCount": bson.M{"$add": bson.A{count, 1}},
			"ratedBookingIds": bson.M{"$concatArrays": bson.A{
				bson.M{"$ifNull": bson.A{"$ratedBookingIds", bson.A{}}},
				bson.A{bookingID},
			}},
			"bookingRatings": recordPerBooking("$bookingRatings", bookingID, rating),
			"updatedAt":      time.Now().UTC(),
		}}},
	}

	updCtx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var out struct {
		AverageRating float64 `bson:"averageRating"`
		RatingCount   int     `bson:"ratingCount"`
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"averageRating": 1, "ratingCount": 1})
	err := r.coll.FindOneAndUpdate(updCtx, filter, pipeline, opts).Decode(&out)
	if err == nil {
		return RatingResult{Average: out.AverageRating, Count: out.RatingCount, Rating: rating, Applied: true}, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return RatingResult{}, utils.StoreError(err, "failed to apply rating to provider %s", providerID)
	}

	current, getErr := r.GetByID(ctx, providerID)
	if getErr != nil {
		return RatingResult{}, getErr
	}
	return RatingResult{
		Average: current.AverageRating,
		Count:   current.RatingCount,
		Rating:  current.BookingRatings[bookingID],
	}, nil
}

// recordPerBooking merges {bookingID: value} into the map held in field.
func recordPerBooking(field, bookingID string, value interface{}) bson.M {
	return bson.M{"$mergeObjects": bson.A{
		bson.M{"$ifNull": bson.A{field, bson.M{}}},
		bson.M{"$literal": bson.M{bookingID: value}},
	}}
}

// guardedUpdate runs a conditional UpdateOne and reports whether the guard matched.
func (r *MongoProviderRepo) guardedUpdate(ctx context.Context, filter bson.M, update interface{}) (bool, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, utils.StoreError(err, "failed to update provider %v", filter["id"])
	}
	return result.MatchedCount > 0, nil
}
