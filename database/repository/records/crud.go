package recordsRepo

import (
	"context"
	"errors"
	"time"

	"pmove/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrRecordNotFound = errors.New("ticket record not found")

// Create archives a submitted ticket and returns the record ID.
func (r *mongoRecordRepo) Create(ctx context.Context, record models.TicketRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	record.CreatedAt = time.Now()

	_, err := r.coll.InsertOne(ctx, record)
	if err != nil {
		return "", err
	}
	return record.ID, nil
}

// ListByRequester returns the requester's tickets, newest first.
func (r *mongoRecordRepo) ListByRequester(ctx context.Context, email string) ([]models.TicketRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"requesterEmail": email}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := []models.TicketRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteByReservationNumber removes the requester's records for a reservation.
func (r *mongoRecordRepo) DeleteByReservationNumber(ctx context.Context, email, reservationNumber string) error {
	res, err := r.coll.DeleteMany(ctx, bson.M{"requesterEmail": email, "reservationNumber": reservationNumber})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}
