package recordsRepo

import (
	"context"

	"pmove/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type TicketRecordRepository interface {
	Create(ctx context.Context, record models.TicketRecord) (string, error)
	ListByRequester(ctx context.Context, email string) ([]models.TicketRecord, error)
	DeleteByReservationNumber(ctx context.Context, email, reservationNumber string) error
}

type mongoRecordRepo struct {
	coll *mongo.Collection
}

// NewMongoRecordRepo returns a TicketRecordRepository backed by the
// ticket_records collection of db.
func NewMongoRecordRepo(db *mongo.Database) (TicketRecordRepository, error) {
	r := &mongoRecordRepo{
		coll: db.Collection("ticket_records"),
	}
	if err := r.ensureIndexes(); err != nil {
		return nil, err
	}
	return r, nil
}
