// File: models/records.go
package models

import "time"

// TicketRecord archives a ticket after the external API accepted it.
type TicketRecord struct {
	ID                string    `bson:"id" json:"id"`
	ReservationNumber string    `bson:"reservationNumber" json:"reservationNumber"` // Primary leg
	Carrier           Carrier   `bson:"carrier" json:"carrier"`
	RequesterEmail    string    `bson:"requesterEmail" json:"requesterEmail"`
	RiderName         string    `bson:"riderName" json:"riderName"`
	RiderSurname      string    `bson:"riderSurname" json:"riderSurname"`
	Ticket            Ticket    `bson:"ticket" json:"ticket"`
	CreatedAt         time.Time `bson:"createdAt" json:"createdAt"`
}
