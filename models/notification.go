package models

// ConfirmationPayload is queued after a ticket is submitted so the rider
// receives a confirmation e-mail.
type ConfirmationPayload struct {
	Email             string `json:"email"`
	RiderName         string `json:"riderName"`
	ReservationNumber string `json:"reservationNumber"`
	Origin            string `json:"origin"`
	Destination       string `json:"destination"`
	DepartureTime     string `json:"departureTime"`
	Legs              int    `json:"legs"`
	Bags              int    `json:"bags"`
	SummaryURL        string `json:"summaryUrl"`
}
