package models

// Carrier is a transport provider a reservation can be looked up against.
type Carrier string

const (
	CarrierRATP      Carrier = "RATP"
	CarrierSNCF      Carrier = "SNCF"
	CarrierAirFrance Carrier = "AirFrance"
)

// Carriers lists the supported carriers in display order.
var Carriers = []Carrier{CarrierRATP, CarrierSNCF, CarrierAirFrance}

// Valid reports whether c is one of the supported carriers.
func (c Carrier) Valid() bool {
	for _, known := range Carriers {
		if c == known {
			return true
		}
	}
	return false
}

// WheelchairOption is the kind of wheelchair assistance requested.
// The zero value means no wheelchair.
type WheelchairOption string

const (
	WheelchairNone WheelchairOption = ""
	// WheelchairManual is a manual wheelchair ("RM").
	WheelchairManual WheelchairOption = "RM"
	// WheelchairElectric is an electric wheelchair ("RE").
	WheelchairElectric WheelchairOption = "RE"
	// WheelchairLoan asks the carrier to lend a wheelchair ("Emprunt").
	WheelchairLoan WheelchairOption = "Emprunt"
)

// Valid reports whether w is none or one of the known options.
func (w WheelchairOption) Valid() bool {
	switch w {
	case WheelchairNone, WheelchairManual, WheelchairElectric, WheelchairLoan:
		return true
	}
	return false
}

// Leg is one itinerary segment. The primary leg has Index 0 and is written
// without a suffix on the wire; additional legs use Index >= 2.
type Leg struct {
	Index             int     `json:"index"`
	ReservationNumber string  `json:"reservationNumber"`
	Carrier           Carrier `json:"carrier"`
	Origin            string  `json:"origin"`
	Destination       string  `json:"destination"`
	DepartureTime     string  `json:"departureTime"`
	ArrivalTime       string  `json:"arrivalTime"`
}

// Primary reports whether l is the unsuffixed first leg.
func (l Leg) Primary() bool { return l.Index == 0 }

// Rider is copied out of the user profile; it is never typed in by the user.
type Rider struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// Companion travels with the rider.
type Companion struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// Complete reports whether all four companion fields are filled in.
func (c Companion) Complete() bool {
	return c.Name != "" && c.Surname != "" && c.Phone != "" && c.Email != ""
}

// Bag is a piece of luggage declared on the ticket.
type Bag struct {
	ID          string `json:"id"`
	Weight      string `json:"weight"`
	Description string `json:"description"`
}

// Ticket (billet) accumulates everything collected across the reservation steps.
type Ticket struct {
	Legs             []Leg            `json:"legs"`
	Rider            Rider            `json:"rider"`
	WheelchairOption WheelchairOption `json:"wheelchairOption,omitempty"`
	AdditionalNotes  string           `json:"additionalNotes,omitempty"`
	HasCompanion     bool             `json:"hasCompanion"`
	Companion        *Companion       `json:"companion,omitempty"`
	DeclaredBagCount int              `json:"declaredBagCount"`
	Bags             []Bag            `json:"bags"`
}

// PrimaryLeg returns the first leg, or the zero Leg when the ticket has none.
func (t *Ticket) PrimaryLeg() Leg {
	if t == nil || len(t.Legs) == 0 {
		return Leg{}
	}
	return t.Legs[0]
}

// Clone returns a deep copy so steps hand tickets off by value.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	out := *t
	out.Legs = append([]Leg(nil), t.Legs...)
	out.Bags = append([]Bag(nil), t.Bags...)
	if t.Bags != nil && out.Bags == nil {
		out.Bags = []Bag{}
	}
	if t.Companion != nil {
		c := *t.Companion
		out.Companion = &c
	}
	return &out
}
