// models/user.go
package models

import "time"

// Profile is the mobile user's account as the external API returns it.
// Field names follow the API's JSON keys.
type Profile struct {
	ClientID    int    `json:"ID_Client" bson:"clientId"`
	Name        string `json:"name" bson:"name"`
	Surname     string `json:"surname" bson:"surname"`
	Mail        string `json:"mail" bson:"mail"`
	Num         string `json:"num" bson:"num"`
	ContactNum  string `json:"contact_num" bson:"contactNum"`
	Birth       string `json:"birth" bson:"birth"`
	Handicap    string `json:"handicap" bson:"handicap"`
	ContactMail string `json:"contact_mail" bson:"contactMail"`
	Civilite    string `json:"civilite,omitempty" bson:"civilite,omitempty"`
	Note        string `json:"note,omitempty" bson:"note,omitempty"`
}

// Rider projects the profile onto the rider fields of a ticket.
func (p Profile) Rider() Rider {
	return Rider{
		Name:    p.Name,
		Surname: p.Surname,
		Phone:   p.Num,
		Email:   p.Mail,
	}
}

// HandicapCodes maps the profile's handicap value to its IATA-style code.
var HandicapCodes = map[string]string{
	"1": "BLND",
	"2": "DEAF",
	"3": "DPNA",
	"4": "WCHR",
	"5": "WCHS",
	"6": "WCHC",
	"7": "MAAS",
}

// UserRegistration is forwarded as-is to the external sign-up endpoint.
type UserRegistration struct {
	Civilite    string `json:"civilite"`
	Name        string `json:"name" binding:"required"`
	Surname     string `json:"surname" binding:"required"`
	Mail        string `json:"mail" binding:"required"`
	Num         string `json:"num"`
	Birth       string `json:"birth"`
	Password    string `json:"password" binding:"required"`
	ContactMail string `json:"contact_mail"`
	ContactNum  string `json:"contact_num"`
	Handicap    string `json:"handicap"`
	Note        string `json:"note"`
}

// Session is the explicit per-login state that replaces a process-wide user context.
type Session struct {
	ID        string    `json:"id"`
	Profile   Profile   `json:"profile"`
	TokenHash string    `json:"tokenHash,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
