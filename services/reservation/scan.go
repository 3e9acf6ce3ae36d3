package reservation

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"pmove/models"
)

const notProvided = "Non renseigné"

// PayloadBuilder renders the URLs encoded into the ticket and bag QR codes.
type PayloadBuilder struct {
	BaseURL string
}

// SummaryURL describes the whole ticket. Missing values read "Non renseigné"
// and the bag figure is the declared count.
func (p PayloadBuilder) SummaryURL(t *models.Ticket) string {
	if t == nil {
		t = &models.Ticket{}
	}
	leg := t.PrimaryLeg()
	return fmt.Sprintf("%s?nom=%s&prenom=%s&reservation=%s&depart=%s&arrivee=%s&bagages=%s",
		p.BaseURL,
		orNotProvided(t.Rider.Name),
		orNotProvided(t.Rider.Surname),
		orNotProvided(leg.ReservationNumber),
		orNotProvided(leg.Origin),
		orNotProvided(leg.Destination),
		strconv.Itoa(t.DeclaredBagCount),
	)
}

// BagURL points at the bag details page for one piece of luggage.
func (p PayloadBuilder) BagURL(bag models.Bag) string {
	return fmt.Sprintf("%sBagageDetails.html?poids=%s&description=%s",
		p.BaseURL, encodeComponent(bag.Weight), encodeComponent(bag.Description))
}

// ClientURL is the rider's own QR code shown on the profile screen.
func (p PayloadBuilder) ClientURL(profile models.Profile) string {
	return fmt.Sprintf("%sclient.html?name=%s&surname=%s&mail=%s&num=%s&handicap=%s&birth=%s&contact_mail=%s&contactnum=%s",
		p.BaseURL,
		orNotProvided(profile.Name),
		orNotProvided(profile.Surname),
		orNotProvided(profile.Mail),
		orNotProvided(profile.Num),
		orNotProvided(profile.Handicap),
		orNotProvided(profile.Birth),
		orNotProvided(profile.ContactMail),
		orNotProvided(profile.ContactNum),
	)
}

func orNotProvided(s string) string {
	if strings.TrimSpace(s) == "" {
		s = notProvided
	}
	return encodeComponent(s)
}

var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%2A", "*",
	"%27", "'",
	"%28", "(",
	"%29", ")",
)

// encodeComponent escapes s the way browsers' encodeURIComponent does, so
// the static pages decoding the payload read the same values.
func encodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
