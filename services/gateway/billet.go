package gateway

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"pmove/models"

	"github.com/google/uuid"
)

// Billet is the flat ticket document the PMove API stores. Additional legs
// are spread over suffixed keys (num_reservation2, lieu_depart2, ...).
type Billet map[string]any

const legKeyPrefix = "num_reservation"

// EncodeBillet flattens a ticket into the API's billet shape. Bags are
// reduced to weight and description.
func EncodeBillet(t *models.Ticket) Billet {
	b := Billet{
		"name":           t.Rider.Name,
		"surname":        t.Rider.Surname,
		"phone":          t.Rider.Phone,
		"email":          t.Rider.Email,
		"numBags":        strconv.Itoa(t.DeclaredBagCount),
		"additionalInfo": t.AdditionalNotes,
		"wheelchair":     encodeWheelchair(t.WheelchairOption),
		"hasCompanion":   t.HasCompanion,
		"companion":      nil,
	}
	if t.HasCompanion && t.Companion != nil {
		b["companion"] = map[string]string{
			"name":    t.Companion.Name,
			"surname": t.Companion.Surname,
			"phone":   t.Companion.Phone,
			"email":   t.Companion.Email,
		}
	}

	bags := make([]map[string]string, 0, len(t.Bags))
	for _, bag := range t.Bags {
		bags = append(bags, map[string]string{"weight": bag.Weight, "description": bag.Description})
	}
	b["bagages"] = bags

	for _, leg := range t.Legs {
		suffix := ""
		if !leg.Primary() {
			suffix = strconv.Itoa(leg.Index)
		}
		b["num_reservation"+suffix] = leg.ReservationNumber
		b["lieu_depart"+suffix] = leg.Origin
		b["lieu_arrivee"+suffix] = leg.Destination
		b["heure_depart"+suffix] = leg.DepartureTime
		b["heure_arrivee"+suffix] = leg.ArrivalTime
		b["transport"+suffix] = string(leg.Carrier)
	}
	return b
}

// The mobile client sends the option as a set of flags, one per kind.
func encodeWheelchair(w models.WheelchairOption) map[string]bool {
	return map[string]bool{
		string(models.WheelchairManual):   w == models.WheelchairManual,
		string(models.WheelchairElectric): w == models.WheelchairElectric,
		string(models.WheelchairLoan):     w == models.WheelchairLoan,
	}
}

// DecodeBillet rebuilds a ticket from a stored billet. Bags get fresh ids
// since the API does not keep them.
func DecodeBillet(b Billet) (models.Ticket, error) {
	t := models.Ticket{
		Rider: models.Rider{
			Name:    stringOf(b["name"]),
			Surname: stringOf(b["surname"]),
			Phone:   stringOf(b["phone"]),
			Email:   stringOf(b["email"]),
		},
		AdditionalNotes:  stringOf(b["additionalInfo"]),
		WheelchairOption: decodeWheelchair(b["wheelchair"]),
		Bags:             []models.Bag{},
	}
	if hc, ok := b["hasCompanion"].(bool); ok {
		t.HasCompanion = hc
	}

	if raw := stringOf(b["numBags"]); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return models.Ticket{}, fmt.Errorf("invalid numBags %q: %w", raw, err)
		}
		t.DeclaredBagCount = n
	}

	if c, ok := b["companion"].(map[string]any); ok {
		t.Companion = &models.Companion{
			Name:    stringOf(c["name"]),
			Surname: stringOf(c["surname"]),
			Phone:   stringOf(c["phone"]),
			Email:   stringOf(c["email"]),
		}
	}

	if bags, ok := b["bagages"].([]any); ok {
		for _, item := range bags {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			t.Bags = append(t.Bags, models.Bag{
				ID:          uuid.NewString(),
				Weight:      stringOf(m["weight"]),
				Description: stringOf(m["description"]),
			})
		}
	}

	t.Legs = decodeLegs(b)
	if len(t.Legs) == 0 || !t.Legs[0].Primary() {
		return models.Ticket{}, fmt.Errorf("billet has no primary reservation")
	}
	return t, nil
}

func decodeLegs(b Billet) []models.Leg {
	var legs []models.Leg
	for key := range b {
		if !strings.HasPrefix(key, legKeyPrefix) {
			continue
		}
		suffix := strings.TrimPrefix(key, legKeyPrefix)
		index := 0
		if suffix != "" {
			n, err := strconv.Atoi(suffix)
			if err != nil || n < 2 {
				continue
			}
			index = n
		}
		number := stringOf(b[key])
		if number == "" {
			continue
		}
		legs = append(legs, models.Leg{
			Index:             index,
			ReservationNumber: number,
			Carrier:           models.Carrier(stringOf(b["transport"+suffix])),
			Origin:            stringOf(b["lieu_depart"+suffix]),
			Destination:       stringOf(b["lieu_arrivee"+suffix]),
			DepartureTime:     stringOf(b["heure_depart"+suffix]),
			ArrivalTime:       stringOf(b["heure_arrivee"+suffix]),
		})
	}
	sort.Slice(legs, func(i, j int) bool { return legs[i].Index < legs[j].Index })
	return legs
}

func decodeWheelchair(v any) models.WheelchairOption {
	switch w := v.(type) {
	case string:
		return models.WheelchairOption(w)
	case map[string]any:
		for _, opt := range []models.WheelchairOption{models.WheelchairManual, models.WheelchairElectric, models.WheelchairLoan} {
			if on, _ := w[string(opt)].(bool); on {
				return opt
			}
		}
	}
	return models.WheelchairNone
}

// stringOf renders scalar JSON values as strings. Reservation numbers come
// back as numbers or strings depending on the carrier backend.
func stringOf(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return fmt.Sprint(s)
	}
}
