package reservation

import (
	"strings"

	"pmove/models"
)

func addBag(t *models.Ticket, bag models.Bag) error {
	bag.Weight = strings.TrimSpace(bag.Weight)
	bag.Description = strings.TrimSpace(bag.Description)
	if bag.Weight == "" || bag.Description == "" {
		return newValidationError("bag", "please fill in both the weight and the description of the bag")
	}
	if len(t.Bags) >= t.DeclaredBagCount {
		return newValidationError("bag", "you have already added all %d declared bags", t.DeclaredBagCount)
	}
	if bag.ID == "" {
		return newValidationError("bag", "bag id is missing")
	}
	for _, b := range t.Bags {
		if b.ID == bag.ID {
			return newValidationError("bag", "bag id %s is already in use", bag.ID)
		}
	}
	t.Bags = append(t.Bags, bag)
	return nil
}

func removeBag(t *models.Ticket, id string) error {
	for i, b := range t.Bags {
		if b.ID == id {
			bags := make([]models.Bag, 0, len(t.Bags)-1)
			bags = append(bags, t.Bags[:i]...)
			t.Bags = append(bags, t.Bags[i+1:]...)
			return nil
		}
	}
	return newValidationError("bag", "no bag with id %s on this ticket", id)
}

func checkBagCount(t *models.Ticket) error {
	if len(t.Bags) != t.DeclaredBagCount {
		return newValidationError("bags", "added bag count (%d) does not match the declared count (%d)", len(t.Bags), t.DeclaredBagCount)
	}
	return nil
}

func checkBagIDs(bags []models.Bag) error {
	seen := make(map[string]bool, len(bags))
	for _, b := range bags {
		if b.ID == "" || seen[b.ID] {
			return newValidationError("bags", "bag ids must be present and unique")
		}
		seen[b.ID] = true
	}
	return nil
}

// BaggagePolicies is the carrier luggage guidance shown on the baggage step.
var BaggagePolicies = map[models.Carrier]string{
	models.CarrierSNCF: "Since 15 September 2024 each traveller may carry 2 bags (max. 70 x 90 x 50 cm) " +
		"and 1 hand bag (max. 40 x 30 x 15 cm). All bags must be labelled and carried in one go. " +
		"Non-compliance: 50 EUR per bag, 150 EUR if it obstructs the way.",
	models.CarrierRATP: "A bag must not exceed 15 kg or the agent is not allowed to carry it. " +
		"Keep luggage to a reasonable size and do not block aisles or doors, especially at rush hour.",
	models.CarrierAirFrance: "Cabin: Economy 1 bag + 1 accessory (max. 12 kg); Premium, Business and La Premiere " +
		"up to 2 bags + 1 accessory (max. 18 kg). Hold: Economy 1 bag (23 kg), Premium Economy 2 x 23 kg, " +
		"Business 2 x 32 kg, La Premiere 3 x 32 kg. Hold dimensions max. 158 cm (L+W+H).",
}
