package models

// ✅ Event categories (also used as profile eventPreferences)
const (
	CategoryParty       = "party"
	CategoryOutdoors    = "outdoors"
	CategoryWellness    = "wellness"
	CategoryEducational = "educational"
	CategoryFood        = "food"
	CategoryShopping    = "shopping"
	CategoryCommunity   = "community"
)

// Categories lists every category tag in display order.
var Categories = []string{
	CategoryParty,
	CategoryOutdoors,
	CategoryWellness,
	CategoryEducational,
	CategoryFood,
	CategoryShopping,
	CategoryCommunity,
}

// IsCategory reports whether tag is a known category.
func IsCategory(tag string) bool {
	for _, c := range Categories {
		if c == tag {
			return true
		}
	}
	return false
}

// ✅ Match statuses
const (
	MatchStatusPending = "pending"
)

// ✅ Match removal reasons (metrics label and notification payload)
const (
	RemovalUnmatch           = "unmatch"
	RemovalEventInterest     = "event_interest_removed"
	RemovalInterestWithdrawn = "interest_withdrawn"
)

// CreatedByAdmin marks events inserted by the seed script.
const CreatedByAdmin = "admin"
