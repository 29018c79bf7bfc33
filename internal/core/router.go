package core

import "strings"

type serviceKeywords struct {
	category ServiceCategory
	keywords []string
}

// servicePrecedence is evaluated top to bottom and stops at the first row
// with any keyword hit. Reordering rows changes routing results.
var servicePrecedence = []serviceKeywords{
	{ServiceRoomService, []string{"room", "housekeeping", "cleaning", "amenities", "temperature", "lighting"}},
	{ServiceDining, []string{"food", "dining", "restaurant", "menu", "dinner", "lunch", "breakfast", "eat"}},
	{ServiceWellness, []string{"spa", "wellness", "massage", "fitness", "gym", "relax", "meditation", "yoga"}},
	{ServiceTransportation, []string{"transport", "taxi", "uber", "airport", "shuttle", "car", "ride"}},
	{ServiceEntertainment, []string{"entertainment", "show", "movie", "theater", "concert", "event", "fun"}},
	{ServiceBusiness, []string{"business", "conference", "work", "office", "presentation"}},
	{ServiceEmergency, []string{"emergency", "help", "urgent", "problem", "issue", "assistance"}},
}

// Router maps guest text onto exactly one service category.
type Router struct{}

func NewRouter() *Router {
	return &Router{}
}

// Route returns the first matching category, or ServiceGeneral.
func (r *Router) Route(text string) ServiceCategory {
	lowered := strings.ToLower(text)
	for _, row := range servicePrecedence {
		if containsAny(lowered, row.keywords) {
			return row.category
		}
	}
	return ServiceGeneral
}
