package domain

// Collections that may appear in an inbound notification.
const (
	CollectionTimeline  = "timeline"
	CollectionLocations = "locations"
)

// UserAction is one action a user took on a timeline item.
type UserAction struct {
	Type  string `json:"type"`
	Value string `json:"payload,omitempty"`
}

// Notification is an inbound push event describing activity on one item.
// It is constructed from a single webhook payload, consumed once by the
// notification router, and discarded.
type Notification struct {
	Collection  string       `json:"collection"`
	ItemID      string       `json:"itemId,omitempty"`
	Operation   string       `json:"operation,omitempty"`
	UserToken   string       `json:"userToken"`
	VerifyToken string       `json:"verifyToken,omitempty"`
	UserActions []UserAction `json:"userActions"`
}
