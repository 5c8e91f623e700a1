package domain

// BundleID groups the cover card and every to-do item into one bundle.
// The Mirror timeline renders bundled items as a single stack behind the cover.
const BundleID = "ToDoList"

// TimelinePageSize bounds every listing call against the remote store.
const TimelinePageSize = 100

// Menu action verbs understood by the timeline service.
const (
	ActionDelete       = "DELETE"
	ActionReadAloud    = "READ_ALOUD"
	ActionReply        = "REPLY"
	ActionShare        = "SHARE"
	ActionTogglePinned = "TOGGLE_PINNED"
)

// NotificationLevelDefault makes the device chime when an item arrives.
const NotificationLevelDefault = "DEFAULT"

// MenuValue carries an optional display label for a menu action.
type MenuValue struct {
	DisplayName string `json:"displayName,omitempty"`
}

// MenuItem is one interaction verb offered on a timeline card.
type MenuItem struct {
	Action string      `json:"action"`
	Values []MenuValue `json:"values,omitempty"`
}

// NotificationConfig controls how the device announces an item.
type NotificationConfig struct {
	Level string `json:"level,omitempty"`
}

// Contact is a sharing target registered with the timeline service.
type Contact struct {
	ID          string   `json:"id,omitempty"`
	DisplayName string   `json:"displayName,omitempty"`
	ImageURLs   []string `json:"imageUrls,omitempty"`
}

// Subscription registers a push callback for a collection.
type Subscription struct {
	ID          string `json:"id,omitempty"`
	Collection  string `json:"collection"`
	UserToken   string `json:"userToken,omitempty"`
	CallbackURL string `json:"callbackUrl"`
}

// TimelineItem is a unit of content in the remote store.
//
// IsBundleCover is deliberately a pointer: the remote API distinguishes
// true, false, and unset, and unset must be treated as false.
type TimelineItem struct {
	ID            string              `json:"id,omitempty"`
	Title         string              `json:"title,omitempty"`
	Text          string              `json:"text,omitempty"`
	HTML          string              `json:"html,omitempty"`
	BundleID      string              `json:"bundleId,omitempty"`
	IsBundleCover *bool               `json:"isBundleCover,omitempty"`
	MenuItems     []MenuItem          `json:"menuItems,omitempty"`
	Notification  *NotificationConfig `json:"notification,omitempty"`
	Creator       *Contact            `json:"creator,omitempty"`
}

// IsCover reports whether the item is the bundle cover (unset counts as false).
func (t *TimelineItem) IsCover() bool {
	return t.IsBundleCover != nil && *t.IsBundleCover
}

// ItemMenu returns the canonical menu for a regular to-do item:
// delete (labelled REMOVE), read aloud, reply (labelled ADD TODO), toggle pin.
func ItemMenu() []MenuItem {
	return []MenuItem{
		{Action: ActionDelete, Values: []MenuValue{{DisplayName: "REMOVE"}}},
		{Action: ActionReadAloud},
		{Action: ActionReply, Values: []MenuValue{{DisplayName: "ADD TODO"}}},
		{Action: ActionTogglePinned},
	}
}

// ReplyMenu returns the canonical menu applied to an item after it has been
// created through a REPLY or SHARE action. Same set as ItemMenu except the
// delete verb keeps its default label.
func ReplyMenu() []MenuItem {
	return []MenuItem{
		{Action: ActionDelete},
		{Action: ActionReadAloud},
		{Action: ActionReply, Values: []MenuValue{{DisplayName: "ADD TODO"}}},
		{Action: ActionTogglePinned},
	}
}

// CoverMenu returns the canonical menu for the bundle cover.
func CoverMenu() []MenuItem {
	return []MenuItem{
		{Action: ActionReply, Values: []MenuValue{{DisplayName: "ADD TODO"}}},
		{Action: ActionTogglePinned},
	}
}
