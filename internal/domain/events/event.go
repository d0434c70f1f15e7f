package events

import "time"

// UserRef is a user reference expanded with the fields a Projection selects.
// ID is always present; the rest are empty unless projected.
type UserRef struct {
	ID        string `json:"id"`
	UserName  string `json:"userName,omitempty"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	AvatarURL string `json:"avatarURL,omitempty"`
}

// Event is a scheduled gathering. Date is always UTC.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	ImageURL    string    `json:"imageURL"`
	CreatedBy   UserRef   `json:"createdBy"`
	Attendees   []UserRef `json:"attendees"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// HasAttendee reports whether userID is in the attendee set.
func (e Event) HasAttendee(userID string) bool {
	for _, attendee := range e.Attendees {
		if attendee.ID == userID {
			return true
		}
	}
	return false
}

// RefField names a user field that may be expanded into a UserRef.
type RefField string

const (
	RefUserName  RefField = "userName"
	RefEmail     RefField = "email"
	RefRole      RefField = "role"
	RefAvatarURL RefField = "avatarURL"
)

// Projection selects which user fields are expanded for the creator and for
// each attendee. Storage maps fields to columns through its own safelist, so
// credential columns can never be selected.
type Projection struct {
	Creator   []RefField
	Attendees []RefField
}

var (
	// ListProjection is used for listing and reading events.
	ListProjection = Projection{
		Creator:   []RefField{RefUserName, RefEmail, RefRole},
		Attendees: []RefField{RefUserName, RefEmail},
	}
	// AttendanceProjection is used for attend and unattend responses.
	AttendanceProjection = Projection{
		Creator:   []RefField{RefUserName, RefEmail, RefRole},
		Attendees: []RefField{RefUserName, RefEmail, RefAvatarURL},
	}
)
