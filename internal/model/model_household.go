package model

import "time"

// Household is the top-level tenant unit. Status fields are written only by
// the owning household and always change together in a single update.
type Household struct {
	BaseModel
	HouseholdId     string    `gorm:"column:household_id;uniqueIndex" json:"householdId"`
	Name            string    `gorm:"column:name" json:"name"`
	StatusState     string    `gorm:"column:status_state" json:"statusState"`
	StatusNote      string    `gorm:"column:status_note" json:"statusNote"`
	StatusWindow    string    `gorm:"column:status_window" json:"statusWindow"`
	StatusUpdatedAt time.Time `gorm:"column:status_updated_at" json:"statusUpdatedAt"`
}

func (Household) TableName() string {
	return "t_household"
}

// HouseholdMember a member of a household, identified by phone
type HouseholdMember struct {
	BaseModel
	MemberId    string `gorm:"column:member_id;uniqueIndex" json:"memberId"`
	HouseholdId string `gorm:"column:household_id;index" json:"householdId"`
	Phone       string `gorm:"column:phone;index" json:"phone"`
	DisplayName string `gorm:"column:display_name" json:"displayName"`
	Role        string `gorm:"column:role" json:"role"`
}

func (HouseholdMember) TableName() string {
	return "t_household_member"
}

// Status states
const (
	StatusAvailable = "available"
	StatusOpen      = "open"
	StatusBusy      = "busy"
)

// ValidStatusState reports whether s is one of the three broadcastable states.
func ValidStatusState(s string) bool {
	switch s {
	case StatusAvailable, StatusOpen, StatusBusy:
		return true
	}
	return false
}

// StatusPayload is the status body carried by status:update events and
// status reads.
type StatusPayload struct {
	State      string    `json:"state"`
	Note       string    `json:"note,omitempty"`
	TimeWindow string    `json:"timeWindow,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// StatusUpdateEvent is the detail published to each watcher household.
type StatusUpdateEvent struct {
	HouseholdId string        `json:"householdId"`
	Name        string        `json:"name"`
	Status      StatusPayload `json:"status"`
}

// UpdateStatusReq status update request body
type UpdateStatusReq struct {
	State      string `json:"state"`
	Note       string `json:"note"`
	TimeWindow string `json:"timeWindow"`
}
