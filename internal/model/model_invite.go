package model

import "time"

// Invite statuses
const (
	InviteStatusPending   = "pending"
	InviteStatusConfirmed = "confirmed"
	InviteStatusCancelled = "cancelled"
	InviteStatusExpired   = "expired"
)

// Recipient responses
const (
	ResponsePending  = "pending"
	ResponseAccepted = "accepted"
	ResponseDeclined = "declined"
)

// ActivityNamePlaceholder is the sentinel the client sends when the invite
// has no concrete plan; it never appears in outgoing message bodies.
const ActivityNamePlaceholder = "no specific plan"

// Invite a proposal from one household to others to coordinate an activity.
// Immutable once delivered except for status and recipient responses.
type Invite struct {
	BaseModel
	InviteId        string `gorm:"column:invite_id;uniqueIndex" json:"inviteId"`
	FromHouseholdId string `gorm:"column:from_household_id;index" json:"fromHouseholdId"`
	ActivityType    string `gorm:"column:activity_type" json:"activityType"`
	ActivityName    string `gorm:"column:activity_name" json:"activityName"`
	Location        string `gorm:"column:location" json:"location"`
	ProposedDate    string `gorm:"column:proposed_date" json:"proposedDate"`
	ProposedTime    string `gorm:"column:proposed_time" json:"proposedTime"`
	Message         string `gorm:"column:message" json:"message"`
	Status          string `gorm:"column:status" json:"status"`
}

func (Invite) TableName() string {
	return "t_invite"
}

// InviteRecipient one row per recipient household, created at invite-creation
// time. A row exists iff the recipient contact resolved to a linked household;
// SMS-only contacts are tracked through the delivery log instead.
type InviteRecipient struct {
	BaseModel
	InviteId    string     `gorm:"column:invite_id;index:idx_invite_household,unique" json:"inviteId"`
	HouseholdId string     `gorm:"column:household_id;index:idx_invite_household,unique" json:"householdId"`
	Response    string     `gorm:"column:response" json:"response"`
	RespondedAt *time.Time `gorm:"column:responded_at" json:"respondedAt"`
}

func (InviteRecipient) TableName() string {
	return "t_invite_recipient"
}

// CreateInviteReq invite creation request body. Recipients are referenced by
// contact id; circle id expands to the circle's contacts.
type CreateInviteReq struct {
	ActivityType string   `json:"activityType"`
	ActivityName string   `json:"activityName"`
	Location     string   `json:"location"`
	ProposedDate string   `json:"proposedDate"`
	ProposedTime string   `json:"proposedTime"`
	Message      string   `json:"message"`
	ContactIds   []string `json:"contactIds"`
	CircleId     string   `json:"circleId"`
}

// RespondInviteReq recipient response request body
type RespondInviteReq struct {
	Response string `json:"response"`
}

// InviteDetail an invite with its recipient rows
type InviteDetail struct {
	Invite     Invite            `json:"invite"`
	Recipients []InviteRecipient `json:"recipients"`
}

// InviteNewEvent is the detail published to each linked recipient household
// when an invite is created.
type InviteNewEvent struct {
	InviteId        string `json:"inviteId"`
	FromHouseholdId string `json:"fromHouseholdId"`
	FromName        string `json:"fromName"`
	ActivityName    string `json:"activityName,omitempty"`
	ProposedDate    string `json:"proposedDate,omitempty"`
	ProposedTime    string `json:"proposedTime,omitempty"`
	Location        string `json:"location,omitempty"`
	Message         string `json:"message,omitempty"`
}

// InviteResponseEvent is the detail published to the inviting household when
// a recipient responds.
type InviteResponseEvent struct {
	InviteId              string `json:"inviteId"`
	RespondingHouseholdId string `json:"respondingHouseholdId"`
	RespondingName        string `json:"respondingName"`
	Response              string `json:"response"`
}
