package model

import "time"

// Delivery channels
const (
	ChannelPush = "push"
	ChannelSms  = "sms"
)

// Channel preferences
const (
	PrefInApp = "in-app"
	PrefSms   = "sms"
)

// Classification reasons
const (
	ReasonNoDeliveryMethod = "no delivery method available"
	ReasonExpiredNoPhone   = "subscription expired, no phone fallback"
)

// Recipient describes one resolved delivery target: a household plus
// whatever channels it can currently be reached on.
type Recipient struct {
	HouseholdId string `json:"householdId"`
	Phone       string `json:"phone,omitempty"`
	PushToken   string `json:"pushToken,omitempty"`
}

// SentEntry one successfully delivered recipient
type SentEntry struct {
	HouseholdId string    `json:"householdId"`
	Channel     string    `json:"channel"`
	MessageId   string    `json:"messageId,omitempty"`
	SentAt      time.Time `json:"sentAt"`
}

// FailedEntry one recipient we tried and could not reach
type FailedEntry struct {
	HouseholdId string `json:"householdId"`
	Channel     string `json:"channel"`
	Error       string `json:"error"`
}

// PendingEntry one recipient we currently have no way to reach
type PendingEntry struct {
	HouseholdId string `json:"householdId"`
	Reason      string `json:"reason"`
}

// DeliveryOutcome is the structured classification produced for one invite's
// recipient set. Every recipient appears in exactly one of the three sets.
type DeliveryOutcome struct {
	InviteId string         `json:"inviteId"`
	Sent     []SentEntry    `json:"sent"`
	Failed   []FailedEntry  `json:"failed"`
	Pending  []PendingEntry `json:"pending"`
}

// DeliveryLog append-only record of one deliverInvite call, storing the
// outcome verbatim. Written once per call, never read by the core logic.
type DeliveryLog struct {
	ID         uint      `gorm:"primarykey" json:"-"`
	InviteId   string    `gorm:"column:invite_id;index" json:"inviteId"`
	Outcome    string    `gorm:"column:outcome;type:text" json:"outcome"`
	CreateTime time.Time `gorm:"column:create_time;autoCreateTime" json:"createTime"`
}

func (DeliveryLog) TableName() string {
	return "t_delivery_log"
}
