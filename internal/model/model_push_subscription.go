package model

// PushSubscription an opaque, provider-defined push payload stored per
// household member. Presence determines push eligibility; rows are deleted
// when the provider reports the subscription expired.
type PushSubscription struct {
	BaseModel
	HouseholdId string `gorm:"column:household_id;index" json:"householdId"`
	MemberId    string `gorm:"column:member_id;index" json:"memberId"`
	Token       string `gorm:"column:token;uniqueIndex" json:"token"`
	Payload     string `gorm:"column:payload;type:text" json:"payload"`
}

func (PushSubscription) TableName() string {
	return "t_push_subscription"
}

// SavePushSubscriptionReq push subscription registration body
type SavePushSubscriptionReq struct {
	Token   string `json:"token"`
	Payload string `json:"payload"`
}
