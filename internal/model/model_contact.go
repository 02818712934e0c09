package model

// Contact is a household's record of another household or a non-app person.
// LinkedHouseholdId is set when the contact is itself an app user; the link
// is what makes the owner a watcher of that household's status.
type Contact struct {
	BaseModel
	ContactId         string `gorm:"column:contact_id;uniqueIndex" json:"contactId"`
	OwnerHouseholdId  string `gorm:"column:owner_household_id;index" json:"ownerHouseholdId"`
	DisplayName       string `gorm:"column:display_name" json:"displayName"`
	Phone             string `gorm:"column:phone" json:"phone"`
	LinkedHouseholdId string `gorm:"column:linked_household_id;index" json:"linkedHouseholdId"`
}

func (Contact) TableName() string {
	return "t_contact"
}

// Circle is a named grouping of a household's contacts used for invite targeting.
type Circle struct {
	BaseModel
	CircleId         string `gorm:"column:circle_id;uniqueIndex" json:"circleId"`
	OwnerHouseholdId string `gorm:"column:owner_household_id;index" json:"ownerHouseholdId"`
	Name             string `gorm:"column:name" json:"name"`
}

func (Circle) TableName() string {
	return "t_circle"
}

type CircleMember struct {
	BaseModel
	CircleId  string `gorm:"column:circle_id;index" json:"circleId"`
	ContactId string `gorm:"column:contact_id;index" json:"contactId"`
}

func (CircleMember) TableName() string {
	return "t_circle_member"
}

// CreateContactReq contact creation request body
type CreateContactReq struct {
	DisplayName       string `json:"displayName"`
	Phone             string `json:"phone"`
	LinkedHouseholdId string `json:"linkedHouseholdId"`
}

// CreateCircleReq circle creation request body
type CreateCircleReq struct {
	Name       string   `json:"name"`
	ContactIds []string `json:"contactIds"`
}
