package model

import "time"

// BaseModel shared columns for all tables
type BaseModel struct {
	ID         uint      `gorm:"primarykey" json:"-"`
	CreateTime time.Time `gorm:"column:create_time;autoCreateTime" json:"createTime"`
	UpdateTime time.Time `gorm:"column:update_time;autoUpdateTime" json:"updateTime"`
}
