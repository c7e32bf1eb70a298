package models

import "time"

// AppSetting stores small application-wide key/value settings (such as
// the runtime override for the error log retention cap) without adding
// a dedicated table per setting.
type AppSetting struct {
	Key       string    `gorm:"primaryKey;size:128" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
