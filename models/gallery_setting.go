package models

import (
	"encoding/json"
	"strings"
)

// EmailRecipient is one user to notify when an error occurs.
type EmailRecipient struct {
	UserName string `json:"user_name"`
	Email    string `json:"email"`
}

// GallerySetting holds the per-gallery notification and SMTP
// configuration consulted by the notification dispatcher.
type GallerySetting struct {
	GalleryID         int    `gorm:"primaryKey" json:"gallery_id"`
	SendEmailOnError  bool   `gorm:"default:false" json:"send_email_on_error"`
	EmailFromName     string `json:"email_from_name"`
	EmailFromAddress  string `json:"email_from_address"`
	SmtpServer        string `json:"smtp_server"`
	SmtpServerPort    string `json:"smtp_server_port"`
	SendEmailUsingSsl bool   `gorm:"default:false" json:"send_email_using_ssl"`
	NotifyListJSON    string `gorm:"column:notify_list_json;default:'[]'" json:"-"`
}

// GetNotifyList returns the ordered recipient list.
func (g *GallerySetting) GetNotifyList() []EmailRecipient {
	var list []EmailRecipient
	if g.NotifyListJSON != "" {
		_ = json.Unmarshal([]byte(g.NotifyListJSON), &list)
	}
	return list
}

// SetNotifyList stores the recipient list as JSON, preserving order.
func (g *GallerySetting) SetNotifyList(list []EmailRecipient) {
	data, _ := json.Marshal(list)
	g.NotifyListJSON = string(data)
}

// GallerySettingUpdate is the request payload for updating a gallery's
// notification settings.
type GallerySettingUpdate struct {
	SendEmailOnError  bool             `json:"send_email_on_error"`
	EmailFromName     string           `json:"email_from_name"`
	EmailFromAddress  string           `json:"email_from_address"`
	SmtpServer        string           `json:"smtp_server"`
	SmtpServerPort    string           `json:"smtp_server_port"`
	SendEmailUsingSsl bool             `json:"send_email_using_ssl"`
	NotifyList        []EmailRecipient `json:"notify_list"`
}

// Normalize trims whitespace from input fields
func (u *GallerySettingUpdate) Normalize() {
	u.EmailFromName = strings.TrimSpace(u.EmailFromName)
	u.EmailFromAddress = strings.TrimSpace(u.EmailFromAddress)
	u.SmtpServer = strings.TrimSpace(u.SmtpServer)
	u.SmtpServerPort = strings.TrimSpace(u.SmtpServerPort)

	for i, r := range u.NotifyList {
		u.NotifyList[i].UserName = strings.TrimSpace(r.UserName)
		u.NotifyList[i].Email = strings.TrimSpace(r.Email)
	}
}
