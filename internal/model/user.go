package model

import "time"

type User struct {
	TelegramID       int64
	Handle           string
	Username         string
	TenantID         string
	IsAdmin          bool
	SelectedTitle    *string
	Titles           []string
	RegistrationDate time.Time
	AuthDate         time.Time
}
