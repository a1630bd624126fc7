package domain

import "time"

// User: зарегистрированный покупатель.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}
