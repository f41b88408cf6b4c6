package models

import "time"

// Subscriber is a monthly-draw member; the dispatcher looks contacts up here.
type Subscriber struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}
