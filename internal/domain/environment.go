package domain

import "time"

// Environment is a deployment stage that environment roles are created for.
type Environment struct {
	Name        string
	Description string
	CreatedAt   time.Time
}
