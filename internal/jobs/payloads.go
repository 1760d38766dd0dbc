package jobs

import (
	"strings"
	"time"
)

// PasswordResetPayload carries everything the notifier needs, so the worker
// does not have to load the user again.
type PasswordResetPayload struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	ResetURL  string    `json:"resetUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
	RequestID string    `json:"requestId,omitempty"`
}

func (p PasswordResetPayload) Validate() error {
	for _, v := range []string{p.UserID, p.Email, p.ResetURL} {
		if strings.TrimSpace(v) == "" {
			return ErrInvalidJobPayload
		}
	}
	return nil
}
