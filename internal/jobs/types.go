// Package jobs defines the background job types and their payload codec.
package jobs

type JobType string

const JobSendPasswordReset JobType = "send_password_reset"

// Payload is implemented by the payload struct of every job type.
type Payload interface {
	Validate() error
}

// registry builds an empty payload for each known type.
var registry = map[JobType]func() Payload{
	JobSendPasswordReset: func() Payload { return &PasswordResetPayload{} },
}

func (t JobType) IsValid() bool {
	_, ok := registry[t]
	return ok
}
