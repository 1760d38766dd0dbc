package jobs

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrInvalidJobType      = errors.New("invalid job type")
	ErrInvalidJobPayload   = errors.New("invalid job payload")
	ErrPayloadTypeMismatch = errors.New("payload type mismatch for job type")
)

// ValidatePayload checks that payload is the struct registered for t, by
// value or pointer, and that its own rules hold.
func ValidatePayload(t JobType, payload any) error {
	newPayload, ok := registry[t]
	if !ok {
		return ErrInvalidJobType
	}

	want := reflect.TypeOf(newPayload())
	got := reflect.TypeOf(payload)
	if got != want && got != want.Elem() {
		return ErrPayloadTypeMismatch
	}

	if v := reflect.ValueOf(payload); v.Kind() == reflect.Pointer && v.IsNil() {
		return ErrInvalidJobPayload
	}

	return payload.(Payload).Validate()
}

func EncodePayload(t JobType, payload any) ([]byte, error) {
	if err := ValidatePayload(t, payload); err != nil {
		return nil, err
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
	}
	return b, nil
}

// DecodePayload returns the payload struct for t by value.
func DecodePayload(t JobType, raw []byte) (any, error) {
	newPayload, ok := registry[t]
	if !ok {
		return nil, ErrInvalidJobType
	}
	if len(raw) == 0 {
		return nil, ErrInvalidJobPayload
	}

	p := newPayload()
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	return reflect.ValueOf(p).Elem().Interface(), nil
}
