package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failed call so callers can tell an invalid session apart
// from an unavailable server.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindUnauthorized
	KindNetwork
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindNetwork:
		return "network"
	case KindNotFound:
		return "not_found"
	}
	return "unknown"
}

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNetwork      = errors.New("network error")
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("resource not found")
)

func (k Kind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindUnauthorized:
		return ErrUnauthorized
	case KindNetwork:
		return ErrNetwork
	case KindNotFound:
		return ErrNotFound
	}
	return nil
}

type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrUnauthorized) and friends match on Kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf returns the classification of err, or 0 when err did not come from
// a classified API failure.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

type errorBody struct {
	Error string `json:"error"`
}

func errorMessage(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	return strings.TrimSpace(body.Error)
}
