package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// RequestID identifies one inbound conversion request
type RequestID ID

func (id RequestID) String() string { return ID(id).String() }

// NewRequestID creates a fresh request id
func NewRequestID() RequestID {
	return RequestID(NewID())
}

const maxRequestIDLength = 64

// ParseRequestID accepts a client supplied request id. Only letters, digits,
// '-' and '_' are allowed so the id is safe in logs and file names.
func ParseRequestID(s string) (RequestID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("request ID cannot be empty")
	}
	if len(s) > maxRequestIDLength {
		return "", fmt.Errorf("request ID longer than %d characters", maxRequestIDLength)
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return "", fmt.Errorf("request ID contains invalid character %q", r)
		}
	}
	return RequestID(s), nil
}
