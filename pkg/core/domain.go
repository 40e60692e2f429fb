// Package core holds the domain types shared by every layer of slate.
package core

import "fmt"

// Record is an entry of a code-keyed collection.
// Key returns the record's code, unique within its snapshot.
type Record interface {
	Key() string
}

// Role is a named access profile.
type Role struct {
	Code        string `json:"code" yaml:"code"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// Key implements Record.
func (r Role) Key() string { return r.Code }

// UserStatus is the lifecycle state of a console user.
type UserStatus string

const (
	StatusActive   UserStatus = "active"
	StatusInactive UserStatus = "inactive"
	StatusPending  UserStatus = "pending"
)

// IsValid reports whether s is one of the known statuses.
func (s UserStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusPending:
		return true
	}
	return false
}

// User is a console account. Roles holds role codes.
type User struct {
	ID     string     `json:"id" yaml:"id"`
	Code   string     `json:"code" yaml:"code"`
	Name   string     `json:"name" yaml:"name"`
	Email  string     `json:"email" yaml:"email"`
	Status UserStatus `json:"status" yaml:"status"`
	Roles  []string   `json:"roles" yaml:"roles"`
}

// Key implements Record.
func (u User) Key() string { return u.Code }

// HasRole reports whether the user holds the given role code.
func (u User) HasRole(code string) bool {
	for _, r := range u.Roles {
		if r == code {
			return true
		}
	}
	return false
}

// EventType represents the type of change observed on a slot.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change of a durable slot made outside the current store.
type Event struct {
	Type      EventType
	Key       string
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Type, e.Key)
}
