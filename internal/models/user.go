package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Roles a user can hold.
const (
	RoleUser  = 0
	RoleAdmin = 1
)

// User represents a customer or an administrator of the store.
type User struct {
	ID        string    `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash
	Phone     string    `json:"phone" gorm:"type:varchar(50)"`
	Address   Address   `json:"address" gorm:"type:text"`
	Answer    string    `json:"-" gorm:"type:varchar(255)"` // security answer for password reset
	Role      int       `json:"role" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserRef is the populated form of a user reference inside an order.
type UserRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Address is a free-form JSON value. Clients send either a plain string or
// an object such as {"street": "...", "city": "..."}; it is stored verbatim.
type Address json.RawMessage

// NewAddress encodes v as an Address.
func NewAddress(v any) (Address, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode address: %w", err)
	}
	return Address(b), nil
}

// IsZero reports whether no meaningful address was supplied.
func (a Address) IsZero() bool {
	trimmed := bytes.TrimSpace(a)
	return len(trimmed) == 0 ||
		bytes.Equal(trimmed, []byte("null")) ||
		bytes.Equal(trimmed, []byte(`""`)) ||
		bytes.Equal(trimmed, []byte("{}"))
}

// Decode unmarshals the address into a generic Go value.
func (a Address) Decode() (any, error) {
	if len(a) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(a, &v); err != nil {
		return nil, fmt.Errorf("failed to decode address: %w", err)
	}
	return v, nil
}

func (a Address) MarshalJSON() ([]byte, error) {
	if len(a) == 0 {
		return []byte("null"), nil
	}
	return a, nil
}

func (a *Address) UnmarshalJSON(b []byte) error {
	if a == nil {
		return fmt.Errorf("models.Address: UnmarshalJSON on nil pointer")
	}
	*a = append((*a)[0:0], b...)
	return nil
}

// Value implements driver.Valuer.
func (a Address) Value() (driver.Value, error) {
	if len(a) == 0 {
		return nil, nil
	}
	return string(a), nil
}

// Scan implements sql.Scanner.
func (a *Address) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = nil
	case []byte:
		*a = append(Address(nil), v...)
	case string:
		*a = Address(v)
	default:
		return fmt.Errorf("models.Address: cannot scan %T", src)
	}
	return nil
}
