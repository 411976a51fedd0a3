// Package models defines server-side data models persisted in the database
// and the DTO shapes they are exposed as.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Record is implemented by every persisted domain type through the embedded
// Entity.
type Record interface {
	Base() *Entity
}

// Lifecycle is the soft-delete state of a record.
type Lifecycle int

const (
	Existing Lifecycle = iota
	Deleted
	Restored
)

func (l Lifecycle) String() string {
	switch l {
	case Deleted:
		return "deleted"
	case Restored:
		return "restored"
	default:
		return "existing"
	}
}

// Activation is the enable/disable state of a record. It is independent
// of Lifecycle.
type Activation int

const (
	Disabled Activation = iota
	Active
)

func (a Activation) String() string {
	if a == Active {
		return "active"
	}
	return "disabled"
}

// Entity carries identity, audit, soft-delete and activation state.
type Entity struct {
	ID         string
	CreatedAt  time.Time
	CreatedBy  string
	ModifiedAt *time.Time
	ModifiedBy *string

	IsDeleted  bool
	DeletedAt  *time.Time
	DeletedBy  *string
	RestoredAt *time.Time
	RestoredBy *string

	IsActive    bool
	ActivatedAt *time.Time
	ActivatedBy *string
	DisabledAt  *time.Time
	DisabledBy  *string
}

func (e *Entity) Base() *Entity { return e }

func (e *Entity) Lifecycle() Lifecycle {
	switch {
	case e.IsDeleted:
		return Deleted
	case e.RestoredAt != nil:
		return Restored
	default:
		return Existing
	}
}

func (e *Entity) Activation() Activation {
	if e.IsActive {
		return Active
	}
	return Disabled
}

// Stamp prepares a new record: assigns an id when missing, sets the creation
// audit and resets lifecycle and activation to their initial states.
func (e *Entity) Stamp(actor string, at time.Time) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	*e = Entity{ID: e.ID, CreatedAt: at, CreatedBy: actor}
}

// Touch records a modification.
func (e *Entity) Touch(actor string, at time.Time) {
	e.ModifiedAt = &at
	e.ModifiedBy = &actor
}

// Adopt takes over identity, audit and state from the stored version of the
// record. Used when an update only carries domain fields.
func (e *Entity) Adopt(stored *Entity) {
	*e = *stored
}

// MarkDeleted moves the record to Deleted. It reports false when the record
// is already deleted, in which case nothing is stamped.
func (e *Entity) MarkDeleted(actor string, at time.Time) bool {
	if e.IsDeleted {
		return false
	}
	e.IsDeleted = true
	e.DeletedAt = &at
	e.DeletedBy = &actor
	return true
}

// MarkRestored moves a deleted record to Restored. The deletion stamps are
// kept as history. It reports false when the record is not deleted.
func (e *Entity) MarkRestored(actor string, at time.Time) bool {
	if !e.IsDeleted {
		return false
	}
	e.IsDeleted = false
	e.RestoredAt = &at
	e.RestoredBy = &actor
	return true
}

// MarkActive reports false when the record is already active.
func (e *Entity) MarkActive(actor string, at time.Time) bool {
	if e.IsActive {
		return false
	}
	e.IsActive = true
	e.ActivatedAt = &at
	e.ActivatedBy = &actor
	return true
}

// MarkDisabled reports false when the record is already disabled.
func (e *Entity) MarkDisabled(actor string, at time.Time) bool {
	if !e.IsActive {
		return false
	}
	e.IsActive = false
	e.DisabledAt = &at
	e.DisabledBy = &actor
	return true
}

// EntityDTO is the JSON shape of Entity, embedded in every DTO.
type EntityDTO struct {
	ID          string     `json:"id"`
	CreatedAt   time.Time  `json:"createdAt"`
	CreatedBy   string     `json:"createdBy"`
	ModifiedAt  *time.Time `json:"modifiedAt,omitempty"`
	ModifiedBy  *string    `json:"modifiedBy,omitempty"`
	IsDeleted   bool       `json:"isDeleted"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
	DeletedBy   *string    `json:"deletedBy,omitempty"`
	RestoredAt  *time.Time `json:"restoredAt,omitempty"`
	RestoredBy  *string    `json:"restoredBy,omitempty"`
	IsActive    bool       `json:"isActive"`
	ActivatedAt *time.Time `json:"activatedAt,omitempty"`
	ActivatedBy *string    `json:"activatedBy,omitempty"`
	DisabledAt  *time.Time `json:"disabledAt,omitempty"`
	DisabledBy  *string    `json:"disabledBy,omitempty"`
}

func (e *Entity) ToDTO() EntityDTO {
	return EntityDTO{
		ID:          e.ID,
		CreatedAt:   e.CreatedAt,
		CreatedBy:   e.CreatedBy,
		ModifiedAt:  e.ModifiedAt,
		ModifiedBy:  e.ModifiedBy,
		IsDeleted:   e.IsDeleted,
		DeletedAt:   e.DeletedAt,
		DeletedBy:   e.DeletedBy,
		RestoredAt:  e.RestoredAt,
		RestoredBy:  e.RestoredBy,
		IsActive:    e.IsActive,
		ActivatedAt: e.ActivatedAt,
		ActivatedBy: e.ActivatedBy,
		DisabledAt:  e.DisabledAt,
		DisabledBy:  e.DisabledBy,
	}
}

// identity only; audit and lifecycle state are owned by the server
func entityFromDTO(d EntityDTO) Entity {
	return Entity{ID: d.ID}
}
