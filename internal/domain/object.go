package domain

import "github.com/google/uuid"

// ID is the stable identity of a rule object. IDs survive snapshots, so two
// nodes with the same ID in different snapshots are the same logical node.
type ID string

// NewID returns a fresh random identity.
func NewID() ID {
	return ID(uuid.NewString())
}

// Object is anything with identity inside a rule: contexts, mappings,
// right-hand sides and rules themselves.
type Object interface {
	ID() ID
	// Live reports whether the object is still part of the data model.
	// Objects are marked dead when deleted and must not be edited afterwards.
	Live() bool
}

type base struct {
	id   ID
	dead bool
}

func newBase() base {
	return base{id: NewID()}
}

func (b *base) ID() ID { return b.id }

func (b *base) Live() bool { return b != nil && !b.dead }

func (b *base) kill() { b.dead = true }

type killable interface {
	kill()
}
