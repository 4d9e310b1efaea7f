package shared

import "time"

// AggregateRoot is an entity that records domain events and carries a
// version for optimistic locking
type AggregateRoot interface {
	Entity
	GetVersion() int
	AddDomainEvent(event DomainEvent)
	PullDomainEvents() []DomainEvent
}

// BaseAggregateRoot is embedded by admins, posts, projects, products, orders
// and contact messages
type BaseAggregateRoot struct {
	BaseEntity
	Version      int
	stored       int // version last read from or written to storage, 0 if never
	domainEvents []DomainEvent
}

func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion bumps the version without touching UpdatedAt
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// Touch marks the aggregate as modified now
func (a *BaseAggregateRoot) Touch() {
	a.UpdatedAt = time.Now().UTC()
	a.Version++
}

// StoredVersion is the version the row had when loaded or last saved; 0 for a
// new aggregate. Repositories update only rows still at this version.
func (a *BaseAggregateRoot) StoredVersion() int {
	return a.stored
}

// MarkStored records that storage now holds the current Version
func (a *BaseAggregateRoot) MarkStored() {
	a.stored = a.Version
}

// AddDomainEvent queues an event until the caller pulls it
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns the queued events without clearing them
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// PullDomainEvents returns the queued events and clears the queue.
// Services call it after a successful save and hand the result to the bus.
func (a *BaseAggregateRoot) PullDomainEvents() []DomainEvent {
	events := a.domainEvents
	a.domainEvents = nil
	return events
}

// NewBaseAggregateRoot returns a version 1 aggregate with a fresh ID
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

// RestoreAggregateRoot rebuilds an aggregate header read from storage
func RestoreAggregateRoot(entity BaseEntity, version int) BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: entity, Version: version, stored: version}
}
