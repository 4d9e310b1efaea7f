// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Each model carries ToDomain/FromDomain mappers; repositories only ever hand domain
// types to callers.
//
// Files:
//   - base.go: BaseModel, AggregateModel and JSON list helpers
//   - admin.go: admin accounts
//   - content.go: posts and projects
//   - marketplace.go: products, orders and order items
//   - contact.go: contact-form messages
package models
