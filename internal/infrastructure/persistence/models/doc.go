// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
// - base.go: BaseModel shared by identified rows
// - sfa.go: revenue records, sales items, payments and payment history
// - lookup.go: codes, teams and customers served to the payment form
//
// Payment profit settings and team allocations are stored as embedded JSON
// strings, the same encoding the API carries.
package models
