// Package models contains the gorm persistence models. Timestamps are unix milliseconds.
// No foreign keys: relationships are maintained by application logic.
package models

// All returns every model, in creation order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&QueueTicketModel{},
		&MatchModel{},
		&PlayerProgressionModel{},
	}
}
