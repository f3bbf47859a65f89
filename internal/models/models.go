package models

// All lists every persisted model, in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&Transaction{},
		&RecurringTransaction{},
		&Budget{},
		&Goal{},
		&AuditLog{},
	}
}
