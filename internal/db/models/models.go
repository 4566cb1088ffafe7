package models

// All returns every model in migration order.
func All() []any {
	return []any{
		&User{},
		&Unit{},
		&UnitRole{},
		&Tutorial{},
		&Project{},
		&GroupSet{},
		&Group{},
		&GroupMembership{},
		&Task{},
		&PlagiarismMatchLink{},
		&ImportLog{},
	}
}
