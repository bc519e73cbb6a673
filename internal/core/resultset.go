package core

// ResultSet is an ordered collection of hydrated records that forwards
// field reads and writes to every member.
type ResultSet []*Record

// Len reports the number of records in the set.
func (rs ResultSet) Len() int {
	return len(rs)
}

// First returns the first record, or nil for an empty set.
func (rs ResultSet) First() *Record {
	if len(rs) == 0 {
		return nil
	}
	return rs[0]
}

// Get collects one field's value from every record, in order.
func (rs ResultSet) Get(field string) []any {
	out := make([]any, len(rs))
	for i, r := range rs {
		out[i] = r.Get(field)
	}
	return out
}

// Set assigns fields on every record in the set.
func (rs ResultSet) Set(column any, value ...any) ResultSet {
	for _, r := range rs {
		r.Set(column, value...)
	}
	return rs
}

// SetExpr assigns raw SQL expression fields on every record in the set.
func (rs ResultSet) SetExpr(column any, value ...any) ResultSet {
	for _, r := range rs {
		r.SetExpr(column, value...)
	}
	return rs
}

// Save persists every record, stopping at the first failure.
func (rs ResultSet) Save() error {
	for _, r := range rs {
		if err := r.Save(); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes every record's row, stopping at the first failure.
func (rs ResultSet) Delete() error {
	for _, r := range rs {
		if err := r.Delete(); err != nil {
			return err
		}
	}
	return nil
}

// AsMaps copies every record's data, in order.
func (rs ResultSet) AsMaps() []map[string]any {
	out := make([]map[string]any, len(rs))
	for i, r := range rs {
		out[i] = r.AsMap()
	}
	return out
}
