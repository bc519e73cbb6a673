package core

// Save writes the record's dirty fields: an INSERT for new records, an
// UPDATE keyed on the id columns otherwise. A clean existing record is a
// no-op. After a successful insert a database-assigned key is read back,
// through RETURNING where the dialect supports it and LastInsertId
// elsewhere.
func (r *Record) Save() error {
	if r.table == "" {
		return ErrNoTable
	}
	if !r.isNew && len(r.dirty) == 0 {
		return nil
	}

	var query string
	var params []any
	if r.isNew {
		query, params = r.compileInsert()
	} else {
		ids, err := r.idValues()
		if err != nil {
			return err
		}
		query, params = r.compileUpdate()
		params = append(params, ids...)
	}

	ctx := r.context()
	if r.isNew && r.db.dialect.InsertReturning {
		row, err := r.db.runInsertReturning(ctx, r.table, query, params)
		if err != nil {
			return err
		}
		if r.db.config.CachingAutoClear {
			r.db.ClearCache()
		}
		if r.nullIDRemains() && row != nil {
			for k, v := range row {
				r.data[k] = v
			}
		}
	} else {
		res, err := r.db.runExec(ctx, r.table, query, params)
		if err != nil {
			return err
		}
		if r.db.config.CachingAutoClear {
			r.db.ClearCache()
		}
		if r.isNew && r.nullIDRemains() {
			// Drivers without insert-id support report an error here;
			// the key simply stays unset then.
			if id, idErr := res.LastInsertId(); idErr == nil {
				r.data[r.idColumnNames()[0]] = id
			}
		}
	}

	r.isNew = false
	r.dirty = make(map[string]any)
	r.dirtyOrder = nil
	r.exprs = nil
	return nil
}

// Delete removes the record's row, keyed on the id columns.
func (r *Record) Delete() error {
	if r.table == "" {
		return ErrNoTable
	}
	ids, err := r.idValues()
	if err != nil {
		return err
	}
	query := "DELETE FROM " + r.db.quote(r.table) + " " + r.idWhereClause()
	_, err = r.db.runExec(r.context(), r.table, query, ids)
	return err
}

// DeleteMany removes every row matching the accumulated WHERE conditions
// and reports how many went.
func (r *Record) DeleteMany() (int64, error) {
	if r.table == "" {
		return 0, ErrNoTable
	}
	r.values = nil
	where := r.compileConditions(condWhere)
	query := joinIfNotEmpty(" ",
		"DELETE FROM",
		r.db.quote(r.table),
		where,
	)
	params := r.values
	r.values = nil

	res, err := r.db.runExec(r.context(), r.table, query, params)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}
