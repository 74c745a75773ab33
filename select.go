package tabinspect

// SelectColumns returns a projection of d holding the requested columns that
// exist, in the requested order, plus the names that do not exist.
// It never fails: when none of the names exist the projection is empty.
func SelectColumns(d *Dataset, names ...string) (*Dataset, []string) {
	var (
		columns   []Column
		positions []int
		missing   []string
		seen      = make(map[string]bool, len(names))
	)
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		i, ok := d.index[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		columns = append(columns, d.columns[i])
		positions = append(positions, i)
	}

	if len(columns) == 0 {
		return d.derive(nil, nil), missing
	}

	records := make([]Record, len(d.records))
	for r, record := range d.records {
		projected := make(Record, len(positions))
		for j, pos := range positions {
			projected[j] = record[pos]
		}
		records[r] = projected
	}
	return d.derive(columns, records), missing
}

// Unique returns the distinct non-nil values of column in first-seen order.
func Unique(d *Dataset, column string) ([]any, error) {
	i, ok := d.index[column]
	if !ok {
		return nil, d.missingColumn(column)
	}

	var values []any
	for _, record := range d.records {
		v := record[i]
		if v == nil || containsValue(values, v) {
			continue
		}
		values = append(values, v)
	}
	return values, nil
}

// containsValue reports whether values already holds v
func containsValue(values []any, v any) bool {
	for _, existing := range values {
		if sameValue(existing, v) {
			return true
		}
	}
	return false
}
