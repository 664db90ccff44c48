package stine

// rowGroup is a primary row together with the detail rows following it.
type rowGroup[T any] struct {
	Index   int // position of the primary row in the input
	Primary T
	Details []T
}

// groupRows partitions a flat row sequence. A primary row opens a new group
// and every following non-primary row belongs to it, up to the next primary
// row. Rows before the first primary row belong to no group and are dropped.
func groupRows[T any](rows []T, isPrimary func(T) bool) []rowGroup[T] {
	var groups []rowGroup[T]
	for i, row := range rows {
		if isPrimary(row) {
			groups = append(groups, rowGroup[T]{Index: i, Primary: row})
			continue
		}
		if len(groups) == 0 {
			continue
		}
		last := &groups[len(groups)-1]
		last.Details = append(last.Details, row)
	}
	return groups
}
