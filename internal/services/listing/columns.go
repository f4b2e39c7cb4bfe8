package listing

// ColumnSpec statically types one table column over the row type: its
// header title, the server-side sort key (empty means not sortable) and a
// renderer producing the cell's display value.
type ColumnSpec[T any] struct {
	Title    string
	Key      string
	Sortable bool
	Render   func(row T) string
}

// HeaderCell is the render-ready form of a column header.
type HeaderCell struct {
	Title    string `json:"title"`
	Key      string `json:"key,omitempty"`
	Sortable bool   `json:"sortable"`
	Active   bool   `json:"active"`
	// Direction is only meaningful when Active.
	Direction string `json:"direction,omitempty"`
}

func renderHeaders[T any](columns []ColumnSpec[T], sortKey, sortDirection string) []HeaderCell {
	out := make([]HeaderCell, 0, len(columns))
	for _, col := range columns {
		cell := HeaderCell{
			Title:    col.Title,
			Key:      col.Key,
			Sortable: col.Sortable,
		}
		if col.Sortable && col.Key == sortKey {
			cell.Active = true
			cell.Direction = sortDirection
		}
		out = append(out, cell)
	}
	return out
}

func renderRow[T any](columns []ColumnSpec[T], row T) []string {
	cells := make([]string, 0, len(columns))
	for _, col := range columns {
		if col.Render == nil {
			cells = append(cells, "")
			continue
		}
		cells = append(cells, col.Render(row))
	}
	return cells
}
