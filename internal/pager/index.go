// Package pager tracks the cursor and page of a view over a list of entries.
package pager

// DefaultPageSize is the number of rows per page.
const DefaultPageSize = 100

// Window is the page containing the cursor: rows [Start, End) of a view of Len rows.
type Window struct {
	Start    int
	End      int
	Cursor   int
	Len      int
	PageSize int
}

// Page returns the 1-based page number, 0 for an empty view.
func (w Window) Page() int {
	if w.Len == 0 {
		return 0
	}
	return w.Start/w.PageSize + 1
}

// Pages returns the number of pages.
func (w Window) Pages() int {
	if w.Len == 0 {
		return 0
	}
	return (w.Len + w.PageSize - 1) / w.PageSize
}

// Index is a cursor over a view. Every operation clamps; none fails.
// On an empty view the cursor stays at 0.
type Index struct {
	len      int
	pageSize int
	cursor   int
}

// New creates an Index over n rows.
func New(n, pageSize int) *Index {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	idx := &Index{pageSize: pageSize}
	idx.Reset(n)
	return idx
}

// Reset points the index at a view of n rows and moves the cursor to 0.
func (x *Index) Reset(n int) {
	if n < 0 {
		n = 0
	}
	x.len = n
	x.cursor = 0
}

// Len returns the number of rows in the view.
func (x *Index) Len() int { return x.len }

// Cursor returns the selected row.
func (x *Index) Cursor() int { return x.cursor }

// PageSize returns the rows per page.
func (x *Index) PageSize() int { return x.pageSize }

func (x *Index) moveTo(i int) {
	if x.len == 0 {
		x.cursor = 0
		return
	}
	x.cursor = max(0, min(i, x.len-1))
}

func (x *Index) LineUp()    { x.moveTo(x.cursor - 1) }
func (x *Index) LineDown()  { x.moveTo(x.cursor + 1) }
func (x *Index) PageLeft()  { x.moveTo(x.cursor - x.pageSize) }
func (x *Index) PageRight() { x.moveTo(x.cursor + x.pageSize) }
func (x *Index) JumpFirst() { x.moveTo(0) }
func (x *Index) JumpLast()  { x.moveTo(x.len - 1) }

// GotoLine moves to the 1-based row n.
func (x *Index) GotoLine(n int) { x.moveTo(n - 1) }

// Window returns the page containing the cursor.
func (x *Index) Window() Window {
	w := Window{Cursor: x.cursor, Len: x.len, PageSize: x.pageSize}
	if x.len == 0 {
		return w
	}
	w.Start = (x.cursor / x.pageSize) * x.pageSize
	w.End = min(w.Start+x.pageSize, x.len)
	return w
}
