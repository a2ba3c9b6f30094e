package eph

import (
	"fmt"
	"sort"
)

// DF is an ordered set of equal-length columns.
type DF struct {
	cols []*Col

	by []*Col
}

func NewDF(cols ...*Col) (*DF, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("no columns in NewDF")
	}

	df := &DF{}
	for _, col := range cols {
		if e := df.AppendColumn(col, false); e != nil {
			return nil, e
		}
	}

	return df, nil
}

// *********** DF - Methods ***********

func (df *DF) RowCount() int {
	if len(df.cols) == 0 {
		return 0
	}

	return df.cols[0].Len()
}

func (df *DF) ColumnCount() int {
	return len(df.cols)
}

func (df *DF) ColumnNames() []string {
	var names []string
	for _, col := range df.cols {
		names = append(names, col.Name())
	}

	return names
}

// Column returns the column colName, nil if there is no such column.
func (df *DF) Column(colName string) *Col {
	for _, col := range df.cols {
		if col.Name() == colName {
			return col
		}
	}

	return nil
}

func (df *DF) HasColumns(colNames ...string) bool {
	for _, cn := range colNames {
		if df.Column(cn) == nil {
			return false
		}
	}

	return true
}

// AppendColumn adds col to the end of df. If replace is true, a column with the same name is replaced in place.
func (df *DF) AppendColumn(col *Col, replace bool) error {
	if len(df.cols) > 0 && col.Len() != df.RowCount() {
		return fmt.Errorf("length mismatch: df - %d, append col %s - %d", df.RowCount(), col.Name(), col.Len())
	}

	for ind, c := range df.cols {
		if c.Name() != col.Name() {
			continue
		}

		if !replace {
			return fmt.Errorf("duplicate column name: %s", col.Name())
		}

		df.cols[ind] = col
		return nil
	}

	df.cols = append(df.cols, col)

	return nil
}

func (df *DF) DropColumns(colNames ...string) error {
	for _, cn := range colNames {
		pos := -1
		for ind, c := range df.cols {
			if c.Name() == cn {
				pos = ind
				break
			}
		}

		if pos < 0 {
			return fmt.Errorf("%w: %s", ErrColumnNotFound, cn)
		}

		df.cols = append(df.cols[:pos], df.cols[pos+1:]...)
	}

	return nil
}

// KeepColumns returns a DF with the named columns, in the order given. The columns are shared, not copied.
func (df *DF) KeepColumns(colNames ...string) (*DF, error) {
	var cols []*Col
	for _, cn := range colNames {
		col := df.Column(cn)
		if col == nil {
			return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, cn)
		}

		cols = append(cols, col)
	}

	return NewDF(cols...)
}

func (df *DF) Copy() *DF {
	out := &DF{}
	for _, col := range df.cols {
		out.cols = append(out.cols, col.Copy())
	}

	return out
}

// AppendDF returns the rows of df followed by the rows of df2. A column present in only one of the two
// is filled with missing values for the rows of the other. Column order is first seen.
func (df *DF) AppendDF(df2 *DF) (*DF, error) {
	n1, n2 := df.RowCount(), df2.RowCount()

	names := df.ColumnNames()
	for _, cn := range df2.ColumnNames() {
		if !has(cn, names) {
			names = append(names, cn)
		}
	}

	out := &DF{}
	for _, cn := range names {
		c1, c2 := df.Column(cn), df2.Column(cn)

		var dt DataTypes
		switch {
		case c1 != nil && c2 != nil && c1.DataType() != c2.DataType():
			return nil, fmt.Errorf("column %s has type %s and %s", cn, c1.DataType(), c2.DataType())
		case c1 != nil:
			dt = c1.DataType()
		default:
			dt = c2.DataType()
		}

		var v *Vector
		if c1 != nil {
			v = c1.Vector.Copy()
		} else {
			v = MissingVector(dt, n1)
		}

		add := MissingVector(dt, n2)
		if c2 != nil {
			add = c2.Vector
		}

		if e := v.AppendVector(add); e != nil {
			return nil, e
		}

		out.cols = append(out.cols, MustCol(cn, v))
	}

	return out, nil
}

// Where returns a new DF with the rows for which keep is true.
func (df *DF) Where(keep []bool) (*DF, error) {
	if len(keep) != df.RowCount() {
		return nil, fmt.Errorf("Where: indicator length %d, df rows %d", len(keep), df.RowCount())
	}

	out := &DF{}
	for _, col := range df.cols {
		out.cols = append(out.cols, MustCol(col.Name(), col.Vector.Where(keep)))
	}

	return out, nil
}

// Row returns the values of row indx, nil for missing values.
func (df *DF) Row(indx int) []any {
	var row []any
	for _, col := range df.cols {
		row = append(row, col.Element(indx))
	}

	return row
}

// ColumnTypes returns the types of the named columns (all columns if none are named).
func (df *DF) ColumnTypes(colNames ...string) ([]DataTypes, error) {
	if colNames == nil {
		colNames = df.ColumnNames()
	}

	var dts []DataTypes
	for _, cn := range colNames {
		col := df.Column(cn)
		if col == nil {
			return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, cn)
		}

		dts = append(dts, col.DataType())
	}

	return dts, nil
}

// Sort sorts df in place by the key tuple cols, lexicographically in the order given. The sort is stable.
func (df *DF) Sort(cols ...string) error {
	var by []*Col
	for _, cn := range cols {
		col := df.Column(cn)
		if col == nil {
			return fmt.Errorf("%w: %s", ErrColumnNotFound, cn)
		}

		by = append(by, col)
	}

	df.by = by
	order := make([]int, df.RowCount())
	for ind := range order {
		order[ind] = ind
	}

	sort.SliceStable(order, func(i, j int) bool {
		return df.less(order[i], order[j])
	})

	for ind, col := range df.cols {
		df.cols[ind] = &Col{name: col.Name(), Vector: col.Vector.Permute(order)}
	}

	df.by = nil

	return nil
}

func (df *DF) less(i, j int) bool {
	for _, col := range df.by {
		if col.Less(i, j) {
			return true
		}

		if col.Less(j, i) {
			return false
		}
	}

	// equal
	return false
}
