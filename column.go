package eph

import "fmt"

// Col is a named Vector
type Col struct {
	name string

	*Vector
}

// *********** Col - Create ***********

func NewCol(name string, v *Vector) (*Col, error) {
	if !validName(name) {
		return nil, fmt.Errorf("invalid column name: %s", name)
	}

	if v == nil {
		return nil, fmt.Errorf("nil vector for column %s", name)
	}

	return &Col{name: name, Vector: v}, nil
}

// MustCol is NewCol for names and vectors known to be valid.
func MustCol(name string, v *Vector) *Col {
	col, e := NewCol(name, v)
	if e != nil {
		panic(e)
	}

	return col
}

// *********** Col - Methods ***********

func (c *Col) Name() string {
	return c.name
}

func (c *Col) Copy() *Col {
	return &Col{name: c.name, Vector: c.Vector.Copy()}
}

func (c *Col) DataType() DataTypes {
	return c.VectorType()
}
