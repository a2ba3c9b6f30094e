package eph

import "fmt"

//  *********** DataTypes ***********

// DataTypes are the types of data a Vector can hold
type DataTypes uint8

// values of DataTypes
const (
	DTunknown DataTypes = 0 + iota
	DTstring
	DTfloat
	DTint // keep as last entry
)

// MaxDT is max value of DataTypes type
const MaxDT = DTint

var dtNames = []string{"DTunknown", "DTstring", "DTfloat", "DTint"}

func (d DataTypes) String() string {
	if d > MaxDT {
		return fmt.Sprintf("DataTypes(%d)", d)
	}

	return dtNames[d]
}

func DTFromString(nm string) DataTypes {
	pos := position(nm, dtNames)
	if pos < 0 {
		return DTunknown
	}

	return DataTypes(uint8(pos))
}

// WhatAmI returns the DataTypes of a slice or a single value
func WhatAmI(val any) DataTypes {
	switch val.(type) {
	case float64, []float64:
		return DTfloat
	case int, []int:
		return DTint
	case string, []string:
		return DTstring
	default:
		return DTunknown
	}
}
