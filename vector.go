package eph

import (
	"fmt"
	"math"
	"strconv"
)

// Vector is a typed slice with an optional missing-value mask. A nil mask means nothing is missing.
type Vector struct {
	dt DataTypes

	data    any
	missing []bool
}

func NewVector(data any, dt DataTypes) (*Vector, error) {
	if WhatAmI(data) != dt {
		return nil, fmt.Errorf("cannot make vector of type %s from %T", dt, data)
	}

	return &Vector{dt: dt, data: data}, nil
}

func MakeVector(dt DataTypes, n int) *Vector {
	switch dt {
	case DTfloat:
		return &Vector{dt: dt, data: make([]float64, n)}
	case DTint:
		return &Vector{dt: dt, data: make([]int, n)}
	case DTstring:
		return &Vector{dt: dt, data: make([]string, n)}
	default:
		panic(fmt.Errorf("cannot make Vector with data type %s", dt))
	}
}

// MissingVector returns a vector of length n with every element missing.
func MissingVector(dt DataTypes, n int) *Vector {
	v := MakeVector(dt, n)
	v.missing = make([]bool, n)
	for ind := 0; ind < n; ind++ {
		v.missing[ind] = true
	}

	return v
}

func (v *Vector) VectorType() DataTypes {
	return v.dt
}

func (v *Vector) Len() int {
	switch v.dt {
	case DTfloat:
		return len(v.data.([]float64))
	case DTint:
		return len(v.data.([]int))
	case DTstring:
		return len(v.data.([]string))
	default:
		return -1
	}
}

func (v *Vector) AsFloat() []float64 {
	if v.dt == DTfloat {
		return v.data.([]float64)
	}

	return v.Coerce(DTfloat).data.([]float64)
}

func (v *Vector) AsInt() []int {
	if v.dt == DTint {
		return v.data.([]int)
	}

	return v.Coerce(DTint).data.([]int)
}

func (v *Vector) AsString() []string {
	if v.dt == DTstring {
		return v.data.([]string)
	}

	return v.Coerce(DTstring).data.([]string)
}

func (v *Vector) Missing(indx int) bool {
	if v.missing == nil {
		return false
	}

	return v.missing[indx]
}

// MissingCount is the number of missing elements.
func (v *Vector) MissingCount() int {
	n := 0
	for _, m := range v.missing {
		if m {
			n++
		}
	}

	return n
}

func (v *Vector) SetMissing(indx int) {
	v.checkIndex(indx)

	if v.missing == nil {
		v.missing = make([]bool, v.Len())
	}

	v.missing[indx] = true
}

func (v *Vector) SetFloat(val float64, indx int) {
	if v.dt != DTfloat {
		panic(fmt.Errorf("vector isn't DTfloat"))
	}

	v.checkIndex(indx)
	v.data.([]float64)[indx] = val
	v.clearMissing(indx)
}

func (v *Vector) SetInt(val, indx int) {
	if v.dt != DTint {
		panic(fmt.Errorf("vector isn't DTint"))
	}

	v.checkIndex(indx)
	v.data.([]int)[indx] = val
	v.clearMissing(indx)
}

func (v *Vector) SetString(val string, indx int) {
	if v.dt != DTstring {
		panic(fmt.Errorf("vector isn't DTstring"))
	}

	v.checkIndex(indx)
	v.data.([]string)[indx] = val
	v.clearMissing(indx)
}

// Element returns the value at indx, or nil if it is missing.
func (v *Vector) Element(indx int) any {
	v.checkIndex(indx)

	if v.Missing(indx) {
		return nil
	}

	switch v.dt {
	case DTfloat:
		return v.data.([]float64)[indx]
	case DTint:
		return v.data.([]int)[indx]
	case DTstring:
		return v.data.([]string)[indx]
	default:
		panic(fmt.Errorf("error in Element"))
	}
}

// ElementFloat returns the element as a float, NaN if missing.
func (v *Vector) ElementFloat(indx int) float64 {
	v.checkIndex(indx)

	if v.Missing(indx) {
		return math.NaN()
	}

	switch v.dt {
	case DTfloat:
		return v.data.([]float64)[indx]
	case DTint:
		return float64(v.data.([]int)[indx])
	case DTstring:
		if f, ok := ParseFloat(v.data.([]string)[indx], false); ok {
			return f
		}

		return math.NaN()
	default:
		panic(fmt.Errorf("error in ElementFloat"))
	}
}

// ElementInt returns the element as an int; ok is false if it is missing or does not convert.
func (v *Vector) ElementInt(indx int) (val int, ok bool) {
	v.checkIndex(indx)

	if v.Missing(indx) {
		return 0, false
	}

	switch v.dt {
	case DTint:
		return v.data.([]int)[indx], true
	case DTfloat:
		f := v.data.([]float64)[indx]
		if f != math.Trunc(f) || math.IsNaN(f) {
			return 0, false
		}

		return int(f), true
	case DTstring:
		return ParseInt(v.data.([]string)[indx], false)
	default:
		panic(fmt.Errorf("error in ElementInt"))
	}
}

// ElementString returns the element as a string; ok is false if it is missing.
func (v *Vector) ElementString(indx int) (val string, ok bool) {
	v.checkIndex(indx)

	if v.Missing(indx) {
		return "", false
	}

	switch v.dt {
	case DTstring:
		return v.data.([]string)[indx], true
	case DTint:
		return strconv.Itoa(v.data.([]int)[indx]), true
	case DTfloat:
		return strconv.FormatFloat(v.data.([]float64)[indx], 'f', -1, 64), true
	default:
		panic(fmt.Errorf("error in ElementString"))
	}
}

func (v *Vector) Copy() *Vector {
	var data any
	switch v.dt {
	case DTfloat:
		data = append([]float64{}, v.data.([]float64)...)
	case DTint:
		data = append([]int{}, v.data.([]int)...)
	case DTstring:
		data = append([]string{}, v.data.([]string)...)
	default:
		panic(fmt.Errorf("unsupported data type in Copy"))
	}

	var missing []bool
	if v.missing != nil {
		missing = append([]bool{}, v.missing...)
	}

	return &Vector{dt: v.dt, data: data, missing: missing}
}

// Append adds a single value; a nil val is appended as missing.
func (v *Vector) Append(val any) error {
	n := v.Len()
	if val == nil {
		v.grow()
		v.SetMissing(n)
		return nil
	}

	if WhatAmI(val) != v.dt {
		return fmt.Errorf("cannot append %T to vector of type %s", val, v.dt)
	}

	v.grow()
	switch v.dt {
	case DTfloat:
		v.data.([]float64)[n] = val.(float64)
	case DTint:
		v.data.([]int)[n] = val.(int)
	case DTstring:
		v.data.([]string)[n] = val.(string)
	}

	return nil
}

// AppendVector adds the elements of vAdd, which must have the same type.
func (v *Vector) AppendVector(vAdd *Vector) error {
	if v.dt != vAdd.dt {
		return fmt.Errorf("cannot append vector of type %s to %s", vAdd.dt, v.dt)
	}

	n, nAdd := v.Len(), vAdd.Len()
	if v.missing != nil || vAdd.missing != nil {
		missing := make([]bool, n+nAdd)
		if v.missing != nil {
			copy(missing, v.missing)
		}

		if vAdd.missing != nil {
			copy(missing[n:], vAdd.missing)
		}

		v.missing = missing
	}

	switch v.dt {
	case DTfloat:
		v.data = append(v.data.([]float64), vAdd.data.([]float64)...)
	case DTint:
		v.data = append(v.data.([]int), vAdd.data.([]int)...)
	case DTstring:
		v.data = append(v.data.([]string), vAdd.data.([]string)...)
	}

	return nil
}

// Where returns a new vector holding the elements for which keep is true.
func (v *Vector) Where(keep []bool) *Vector {
	if len(keep) != v.Len() {
		panic(fmt.Errorf("Where: indicator length %d, vector length %d", len(keep), v.Len()))
	}

	var order []int
	for ind, k := range keep {
		if k {
			order = append(order, ind)
		}
	}

	return v.Permute(order)
}

// Coerce converts the vector to type to. Elements that do not convert become missing.
func (v *Vector) Coerce(to DataTypes) *Vector {
	return v.coerce(to, false)
}

// CoerceDecimalComma is Coerce that also accepts a comma as the decimal separator.
func (v *Vector) CoerceDecimalComma(to DataTypes) *Vector {
	return v.coerce(to, true)
}

func (v *Vector) coerce(to DataTypes, decimalComma bool) *Vector {
	if v.dt == to {
		return v.Copy()
	}

	n := v.Len()
	out := MakeVector(to, n)
	for ind := 0; ind < n; ind++ {
		if v.Missing(ind) {
			out.SetMissing(ind)
			continue
		}

		switch to {
		case DTfloat:
			var f float64
			if s, ok := v.Element(ind).(string); ok {
				var okf bool
				if f, okf = ParseFloat(s, decimalComma); !okf {
					out.SetMissing(ind)
					continue
				}
			} else {
				f = v.ElementFloat(ind)
			}

			out.SetFloat(f, ind)
		case DTint:
			var (
				i  int
				ok bool
			)
			if s, isStr := v.Element(ind).(string); isStr {
				i, ok = ParseInt(s, decimalComma)
			} else {
				i, ok = v.ElementInt(ind)
			}

			if !ok {
				out.SetMissing(ind)
				continue
			}

			out.SetInt(i, ind)
		case DTstring:
			s, _ := v.ElementString(ind)
			out.SetString(s, ind)
		default:
			panic(fmt.Errorf("cannot coerce to %s", to))
		}
	}

	return out
}

// Less orders missing values first. Required for sort.
func (v *Vector) Less(i, j int) bool {
	mi, mj := v.Missing(i), v.Missing(j)
	if mi || mj {
		return mi && !mj
	}

	switch v.dt {
	case DTfloat:
		return v.data.([]float64)[i] < v.data.([]float64)[j]
	case DTint:
		return v.data.([]int)[i] < v.data.([]int)[j]
	case DTstring:
		return v.data.([]string)[i] < v.data.([]string)[j]
	default:
		panic(fmt.Errorf("unsupported data type in Less"))
	}
}

func (v *Vector) Swap(i, j int) {
	switch v.dt {
	case DTfloat:
		data := v.data.([]float64)
		data[i], data[j] = data[j], data[i]
	case DTint:
		data := v.data.([]int)
		data[i], data[j] = data[j], data[i]
	case DTstring:
		data := v.data.([]string)
		data[i], data[j] = data[j], data[i]
	default:
		panic(fmt.Errorf("unsupported data type in Swap"))
	}

	if v.missing != nil {
		v.missing[i], v.missing[j] = v.missing[j], v.missing[i]
	}
}

// Permute returns a new vector whose ind element is element order[ind] of v.
func (v *Vector) Permute(order []int) *Vector {
	out := MakeVector(v.dt, len(order))
	for ind, src := range order {
		switch v.dt {
		case DTfloat:
			out.data.([]float64)[ind] = v.data.([]float64)[src]
		case DTint:
			out.data.([]int)[ind] = v.data.([]int)[src]
		case DTstring:
			out.data.([]string)[ind] = v.data.([]string)[src]
		}

		if v.Missing(src) {
			out.SetMissing(ind)
		}
	}

	return out
}

// *********** Helpers ***********

func (v *Vector) checkIndex(indx int) {
	if indx < 0 || indx >= v.Len() {
		panic(fmt.Errorf("index out of range"))
	}
}

func (v *Vector) clearMissing(indx int) {
	if v.missing != nil {
		v.missing[indx] = false
	}
}

func (v *Vector) grow() {
	switch v.dt {
	case DTfloat:
		v.data = append(v.data.([]float64), 0)
	case DTint:
		v.data = append(v.data.([]int), 0)
	case DTstring:
		v.data = append(v.data.([]string), "")
	}

	if v.missing != nil {
		v.missing = append(v.missing, false)
	}
}
