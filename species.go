/*
 * species.go, part of gorate.
 *
 *
 * Copyright 2026 The gorate authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

package rate

import (
	"sort"
	"strings"
)

// Field selects one of the energies stored for a species.
type Field int

const (
	FieldG  Field = iota //Total Gibbs free energy
	FieldE0              //Electronic energy
)

func (f Field) String() string {
	switch f {
	case FieldG:
		return "G_tot"
	case FieldE0:
		return "E0"
	}
	return "unknown"
}

// ParseField returns the Field named by s. Both the JSON key ("G_tot", "E0")
// and the short forms "G" and "E" are accepted, case-insensitively.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "g", "g_tot", "gibbs":
		return FieldG, nil
	case "e", "e0":
		return FieldE0, nil
	}
	return FieldG, &Error{message: ErrUnknownField, field: s, deco: []string{"ParseField"}}
}

// Record contains the results for one species. Energies are in Hartree.
// A nil energy means that the value was never obtained (failed or unfinished
// calculation).
type Record struct {
	Name string
	G    *float64
	E0   *float64
	TS   bool
}

// NewRecord returns a complete record.
func NewRecord(name string, G, E0 float64, ts bool) *Record {
	return &Record{Name: name, G: Float(G), E0: Float(E0), TS: ts}
}

// Float returns a pointer to a copy of v. Handy to fill Records.
func Float(v float64) *float64 {
	return &v
}

// Value returns the requested field, and false if it is absent.
func (R *Record) Value(f Field) (float64, bool) {
	if R == nil {
		return 0, false
	}
	var v *float64
	switch f {
	case FieldG:
		v = R.G
	case FieldE0:
		v = R.E0
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// Complete returns true if both energies are present.
func (R *Record) Complete() bool {
	return R != nil && R.G != nil && R.E0 != nil
}

// Copy returns a deep copy of the record.
func (R *Record) Copy() *Record {
	if R == nil {
		return nil
	}
	ret := &Record{Name: R.Name, TS: R.TS}
	if R.G != nil {
		ret.G = Float(*R.G)
	}
	if R.E0 != nil {
		ret.E0 = Float(*R.E0)
	}
	return ret
}

/*****Table type***/

// Table is the results table: a map from species name to Record.
// Each key is meant to be written once, when the corresponding calculation
// finishes, and read many times afterwards.
type Table map[string]*Record

// Add puts r in the table under r.Name. It returns an error if the name
// is already present, or if the record is nil or unnamed.
func (T Table) Add(r *Record) error {
	if r == nil || r.Name == "" {
		return &Error{message: ErrNilRecord, deco: []string{"Table.Add"}, critical: true}
	}
	if _, ok := T[r.Name]; ok {
		return &Error{message: ErrDuplicate, species: r.Name, deco: []string{"Table.Add"}}
	}
	T[r.Name] = r
	return nil
}

// Lookup implements Source. It returns the stored value and true, or zero and false
// if the species or the field is absent.
func (T Table) Lookup(name string, f Field) (float64, bool) {
	return T[name].Value(f)
}

// Names returns the species in the table, sorted.
func (T Table) Names() []string {
	ret := make([]string, 0, len(T))
	for k := range T {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// LookupOrZero returns the requested value, or 0.0 if it is absent for whatever reason.
// It never fails. Note that a missing energy then looks just like a zero energy, which
// leads to meaningless rates. Analyze with an explicit MissingPolicy is the way to go.
func LookupOrZero(src Source, name string, f Field) float64 {
	if src == nil {
		return 0
	}
	v, ok := src.Lookup(name, f)
	if !ok {
		return 0
	}
	return v
}
