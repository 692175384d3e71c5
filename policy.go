/*
 * policy.go, part of gorate.
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
	"fmt"
	"log"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// MissingPolicy decides what happens when a species, or one of its energies,
// is not in the results table.
type MissingPolicy int

const (
	Warn  MissingPolicy = iota //use 0.0, log it and add a warning to the report
	Zero                       //use 0.0 silently
	Abort                      //return an error
)

func (p MissingPolicy) String() string {
	switch p {
	case Warn:
		return "warn"
	case Zero:
		return "zero"
	case Abort:
		return "abort"
	}
	return "unknown"
}

// ParsePolicy returns the policy named by s. The empty string gives the default, Warn.
func ParsePolicy(s string) (MissingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "warn":
		return Warn, nil
	case "zero":
		return Zero, nil
	case "abort":
		return Abort, nil
	}
	return Warn, &Error{message: fmt.Sprintf("%s %q", ErrUnknownPolicy, s), deco: []string{"ParsePolicy"}}
}

//resolver applies a MissingPolicy to the lookups of one report.
//After the first error, it returns zero for everything.
type resolver struct {
	src      Source
	policy   MissingPolicy
	warnings []string
	seen     map[string]bool
	err      error
}

func newResolver(src Source, p MissingPolicy) *resolver {
	return &resolver{src: src, policy: p, seen: make(map[string]bool)}
}

func (r *resolver) get(name string, f Field) float64 {
	if r.err != nil {
		return 0
	}
	var v float64
	var ok bool
	if r.src != nil {
		v, ok = r.src.Lookup(name, f)
	}
	if ok {
		return v
	}
	switch r.policy {
	case Abort:
		r.err = &Error{message: ErrMissingValue, species: name, field: f.String(), critical: true}
	case Warn:
		key := name + "/" + f.String()
		if !r.seen[key] {
			r.seen[key] = true
			w := fmt.Sprintf("no %s for species %q, using 0.0", f, name)
			log.Printf("gorate: %s", w)
			r.warnings = append(r.warnings, w)
		}
	}
	return 0
}

//sum returns the sum of the field f over all the species in names.
func (r *resolver) sum(names []string, f Field) float64 {
	vals := make([]float64, 0, len(names))
	for _, n := range names {
		vals = append(vals, r.get(n, f))
	}
	return floats.Sum(vals)
}
