/*
 * errors.go, part of gorate.
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
	"strings"
)

// Error is the general structure for errors in the rate package. It fulfills ErrorDecorator.
type Error struct {
	message  string
	species  string //the species with problems, or empty string if none.
	field    string
	deco     []string
	critical bool
}

func (err *Error) Error() string {
	ret := err.message
	if err.species != "" {
		ret = fmt.Sprintf("species %s: %s", err.species, ret)
	}
	if err.field != "" {
		ret = fmt.Sprintf("%s (%s)", ret, err.field)
	}
	if len(err.deco) > 0 {
		ret = strings.Join(err.deco, ": ") + ": " + ret
	}
	return "gorate: " + ret
}

// Decorate adds the caller's name, or any other information, to the error.
func (err *Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

// Species returns the name of the species the error refers to, if any.
func (err *Error) Species() string { return err.species }

// Critical returns true if the error is critical, false otherwise
func (err *Error) Critical() bool { return err.critical }

//errDecorate decorates the error with the caller's name if it is an *Error,
//otherwise it returns it unchanged.
func errDecorate(err error, caller string) error {
	if err2, ok := err.(*Error); ok {
		err2.Decorate(caller)
		return err2
	}
	return err
}

const (
	ErrMissingValue  = "no value in the results table"
	ErrDuplicate     = "species already present in the results table"
	ErrNilRecord     = "nil record or empty name"
	ErrNoFraming     = "reaction has neither a complex nor reactants to use as reference"
	ErrIncomplete    = "reaction needs both a product and a transition state"
	ErrUnknownPolicy = "unknown missing-data policy"
	ErrUnknownField  = "unknown energy field"
)
