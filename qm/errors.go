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

package qm

import (
	"fmt"
	"strings"
)

// Error is the error type for the qm package. It can wrap the error
// that caused it, so errors.Is and errors.As work through it.
type Error struct {
	message    string
	program    string //the QM program, ORCA or xtb
	inputname  string //the name of the job, usually the species
	additional string
	deco       []string
	critical   bool
	err        error
}

func (err *Error) Error() string {
	ret := fmt.Sprintf("%s job %s: %s", err.program, err.inputname, err.message)
	if err.additional != "" {
		ret += ": " + err.additional
	}
	if len(err.deco) > 0 {
		ret = strings.Join(err.deco, "/") + ": " + ret
	}
	return ret
}

// Unwrap returns the underlying error, if any.
func (err *Error) Unwrap() error { return err.err }

// Decorate adds information to the error. The information is
// prepended to the error message.
func (err *Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

// Code returns the QM program associated with the error.
func (err *Error) Code() string { return err.program }

// InputName returns the job name associated with the error.
func (err *Error) InputName() string { return err.inputname }

// Critical returns true if the error is critical, false otherwise
func (err *Error) Critical() bool { return err.critical }

func newError(message, program, inputname string, err error, deco ...string) *Error {
	ret := &Error{message: message, program: program, inputname: inputname, deco: deco, critical: true, err: err}
	if err != nil {
		ret.additional = err.Error()
	}
	return ret
}

// Errors
const (
	ErrNoEnergy        = "couldn't obtain energy"
	ErrNoFreeEnergy    = "couldn't obtain free energy"
	ErrCantInput       = "can't build input file"
	ErrMissingGeometry = "missing coordinates or atoms"
	ErrNotRunning      = "couldn't run the program"
	ErrNoTermination   = "program didn't terminate normally"
	ErrUnknownProgram  = "unknown QM program"
	ErrDuplicate       = "species name repeated in the batch"
)

// Programs
const (
	Orca = "ORCA"
	XTB  = "XTB"
)
