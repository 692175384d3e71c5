/*
 * rates.go, part of gorate.
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
	"log"
	"math"
)

// Conditions are the temperature (K) and pressure (Pa) at which constants are computed.
type Conditions struct {
	T float64 `yaml:"temperature" json:"temperature"`
	P float64 `yaml:"pressure" json:"pressure"`
}

// SetDefaults sets the standard state, 298.15 K and 101325 Pa.
func (C *Conditions) SetDefaults() {
	C.T = StdT
	C.P = StdP
}

// Check replaces non-physical values with the defaults, logging the change.
func (C *Conditions) Check() {
	if C.T <= 0 || math.IsNaN(C.T) || math.IsInf(C.T, 0) {
		log.Printf("Invalid temperature %5.2f K. Will use the default: %5.2f", C.T, StdT)
		C.T = StdT
	}
	if C.P <= 0 || math.IsNaN(C.P) || math.IsInf(C.P, 0) {
		log.Printf("Invalid pressure %5.1f Pa. Will use the default: %5.1f", C.P, StdP)
		C.P = StdP
	}
}

// RT returns R*T in kcal/mol
func (C Conditions) RT() float64 {
	return R * C.T
}

//volumeFactor is RJ*T/P, the molar volume of an ideal gas, used to take
//constants from the mole-fraction to the concentration basis.
func (C Conditions) volumeFactor() float64 {
	return RJ * C.T / C.P
}

// Kinetics contains the constants for one reaction and one reference.
// Energy differences are in kcal/mol, rate constants in 1/s.
type Kinetics struct {
	DeltaOverall float64 //product - reference
	DeltaForward float64 //transition state - reference
	DeltaReverse float64 //transition state - product
	Keq          float64
	Kc           float64
	KForward     float64
	KReverse     float64
	Ratio        float64 //KForward/KReverse
}

// Equilibrium returns exp(-dOverall/RT). dOverall in kcal/mol.
func Equilibrium(dOverall float64, C Conditions) float64 {
	return math.Exp(-dOverall / C.RT())
}

// Eyring returns the transition state theory rate constant for the barrier
// dBarrier (kcal/mol), (kb*T/h)*exp(-dBarrier/RT), multiplied by RJ*T/P.
func Eyring(dBarrier float64, C Conditions) float64 {
	return KbOverH * C.T * math.Exp(-dBarrier/C.RT()) * C.volumeFactor()
}

// Compute obtains all the constants from the three energy differences, in kcal/mol.
//
// Note that K_c is obtained from K_eq with the single factor RJ*T/P, whatever the change
// in the number of particles in the reaction. This is only dimensionally right when that
// change is one.
func Compute(dOverall, dForward, dReverse float64, C Conditions) Kinetics {
	k := Kinetics{
		DeltaOverall: dOverall,
		DeltaForward: dForward,
		DeltaReverse: dReverse,
	}
	k.Keq = Equilibrium(dOverall, C)
	k.Kc = k.Keq * C.volumeFactor()
	k.KForward = Eyring(dForward, C)
	k.KReverse = Eyring(dReverse, C)
	//Same as KForward/KReverse, but doesn't give NaN when both underflow.
	k.Ratio = math.Exp(-(dForward - dReverse) / C.RT())
	return k
}

// Reaction names the species involved in one elementary step. Complex is the
// pre-reaction complex and Reactants are the free starting materials, whose
// energies are added.
type Reaction struct {
	Product   string   `yaml:"product" json:"product"`
	TS        string   `yaml:"ts" json:"ts"`
	Complex   string   `yaml:"complex" json:"complex,omitempty"`
	Reactants []string `yaml:"reactants" json:"reactants,omitempty"`
}

// DefaultReaction returns a reaction with the reference species named as
// in the usual metal-monomer setup: "vdw_complex" from "monomer" and "cadmium".
func DefaultReaction(product, ts string) Reaction {
	return Reaction{Product: product, TS: ts, Complex: "vdw_complex", Reactants: []string{"monomer", "cadmium"}}
}

// Framing contains the constants for one choice of reference, computed both
// from the free energies (G) and from the electronic energies (E).
type Framing struct {
	Reference []string
	G         Kinetics
	E         Kinetics
}

// Complexation contains the equilibrium between the free reactants and the complex.
// No transition state is involved.
type Complexation struct {
	Complex   string
	Reactants []string
	DeltaG    float64
	DeltaE    float64
	Keq       float64
	Kc        float64
}

// Options for Analyze.
type Options struct {
	Conditions Conditions
	Policy     MissingPolicy
}

// SetDefaults sets standard conditions and the Warn policy.
func (O *Options) SetDefaults() {
	O.Conditions.SetDefaults()
	O.Policy = Warn
}

// Report contains all the results for one reaction. Framings that could not be
// computed, because the reaction does not name the required species, are nil.
type Report struct {
	Reaction      Reaction
	Conditions    Conditions
	FromComplex   *Framing
	FromReactants *Framing
	Complexation  *Complexation
	Warnings      []string
}

// Analyze computes the report for the reaction rx with the energies in src.
// If no options are given, the defaults are used.
func Analyze(src Source, rx Reaction, options ...*Options) (*Report, error) {
	const caller = "Analyze"
	o := new(Options)
	if len(options) > 0 && options[0] != nil {
		*o = *options[0]
		o.Conditions.Check()
	} else {
		o.SetDefaults()
	}
	if rx.Product == "" || rx.TS == "" {
		return nil, &Error{message: ErrIncomplete, deco: []string{caller}, critical: true}
	}
	if rx.Complex == "" && len(rx.Reactants) == 0 {
		return nil, &Error{message: ErrNoFraming, deco: []string{caller}, critical: true}
	}
	r := newResolver(src, o.Policy)
	rep := &Report{Reaction: rx, Conditions: o.Conditions}
	if rx.Complex != "" {
		rep.FromComplex = framing(r, rx, []string{rx.Complex}, o.Conditions)
	}
	if len(rx.Reactants) > 0 {
		rep.FromReactants = framing(r, rx, rx.Reactants, o.Conditions)
	}
	if rx.Complex != "" && len(rx.Reactants) > 0 {
		rep.Complexation = complexation(r, rx.Complex, rx.Reactants, o.Conditions)
	}
	if r.err != nil {
		return nil, errDecorate(r.err, caller)
	}
	rep.Warnings = r.warnings
	return rep, nil
}

//framing computes the constants for rx taking the sum of the energies of
//the species in ref as the reference.
func framing(r *resolver, rx Reaction, ref []string, C Conditions) *Framing {
	f := &Framing{Reference: append([]string(nil), ref...)}
	for _, fi := range []Field{FieldG, FieldE0} {
		reference := r.sum(ref, fi)
		prod := r.get(rx.Product, fi)
		ts := r.get(rx.TS, fi)
		k := Compute(ToKcal(prod-reference), ToKcal(ts-reference), ToKcal(ts-prod), C)
		if fi == FieldG {
			f.G = k
		} else {
			f.E = k
		}
	}
	return f
}

func complexation(r *resolver, complex string, reactants []string, C Conditions) *Complexation {
	c := &Complexation{Complex: complex, Reactants: append([]string(nil), reactants...)}
	c.DeltaG = ToKcal(r.get(complex, FieldG) - r.sum(reactants, FieldG))
	c.DeltaE = ToKcal(r.get(complex, FieldE0) - r.sum(reactants, FieldE0))
	c.Keq = Equilibrium(c.DeltaG, C)
	c.Kc = c.Keq
	return c
}
