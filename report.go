/*
 * report.go, part of gorate.
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
	"io"
	"strings"
)

//The energy lines show the electronic energy differences, the free energy
//differences go in separate lines. The constants are always from G.
const framingTmpl = `
Results for %s from %s:
 K_eq                  = %.4e 1
 K_c                   = %.4e 1
 Overall Energy Change = % .4f    kcal
 Overall Free Energy   = % .4f    kcal
 k_forward             = %.4e 1/s
 Forward Barrier       = % .4f    kcal
 Forward Free Barrier  = % .4f    kcal
 k_reverse             = %.4e 1/s
 Reverse Barrier       = % .4f    kcal
 Reverse Free Barrier  = % .4f    kcal
 k_forward/k_reverse   = %.4e 1
`

const complexationTmpl = `
Results for vdW complexation:
 K_eq                  = %.4e 1
 K_c                   = %.4e 1
 Overall Energy Change = % .4f    kcal
 Overall Free Energy   = % .4f    kcal
`

func writeFraming(w io.Writer, product, title string, f *Framing) error {
	_, err := fmt.Fprintf(w, framingTmpl, product, title,
		f.G.Keq,
		f.G.Kc,
		f.E.DeltaOverall,
		f.G.DeltaOverall,
		f.G.KForward,
		f.E.DeltaForward,
		f.G.DeltaForward,
		f.G.KReverse,
		f.E.DeltaReverse,
		f.G.DeltaReverse,
		f.G.Ratio)
	return err
}

// WriteText writes the report to w as human-readable text blocks, one per
// framing, followed by the warnings, if any.
func (R *Report) WriteText(w io.Writer) error {
	if R.FromComplex != nil {
		if err := writeFraming(w, R.Reaction.Product, "vdw", R.FromComplex); err != nil {
			return err
		}
	}
	if R.FromReactants != nil {
		if err := writeFraming(w, R.Reaction.Product, "free starting materials", R.FromReactants); err != nil {
			return err
		}
	}
	if c := R.Complexation; c != nil {
		if _, err := fmt.Fprintf(w, complexationTmpl, c.Keq, c.Kc, c.DeltaE, c.DeltaG); err != nil {
			return err
		}
	}
	for _, v := range R.Warnings {
		if _, err := fmt.Fprintf(w, " Warning: %s\n", v); err != nil {
			return err
		}
	}
	return nil
}

func (R *Report) String() string {
	var b strings.Builder
	R.WriteText(&b) //strings.Builder never fails
	return b.String()
}
