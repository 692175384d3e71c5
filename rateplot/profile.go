/*
 * profile.go, part of gorate
 *
 * Copyright 2026 The gorate authors
 *
    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU Lesser General Public License as published by
    the Free Software Foundation, either version 2.1 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU Lesser General Public License
    along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 *
*/

//Package rateplot draws reaction energy profiles from rate reports.
package rateplot

import (
	"fmt"
	"image/color"
	"strings"

	rate "github.com/rmera/gorate"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Level is one stationary point in an energy profile. Energy in kcal/mol.
type Level struct {
	Name   string
	Energy float64
}

// Profile is the sequence of levels for one reaction, from the reference
// to the product.
type Profile struct {
	Title  string
	Field  rate.Field
	Levels []Level
}

// NewProfile builds the profile for the reaction in rep, using the free energies
// (rate.FieldG) or the electronic energies (rate.FieldE0). The levels are relative
// to the free reactants, or to the complex if the report has no reactants framing.
func NewProfile(rep *rate.Report, f rate.Field) (*Profile, error) {
	if rep == nil {
		return nil, fmt.Errorf("rateplot/NewProfile: nil report")
	}
	kin := func(fr *rate.Framing) rate.Kinetics {
		if f == rate.FieldE0 {
			return fr.E
		}
		return fr.G
	}
	rx := rep.Reaction
	P := &Profile{Field: f, Title: fmt.Sprintf("%s (%s)", rx.Product, f)}
	switch {
	case rep.FromReactants != nil:
		k := kin(rep.FromReactants)
		P.Levels = append(P.Levels, Level{strings.Join(rx.Reactants, " + "), 0})
		if c := rep.Complexation; c != nil {
			e := c.DeltaG
			if f == rate.FieldE0 {
				e = c.DeltaE
			}
			P.Levels = append(P.Levels, Level{c.Complex, e})
		}
		P.Levels = append(P.Levels, Level{rx.TS, k.DeltaForward}, Level{rx.Product, k.DeltaOverall})
	case rep.FromComplex != nil:
		k := kin(rep.FromComplex)
		P.Levels = append(P.Levels, Level{rx.Complex, 0}, Level{rx.TS, k.DeltaForward}, Level{rx.Product, k.DeltaOverall})
	default:
		return nil, fmt.Errorf("rateplot/NewProfile: report without framings")
	}
	return P, nil
}

const halfWidth = 0.3 //half the width of each level line, in x units

func (P *Profile) plot() (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = P.Title
	p.Title.Padding = 3 * vg.Millimeter
	p.Y.Label.Text = fmt.Sprintf("Δ%s (kcal/mol)", strings.TrimSuffix(P.Field.String(), "_tot"))
	names := make([]string, len(P.Levels))
	labels := plotter.XYLabels{XYs: make(plotter.XYs, len(P.Levels)), Labels: make([]string, len(P.Levels))}
	for i, l := range P.Levels {
		names[i] = l.Name
		x := float64(i)
		level, err := plotter.NewLine(plotter.XYs{{X: x - halfWidth, Y: l.Energy}, {X: x + halfWidth, Y: l.Energy}})
		if err != nil {
			return nil, err
		}
		level.LineStyle.Width = vg.Points(2.5)
		level.LineStyle.Color = color.RGBA{R: 20, G: 60, B: 160, A: 255}
		p.Add(level)
		labels.XYs[i] = plotter.XY{X: x, Y: l.Energy}
		labels.Labels[i] = fmt.Sprintf("%.1f", l.Energy)
		if i == 0 {
			continue
		}
		prev := P.Levels[i-1]
		conn, err := plotter.NewLine(plotter.XYs{{X: x - 1 + halfWidth, Y: prev.Energy}, {X: x - halfWidth, Y: l.Energy}})
		if err != nil {
			return nil, err
		}
		conn.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		conn.LineStyle.Color = color.Gray{Y: 100}
		p.Add(conn)
	}
	l, err := plotter.NewLabels(labels)
	if err != nil {
		return nil, err
	}
	l.Offset = vg.Point{X: -vg.Points(8), Y: vg.Points(4)}
	p.Add(l)
	p.Add(plotter.NewGrid())
	p.NominalX(names...)
	p.X.Min = -0.5
	p.X.Max = float64(len(P.Levels)) - 0.5
	return p, nil
}

// Save draws the profile and writes it to filename. The format is given
// by the extension (png, svg, pdf...). w and h are in cm.
func (P *Profile) Save(filename string, w, h float64) error {
	if len(P.Levels) == 0 {
		return fmt.Errorf("rateplot/Save: empty profile")
	}
	p, err := P.plot()
	if err != nil {
		return fmt.Errorf("rateplot/Save: %w", err)
	}
	//here I  intentionally shadow err.
	if err := p.Save(vg.Length(w)*vg.Centimeter, vg.Length(h)*vg.Centimeter, filename); err != nil {
		return fmt.Errorf("rateplot/Save: %w", err)
	}
	return nil
}
