/*
 * profile_test.go
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

package rateplot

import (
	"os"
	"path/filepath"
	"testing"

	rate "github.com/rmera/gorate"
	"gonum.org/v1/gonum/floats/scalar"
)

func sampleReport(Te *testing.T, rx rate.Reaction) *rate.Report {
	T := make(rate.Table)
	T.Add(rate.NewRecord("monomer", -100.0, -100.01, false))
	T.Add(rate.NewRecord("cadmium", -50.0, -50.02, false))
	T.Add(rate.NewRecord("vdw_complex", -150.01, -150.05, false))
	T.Add(rate.NewRecord("s_product", -150.02, -150.06, false))
	T.Add(rate.NewRecord("s_product_ts", -149.99, -150.035, true))
	rep, err := rate.Analyze(T, rx)
	if err != nil {
		Te.Fatal(err)
	}
	return rep
}

func TestProfile(Te *testing.T) {
	rep := sampleReport(Te, rate.DefaultReaction("s_product", "s_product_ts"))
	P, err := NewProfile(rep, rate.FieldG)
	if err != nil {
		Te.Fatal(err)
	}
	want := []Level{
		{"monomer + cadmium", 0},
		{"vdw_complex", rate.ToKcal(-0.01)},
		{"s_product_ts", rate.ToKcal(0.01)},
		{"s_product", rate.ToKcal(-0.02)},
	}
	if len(P.Levels) != len(want) {
		Te.Fatalf("wrong levels %+v", P.Levels)
	}
	for i, l := range P.Levels {
		if l.Name != want[i].Name || !scalar.EqualWithinAbs(l.Energy, want[i].Energy, 1e-6) {
			Te.Errorf("level %d: %+v, want %+v", i, l, want[i])
		}
	}
	name := filepath.Join(Te.TempDir(), "profile.png")
	if err := P.Save(name, 12, 8); err != nil {
		Te.Fatal(err)
	}
	if st, err := os.Stat(name); err != nil || st.Size() == 0 {
		Te.Errorf("no plot written: %v", err)
	}
}

func TestProfileFromComplex(Te *testing.T) {
	rep := sampleReport(Te, rate.Reaction{Product: "s_product", TS: "s_product_ts", Complex: "vdw_complex"})
	P, err := NewProfile(rep, rate.FieldE0)
	if err != nil {
		Te.Fatal(err)
	}
	if len(P.Levels) != 3 || P.Levels[0].Name != "vdw_complex" || P.Levels[0].Energy != 0 {
		Te.Fatalf("wrong levels %+v", P.Levels)
	}
	if !scalar.EqualWithinAbs(P.Levels[1].Energy, rate.ToKcal(0.015), 1e-6) {
		Te.Errorf("wrong barrier %v", P.Levels[1].Energy)
	}
	if _, err := NewProfile(&rate.Report{}, rate.FieldG); err == nil {
		Te.Error("a report without framings should give an error")
	}
	if err := (&Profile{}).Save(filepath.Join(Te.TempDir(), "empty.png"), 10, 10); err == nil {
		Te.Error("an empty profile should not be saved")
	}
}
