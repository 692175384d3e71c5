/*
 * store_test.go, part of gorate.
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

package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	rate "github.com/rmera/gorate"
	"github.com/rmera/gorate/qm"
)

func tempStore(Te *testing.T) *Store {
	Te.Helper()
	s, err := Open(filepath.Join(Te.TempDir(), "runs.db"))
	if err != nil {
		Te.Fatalf("Open: %v", err)
	}
	Te.Cleanup(func() { s.Close() })
	return s
}

func batch(start time.Time, outcomes ...qm.Outcome) *qm.BatchResult {
	return &qm.BatchResult{ID: uuid.New(), Started: start, Finished: start.Add(time.Hour), Outcomes: outcomes}
}

func TestSaveAndLoad(Te *testing.T) {
	s := tempStore(Te)
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	first := batch(t0,
		qm.Outcome{Name: "monomer", Record: rate.NewRecord("monomer", -100.0, -100.01, false)},
		qm.Outcome{Name: "cadmium", Err: errors.New("SCF did not converge")},
		qm.Outcome{Name: "s_product_ts", Record: rate.NewRecord("s_product_ts", -149.99, -150.035, true)},
	)
	if err := s.SaveBatch(first); err != nil {
		Te.Fatal(err)
	}
	second := batch(t0.Add(24*time.Hour),
		qm.Outcome{Name: "monomer", Record: rate.NewRecord("monomer", -100.5, -100.6, false)},
		qm.Outcome{Name: "cadmium", Record: rate.NewRecord("cadmium", -50.0, -50.02, false)},
	)
	if err := s.SaveBatch(second); err != nil {
		Te.Fatal(err)
	}
	T, err := s.LoadTable(first.ID.String())
	if err != nil {
		Te.Fatal(err)
	}
	if len(T) != 2 {
		Te.Errorf("expected 2 records in the first batch, got %v", T.Names())
	}
	if v, _ := T.Lookup("monomer", rate.FieldG); v != -100.0 {
		Te.Errorf("wrong G for monomer in the first batch: %v", v)
	}
	if !T["s_product_ts"].TS {
		Te.Error("transition state flag lost")
	}
	latest, err := s.LoadTable("")
	if err != nil {
		Te.Fatal(err)
	}
	if len(latest) != 3 {
		Te.Errorf("expected 3 species, got %v", latest.Names())
	}
	if v, _ := latest.Lookup("monomer", rate.FieldE0); v != -100.6 {
		Te.Errorf("expected the latest monomer, got E0 %v", v)
	}
	if _, err := s.LoadTable(uuid.New().String()); !errors.Is(err, ErrUnknownBatch) {
		Te.Errorf("expected an unknown batch error, got %v", err)
	}
	bs, err := s.Batches()
	if err != nil {
		Te.Fatal(err)
	}
	if len(bs) != 2 || bs[0].ID != second.ID.String() || bs[1].Failed != 1 || bs[1].Species != 3 {
		Te.Errorf("wrong batch list %+v", bs)
	}
	if !bs[1].Started.Equal(t0) {
		Te.Errorf("wrong start time %v", bs[1].Started)
	}
}

func TestSkipper(Te *testing.T) {
	s := tempStore(Te)
	b := batch(time.Now(),
		qm.Outcome{Name: "monomer", Record: rate.NewRecord("monomer", -100.0, -100.01, false)},
		qm.Outcome{Name: "half", Record: &rate.Record{Name: "half", G: rate.Float(-3)}},
		qm.Outcome{Name: "cadmium", Err: errors.New("failed")},
	)
	if err := s.SaveBatch(b); err != nil {
		Te.Fatal(err)
	}
	skip := s.Skipper()
	if r, ok := skip("monomer"); !ok || *r.G != -100.0 {
		Te.Errorf("monomer should be skipped, got %v %v", r, ok)
	}
	for _, name := range []string{"cadmium", "half", "nothere"} {
		if _, ok := skip(name); ok {
			Te.Errorf("%s should not be skipped", name)
		}
	}
	//saving the same batch twice fails, the ID is the primary key
	if err := s.SaveBatch(b); err == nil {
		Te.Error("saving a batch twice should fail")
	}
}
