/*
 * json.go, part of gorate.
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

package ratejson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"time"

	rate "github.com/rmera/gorate"
	"github.com/rmera/gorate/qm"
)

// Placeholder is written instead of values that can't be represented in JSON.
const Placeholder = "<not serializable>"

var placeholderJSON = []byte(`"` + Placeholder + `"`)

// Number is a float64 that is serialized as Placeholder when it is not finite.
type Number float64

// MarshalJSON implements json.Marshaler
func (N Number) MarshalJSON() ([]byte, error) {
	f := float64(N)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return placeholderJSON, nil
	}
	return json.Marshal(f)
}

// UnmarshalJSON implements json.Unmarshaler. The placeholder is read as NaN.
func (N *Number) UnmarshalJSON(b []byte) error {
	v, ok, err := decodeFloat(b)
	if err != nil {
		return err
	}
	if !ok {
		*N = Number(math.NaN())
		return nil
	}
	*N = Number(v)
	return nil
}

//decodeFloat returns the number in b, and false if b is null or the placeholder.
func decodeFloat(b []byte) (float64, bool, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return 0, false, nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err == nil && s == Placeholder {
			return 0, false, nil
		}
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return 0, false, fmt.Errorf("ratejson: invalid energy %s: %w", string(b), err)
	}
	return f, true, nil
}

//num returns nil for an absent value.
func num(v *float64) *Number {
	if v == nil {
		return nil
	}
	n := Number(*v)
	return &n
}

//A ready-to-serialize container for a species record.
type Record struct {
	G  *Number `json:"G_tot,omitempty"`
	E0 *Number `json:"E0,omitempty"`
	TS bool    `json:"is_transition_state"`
}

type record struct {
	G  json.RawMessage `json:"G_tot"`
	E0 json.RawMessage `json:"E0"`
	TS bool            `json:"is_transition_state"`
}

func newRecord(r *rate.Record) Record {
	return Record{G: num(r.G), E0: num(r.E0), TS: r.TS}
}

func newEncoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false) //the placeholder must be written verbatim
	enc.SetIndent("", "    ")
	return enc
}

// EncodeTable writes the table T to w as a JSON object with one key per species.
func EncodeTable(w io.Writer, T rate.Table) error {
	out := make(map[string]Record, len(T))
	for k, v := range T {
		if v == nil {
			continue
		}
		out[k] = newRecord(v)
	}
	if err := newEncoder(w).Encode(out); err != nil {
		return fmt.Errorf("ratejson/EncodeTable: %w", err)
	}
	return nil
}

// DecodeTable reads a table written by EncodeTable. Energies that are
// missing, null, or the placeholder, are absent in the returned table.
func DecodeTable(r io.Reader) (rate.Table, error) {
	in := make(map[string]record)
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, fmt.Errorf("ratejson/DecodeTable: %w", err)
	}
	T := make(rate.Table, len(in))
	for name, v := range in {
		rec := &rate.Record{Name: name, TS: v.TS}
		g, ok, err := decodeFloat(v.G)
		if err != nil {
			return nil, fmt.Errorf("ratejson/DecodeTable: species %s: %w", name, err)
		}
		if ok {
			rec.G = rate.Float(g)
		}
		e, ok, err := decodeFloat(v.E0)
		if err != nil {
			return nil, fmt.Errorf("ratejson/DecodeTable: species %s: %w", name, err)
		}
		if ok {
			rec.E0 = rate.Float(e)
		}
		if err := T.Add(rec); err != nil {
			log.Printf("ratejson/DecodeTable: %v", err)
		}
	}
	return T, nil
}

//A ready-to-serialize container for the outcome of one species.
type Outcome struct {
	Name   string  `json:"name"`
	G      *Number `json:"G_tot,omitempty"`
	E0     *Number `json:"E0,omitempty"`
	TS     bool    `json:"is_transition_state"`
	Reused bool    `json:"reused,omitempty"`
	Log    string  `json:"log,omitempty"`
	Error  string  `json:"error,omitempty"`
}

//A ready-to-serialize container for a batch of calculations.
type Batch struct {
	ID       string    `json:"batch_id"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	Species  []Outcome `json:"species"`
}

// EncodeBatch writes the outcomes of a batch to w. Failed species
// have no energies, and an error message.
func EncodeBatch(w io.Writer, B *qm.BatchResult) error {
	out := Batch{ID: B.ID.String(), Started: B.Started, Finished: B.Finished, Species: make([]Outcome, 0, len(B.Outcomes))}
	for _, o := range B.Outcomes {
		jo := Outcome{Name: o.Name, Reused: o.Reused, Log: o.Log}
		if o.Record != nil {
			jo.G = num(o.Record.G)
			jo.E0 = num(o.Record.E0)
			jo.TS = o.Record.TS
		}
		if o.Err != nil {
			jo.Error = o.Err.Error()
		}
		out.Species = append(out.Species, jo)
	}
	if err := newEncoder(w).Encode(out); err != nil {
		return fmt.Errorf("ratejson/EncodeBatch: %w", err)
	}
	return nil
}

//A ready-to-serialize container for rate.Kinetics.
type Kinetics struct {
	DeltaOverall Number `json:"delta_overall"`
	DeltaForward Number `json:"delta_forward"`
	DeltaReverse Number `json:"delta_reverse"`
	Keq          Number `json:"K_eq"`
	Kc           Number `json:"K_c"`
	KForward     Number `json:"k_forward"`
	KReverse     Number `json:"k_reverse"`
	Ratio        Number `json:"k_forward/k_reverse"`
}

func newKinetics(k rate.Kinetics) Kinetics {
	return Kinetics{
		DeltaOverall: Number(k.DeltaOverall),
		DeltaForward: Number(k.DeltaForward),
		DeltaReverse: Number(k.DeltaReverse),
		Keq:          Number(k.Keq),
		Kc:           Number(k.Kc),
		KForward:     Number(k.KForward),
		KReverse:     Number(k.KReverse),
		Ratio:        Number(k.Ratio),
	}
}

type Framing struct {
	Reference []string `json:"reference"`
	G         Kinetics `json:"free_energy"`
	E         Kinetics `json:"energy"`
}

type Complexation struct {
	Complex   string   `json:"complex"`
	Reactants []string `json:"reactants"`
	DeltaG    Number   `json:"delta_G"`
	DeltaE    Number   `json:"delta_E"`
	Keq       Number   `json:"K_eq"`
	Kc        Number   `json:"K_c"`
}

//A ready-to-serialize container for a rate.Report. Energies in kcal/mol,
//rate constants in 1/s.
type Report struct {
	Reaction      rate.Reaction   `json:"reaction"`
	Conditions    rate.Conditions `json:"conditions"`
	FromComplex   *Framing        `json:"from_complex,omitempty"`
	FromReactants *Framing        `json:"from_reactants,omitempty"`
	Complexation  *Complexation   `json:"complexation,omitempty"`
	Warnings      []string        `json:"warnings,omitempty"`
}

func newFraming(f *rate.Framing) *Framing {
	if f == nil {
		return nil
	}
	return &Framing{Reference: f.Reference, G: newKinetics(f.G), E: newKinetics(f.E)}
}

// NewReport returns a ready-to-serialize version of R.
func NewReport(R *rate.Report) *Report {
	ret := &Report{
		Reaction:      R.Reaction,
		Conditions:    R.Conditions,
		FromComplex:   newFraming(R.FromComplex),
		FromReactants: newFraming(R.FromReactants),
		Warnings:      R.Warnings,
	}
	if c := R.Complexation; c != nil {
		ret.Complexation = &Complexation{
			Complex:   c.Complex,
			Reactants: c.Reactants,
			DeltaG:    Number(c.DeltaG),
			DeltaE:    Number(c.DeltaE),
			Keq:       Number(c.Keq),
			Kc:        Number(c.Kc),
		}
	}
	return ret
}

// EncodeReport writes the reports to w, as a JSON array.
func EncodeReport(w io.Writer, reports ...*rate.Report) error {
	out := make([]*Report, 0, len(reports))
	for _, r := range reports {
		out = append(out, NewReport(r))
	}
	if err := newEncoder(w).Encode(out); err != nil {
		return fmt.Errorf("ratejson/EncodeReport: %w", err)
	}
	return nil
}
