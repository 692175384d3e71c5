/*
 * driver.go, part of gorate.
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
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	rate "github.com/rmera/gorate"
)

// Spec describes one species to be computed.
type Spec struct {
	Name     string `yaml:"name" json:"name"`
	Geometry string `yaml:"geometry" json:"geometry"` //path to an xyz file
	Charge   int    `yaml:"charge" json:"charge"`
	Multi    int    `yaml:"multi" json:"multi"` //0 is taken as 1
	TS       bool   `yaml:"ts" json:"is_transition_state"`
}

// Outcome is the result for one species: either a Record, or the error that
// prevented obtaining it. Log is the path to the copy of the program output, if any.
type Outcome struct {
	Name   string
	Record *rate.Record
	Err    error
	Log    string
	Reused bool //the record was taken from previous results, not computed
}

// OK returns true if the species was successfully computed (or reused).
func (O Outcome) OK() bool {
	return O.Err == nil && O.Record != nil
}

// BatchResult contains the outcomes of one RunAll call, in the order
// the species were given.
type BatchResult struct {
	ID       uuid.UUID
	Started  time.Time
	Finished time.Time
	Outcomes []Outcome
}

// Table returns a results table with the successful records.
func (B *BatchResult) Table() rate.Table {
	T := make(rate.Table)
	for _, o := range B.Outcomes {
		if o.OK() {
			if err := T.Add(o.Record.Copy()); err != nil {
				log.Printf("qm: batch %s: %v", B.ID, err)
			}
		}
	}
	return T
}

// Failures returns the outcomes that failed.
func (B *BatchResult) Failures() []Outcome {
	var ret []Outcome
	for _, o := range B.Outcomes {
		if !o.OK() {
			ret = append(ret, o)
		}
	}
	return ret
}

// Outcome returns the outcome for the species name, and false if the species
// was not in the batch.
func (B *BatchResult) Outcome(name string) (Outcome, bool) {
	for _, o := range B.Outcomes {
		if o.Name == name {
			return o, true
		}
	}
	return Outcome{}, false
}

// Option modifies the behaviour of RunAll.
type Option func(*runner)

// WithSkip makes RunAll call skip before computing each species. If skip returns
// true, the record returned is used and the species is not computed again.
func WithSkip(skip func(name string) (*rate.Record, bool)) Option {
	return func(r *runner) {
		r.skip = skip
	}
}

// WithHandleFactory sets the function used to obtain a Handle for each species.
// The default is NewHandle.
func WithHandleFactory(f func(*Config) (Handle, error)) Option {
	return func(r *runner) {
		r.factory = f
	}
}

type runner struct {
	skip    func(name string) (*rate.Record, bool)
	factory func(*Config) (Handle, error)
	calc    *Calc
	cfg     *Config
	now     func() time.Time
}

// RunAll computes all the species in specs, one after another (the QM program itself
// uses the CPUs given in cfg). A species that fails is logged and recorded as a failed
// Outcome, and the batch continues. If ctx is cancelled, the running program is killed
// and the remaining species are recorded as failed with the context's error.
// Q and cfg are not modified.
func RunAll(ctx context.Context, specs []Spec, Q *Calc, cfg *Config, opts ...Option) *BatchResult {
	r := &runner{factory: NewHandle, now: time.Now}
	for _, o := range opts {
		o(r)
	}
	if Q == nil {
		Q = new(Calc)
		Q.SetDefaults()
	}
	if cfg == nil {
		cfg = new(Config)
		cfg.SetDefaults()
	}
	r.calc = Q
	r.cfg = cfg
	res := &BatchResult{ID: uuid.New(), Started: r.now(), Outcomes: make([]Outcome, 0, len(specs))}
	seen := make(map[string]bool, len(specs))
	for _, s := range specs {
		if seen[s.Name] {
			res.Outcomes = append(res.Outcomes, Outcome{Name: s.Name, Err: newError(ErrDuplicate, cfg.Program, s.Name, nil, "RunAll")})
			continue
		}
		seen[s.Name] = true
		if err := ctx.Err(); err != nil {
			res.Outcomes = append(res.Outcomes, Outcome{Name: s.Name, Err: err})
			continue
		}
		if r.skip != nil {
			if rec, ok := r.skip(s.Name); ok && rec != nil {
				log.Printf("Species %s already computed, will reuse the previous results", s.Name)
				rec = rec.Copy()
				rec.Name = s.Name
				res.Outcomes = append(res.Outcomes, Outcome{Name: s.Name, Record: rec, Reused: true})
				continue
			}
		}
		o := r.run(ctx, s)
		if o.Err != nil {
			log.Printf("Simulation of %s failed: %v", s.Name, o.Err)
		}
		res.Outcomes = append(res.Outcomes, o)
	}
	res.Finished = r.now()
	return res
}

//run computes one species. A panic while doing so is turned into a failed outcome.
func (r *runner) run(ctx context.Context, s Spec) (ret Outcome) {
	errid := "RunAll"
	ret = Outcome{Name: s.Name}
	defer func() {
		if p := recover(); p != nil {
			ret.Record = nil
			ret.Err = fmt.Errorf("%s: species %s: panic: %v", errid, s.Name, p)
		}
	}()
	log.Printf("Simulating: %s", s.Name)
	h, err := r.factory(r.cfg)
	if err != nil {
		ret.Err = fmt.Errorf("%s: %w", errid, err)
		return ret
	}
	mol, err := ReadXYZ(s.Geometry)
	if err != nil {
		ret.Err = fmt.Errorf("%s: %w", errid, err)
		return ret
	}
	mol.Charge = s.Charge
	mol.Multi = s.Multi
	if mol.Multi == 0 {
		mol.Multi = 1
	}
	dir := filepath.Join(r.cfg.WorkDir, s.Name)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		ret.Err = fmt.Errorf("%s: %w", errid, err)
		return ret
	}
	h.SetName(s.Name)
	h.SetWorkDir(dir)
	q := *r.calc
	q.TS = s.TS
	if err = h.BuildInput(mol, &q); err != nil {
		ret.Err = err
		return ret
	}
	runerr := h.Run(ctx)
	//the output is kept even if the program failed, it is probably the most useful part then.
	ret.Log, err = r.keepLog(h, s.Name)
	if err != nil {
		log.Printf("Couldn't keep the output of %s: %v", s.Name, err)
	}
	if runerr != nil {
		ret.Err = runerr
		return ret
	}
	th, err := h.Thermo()
	if err != nil {
		ret.Err = err
		return ret
	}
	checkImaginary(s, th)
	ret.Record = &rate.Record{Name: s.Name, G: rate.Float(th.G), E0: rate.Float(th.E0), TS: s.TS}
	return ret
}

//keepLog copies the program output to LogDir/name-YYYYMMDD-HHMMSS.log and returns that path.
func (r *runner) keepLog(h Handle, name string) (string, error) {
	in, err := os.Open(h.OutputFile())
	if err != nil {
		return "", err
	}
	defer in.Close()
	if err = os.MkdirAll(r.cfg.LogDir, 0o755); err != nil {
		return "", err
	}
	logname := filepath.Join(r.cfg.LogDir, name+"-"+r.now().Format("20060102-150405")+".log")
	out, err := os.Create(logname)
	if err != nil {
		return "", err
	}
	defer out.Close()
	if _, err = io.Copy(out, in); err != nil {
		return "", err
	}
	return logname, out.Close()
}

//checkImaginary logs a warning if a minimum has imaginary frequencies, or if a
//transition state doesn't have exactly one.
func checkImaginary(s Spec, th *Thermo) {
	switch {
	case s.TS && th.NImag != 1:
		log.Printf("Warning: transition state %s has %d imaginary frequencies, expected 1", s.Name, th.NImag)
	case !s.TS && th.NImag > 0:
		log.Printf("Warning: %s has %d imaginary frequencies, it is not a minimum", s.Name, th.NImag)
	}
}
