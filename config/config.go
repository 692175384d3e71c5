/*
 * config.go, part of gorate.
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

//Package config reads gorate job files. A job file is a YAML document with
//the QM program settings, the species to compute and the reactions
//to analyze.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	rate "github.com/rmera/gorate"
	"github.com/rmera/gorate/qm"
	"gopkg.in/yaml.v3"
)

// Job contains everything needed to run a batch and analyze its results.
type Job struct {
	qm.Config  `yaml:",inline"`
	Calc       qm.Calc         `yaml:"calc"`
	Conditions rate.Conditions `yaml:"conditions"`
	Missing    string          `yaml:"missing"` //abort, warn or zero
	Species    []qm.Spec       `yaml:"species"`
	Reactions  []rate.Reaction `yaml:"reactions"`
}

// SetDefaults sets the defaults for all the settings.
func (J *Job) SetDefaults() {
	J.Config.SetDefaults()
	J.Calc.SetDefaults()
	J.Conditions.SetDefaults()
	J.Missing = rate.Warn.String()
}

// Load reads the job file path. Relative geometry paths are taken as
// relative to the directory of the job file.
func Load(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config/Load: %w", err)
	}
	J, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config/Load: %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	for i, s := range J.Species {
		if s.Geometry != "" && !filepath.IsAbs(s.Geometry) {
			J.Species[i].Geometry = filepath.Join(dir, s.Geometry)
		}
	}
	return J, nil
}

// Parse reads a job from YAML data. Settings not given take their
// default values. The job is checked before being returned.
func Parse(data []byte) (*Job, error) {
	J := new(Job)
	J.SetDefaults()
	if err := yaml.Unmarshal(data, J); err != nil {
		return nil, fmt.Errorf("config/Parse: %w", err)
	}
	if err := J.Check(); err != nil {
		return nil, err
	}
	return J, nil
}

// Check fixes what it can, logging it, and returns an error for the problems
// that can't be fixed. A reaction with neither complex nor reactants gets the
// default ones ("vdw_complex" from "monomer" and "cadmium"). Reactions that name
// species not in the job are only logged: how that is handled depends on the
// missing-data policy.
func (J *Job) Check() error {
	if err := J.Config.Check(); err != nil {
		return fmt.Errorf("config/Check: %w", err)
	}
	J.Calc.Check()
	J.Conditions.Check()
	if J.Calc.Temperature != J.Conditions.T {
		log.Printf("The QM thermochemistry is computed at %5.2f K, but the rates at %5.2f K", J.Calc.Temperature, J.Conditions.T)
	}
	if _, err := rate.ParsePolicy(J.Missing); err != nil {
		return fmt.Errorf("config/Check: %w", err)
	}
	names := make(map[string]bool, len(J.Species))
	for i, s := range J.Species {
		if s.Name == "" {
			return fmt.Errorf("config/Check: species %d has no name", i)
		}
		if names[s.Name] {
			return fmt.Errorf("config/Check: species %s given twice", s.Name)
		}
		if s.Geometry == "" {
			return fmt.Errorf("config/Check: species %s has no geometry", s.Name)
		}
		names[s.Name] = true
	}
	for i, r := range J.Reactions {
		if r.Product == "" || r.TS == "" {
			return fmt.Errorf("config/Check: reaction %d needs both a product and a transition state", i)
		}
		if r.Complex == "" && len(r.Reactants) == 0 {
			J.Reactions[i] = rate.DefaultReaction(r.Product, r.TS)
			r = J.Reactions[i]
		}
		if len(J.Species) == 0 {
			continue //a job used only to analyze stored results
		}
		for _, n := range append([]string{r.Product, r.TS, r.Complex}, r.Reactants...) {
			if n != "" && !names[n] {
				log.Printf("Reaction %d refers to %s, which is not among the species", i, n)
			}
		}
	}
	return nil
}

// Policy returns the missing-data policy of the job.
func (J *Job) Policy() rate.MissingPolicy {
	p, _ := rate.ParsePolicy(J.Missing) //checked in Check
	return p
}

// Options returns the options for rate.Analyze.
func (J *Job) Options() *rate.Options {
	return &rate.Options{Conditions: J.Conditions, Policy: J.Policy()}
}
