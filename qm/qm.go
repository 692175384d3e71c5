/*
 * qm.go, part of gorate.
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
	"bufio"
	"context"
	"log"
	"os"
	"runtime"
	"strings"

	rate "github.com/rmera/gorate"
)

// Handle allows to set QM thermochemistry calculations using different programs.
type Handle interface {

	//Sets the name for the job, used for input
	//and output files. The extentions will depend on the program.
	SetName(name string)

	//Sets the directory where the input is written and the program runs.
	SetWorkDir(dir string)

	//BuildInput builds an input for the QM program based int the data in
	//mol and Q. returns only error.
	BuildInput(mol *Molecule, Q *Calc) error

	//Run runs the QM program for a calculation previously set, and waits for it
	//to finish. Cancelling ctx kills the program.
	Run(ctx context.Context) error

	//Thermo parses the program's output file and returns the
	//electronic and free energies. It returns an error if the
	//calculation didn't end properly.
	Thermo() (*Thermo, error)

	//OutputFile returns the path to the program's main output.
	OutputFile() string
}

// Thermo contains the results of a frequency calculation, in Hartree.
type Thermo struct {
	E0    float64 //electronic energy
	G     float64 //total Gibbs free energy
	NImag int     //number of imaginary frequencies
}

// Calc contains the settings for the calculation. They are the same for
// all the species in a batch, except for TS, which is set per species.
type Calc struct {
	Method        string   `yaml:"method"`
	Basis         string   `yaml:"basis"`
	MetalBasis    string   `yaml:"metal_basis"`    //a different basis for certain elements
	MetalElements []string `yaml:"metal_elements"` //the elements that get MetalBasis
	Dielectric    float64  `yaml:"dielectric"`     //0 means gas phase
	Dispersion    string   `yaml:"dispersion"`     //D3BJ, D3, D4, nodisp...
	Optimize      bool     `yaml:"optimize"`
	Temperature   float64  `yaml:"temperature"` //for the thermochemistry
	TS            bool     `yaml:"-"`           //optimize to a saddle point
}

// SetDefaults sets B3LYP/def2-SVP with geometry optimization at 298.15 K.
// Defaults are not part of the API, as methods change with time.
func (Q *Calc) SetDefaults() {
	Q.Method = "B3LYP"
	Q.Basis = "def2-SVP"
	Q.Optimize = true
	Q.Temperature = rate.StdT
}

// Check replaces missing values with the defaults.
func (Q *Calc) Check() {
	if Q.Method == "" {
		log.Printf("No method given. Will use the default: B3LYP")
		Q.Method = "B3LYP"
	}
	if Q.Basis == "" {
		log.Printf("No basis set given. Will use the default: def2-SVP")
		Q.Basis = "def2-SVP"
	}
	if Q.Temperature <= 0 {
		log.Printf("Invalid temperature %5.2f K. Will use the default: %5.2f", Q.Temperature, rate.StdT)
		Q.Temperature = rate.StdT
	}
	if Q.MetalBasis != "" && len(Q.MetalElements) == 0 {
		log.Printf("A metal basis (%s) was given, but no elements to apply it to", Q.MetalBasis)
	}
}

// Config tells where and how to run the QM program. It replaces the environment
// variables that would otherwise set threads and memory.
type Config struct {
	Program  string `yaml:"program"`   //orca or xtb
	Command  string `yaml:"command"`   //the executable. Empty means the program's default
	NCPU     int    `yaml:"ncpu"`      //threads for the QM program
	MemoryMB int    `yaml:"memory_mb"` //total memory for the QM program
	LogDir   string `yaml:"log_dir"`   //per-species logs are copied here
	WorkDir  string `yaml:"work_dir"`  //each species runs in a subdirectory of this one
}

// SetDefaults sets ORCA with all the available CPUs
func (C *Config) SetDefaults() {
	C.Program = "orca"
	C.NCPU = runtime.NumCPU()
	C.MemoryMB = 4000
	C.LogDir = "logfiles"
	C.WorkDir = "work"
}

// Check fixes the non-critical problems in the configuration, logging them,
// and returns an error for the critical ones.
func (C *Config) Check() error {
	C.Program = strings.ToLower(strings.TrimSpace(C.Program))
	if C.Program != "orca" && C.Program != "xtb" {
		return newError(ErrUnknownProgram, C.Program, "", nil, "Config.Check")
	}
	if C.NCPU < 1 {
		log.Printf("Invalid number of CPUs %d. Will use 1", C.NCPU)
		C.NCPU = 1
	}
	if C.MemoryMB <= 0 {
		log.Printf("Invalid memory %d MB. Will use the default: 4000", C.MemoryMB)
		C.MemoryMB = 4000
	}
	if C.LogDir == "" {
		C.LogDir = "."
	}
	if C.WorkDir == "" {
		C.WorkDir = "."
	}
	return nil
}

// NewHandle returns a Handle for the program in C, with its settings.
func NewHandle(C *Config) (Handle, error) {
	switch strings.ToLower(C.Program) {
	case "orca":
		h := NewOrcaHandle()
		h.SetnCPU(C.NCPU)
		h.SetMemory(C.MemoryMB)
		if C.Command != "" {
			h.SetCommand(C.Command)
		}
		return h, nil
	case "xtb":
		h := NewXTBHandle()
		h.SetnCPU(C.NCPU)
		if C.Command != "" {
			h.SetCommand(C.Command)
		}
		return h, nil
	}
	return nil, newError(ErrUnknownProgram, C.Program, "", nil, "NewHandle")
}

//Utilities here

//isInString returns true if test is in container, false otherwise.
func isInString(container []string, test string) bool {
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}

//lastLine returns the last line of the file filename that contains str, or an empty string.
func lastLine(str, filename string) string {
	var ret string
	scanLines(filename, func(line string) {
		if strings.Contains(line, str) {
			ret = line
		}
	})
	return ret
}

//countLines returns the number of lines in filename that contain str.
func countLines(str, filename string) int {
	n := 0
	scanLines(filename, func(line string) {
		if strings.Contains(line, str) {
			n++
		}
	})
	return n
}

func scanLines(filename string, f func(string)) error {
	fin, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer fin.Close()
	s := bufio.NewScanner(fin)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for s.Scan() {
		f(s.Text())
	}
	return s.Err()
}

// fieldBefore returns the field right before the first field equal to mark,
// or an empty string.
func fieldBefore(line, mark string) string {
	fields := strings.Fields(line)
	for i, v := range fields {
		if v == mark && i > 0 {
			return fields[i-1]
		}
	}
	return ""
}
