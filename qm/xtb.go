/*
 * xtb.go, part of gorate.
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
//In order to use this part of the library you need the xtb program, which must be obtained from Prof. Stefan Grimme's group.
//Please cite the the xtb references if you used the program.

package qm

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// XTBHandle runs thermochemistry calculations with xtb.
// Note that the default methods vary with each program, and even
// for a given program they are NOT considered part of the API, so they can always change.
type XTBHandle struct {
	command   string
	inputname string
	wrkdir    string
	nCPU      int
	options   []string
}

// NewXTBHandle initializes and returns an xtb handle
// with values set to their defaults.
func NewXTBHandle() *XTBHandle {
	run := new(XTBHandle)
	run.SetDefaults()
	return run
}

//XTBHandle methods

// SetnCPU sets the number of CPU to be used
func (O *XTBHandle) SetnCPU(cpu int) {
	O.nCPU = cpu
}

// Command returns the path and name for the xtb excecutable
func (O *XTBHandle) Command() string {
	return O.command
}

func (O *XTBHandle) SetName(name string) {
	O.inputname = name
}

func (O *XTBHandle) SetCommand(name string) {
	O.command = name
}

func (O *XTBHandle) SetWorkDir(d string) {
	O.wrkdir = d
}

// OutputFile returns the path to the file where the xtb output is written.
func (O *XTBHandle) OutputFile() string {
	return filepath.Join(O.wrkdir, O.inputname+".out")
}

// Options returns the command-line options prepared by BuildInput.
func (O *XTBHandle) Options() []string {
	return append([]string(nil), O.options...)
}

func (O *XTBHandle) SetDefaults() {
	O.command = "xtb"
	O.nCPU = runtime.NumCPU() / 2
}

// BuildInput prepares an xtb optimization and frequency calculation (or only a frequency
// calculation, if no optimization is requested or the molecule is a single atom).
// xtb can't optimize transition states, so for those only the frequencies are obtained, at the
// given geometry. Only the GFN methods are supported. Any other method gives GFN2.
func (O *XTBHandle) BuildInput(mol *Molecule, Q *Calc) error {
	errid := "XTBHandle/BuildInput"
	if O.inputname == "" {
		O.inputname = "gorate"
	}
	if err := mol.Corrupted(); err != nil {
		return newError(ErrMissingGeometry, XTB, O.inputname, err, errid)
	}
	w := O.wrkdir
	err := WriteXYZ(filepath.Join(w, O.inputname+".xyz"), mol)
	if err != nil {
		return newError(ErrCantInput, XTB, O.inputname, err, "WriteXYZ", errid)
	}
	O.options = make([]string, 0, 12)
	O.options = append(O.options, O.inputname+".xyz")
	switch {
	case Q.TS && Q.Optimize:
		log.Printf("%s: xtb can't optimize transition states. Will compute the frequencies of %s at the given geometry", errid, O.inputname)
		O.options = append(O.options, "--hess")
	case Q.Optimize && mol.Len() > 1:
		O.options = append(O.options, "--ohess")
	default:
		O.options = append(O.options, "--hess")
	}
	O.options = append(O.options, "--chrg", strconv.Itoa(mol.Charge))
	O.options = append(O.options, "--uhf", strconv.Itoa(mol.Multi-1))
	if O.nCPU > 1 {
		O.options = append(O.options, "-P", strconv.Itoa(O.nCPU))
	}
	method := strings.ToLower(Q.Method)
	if !isInString([]string{"gfn1", "gfn2", "gfn0"}, method) {
		if method != "" {
			log.Printf("%s: method %s not available in xtb, will use GFN2", errid, Q.Method)
		}
		method = "gfn2"
	}
	O.options = append(O.options, "--gfn", strings.TrimPrefix(method, "gfn"))
	if Q.Dielectric > 0 && method != "gfn0" { //gfn0 doesn't support implicit solvation
		solvent, ok := dielectric2Solvent[int(Q.Dielectric)]
		if ok {
			O.options = append(O.options, "--alpb", solvent)
		} else {
			log.Printf("%s: no solvent with dielectric %4.1f for xtb. Will run in gas phase", errid, Q.Dielectric)
		}
	}
	if Q.Temperature > 0 {
		xcontrol, err := os.Create(filepath.Join(w, O.inputname+".inp"))
		if err != nil {
			return newError(ErrCantInput, XTB, O.inputname, err, "os.Create", errid)
		}
		_, err = fmt.Fprintf(xcontrol, "$thermo\n temp=%.2f\n$end\n", Q.Temperature)
		xcontrol.Close()
		if err != nil {
			return newError(ErrCantInput, XTB, O.inputname, err, "fmt.Fprintf", errid)
		}
		O.options = append(O.options, "--input", O.inputname+".inp")
	}
	return nil
}

// Run runs xtb and waits for it to finish. Both the standard output and error
// go to the name.out file in the working directory.
func (O *XTBHandle) Run(ctx context.Context) (err error) {
	errid := "XTBHandle/Run"
	out, err := os.Create(O.OutputFile())
	if err != nil {
		return newError(ErrNotRunning, XTB, O.inputname, err, "os.Create", errid)
	}
	defer out.Close()
	command := exec.CommandContext(ctx, O.command, O.options...)
	command.Dir = O.wrkdir
	command.Stdout = out
	command.Stderr = out
	if err = command.Run(); err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return newError(ErrNotRunning, XTB, O.inputname, err, "exec.Run", errid)
	}
	os.Remove(filepath.Join(O.wrkdir, "xtbrestart"))
	return nil
}

// Thermo gets the total energy, the total free energy and the number of imaginary
// frequencies from the output of a previous xtb calculation.
func (O *XTBHandle) Thermo() (*Thermo, error) {
	errid := "XTBHandle/Thermo"
	outname := O.OutputFile()
	if _, err := os.Stat(outname); err != nil {
		return nil, newError(ErrNoEnergy, XTB, O.inputname, err, "os.Stat", errid)
	}
	if !O.normalTermination() {
		return nil, newError(ErrNoTermination, XTB, O.inputname, nil, errid)
	}
	ret := new(Thermo)
	var err error
	ret.E0, err = strconv.ParseFloat(fieldBefore(lastLine("TOTAL ENERGY", outname), "Eh"), 64)
	if err != nil {
		return nil, newError(ErrNoEnergy, XTB, O.inputname, err, "strconv.ParseFloat", errid)
	}
	ret.G, err = strconv.ParseFloat(fieldBefore(lastLine("TOTAL FREE ENERGY", outname), "Eh"), 64)
	if err != nil {
		return nil, newError(ErrNoFreeEnergy, XTB, O.inputname, err, "strconv.ParseFloat", errid)
	}
	if imag := strings.Fields(lastLine("# imaginary freq.", outname)); len(imag) > 4 {
		//the line looks like ":  # imaginary freq.    0   :"
		ret.NImag, _ = strconv.Atoi(imag[len(imag)-2])
	}
	return ret, nil
}

// normalTermination checks that an xtb calculation has terminated normally
func (O *XTBHandle) normalTermination() bool {
	outname := O.OutputFile()
	return lastLine("normal termination of x", outname) != "" && lastLine("abnormal termination of x", outname) == ""
}

var dielectric2Solvent = map[int]string{
	80: "h2o",
	5:  "chcl3",
	9:  "ch2cl2",
	21: "acetone",
	37: "acetonitrile",
	33: "methanol",
	2:  "toluene",
	7:  "thf",
	47: "dmso",
	38: "dmf",
}
