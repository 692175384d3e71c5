/*
 * orca.go, part of gorate.
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
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// OrcaHandle runs thermochemistry calculations with ORCA.
// Note that the default methods and basis vary with each program, and even
// for a given program they are NOT considered part of the API, so they can always change.
type OrcaHandle struct {
	defmethod string
	defbasis  string
	command   string
	inputname string
	wrkdir    string
	nCPU      int
	memory    int //total, in MB
}

// NewOrcaHandle initializes and returns an ORCA handle
// with values set to their defaults.
func NewOrcaHandle() *OrcaHandle {
	run := new(OrcaHandle)
	run.SetDefaults()
	return run
}

//OrcaHandle methods

// SetnCPU sets the number of CPU to be used
func (O *OrcaHandle) SetnCPU(cpu int) {
	O.nCPU = cpu
}

// SetMemory sets the total memory, in MB, for the calculation.
// ORCA's MaxCore is obtained dividing it by the number of CPUs.
func (O *OrcaHandle) SetMemory(mb int) {
	O.memory = mb
}

func (O *OrcaHandle) SetName(name string) {
	O.inputname = name
}

func (O *OrcaHandle) SetCommand(name string) {
	O.command = name
}

func (O *OrcaHandle) SetWorkDir(d string) {
	O.wrkdir = d
}

// OutputFile returns the path to the ORCA output.
func (O *OrcaHandle) OutputFile() string {
	return filepath.Join(O.wrkdir, O.inputname+".out")
}

/*Sets defaults for ORCA calculation. Default is a B3LYP/def2-SVP
calculation with all the available CPU. The ORCA command is set to
$ORCA_PATH/orca, at least in unix.*/
func (O *OrcaHandle) SetDefaults() {
	O.defmethod = "B3LYP"
	O.defbasis = "def2-SVP"
	O.command = os.ExpandEnv("${ORCA_PATH}/orca")
	if O.command == "/orca" { //if ORCA_PATH was not defined
		O.command = "orca"
	}
	O.nCPU = runtime.NumCPU()
	O.memory = 4000
}

// BuildInput builds an ORCA input for an optimization followed by a frequency
// calculation, based on the data in mol and Q. Single atoms are not optimized.
func (O *OrcaHandle) BuildInput(mol *Molecule, Q *Calc) error {
	errid := "OrcaHandle/BuildInput"
	if O.inputname == "" {
		O.inputname = "gorate"
	}
	if err := mol.Corrupted(); err != nil {
		return newError(ErrMissingGeometry, Orca, O.inputname, err, errid)
	}
	method := Q.Method
	if method == "" {
		log.Printf("%s: no method assigned for ORCA calculation, will use the default %s", errid, O.defmethod)
		method = O.defmethod
	}
	basis := Q.Basis
	if basis == "" {
		log.Printf("%s: no basis set assigned for ORCA calculation, will use the default %s", errid, O.defbasis)
		basis = O.defbasis
	}
	ks := "RKS"
	if mol.Multi != 1 {
		ks = "UKS"
	}
	disp := "D3BJ"
	if Q.Dispersion != "" {
		var ok bool
		if disp, ok = orcaDisp[Q.Dispersion]; !ok {
			log.Printf("%s: dispersion %s not recognized, will use it as given", errid, Q.Dispersion)
			disp = Q.Dispersion
		}
	}
	opt := ""
	if Q.Optimize && mol.Len() > 1 {
		opt = "Opt"
		if Q.TS {
			opt = "OptTS"
		}
	}
	MainOptions := []string{"!", ks, method, basis, disp, "TightSCF", opt, "Freq"}
	mainline := strings.Join(nonEmpty(MainOptions), " ") + "\n"

	pal := ""
	maxcore := ""
	if O.nCPU > 1 {
		pal = fmt.Sprintf("%%pal nprocs %d\n   end\n", O.nCPU)
	}
	if O.memory > 0 {
		ncpu := O.nCPU
		if ncpu < 1 {
			ncpu = 1
		}
		maxcore = fmt.Sprintf("%%maxcore %d\n", O.memory/ncpu)
	}
	cpcm := ""
	if Q.Dielectric > 0 {
		cpcm = fmt.Sprintf("%%cpcm epsilon %.2f\n      end\n", Q.Dielectric)
	}
	ElementBasis := ""
	if Q.MetalBasis != "" && len(Q.MetalElements) > 0 {
		elementbasis := make([]string, 0, len(Q.MetalElements)+2)
		elementbasis = append(elementbasis, "%basis\n")
		for _, val := range Q.MetalElements {
			if !isInString(mol.Symbols, val) {
				continue
			}
			elementbasis = append(elementbasis, fmt.Sprintf("  newgto %s \"%s\" end\n", val, Q.MetalBasis))
		}
		elementbasis = append(elementbasis, "  end\n")
		if len(elementbasis) > 2 {
			ElementBasis = strings.Join(elementbasis, "")
		}
	}
	geom := ""
	if opt == "OptTS" {
		geom = "%geom\n  Calc_Hess true\n  end\n"
	}
	freq := ""
	if Q.Temperature > 0 {
		freq = fmt.Sprintf("%%freq\n  Temp %.2f\n  end\n", Q.Temperature)
	}
	//Now lets write the thing
	file, err := os.Create(filepath.Join(O.wrkdir, O.inputname+".inp"))
	if err != nil {
		return newError(ErrCantInput, Orca, O.inputname, err, "os.Create", errid)
	}
	defer file.Close()
	for _, v := range []string{mainline, pal, maxcore, cpcm, ElementBasis, geom, freq, "\n"} {
		if _, err = fmt.Fprint(file, v); err != nil {
			return newError(ErrCantInput, Orca, O.inputname, err, "fmt.Fprint", errid)
		}
	}
	//Now the type of coords, charge and multiplicity
	if _, err = fmt.Fprintf(file, "* xyz %d %d\n", mol.Charge, mol.Multi); err != nil {
		return newError(ErrCantInput, Orca, O.inputname, err, "fmt.Fprintf", errid)
	}
	if err = writeCoords(file, mol); err != nil {
		return newError(ErrCantInput, Orca, O.inputname, err, "writeCoords", errid)
	}
	if _, err = fmt.Fprintf(file, "*\n"); err != nil {
		return newError(ErrCantInput, Orca, O.inputname, err, "fmt.Fprintf", errid)
	}
	return file.Close()
}

// Run runs ORCA on the input previously built, and waits for it to finish.
// The output goes to the name.out file in the working directory.
func (O *OrcaHandle) Run(ctx context.Context) error {
	out, err := os.Create(O.OutputFile())
	if err != nil {
		return newError(ErrNotRunning, Orca, O.inputname, err, "os.Create", "OrcaHandle/Run")
	}
	defer out.Close()
	command := exec.CommandContext(ctx, O.command, O.inputname+".inp")
	command.Dir = O.wrkdir
	command.Stdout = out
	command.Stderr = out
	if err = command.Run(); err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return newError(ErrNotRunning, Orca, O.inputname, err, "exec.Run", "OrcaHandle/Run")
	}
	return nil
}

// Thermo gets the electronic energy, the Gibbs free energy and the number of imaginary
// frequencies from the output of a previous ORCA calculation. It returns error
// if the calculation didn't terminate normally.
func (O *OrcaHandle) Thermo() (*Thermo, error) {
	errid := "OrcaHandle/Thermo"
	outname := O.OutputFile()
	if _, err := os.Stat(outname); err != nil {
		return nil, newError(ErrNoEnergy, Orca, O.inputname, err, "os.Stat", errid)
	}
	if !O.normalTermination() {
		return nil, newError(ErrNoTermination, Orca, O.inputname, nil, errid)
	}
	ret := new(Thermo)
	var err error
	energyline := lastLine("FINAL SINGLE POINT ENERGY", outname)
	splitted := strings.Fields(energyline)
	if len(splitted) < 5 {
		return nil, newError(ErrNoEnergy, Orca, O.inputname, nil, errid)
	}
	ret.E0, err = strconv.ParseFloat(splitted[4], 64)
	if err != nil {
		return nil, newError(ErrNoEnergy, Orca, O.inputname, err, "strconv.ParseFloat", errid)
	}
	gline := lastLine("Final Gibbs free energy", outname)
	splitted = strings.Fields(gline)
	if len(splitted) < 2 {
		return nil, newError(ErrNoFreeEnergy, Orca, O.inputname, nil, errid)
	}
	ret.G, err = strconv.ParseFloat(splitted[len(splitted)-2], 64) //the last field is the unit, Eh
	if err != nil {
		return nil, newError(ErrNoFreeEnergy, Orca, O.inputname, err, "strconv.ParseFloat", errid)
	}
	ret.NImag = countLines("***imaginary mode***", outname)
	return ret, nil
}

// normalTermination checks that an ORCA calculation has terminated normally.
func (O *OrcaHandle) normalTermination() bool {
	return lastLine("ORCA TERMINATED NORMALLY", O.OutputFile()) != ""
}

var orcaDisp = map[string]string{
	"nodisp": "",
	"D2":     "D2",
	"D3BJ":   "D3BJ",
	"D3bj":   "D3BJ",
	"D3":     "D3ZERO",
	"D3ZERO": "D3ZERO",
	"D3Zero": "D3ZERO",
	"D3zero": "D3ZERO",
	"D4":     "D4",
	"VV10":   "NL",
	"NL":     "NL",
}

func nonEmpty(s []string) []string {
	ret := make([]string, 0, len(s))
	for _, v := range s {
		if v != "" {
			ret = append(ret, v)
		}
	}
	return ret
}
