/*
 * xyz.go, part of gorate.
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
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Molecule is the description of a species that a QM program needs: elements,
// cartesian coordinates in A (one row per atom), charge and multiplicity.
type Molecule struct {
	Symbols []string
	Coords  *mat.Dense
	Charge  int
	Multi   int
}

// Len returns the number of atoms in the molecule.
func (M *Molecule) Len() int {
	return len(M.Symbols)
}

// Corrupted returns an error if the molecule is not consistent.
func (M *Molecule) Corrupted() error {
	if M == nil || M.Coords == nil || len(M.Symbols) == 0 {
		return fmt.Errorf("Molecule/Corrupted: %s", ErrMissingGeometry)
	}
	r, c := M.Coords.Dims()
	if r != len(M.Symbols) || c != 3 {
		return fmt.Errorf("Molecule/Corrupted: %d atoms but coordinates are %dx%d", len(M.Symbols), r, c)
	}
	if M.Multi < 1 {
		return fmt.Errorf("Molecule/Corrupted: invalid multiplicity %d", M.Multi)
	}
	return nil
}

// ReadXYZ reads the first frame of the xyz file xyzname. The molecule
// returned is a neutral singlet.
func ReadXYZ(xyzname string) (*Molecule, error) {
	xyzfile, err := os.Open(xyzname)
	if err != nil {
		return nil, fmt.Errorf("ReadXYZ: %w", err)
	}
	defer xyzfile.Close()
	mol, err := readXYZ(xyzfile)
	if err != nil {
		return nil, fmt.Errorf("ReadXYZ: file %s: %w", xyzname, err)
	}
	return mol, nil
}

func readXYZ(in io.Reader) (*Molecule, error) {
	xyz := bufio.NewReader(in)
	line, err := xyz.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("Ill formatted XYZ file")
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || natoms <= 0 {
		return nil, fmt.Errorf("Ill formatted XYZ file")
	}
	if _, err = xyz.ReadString('\n'); err != nil { //the comment line, we dont care about it
		return nil, fmt.Errorf("Ill formatted XYZ file")
	}
	//the header is not trusted for allocations, atoms are appended as they are read.
	var symbols []string
	var coords []float64
	for i := 0; i < natoms; i++ {
		line, err = xyz.ReadString('\n')
		if err != nil && !(err == io.EOF && line != "") {
			return nil, fmt.Errorf("Expected %d atoms, found %d", natoms, i)
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, fmt.Errorf("Line number %d ill formed", i+3)
		}
		symbols = append(symbols, fields[0])
		for j := 0; j < 3; j++ {
			c, err := strconv.ParseFloat(fields[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("Line number %d: %w", i+3, err)
			}
			coords = append(coords, c)
		}
	}
	return &Molecule{Symbols: symbols, Coords: mat.NewDense(natoms, 3, coords), Multi: 1}, nil
}

// WriteXYZ writes mol to the file xyzname, which will be created or overwritten.
func WriteXYZ(xyzname string, mol *Molecule) error {
	if err := mol.Corrupted(); err != nil {
		return err
	}
	out, err := os.Create(xyzname)
	if err != nil {
		return fmt.Errorf("WriteXYZ: %w", err)
	}
	defer out.Close()
	if err := writeXYZ(out, mol, fmt.Sprintf("charge %d multiplicity %d", mol.Charge, mol.Multi)); err != nil {
		return fmt.Errorf("WriteXYZ: %w", err)
	}
	return out.Close()
}

func writeXYZ(out io.Writer, mol *Molecule, comment string) error {
	if _, err := fmt.Fprintf(out, "%-4d\n%s\n", mol.Len(), comment); err != nil {
		return err
	}
	return writeCoords(out, mol)
}

//writeCoords writes one "symbol x y z" line per atom.
func writeCoords(out io.Writer, mol *Molecule) error {
	for i, s := range mol.Symbols {
		_, err := fmt.Fprintf(out, "%-2s  %12.6f%12.6f%12.6f\n", s, mol.Coords.At(i, 0), mol.Coords.At(i, 1), mol.Coords.At(i, 2))
		if err != nil {
			return err
		}
	}
	return nil
}
