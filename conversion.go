/*
 * conversion.go, part of gorate.
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

package rate

//This provides useful conversion factors and other constants

//Conversions
const (
	H2Kcal  = 627.509 //Hartree 2 Kcal/mol
	Kcal2H  = 1 / 627.509
	KJ2Kcal = 1 / 4.184
	Kcal2KJ = 4.184
)

//Physical constants. Note that the gas constant is given twice, in the units
//each of the formulas needs.
const (
	R       = 1.987e-3       //kcal/(mol K)
	RJ      = 8.3145         //J/(mol K)
	KbOverH = 2.083661912e10 //Boltzmann over Planck, 1/(s K)
)

//Standard state
const (
	StdT = 298.15   //K
	StdP = 101325.0 //Pa
)

// ToKcal converts an energy in Hartree to kcal/mol
func ToKcal(h float64) float64 {
	return h * H2Kcal
}

// ToHartree converts an energy in kcal/mol to Hartree
func ToHartree(kcal float64) float64 {
	return kcal / H2Kcal
}
