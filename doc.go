/*
 * doc.go, part of gorate.
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
 */

/*Package rate is the main package of gorate. It takes the free energies of a set of
chemical species, as obtained from frequency calculations with some QM program, and
derives equilibrium constants and transition state theory rate constants from them.


	**gorate Capabilities**


    Keeps a table of per-species results (Gibbs free energy and electronic energy,
	both in Hartree) and looks values up, telling missing data apart from actual values.

    For a reaction given as product, transition state, pre-reaction complex and free
	reactants, computes K_eq, K_c, forward and reverse rate constants (Eyring equation)
	and the relevant energy differences, both from the free energies and the
	electronic energies, with the complex and with the free reactants as reference.

    Computes the complexation constant between the free reactants and the complex.

    Lets the caller decide what happens when a species is missing from the table:
	abort, warn and use zero, or silently use zero.

    Renders the results as text or (see the ratejson package) JSON.

The QM calculations themselves are run by the qm subpackage, which drives external
programs (ORCA and xtb). Results can be archived in SQLite (store) and free energy
profiles can be plotted (rateplot).
*/
package rate
