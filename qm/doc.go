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
 *
 * */

//Package qm runs the thermochemistry calculations for a set of species
//with an external QM program (ORCA or xtb). The calculation settings are
//kept as separated as possible from the choice of program.
//For each species, the geometry is optimized (unless it is a single atom), and
//a frequency calculation gives the Gibbs free energy. The electronic
//energy and the free energy are collected into a rate.Table.

package qm
