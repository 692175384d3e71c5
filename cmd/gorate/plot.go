/*
 * plot.go, part of gorate.
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

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	rate "github.com/rmera/gorate"
	"github.com/rmera/gorate/config"
	"github.com/rmera/gorate/rateplot"
)

var (
	plotFrom     string
	plotBatch    string
	plotOut      string
	plotReaction int
	plotEnergy   string
	plotSize     [2]float64
)

var plotCmd = &cobra.Command{
	Use:   "plot <job.yaml>",
	Short: "Draw the energy profile of one of the reactions in the job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		J, err := config.Load(args[0])
		if err != nil {
			return err
		}
		if plotReaction < 0 || plotReaction >= len(J.Reactions) {
			return fmt.Errorf("reaction %d not in the job, which has %d", plotReaction, len(J.Reactions))
		}
		field, err := rate.ParseField(plotEnergy)
		if err != nil {
			return err
		}
		T, err := loadTable(plotFrom, plotBatch)
		if err != nil {
			return err
		}
		rep, err := rate.Analyze(T, J.Reactions[plotReaction], J.Options())
		if err != nil {
			return err
		}
		prof, err := rateplot.NewProfile(rep, field)
		if err != nil {
			return err
		}
		return prof.Save(plotOut, plotSize[0], plotSize[1])
	},
}

func init() {
	plotCmd.Flags().StringVar(&plotFrom, "from", "", "JSON results file")
	plotCmd.Flags().StringVar(&plotBatch, "batch", "", "Batch ID in the database")
	plotCmd.Flags().StringVar(&plotOut, "out", "profile.png", "Output file. The format is given by the extension")
	plotCmd.Flags().IntVar(&plotReaction, "reaction", 0, "Index of the reaction in the job, starting from 0")
	plotCmd.Flags().StringVar(&plotEnergy, "energy", "G", "Energy to plot, G or E0")
	plotCmd.Flags().Float64Var(&plotSize[0], "width", 15, "Width in cm")
	plotCmd.Flags().Float64Var(&plotSize[1], "height", 10, "Height in cm")
}
