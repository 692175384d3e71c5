/*
 * rates.go, part of gorate.
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

	"github.com/rmera/gorate/config"
)

var (
	ratesFrom  string
	ratesBatch string
	ratesJSON  bool
)

var ratesCmd = &cobra.Command{
	Use:   "rates <job.yaml>",
	Short: "Compute the rates for the reactions in the job from stored results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		J, err := config.Load(args[0])
		if err != nil {
			return err
		}
		if len(J.Reactions) == 0 {
			return fmt.Errorf("job %s has no reactions", args[0])
		}
		T, err := loadTable(ratesFrom, ratesBatch)
		if err != nil {
			return err
		}
		reps, aerr := analyzeAll(T, J)
		if err := writeReports(cmd.OutOrStdout(), reps, ratesJSON); err != nil {
			return err
		}
		return aerr
	},
}

func init() {
	ratesCmd.Flags().StringVar(&ratesFrom, "from", "", "JSON results file (.json, .json.zst or .json.gz)")
	ratesCmd.Flags().StringVar(&ratesBatch, "batch", "", "Batch ID in the database. The default is the latest result for each species")
	ratesCmd.Flags().BoolVar(&ratesJSON, "json", false, "Print the reports as JSON")
}
