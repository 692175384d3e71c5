/*
 * run.go, part of gorate.
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
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/rmera/gorate/config"
	"github.com/rmera/gorate/qm"
	"github.com/rmera/gorate/ratejson"
	"github.com/rmera/gorate/store"
)

var (
	runDump   string
	runResume bool
	runJSON   bool
)

var runCmd = &cobra.Command{
	Use:   "run <job.yaml>",
	Short: "Compute all the species in the job, then the rates for its reactions",
	Long: `Runs the QM program for every species in the job, one after another. A species
that fails is reported and the others continue. The results are printed as JSON
between banners, and optionally dumped to a file (compressed if it ends in .zst or .gz)
and stored in the database. Then the rate report for each reaction is printed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		ctx := cmd.Context()
		J, err := config.Load(args[0])
		if err != nil {
			return err
		}
		if len(J.Species) == 0 {
			return fmt.Errorf("job %s has no species", args[0])
		}
		var st *store.Store
		if dbPath != "" {
			if st, err = store.Open(dbPath); err != nil {
				return err
			}
			defer st.Close()
		}
		var opts []qm.Option
		if runResume {
			if st == nil {
				return fmt.Errorf("--resume needs --db")
			}
			opts = append(opts, qm.WithSkip(st.Skipper()))
		}
		res := qm.RunAll(ctx, J.Species, &J.Calc, &J.Config, opts...)
		if st != nil {
			if err := st.SaveBatch(res); err != nil {
				log.Printf("Couldn't store batch %s: %v", res.ID, err)
			}
		}
		T := res.Table()
		if runDump != "" {
			if err := ratejson.WriteTableFile(runDump, T); err != nil {
				log.Printf("Couldn't dump the results: %v", err)
			}
		}
		out := cmd.OutOrStdout()
		banner(out, "RESULTS START")
		if err := ratejson.EncodeBatch(out, res); err != nil {
			return err
		}
		banner(out, " RESULTS END")
		if n := len(res.Failures()); n > 0 {
			log.Printf("%d of %d species failed", n, len(res.Outcomes))
		}
		reps, aerr := analyzeAll(T, J)
		if err := writeReports(out, reps, runJSON); err != nil {
			return err
		}
		fmt.Fprintf(out, "TOTAL EXECUTION TIME: %s\n", time.Since(start))
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return aerr
	},
}

func init() {
	runCmd.Flags().StringVar(&runDump, "dump", "", "Write the results table to this JSON file")
	runCmd.Flags().BoolVar(&runResume, "resume", false, "Reuse the species already stored in the database")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Print the rate reports as JSON")
}
