/*
 * root.go, part of gorate.
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
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	rate "github.com/rmera/gorate"
	"github.com/rmera/gorate/config"
	"github.com/rmera/gorate/ratejson"
	"github.com/rmera/gorate/store"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:           "gorate",
	Short:         "Free energies with ORCA or xtb, and transition state theory rates from them",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database where results are stored")
	rootCmd.AddCommand(runCmd, ratesCmd, plotCmd, batchesCmd)
}

func banner(w io.Writer, title string) {
	line := strings.Repeat("~", 50)
	fmt.Fprintf(w, "%s\n%s%s\n%s\n", line, strings.Repeat(" ", 15), title, line)
}

// loadTable reads the results from a JSON dump, if from is given,
// or from the database.
func loadTable(from, batch string) (rate.Table, error) {
	if from != "" {
		return ratejson.ReadTableFile(from)
	}
	if dbPath == "" {
		return nil, fmt.Errorf("no results given: use --from or --db")
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.LoadTable(batch)
}

// analyzeAll computes the reports for all the reactions in the job. A reaction
// that fails doesn't stop the others. The first error is returned.
func analyzeAll(src rate.Source, J *config.Job) ([]*rate.Report, error) {
	var reps []*rate.Report
	var first error
	for _, rx := range J.Reactions {
		rep, err := rate.Analyze(src, rx, J.Options())
		if err != nil {
			log.Printf("Reaction to %s: %v", rx.Product, err)
			if first == nil {
				first = err
			}
			continue
		}
		reps = append(reps, rep)
	}
	return reps, first
}

func writeReports(w io.Writer, reps []*rate.Report, asJSON bool) error {
	if asJSON {
		return ratejson.EncodeReport(w, reps...)
	}
	for _, r := range reps {
		if err := r.WriteText(w); err != nil {
			return err
		}
	}
	return nil
}

var batchesCmd = &cobra.Command{
	Use:   "batches",
	Short: "List the batches stored in the database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if dbPath == "" {
			return fmt.Errorf("batches needs --db")
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return err
		}
		defer st.Close()
		bs, err := st.Batches()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, b := range bs {
			fmt.Fprintf(out, "%s  %s  %s  %3d species  %3d failed\n", b.ID, b.Started.Format("2006-01-02 15:04:05"), b.Finished.Sub(b.Started).Round(1e9), b.Species, b.Failed)
		}
		if len(bs) == 0 {
			fmt.Fprintln(os.Stderr, "No batches stored")
		}
		return nil
	},
}
