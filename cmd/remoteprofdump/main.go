// Copyright 2026 The remoteprof Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The remoteprofdump command opens a sampling session against a running
// interpreter process and prints one round of stack traces. It exists
// to exercise the remoteprof library end to end; it is not a general
// profiling CLI (no sampling frequency, output format, or daemon mode).
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"remoteprof"
)

func main() {
	var maxRetries int

	root := &cobra.Command{
		Use:   "remoteprofdump <pid>",
		Short: "sample one round of stack traces from a running interpreter process",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid pid %q: %w", args[0], err)
			}

			session, err := remoteprof.OpenWithRetries(pid, maxRetries)
			if err != nil {
				return err
			}
			defer session.Close()

			fmt.Printf("pid=%d version=%s executable=%s\n", session.Pid, session.Version, session.ExecutablePath)

			traces, err := session.SampleStacks()
			if err != nil {
				return err
			}
			for _, t := range traces {
				gil := ""
				if t.OwnsGIL {
					gil = " (gil)"
				}
				fmt.Printf("thread %d%s\n", t.ThreadID, gil)
				for _, f := range t.Frames {
					name := f.ShortFilename
					if name == "" {
						name = f.Filename
					}
					fmt.Printf("    %s:%d in %s\n", name, f.Line, f.Function)
				}
			}
			for _, w := range session.Warnings() {
				fmt.Fprintf(os.Stderr, "warning: %s\n", w)
			}
			return nil
		},
	}
	root.Flags().IntVar(&maxRetries, "max-retries", 5, "retries while the target interpreter finishes starting up")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
