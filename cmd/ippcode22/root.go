// This file is part of ippcode22 - an IPPcode22 interpreter.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ippcode22/interpreter/internal/config"
	"github.com/ippcode22/interpreter/internal/diag"
	"github.com/ippcode22/interpreter/ipp"
	"github.com/ippcode22/interpreter/xmlsrc"
)

var (
	sourcePath string
	inputPath  string
	debug      bool
	trace      bool
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ippcode22",
		Short:         "Run an IPPcode22 program described as XML",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd)
		},
	}
	cmd.Flags().StringVarP(&sourcePath, "source", "s", "", "path to the IPPcode22 XML source (default: stdin)")
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "path to the program's input file (default: stdin)")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable instruction trace and BREAK diagnostics")
	cmd.Flags().BoolVar(&trace, "trace", false, "alias for --debug")
	return cmd
}

func run(cmd *cobra.Command) error {
	if sourcePath == "" && inputPath == "" {
		return ipp.Faultf(ipp.FaultUsage, "at least one of --source/-s or --input/-i must be provided")
	}

	source, closeSource, err := openOrStdin(sourcePath, os.Stdin)
	if err != nil {
		return err
	}
	defer closeSource()

	input, closeInput, err := openOrStdin(inputPath, os.Stdin)
	if err != nil {
		return err
	}
	defer closeInput()

	rt, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "load runtime config")
	}
	log, err := diag.New(rt.Debug || debug || trace)
	if err != nil {
		return errors.Wrap(err, "build logger")
	}
	defer log.Sync() //nolint:errcheck

	root, err := xmlsrc.Parse(source)
	if err != nil {
		return err
	}

	program, err := ipp.Load(root, log)
	if err != nil {
		return err
	}

	instance, err := ipp.New(
		ipp.WithProgram(program),
		ipp.WithInput(input),
		ipp.WithOutput(cmd.OutOrStdout()),
		ipp.WithErrorOutput(cmd.ErrOrStderr()),
		ipp.WithLogger(log),
		ipp.WithTrace(rt.Debug || debug || trace),
		ipp.WithMaxInstructions(rt.MaxInstructions),
	)
	if err != nil {
		return errors.Wrap(err, "build interpreter instance")
	}

	code, runErr := instance.Run()
	if runErr != nil {
		if debug || trace {
			log.Debug("fault", zap.Error(runErr))
		}
		return runErr
	}
	if code != 0 {
		return exitCodeError{code: code}
	}
	return nil
}

// openOrStdin opens path, or returns stdin unchanged when path is empty.
// A failed open is an input-file fault (exit 11).
func openOrStdin(path string, stdin *os.File) (*os.File, func(), error) {
	if path == "" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, func() {}, ipp.Faultf(ipp.FaultInputFile, "open %q: %s", path, err)
	}
	return f, func() { f.Close() }, nil
}
