/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rstms/fatfuzz/driver"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay PATH...",
	Short: "run saved inputs through the driver",
	Long: `
Run each input file through the driver, reporting engine panics with their
stack instead of crashing. Directories are expanded one level, so a fuzz
corpus directory such as testdata/fuzz/FuzzMount can be given directly.
Files in the go test fuzz corpus format are decoded first.
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		d := driver.New(driverConfig(log))
		result, err := replayPaths(appFs, args, d, log)
		if err != nil {
			return err
		}
		log.Info().Int("inputs", result.Inputs).Int("rejected", result.Rejected).Int("panics", result.Panics).Msg("replay complete")
		if result.Panics > 0 {
			return errors.Errorf("%d of %d inputs panicked", result.Panics, result.Inputs)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

type replayResult struct {
	Inputs   int
	Rejected int
	Panics   int
}

func replayPaths(fsys afero.Fs, paths []string, d *driver.Driver, log zerolog.Logger) (replayResult, error) {
	var result replayResult
	inputs, err := expandInputs(fsys, paths)
	if err != nil {
		return result, err
	}
	for _, name := range inputs {
		data, err := afero.ReadFile(fsys, name)
		if err != nil {
			return result, errors.Wrapf(err, "read %s", name)
		}
		if decoded, ok := decodeCorpusEntry(data); ok {
			data = decoded
		}
		result.Inputs++

		err = d.RunRecovered(data)
		var perr *driver.PanicError
		switch {
		case errors.As(err, &perr):
			result.Panics++
			log.Error().Str("input", name).Interface("panic", perr.Value).Str("stack", string(perr.Stack)).Msg("engine panicked")
		case err != nil:
			result.Rejected++
			log.Info().Str("input", name).Err(err).Msg("rejected")
		default:
			log.Info().Str("input", name).Int("size", len(data)).Msg("ok")
		}
	}
	return result, nil
}

func expandInputs(fsys afero.Fs, paths []string) ([]string, error) {
	inputs := []string{}
	for _, p := range paths {
		info, err := fsys.Stat(p)
		if err != nil {
			return nil, errors.Wrapf(err, "stat %s", p)
		}
		if !info.IsDir() {
			inputs = append(inputs, p)
			continue
		}
		entries, err := afero.ReadDir(fsys, p)
		if err != nil {
			return nil, errors.Wrapf(err, "list %s", p)
		}
		names := []string{}
		for _, entry := range entries {
			if entry.Mode().IsRegular() {
				names = append(names, filepath.Join(p, entry.Name()))
			}
		}
		sort.Strings(names)
		inputs = append(inputs, names...)
	}
	return inputs, nil
}
