/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/rstms/fatfuzz/image"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan IMAGE",
	Short: "list the files in an image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return scanImage(appFs, args[0], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func scanImage(fsys afero.Fs, filename string, w io.Writer) error {
	data, err := afero.ReadFile(fsys, filename)
	if err != nil {
		return errors.Wrapf(err, "read %s", filename)
	}
	img, err := image.OpenImage(data)
	if err != nil {
		return err
	}
	defer img.Close()
	records, err := img.ScanFiles()
	if err != nil {
		return err
	}
	for _, record := range records {
		fmt.Fprintf(w, "%-40s %-12s %-4s %d\n", record.Name, record.ShortName, attrString(record), record.Size)
	}
	return nil
}

func attrString(record image.FileRecord) string {
	var attrs string
	if record.Dir {
		attrs += "d"
	}
	if record.ReadOnly {
		attrs += "r"
	}
	if record.Hidden {
		attrs += "h"
	}
	if record.System {
		attrs += "s"
	}
	if attrs == "" {
		attrs = "-"
	}
	return attrs
}
