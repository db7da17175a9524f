/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bytes"

	"github.com/natefinch/atomic"
	"github.com/pkg/errors"
	"github.com/rstms/fatfuzz/image"
	"github.com/rstms/go-common"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var mkimageCmd = &cobra.Command{
	Use:   "mkimage OUTPUT",
	Short: "build a seed FAT32 image",
	Long: `
Format a new FAT32 image, optionally copy a host directory tree into it,
and write it to OUTPUT. An existing OUTPUT is only replaced with --force.
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output := args[0]
		if common.IsFile(output) && !viper.GetBool("force") {
			return errors.Errorf("%s exists", output)
		}
		err := makeImage(appFs, output, viper.GetString("from"), viper.GetString("label"), viper.GetInt64("size"))
		if err != nil {
			return err
		}
		log := newLogger()
		log.Info().Str("output", output).Msg("image written")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mkimageCmd)
	mkimageCmd.Flags().String("from", "", "host directory to copy into the image")
	mkimageCmd.Flags().String("label", "SEED", "volume label")
	mkimageCmd.Flags().Int64("size", image.DefaultSize, "image size in bytes")
	mkimageCmd.Flags().Bool("force", false, "replace an existing output file")
	viper.BindPFlag("from", mkimageCmd.Flags().Lookup("from"))
	viper.BindPFlag("label", mkimageCmd.Flags().Lookup("label"))
	viper.BindPFlag("size", mkimageCmd.Flags().Lookup("size"))
	viper.BindPFlag("force", mkimageCmd.Flags().Lookup("force"))
}

func makeImage(fsys afero.Fs, output, from, label string, size int64) error {
	img, err := image.CreateImage(size, label)
	if err != nil {
		return err
	}
	if from != "" {
		err := img.Import(fsys, from)
		if err != nil {
			img.Close()
			return err
		}
	}
	data, err := img.Bytes()
	if err != nil {
		return err
	}
	err = atomic.WriteFile(output, bytes.NewReader(data))
	if err != nil {
		return errors.Wrapf(err, "write %s", output)
	}
	return nil
}
