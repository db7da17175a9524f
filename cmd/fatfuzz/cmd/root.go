/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rstms/fatfuzz/driver"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// appFs is where inputs and images are read from.
var appFs = afero.NewOsFs()

var rootCmd = &cobra.Command{
	Use:   "fatfuzz",
	Short: "FAT filesystem fuzz driver tools",
	Long: `
Tools around the FAT filesystem fuzz driver: replay saved inputs outside
the fuzzing engine, build seed images, and list the contents of an image.
`,
	SilenceUsage: true,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.fatfuzz.yaml)")
	rootCmd.PersistentFlags().Int("depth", driver.DefaultDepth, "directory depth budget")
	rootCmd.PersistentFlags().Int("read-size", driver.DefaultReadSize, "bytes read from and written back to each file")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	viper.BindPFlag("depth", rootCmd.PersistentFlags().Lookup("depth"))
	viper.BindPFlag("read-size", rootCmd.PersistentFlags().Lookup("read-size"))
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".fatfuzz")
	}
	viper.SetEnvPrefix("FATFUZZ")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil && cfgFile != "" {
		log := newLogger()
		log.Debug().Str("file", viper.ConfigFileUsed()).Msg("using config")
	}
}

func newLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func driverConfig(log zerolog.Logger) driver.Config {
	cfg := driver.DefaultConfig()
	cfg.Depth = viper.GetInt("depth")
	cfg.ReadSize = viper.GetInt("read-size")
	cfg.Logger = log
	return cfg
}
