// Copyright © 2024 The symref authors

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	colorFlag string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "symref",
	Short: "symref — find references to Lisp symbols",
	Long: `symref finds references to a symbol in Lisp source files, classifying
each occurrence by the role the symbol plays where it appears. A function
search reports calls but not the name in a defun header; a variable search
reports uses but not binding positions.

Getting started:
  symref function some-fn ./...       Find calls to some-fn under .
  symref macro with-thing src/...     Find uses of a macro
  symref variable some-var file.el    Find variable references in one file
  symref symbol some-name ./...       Find every occurrence, any role

Paths may be files, glob patterns (** is supported), or a directory
followed by /... to search it recursively for .lisp and .el files. With no
paths, ./... is searched.

Exit codes:
  0  One or more references were found
  1  No references were found
  2  Bad invocation or unreadable/malformed input

More information:
  Source code:     https://github.com/luthersystems/symref`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.symref.yaml)")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto",
		`Control colored output: "auto", "always", or "never".`)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".symref" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".symref")
	}

	viper.AutomaticEnv() // read in environment variables that match

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}
