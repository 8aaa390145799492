package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnolang/tagscan/rules"
)

var forceInit bool

// initCmd: tagscan init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a sample rules file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfigurationFile(cfgFile, forceInit); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Rules file created: %s\n", cfgFile)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing rules file")
}

func initConfigurationFile(path string, force bool) error {
	if path == "" {
		path = rules.DefaultFile
	}
	if !force {
		_, err := os.Stat(path)
		if err == nil {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return rules.Write(path, rules.DefaultConfig())
}
