package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bioimagesuiteweb/bisresample/resample"
)

var describeFormat string

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Print the module description",
	RunE: func(cmd *cobra.Command, args []string) error {
		desc := resample.NewDescription()
		out := cmd.OutOrStdout()
		switch describeFormat {
		case "yaml":
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(desc); err != nil {
				return err
			}
			return enc.Close()
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(desc)
		}
		return fmt.Errorf("unknown format %q (want yaml or json)", describeFormat)
	},
}

func init() {
	describeCmd.Flags().StringVarP(&describeFormat, "format", "f", "yaml", "Output format: yaml or json")
}
