package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTypesCmd(e env, o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the registered block types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := o.registry()
			if err != nil {
				return err
			}
			for _, t := range reg.Types() {
				if _, err := fmt.Fprintln(e.stdout, t); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
