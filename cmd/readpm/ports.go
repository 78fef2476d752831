package main

import (
	"fmt"

	"github.com/hjkoskel/listserialports"
	"github.com/spf13/cobra"
)

func newPortsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List serial ports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proped, errProbing := listserialports.Probe(false)
			if errProbing != nil {
				return fmt.Errorf("error probing serial ports %w", errProbing)
			}
			for _, ser := range proped {
				fmt.Fprint(cmd.OutOrStdout(), ser.ToPrintoutFormat())
			}
			return nil
		},
	}
}
