package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProductsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the product catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service()
			if err != nil {
				return err
			}
			for i, p := range svc.Products() {
				marker := ""
				if i == 0 {
					marker = " (default)"
				}
				fmt.Fprintf(opts.stdout, "%s%s\n  %s\n", p.Name, marker, p.Headline)
			}
			return nil
		},
	}
}
