package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roofrecharge/proposal-generator/internal/proposal"
)

type calcCmd struct {
	opts       *options
	jsonOutput bool
}

func newCalcCmd(opts *options) *cobra.Command {
	cc := &calcCmd{opts: opts}
	cmd := &cobra.Command{
		Use:   "calc <request.json|->",
		Short: "Print the cost breakdown of a JSON request",
		Args:  cobra.ExactArgs(1),
		RunE:  cc.run,
	}
	cmd.Flags().BoolVar(&cc.jsonOutput, "json", false, "Print the breakdown as JSON")
	return cmd
}

func (cc *calcCmd) run(cmd *cobra.Command, args []string) error {
	req, err := readRequest(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}
	svc, err := cc.opts.service()
	if err != nil {
		return err
	}
	costs, err := svc.Calculate(req)
	if err != nil {
		return err
	}

	if cc.jsonOutput {
		enc := json.NewEncoder(cc.opts.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(costs)
	}

	tw := tabwriter.NewWriter(cc.opts.stdout, 0, 4, 2, ' ', 0)
	for i, rc := range costs.Roofs {
		label := rc.Roof.Label
		if label == "" {
			label = fmt.Sprintf("Roof %d", i+1)
		}
		fmt.Fprintf(tw, "%s\t%s\tapplication %s\tinstallation %s\n",
			label, proposal.FormatArea(rc.Roof.Area),
			proposal.FormatCurrency(rc.Application), proposal.FormatCurrency(rc.Installation))
	}
	for _, s := range costs.Services {
		fmt.Fprintf(tw, "%s\t\t%s\t\n", s.Description, proposal.FormatCurrency(s.Price))
	}
	fmt.Fprintf(tw, "Total investment\t\t%s\t\n", proposal.FormatCurrency(costs.TotalInvestment))
	fmt.Fprintf(tw, "Replacement estimate\t\t%s\t\n", proposal.FormatCurrency(costs.ReplacementEstimate))
	fmt.Fprintf(tw, "Savings\t\t%s\t\n", proposal.FormatCurrency(costs.Savings()))
	return tw.Flush()
}
