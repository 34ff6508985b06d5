package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cropdoc/pkg/cli/ui"
)

var cropsCmd = &cobra.Command{
	Use:   "crops",
	Short: "list supported crops",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(15 * time.Second)
		defer cancel()
		c, err := newClient()
		if err != nil {
			return err
		}
		crops, err := c.Crops(ctx)
		if err != nil {
			ui.PrintError(cmd.ErrOrStderr(), "failed to list crops: %v", err)
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), ui.RenderCrops(crops))
		return nil
	},
}

var diseasesCmd = &cobra.Command{
	Use:     "diseases <crop>",
	Short:   "list the catalogued diseases of a crop",
	Example: "  $ cropctl diseases tomato",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(15 * time.Second)
		defer cancel()
		c, err := newClient()
		if err != nil {
			return err
		}
		ds, err := c.Diseases(ctx, args[0])
		if err != nil {
			ui.PrintError(cmd.ErrOrStderr(), "failed to list diseases: %v", err)
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), ui.RenderDiseases(ds))
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:     "search <query>",
	Short:   "search diseases by name or symptom",
	Example: `  $ cropctl search "yellow spots"`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(15 * time.Second)
		defer cancel()
		c, err := newClient()
		if err != nil {
			return err
		}
		q := strings.Join(args, " ")
		hits, err := c.Search(ctx, q)
		if err != nil {
			ui.PrintError(cmd.ErrOrStderr(), "search failed: %v", err)
			return err
		}
		if len(hits) == 0 {
			ui.PrintWarning(cmd.OutOrStdout(), "no diseases match %q", q)
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), ui.RenderDiseases(hits))
		return nil
	},
}

func init() {
	cropsCmd.SilenceUsage = true
	diseasesCmd.SilenceUsage = true
	searchCmd.SilenceUsage = true
}
