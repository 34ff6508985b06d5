package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cropdoc/entities"
	"cropdoc/pkg/cli/ui"
)

var (
	chatLanguage string
	chatSession  string
)

var chatCmd = &cobra.Command{
	Use:   "chat <question>",
	Short: "ask the plant health assistant",
	Long: `Send one question to the plant health assistant. Pass --session to let
the server keep the conversation between calls.`,
	Example: `  $ cropctl chat "What causes black rot in grapes?"
  $ cropctl chat "ఆకు మచ్చలు ఎలా నివారించాలి?" --lang te --session farm-7`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(2 * time.Minute)
		defer cancel()
		c, err := newClient()
		if err != nil {
			return err
		}
		msgs := []entities.ChatMessage{{Role: entities.RoleUser, Content: strings.Join(args, " ")}}
		reply, err := c.Chat(ctx, msgs, chatLanguage, chatSession)
		if err != nil {
			ui.PrintError(cmd.ErrOrStderr(), "chat failed: %v", err)
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), reply)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:     "history",
	Short:   "show your recent diagnoses",
	Example: "  $ cropctl history --user U123",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(15 * time.Second)
		defer cancel()
		c, err := newClient()
		if err != nil {
			return err
		}
		recs, err := c.History(ctx)
		if err != nil {
			ui.PrintError(cmd.ErrOrStderr(), "failed to load history: %v", err)
			return err
		}
		if len(recs) == 0 {
			ui.PrintInfo(cmd.OutOrStdout(), "no diagnoses yet")
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), ui.RenderHistory(recs))
		return nil
	},
}

func init() {
	chatCmd.Flags().StringVarP(&chatLanguage, "lang", "l", "en", "reply language: en, hi, te or ta")
	chatCmd.Flags().StringVar(&chatSession, "session", "", "session id for server-side history")

	chatCmd.SilenceUsage = true
	historyCmd.SilenceUsage = true
}
