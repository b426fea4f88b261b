package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"github.com/webhookx-io/showgate/app"
	"github.com/webhookx-io/showgate/pkg/calendar"
	"github.com/webhookx-io/showgate/policy"
	"github.com/webhookx-io/showgate/utils"
)

type policyFunc func(cmd *cobra.Command, p *policy.Policy, now time.Time) error

// policyCommand builds a command operating on the policy named by its
// single argument.
func policyCommand(use string, short string, fn policyFunc, opts ...func(cmd *cobra.Command) policy.Option) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <policy>",
		Short: short,
		Long:  ``,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseNow(now)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), func(app *app.Application) error {
				options := make([]policy.Option, 0, len(opts))
				for _, opt := range opts {
					options = append(options, opt(cmd))
				}
				p, err := app.Policy(args[0], options...)
				if err != nil {
					return err
				}
				return fn(cmd, p, t)
			})
		},
	}
}

func newCheckCmd() *cobra.Command {
	var commit bool
	check := policyCommand("check", "Report whether the item may be shown", func(cmd *cobra.Command, p *policy.Policy, now time.Time) error {
		ok, err := p.CanShow(cmd.Context(), now, commit)
		if err != nil {
			return err
		}
		cmd.Println(ok)
		return nil
	})
	check.Flags().BoolVarP(&commit, "commit", "", false, "Record the show when allowed")
	return check
}

func newShowCmd() *cobra.Command {
	show := func(cmd *cobra.Command, p *policy.Policy, now time.Time) error {
		shown, err := p.ShowIfNeeded(cmd.Context(), now, p.Key())
		if err != nil {
			return err
		}
		if !shown {
			cmd.Println("not shown")
		}
		return nil
	}
	printer := func(cmd *cobra.Command) policy.Option {
		return policy.WithPresenter(policy.PresenterFunc(func(ctx context.Context, sender any) error {
			cmd.Printf("showing %s\n", sender)
			return nil
		}))
	}
	return policyCommand("show", "Show the item if allowed", show, printer)
}

func newCommitCmd() *cobra.Command {
	return policyCommand("commit", "Record that the item was shown", func(cmd *cobra.Command, p *policy.Policy, now time.Time) error {
		return p.CommitShown(cmd.Context(), now)
	})
}

func newBlockCmd() *cobra.Command {
	return policyCommand("block", "Block the item", func(cmd *cobra.Command, p *policy.Policy, now time.Time) error {
		return p.Block(cmd.Context())
	})
}

func newUnblockCmd() *cobra.Command {
	return policyCommand("unblock", "Unblock the item", func(cmd *cobra.Command, p *policy.Policy, now time.Time) error {
		return p.Unblock(cmd.Context())
	})
}

func newResetCmd() *cobra.Command {
	var all bool
	reset := policyCommand("reset", "Reset the item's show history", func(cmd *cobra.Command, p *policy.Policy, now time.Time) error {
		if all {
			return p.ResetAll(cmd.Context())
		}
		return p.Reset(cmd.Context())
	})
	reset.Flags().BoolVarP(&all, "all", "", false, "Also clear the next show date")
	return reset
}

func newNextCmd() *cobra.Command {
	var (
		at    string
		in    string
		unset bool
	)
	next := policyCommand("next", "Set the next show date", func(cmd *cobra.Command, p *policy.Policy, now time.Time) error {
		switch {
		case unset:
			return p.SetNextShowAt(cmd.Context(), nil)
		case at != "":
			t, err := parseNow(at)
			if err != nil {
				return err
			}
			return p.SetNextShowAt(cmd.Context(), utils.TimePtr(t))
		case in != "":
			offset, err := calendar.Parse(in)
			if err != nil {
				return err
			}
			return p.SetNextShowIn(cmd.Context(), now, offset)
		}
		return errors.New("one of --at, --in or --clear is required")
	})
	next.Flags().StringVarP(&at, "at", "", "", "Absolute RFC3339 time")
	next.Flags().StringVarP(&in, "in", "", "", "Offset from now, e.g. 1d, 2h, 3mo")
	next.Flags().BoolVarP(&unset, "clear", "", false, "Clear the next show date")
	next.MarkFlagsMutuallyExclusive("at", "in", "clear")
	return next
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [policy...]",
		Short: "Print the state of the items",
		Long:  ``,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(app *app.Application) error {
				names := args
				if len(names) == 0 {
					names = app.Policies()
				}
				for _, name := range names {
					p, err := app.Policy(name)
					if err != nil {
						return err
					}
					state, err := p.State(cmd.Context())
					if err != nil {
						return err
					}
					cmd.Printf("%s (%s)\n", name, p.Config().Mode)
					cmd.Printf("  blocked: %t\n", state.Blocked)
					cmd.Printf("  first_show_requested_at: %s\n", utils.FormatTime(state.FirstShowRequestedAt))
					cmd.Printf("  last_shown_at: %s\n", utils.FormatTime(state.LastShownAt))
					cmd.Printf("  next_show_at: %s\n", utils.FormatTime(state.NextShowAt))
				}
				return nil
			})
		},
	}
}
