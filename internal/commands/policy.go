package commands

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arrendix/protecciones/internal/activity"
	"github.com/arrendix/protecciones/internal/config"
	"github.com/arrendix/protecciones/internal/policy"
	"github.com/arrendix/protecciones/internal/workflow"
	migratecmd "github.com/arrendix/protecciones/migration/commands"
)

// PolicyCmd exposes operator actions on single policies.
func PolicyCmd(open migratecmd.DBOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect and operate on policies",
	}
	cmd.AddCommand(transitionCmd(open), activitiesCmd(open))
	return cmd
}

func appFor(cmd *cobra.Command, open migratecmd.DBOpener) (*App, error) {
	db, err := open()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v; using default configuration\n", err)
		cfg = &config.Config{}
	}
	return NewApp(db, cfg, zap.NewNop()), nil
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid policy id %q", raw)
	}
	return uint(id), nil
}

func transitionCmd(open migratecmd.DBOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transition <policy-id> <status>",
		Short: "Move a policy to a new status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			reason, _ := cmd.Flags().GetString("reason")
			as, _ := cmd.Flags().GetString("as")

			app, err := appFor(cmd, open)
			if err != nil {
				return err
			}

			by := activity.System()
			if as != "" {
				by = activity.User(as)
			}
			res, err := app.Workflow.Transition(cmd.Context(), workflow.Request{
				PolicyID:    id,
				Status:      policy.Status(args[1]),
				PerformedBy: by,
				Reason:      reason,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.NoOp {
				fmt.Fprintf(out, "Policy %s is already %s.\n", res.Policy.PolicyNumber, res.Policy.Status)
				return nil
			}
			fmt.Fprintf(out, "Policy %s is now %s (%s).\n", res.Policy.PolicyNumber, res.Policy.Status, policy.LabelFor(res.Policy.Status))
			if res.Warning != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", res.Warning)
			}
			return nil
		},
	}
	cmd.Flags().String("reason", "", "Justification, required for rejection and cancellation")
	cmd.Flags().String("as", "", "User id recorded as performer (defaults to system)")
	return cmd
}

func activitiesCmd(open migratecmd.DBOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "activities <policy-id>",
		Short: "Print the activity log of a policy, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			app, err := appFor(cmd, open)
			if err != nil {
				return err
			}
			list, err := app.Policies.Activities(cmd.Context(), id)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No activity recorded.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tACTION\tBY\tDESCRIPTION")
			for _, a := range list {
				by := string(a.PerformedByType)
				if a.PerformedByID != nil {
					by += ":" + *a.PerformedByID
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.CreatedAt.Format("2006-01-02 15:04:05"), a.Action, by, a.Description)
			}
			return w.Flush()
		},
	}
}
