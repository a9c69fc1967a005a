package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"recyclehub/internal/models"
	"recyclehub/internal/services"

	"github.com/spf13/cobra"
)

// NewSubmissionsCommand creates the submissions command group
func NewSubmissionsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submissions",
		Short: "Work the submission review queue",
	}
	cmd.AddCommand(newSubmissionsListCommand(rootOpts))
	cmd.AddCommand(newSubmissionsApproveCommand(rootOpts))
	cmd.AddCommand(newSubmissionsRejectCommand(rootOpts))
	return cmd
}

func newSubmissionsListCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		status string
		userID string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List submissions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			req := &services.ListSubmissionsRequest{UserID: userID, Limit: limit}
			if status != "" {
				req.Status = models.StatusPtr(models.SubmissionStatus(strings.ToUpper(status)))
			}

			a, err := openApp(rootOpts, cmd, true)
			if err != nil {
				return out.Error(err)
			}
			defer a.Close()

			list, err := a.services.Submissions.ListSubmissions(cmd.Context(), req)
			if err != nil {
				return out.Error(err)
			}
			return out.Success(list, formatSubmissions(list))
		},
	}

	cmd.Flags().StringVar(&status, "status", "PENDING", "PENDING, APPROVED, REJECTED or empty for all")
	cmd.Flags().StringVar(&userID, "user", "", "only this user's submissions")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum rows")
	return cmd
}

func newSubmissionsApproveCommand(rootOpts *RootOptions) *cobra.Command {
	var reviewer string

	cmd := &cobra.Command{
		Use:   "approve <submission-id>",
		Short: "Approve a pending submission and credit its points",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			a, err := openApp(rootOpts, cmd, true)
			if err != nil {
				return out.Error(err)
			}
			defer a.Close()

			sub, err := a.services.Approvals.Approve(cmd.Context(), reviewer, args[0])
			if err != nil {
				return out.Error(err)
			}
			return out.Success(sub, fmt.Sprintf("approved %s: +%d points for %s", sub.ID, sub.Points, sub.UserID))
		},
	}

	cmd.Flags().StringVar(&reviewer, "reviewer", "", "reviewer id recorded on the entry (required)")
	cmd.MarkFlagRequired("reviewer")
	return cmd
}

func newSubmissionsRejectCommand(rootOpts *RootOptions) *cobra.Command {
	var reviewer, reason string

	cmd := &cobra.Command{
		Use:   "reject <submission-id>",
		Short: "Reject a pending submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			a, err := openApp(rootOpts, cmd, true)
			if err != nil {
				return out.Error(err)
			}
			defer a.Close()

			sub, err := a.services.Approvals.Reject(cmd.Context(), reviewer, args[0], reason)
			if err != nil {
				return out.Error(err)
			}
			return out.Success(sub, fmt.Sprintf("rejected %s", sub.ID))
		},
	}

	cmd.Flags().StringVar(&reviewer, "reviewer", "", "reviewer id recorded on the entry (required)")
	cmd.Flags().StringVar(&reason, "reason", "", "note shown to the user")
	cmd.MarkFlagRequired("reviewer")
	return cmd
}

func formatSubmissions(list []*models.Submission) string {
	if len(list) == 0 {
		return "no submissions"
	}
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSER\tPOINTS\tSTATUS\tCREATED")
	for _, s := range list {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", s.ID, s.UserID, s.Points, s.CurrentStatus(), s.CreatedAt.Format("2006-01-02 15:04"))
	}
	tw.Flush()
	return strings.TrimRight(b.String(), "\n")
}
