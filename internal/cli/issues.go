package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kidandcat/tracker/internal/model"
	"github.com/kidandcat/tracker/internal/render"
	"github.com/kidandcat/tracker/internal/store"
)

type issueFilter struct {
	status   string
	project  string
	assignee string
	mine     bool
}

func (f issueFilter) apply(issues []model.Issue, me *model.User) ([]model.Issue, error) {
	var status model.Status
	if f.status != "" {
		st, err := model.ParseStatus(f.status)
		if err != nil {
			return nil, err
		}
		status = st
	}
	assignee := f.assignee
	if f.mine && me != nil {
		assignee = me.ID
	}

	out := make([]model.Issue, 0, len(issues))
	for _, i := range issues {
		if status != "" && i.Status != status {
			continue
		}
		if f.project != "" && (i.ProjectID == nil || *i.ProjectID != f.project) {
			continue
		}
		if assignee != "" && (i.AssigneeID == nil || *i.AssigneeID != assignee) {
			continue
		}
		out = append(out, i)
	}
	return out, nil
}

func newIssuesCmd(c *CLI) *cobra.Command {
	var f issueFilter

	cmd := &cobra.Command{
		Use:   "issues",
		Short: "List issues, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.session(cmd.Context()); err != nil {
				return err
			}
			issues, err := f.apply(c.store.Issues(), c.store.User())
			if err != nil {
				return err
			}
			return c.emit(c.out(cmd), issues, c.issueTable(issues))
		},
	}

	cmd.Flags().StringVar(&f.status, "status", "", "Only issues in this status (todo, in-progress, review, done)")
	cmd.Flags().StringVar(&f.project, "project", "", "Only issues in this project id")
	cmd.Flags().StringVar(&f.assignee, "assignee", "", "Only issues assigned to this user id")
	cmd.Flags().BoolVar(&f.mine, "mine", false, "Only issues assigned to me")
	return cmd
}

func newIssueCmd(c *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Show, create or move a single issue",
	}
	cmd.AddCommand(
		newIssueShowCmd(c),
		newIssueCreateCmd(c),
		newIssueStatusCmd(c),
	)
	return cmd
}

func newIssueShowCmd(c *CLI) *cobra.Command {
	var html bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show an issue with its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.session(cmd.Context()); err != nil {
				return err
			}
			issue, ok := c.store.IssueByID(args[0])
			if !ok {
				return fmt.Errorf("issue %s: %w", args[0], store.ErrIssueNotFound)
			}

			if html {
				out, err := render.Markdown(issue.Description)
				if err != nil {
					return err
				}
				fmt.Fprint(c.out(cmd), out)
				return nil
			}
			return c.emit(c.out(cmd), issue, c.issueDetail(issue))
		},
	}

	cmd.Flags().BoolVar(&html, "html", false, "Print the description rendered as HTML")
	return cmd
}

func newIssueCreateCmd(c *CLI) *cobra.Command {
	var (
		in                 model.IssueInput
		status, priority   string
		assignee, project  string
		startDate, dueDate string
	)

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create an issue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.session(cmd.Context()); err != nil {
				return err
			}

			in.Title = strings.Join(args, " ")
			if status != "" {
				st, err := model.ParseStatus(status)
				if err != nil {
					return err
				}
				in.Status = st
			}
			if priority != "" {
				p, err := model.ParsePriority(priority)
				if err != nil {
					return err
				}
				in.Priority = p
			}
			in.AssigneeID = optional(assignee)
			in.ProjectID = optional(project)
			in.StartDate = optional(startDate)
			in.DueDate = optional(dueDate)

			if err := c.store.CreateIssue(cmd.Context(), in); err != nil {
				return err
			}
			created := c.store.Issues()[0]
			return c.emit(c.out(cmd), created, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "Created issue %s\t%s\n", created.ID, created.Title)
			})
		},
	}

	cmd.Flags().StringVarP(&in.Description, "description", "d", "", "Markdown description")
	cmd.Flags().StringVar(&status, "status", "", "Initial status (ignored offline)")
	cmd.Flags().StringVar(&priority, "priority", "", "low, medium or high")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Assignee user id")
	cmd.Flags().StringVar(&project, "project", "", "Project id")
	cmd.Flags().StringVar(&startDate, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&dueDate, "due", "", "Due date (YYYY-MM-DD)")
	return cmd
}

func newIssueStatusCmd(c *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Move an issue to another column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := model.ParseStatus(args[1])
			if err != nil {
				return err
			}
			if err := c.session(cmd.Context()); err != nil {
				return err
			}
			if err := c.store.UpdateIssueStatus(cmd.Context(), args[0], status); err != nil {
				return err
			}
			fmt.Fprintf(c.out(cmd), "Issue %s moved to %s\n", args[0], status.Label())
			return nil
		},
	}
}

func newCommentCmd(c *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Work with issue comments",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <issue-id> <text>",
		Short: "Comment on an issue as the signed-in user",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.session(cmd.Context()); err != nil {
				return err
			}
			if err := c.store.AddComment(cmd.Context(), args[0], strings.Join(args[1:], " ")); err != nil {
				return err
			}
			issue, _ := c.store.IssueByID(args[0])
			fmt.Fprintf(c.out(cmd), "Comment added to %s (%d comments)\n", args[0], len(issue.Comments))
			return nil
		},
	})
	return cmd
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
