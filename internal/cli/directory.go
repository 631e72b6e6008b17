package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kidandcat/tracker/internal/model"
)

func newProjectsCmd(c *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.session(cmd.Context()); err != nil {
				return err
			}
			projects := c.store.Projects()
			return c.emit(c.out(cmd), projects, projectTable(projects))
		},
	}
}

func newProjectCmd(c *CLI) *cobra.Command {
	var in model.ProjectInput

	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project (admins only on the server)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.session(cmd.Context()); err != nil {
				return err
			}
			in.Name = args[0]
			if err := c.store.CreateProject(cmd.Context(), in); err != nil {
				return err
			}
			projects := c.store.Projects()
			p := projects[len(projects)-1]
			for _, existing := range projects {
				if existing.Name == in.Name {
					p = existing
				}
			}
			return c.emit(c.out(cmd), p, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "Created project %s\t%s\n", p.ID, p.Name)
			})
		},
	}
	create.Flags().StringVarP(&in.Description, "description", "d", "", "Project description")

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}
	cmd.AddCommand(create)
	return cmd
}

func newUsersCmd(c *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.session(cmd.Context()); err != nil {
				return err
			}
			users := c.store.Users()
			return c.emit(c.out(cmd), users, userTable(users))
		},
	}
}

func newUserCmd(c *CLI) *cobra.Command {
	var (
		in   model.UserInput
		role string
	)

	create := &cobra.Command{
		Use:   "create",
		Short: "Create a user without switching to it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.session(cmd.Context()); err != nil {
				return err
			}
			in.Role = model.Role(role)
			if err := c.store.CreateUser(cmd.Context(), in); err != nil {
				return err
			}
			fmt.Fprintf(c.out(cmd), "Created user %s <%s>\n", in.Name, in.Email)
			return nil
		},
	}
	create.Flags().StringVar(&in.Name, "name", "", "Display name")
	create.Flags().StringVar(&in.Email, "email", "", "Email address")
	create.Flags().StringVar(&in.Password, "password", "", "Initial password")
	create.Flags().StringVar(&role, "role", string(model.RoleUser), "user or admin")
	_ = create.MarkFlagRequired("email")

	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(create)
	return cmd
}
