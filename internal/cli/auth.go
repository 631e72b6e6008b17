package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kidandcat/tracker/internal/model"
)

func newLoginCmd(c *CLI) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Sign in and remember the session",
		Long: `Sign in against the API. The password is read from --password or,
when omitted, from the first line of standard input.

If the server rejects the credentials or cannot be reached, the email is
looked up in the demo directory instead. Demo sessions are not persisted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("password") {
				p, err := readLine(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				password = p
			}

			if !c.store.Login(cmd.Context(), args[0], password) {
				return errLoginFailed
			}

			u := c.store.User()
			if u == nil {
				return errLoginFailed
			}
			w := c.out(cmd)
			if c.store.UseAPI() {
				fmt.Fprintf(w, "Logged in as %s <%s>\n", u.Name, u.Email)
			} else {
				fmt.Fprintf(w, "Logged in as %s <%s> (offline demo, not persisted)\n", u.Name, u.Email)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")
	return cmd
}

func newLogoutCmd(c *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.store.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(c.out(cmd), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(c *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.session(cmd.Context()); err != nil {
				return err
			}
			me := c.store.User()
			if me == nil {
				return errNotLoggedIn
			}
			u := *me
			return c.emit(c.out(cmd), u, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "Name:\t%s\n", u.Name)
				fmt.Fprintf(tw, "Email:\t%s\n", u.Email)
				fmt.Fprintf(tw, "Role:\t%s\n", u.Role)
				fmt.Fprintf(tw, "Server:\t%s\n", c.client.BaseURL())
			})
		},
	}
}

func newRegisterCmd(c *CLI) *cobra.Command {
	var in model.UserInput

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account on the server and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.store.Register(cmd.Context(), in); err != nil {
				return err
			}
			u := c.store.User()
			if u == nil {
				return errNotLoggedIn
			}
			fmt.Fprintf(c.out(cmd), "Registered and logged in as %s <%s>\n", u.Name, u.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&in.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&in.Password, "password", "", "Password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
