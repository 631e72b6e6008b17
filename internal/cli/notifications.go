package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newNotificationsCmd(c *CLI) *cobra.Command {
	var unread bool

	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notifs"},
		Short:   "List your notifications",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.remoteSession(ctx); err != nil {
				return err
			}
			list := c.client.ListNotifications
			if unread {
				list = c.client.ListUnreadNotifications
			}
			ns, err := list(ctx)
			if err != nil {
				return err
			}
			return c.emit(c.out(cmd), ns, notificationTable(ns))
		},
	}
	cmd.Flags().BoolVar(&unread, "unread", false, "Only unread notifications")

	var all bool
	read := &cobra.Command{
		Use:   "read [id]",
		Short: "Mark one notification, or all with --all, as read",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) {
				return errors.New("pass either a notification id or --all")
			}
			ctx := cmd.Context()
			if err := c.remoteSession(ctx); err != nil {
				return err
			}
			if all {
				if err := c.client.MarkAllNotificationsRead(ctx); err != nil {
					return err
				}
				fmt.Fprintln(c.out(cmd), "All notifications marked as read")
				return nil
			}
			if err := c.client.MarkNotificationRead(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(c.out(cmd), "Notification %s marked as read\n", args[0])
			return nil
		},
	}
	read.Flags().BoolVar(&all, "all", false, "Mark every notification as read")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.remoteSession(ctx); err != nil {
				return err
			}
			if err := c.client.DeleteNotification(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(c.out(cmd), "Notification %s deleted\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(read, del)
	return cmd
}
