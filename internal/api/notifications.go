package api

import (
	"context"

	"github.com/kidandcat/tracker/internal/model"
)

func (c *Client) ListNotifications(ctx context.Context) ([]model.Notification, error) {
	return c.listNotifications(ctx, "/notifications")
}

func (c *Client) ListUnreadNotifications(ctx context.Context) ([]model.Notification, error) {
	return c.listNotifications(ctx, "/notifications/unread")
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.patch(ctx, pathf("/notifications/%s/read", id), nil, nil)
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.patch(ctx, "/notifications/read-all", nil, nil)
}

func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	return c.delete(ctx, pathf("/notifications/%s", id))
}

func (c *Client) listNotifications(ctx context.Context, path string) ([]model.Notification, error) {
	var dtos []notificationDTO
	if err := c.get(ctx, path, &dtos); err != nil {
		return nil, err
	}
	out := make([]model.Notification, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toModel())
	}
	return out, nil
}
