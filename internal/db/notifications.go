package db

import (
	"context"
	"fmt"
	"time"
)

const (
	NotifyComment = "comment"
	NotifyStatus  = "status_change"
)

type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	IssueID   *int64    `json:"issue_id"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func (d *DB) CreateNotification(ctx context.Context, userID int64, kind, message string, issueID *int64) error {
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO notifications (user_id, type, message, issue_id) VALUES (?, ?, ?, ?)",
		userID, kind, message, issueID,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListNotifications returns the user's notifications, newest first.
func (d *DB) ListNotifications(ctx context.Context, userID int64, unreadOnly bool) ([]Notification, error) {
	q := "SELECT id, user_id, type, message, issue_id, is_read, created_at FROM notifications WHERE user_id = ?"
	if unreadOnly {
		q += " AND is_read = 0"
	}
	q += " ORDER BY created_at DESC, id DESC"

	rows, err := d.sql.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Notification{}
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Message, &n.IssueID, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (d *DB) MarkNotificationRead(ctx context.Context, userID, id int64) error {
	res, err := d.sql.ExecContext(ctx,
		"UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("mark notification: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *DB) MarkAllNotificationsRead(ctx context.Context, userID int64) error {
	_, err := d.sql.ExecContext(ctx, "UPDATE notifications SET is_read = 1 WHERE user_id = ?", userID)
	return err
}

func (d *DB) DeleteNotification(ctx context.Context, userID, id int64) error {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM notifications WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
