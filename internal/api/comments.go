package api

import (
	"context"

	"github.com/kidandcat/tracker/internal/model"
)

func (c *Client) CreateComment(ctx context.Context, issueID, text string) (*model.Comment, error) {
	var d commentDTO
	if err := c.post(ctx, pathf("/issues/%s/comments", issueID), createCommentRequest{Content: text}, &d); err != nil {
		return nil, err
	}
	comment := d.toModel()
	return &comment, nil
}

func (c *Client) ListComments(ctx context.Context, issueID string) ([]model.Comment, error) {
	var dtos []commentDTO
	if err := c.get(ctx, pathf("/issues/%s/comments", issueID), &dtos); err != nil {
		return nil, err
	}
	comments := make([]model.Comment, 0, len(dtos))
	for _, d := range dtos {
		comments = append(comments, d.toModel())
	}
	return comments, nil
}
