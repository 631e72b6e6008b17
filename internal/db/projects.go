package db

import (
	"context"
	"fmt"
	"time"
)

type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (d *DB) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT id, name, description, created_at FROM projects ORDER BY id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []Project{}
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (d *DB) ProjectByID(ctx context.Context, id int64) (*Project, error) {
	var p Project
	err := d.sql.QueryRowContext(ctx,
		"SELECT id, name, description, created_at FROM projects WHERE id = ?", id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (d *DB) CreateProject(ctx context.Context, name, description string) (*Project, error) {
	res, err := d.sql.ExecContext(ctx,
		"INSERT INTO projects (name, description) VALUES (?, ?)", name, description)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	id, _ := res.LastInsertId()
	return d.ProjectByID(ctx, id)
}

func (d *DB) UpdateProject(ctx context.Context, id int64, name, description *string) (*Project, error) {
	p, err := d.ProjectByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != nil {
		p.Name = *name
	}
	if description != nil {
		p.Description = *description
	}
	if _, err := d.sql.ExecContext(ctx,
		"UPDATE projects SET name = ?, description = ? WHERE id = ?", p.Name, p.Description, id); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

func (d *DB) DeleteProject(ctx context.Context, id int64) error {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
