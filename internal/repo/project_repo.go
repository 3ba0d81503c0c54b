package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/docgate-io/docgate/internal/model"
	"github.com/docgate-io/docgate/internal/pkg/dbutil"
	appErr "github.com/docgate-io/docgate/internal/pkg/errors"
)

var projectFields = []string{"id", "client_id", "name", "code", "status", "created_by", "ctime", "mtime"}

type ProjectRepo struct {
	db *sql.DB
}

func NewProjectRepo(db *sql.DB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

func (r *ProjectRepo) Create(ctx context.Context, project *model.Project) error {
	data := map[string]interface{}{
		"id":         project.ID,
		"client_id":  project.ClientID,
		"name":       project.Name,
		"code":       project.Code,
		"status":     project.Status,
		"created_by": project.CreatedBy,
		"ctime":      project.Ctime,
		"mtime":      project.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("projects", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *ProjectRepo) Get(ctx context.Context, projectID string) (*model.Project, error) {
	where := map[string]interface{}{"id": projectID}
	sqlStr, args, err := builder.BuildSelect("projects", where, projectFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	return scanProject(rows)
}

func (r *ProjectRepo) List(ctx context.Context, clientID string) ([]model.Project, error) {
	where := map[string]interface{}{"_orderby": "ctime desc"}
	if clientID != "" {
		where["client_id"] = clientID
	}
	sqlStr, args, err := builder.BuildSelect("projects", where, projectFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var projects []model.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
	}
	return projects, rows.Err()
}

func (r *ProjectRepo) UpdateStatus(ctx context.Context, projectID, status string, mtime int64) error {
	where := map[string]interface{}{"id": projectID}
	update := map[string]interface{}{"status": status, "mtime": mtime}
	sqlStr, args, err := builder.BuildUpdate("projects", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func scanProject(rows *sql.Rows) (*model.Project, error) {
	var project model.Project
	if err := rows.Scan(&project.ID, &project.ClientID, &project.Name, &project.Code, &project.Status, &project.CreatedBy, &project.Ctime, &project.Mtime); err != nil {
		return nil, err
	}
	return &project, nil
}
