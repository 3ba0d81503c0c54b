package repo

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/didi/gendry/builder"

	"github.com/docgate-io/docgate/internal/model"
	"github.com/docgate-io/docgate/internal/pkg/dbutil"
	appErr "github.com/docgate-io/docgate/internal/pkg/errors"
)

var userFields = []string{"id", "email", "name", "role", "status", "password_hash", "client_ids", "project_ids", "ctime", "mtime"}

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	clientIDs, err := json.Marshal(emptyIfNil(user.ClientIDs))
	if err != nil {
		return err
	}
	projectIDs, err := json.Marshal(emptyIfNil(user.ProjectIDs))
	if err != nil {
		return err
	}
	data := map[string]interface{}{
		"id":            user.ID,
		"email":         user.Email,
		"name":          user.Name,
		"role":          string(user.Role),
		"status":        user.Status,
		"password_hash": user.PasswordHash,
		"client_ids":    string(clientIDs),
		"project_ids":   string(projectIDs),
		"ctime":         user.Ctime,
		"mtime":         user.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("users", []map[string]interface{}{data})
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

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, map[string]interface{}{"email": email})
}

func (r *UserRepo) GetByID(ctx context.Context, userID string) (*model.User, error) {
	return r.getOne(ctx, map[string]interface{}{"id": userID})
}

func (r *UserRepo) getOne(ctx context.Context, where map[string]interface{}) (*model.User, error) {
	sqlStr, args, err := builder.BuildSelect("users", where, userFields)
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
	return scanUser(rows)
}

func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	sqlStr, args, err := builder.BuildSelect("users", map[string]interface{}{"_orderby": "ctime desc"}, userFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// UpdateAssignments rewrites the user's client/project assignment lists.
func (r *UserRepo) UpdateAssignments(ctx context.Context, userID string, clientIDs, projectIDs []string, mtime int64) error {
	clients, err := json.Marshal(emptyIfNil(clientIDs))
	if err != nil {
		return err
	}
	projects, err := json.Marshal(emptyIfNil(projectIDs))
	if err != nil {
		return err
	}
	where := map[string]interface{}{"id": userID}
	update := map[string]interface{}{
		"client_ids":  string(clients),
		"project_ids": string(projects),
		"mtime":       mtime,
	}
	sqlStr, args, err := builder.BuildUpdate("users", where, update)
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

func (r *UserRepo) UpdateStatus(ctx context.Context, userID, status string, mtime int64) error {
	where := map[string]interface{}{"id": userID}
	update := map[string]interface{}{"status": status, "mtime": mtime}
	sqlStr, args, err := builder.BuildUpdate("users", where, update)
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

func scanUser(rows *sql.Rows) (*model.User, error) {
	var user model.User
	var role string
	var clientIDs, projectIDs string
	if err := rows.Scan(&user.ID, &user.Email, &user.Name, &role, &user.Status, &user.PasswordHash, &clientIDs, &projectIDs, &user.Ctime, &user.Mtime); err != nil {
		return nil, err
	}
	user.Role = model.ParseRole(role)
	if err := json.Unmarshal([]byte(clientIDs), &user.ClientIDs); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(projectIDs), &user.ProjectIDs); err != nil {
		return nil, err
	}
	return &user, nil
}

func emptyIfNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
