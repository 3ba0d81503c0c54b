package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/docgate-io/docgate/internal/model"
	"github.com/docgate-io/docgate/internal/pkg/dbutil"
	appErr "github.com/docgate-io/docgate/internal/pkg/errors"
)

var clientFields = []string{"id", "name", "domain", "status", "created_by", "ctime", "mtime"}

type ClientRepo struct {
	db *sql.DB
}

func NewClientRepo(db *sql.DB) *ClientRepo {
	return &ClientRepo{db: db}
}

func (r *ClientRepo) Create(ctx context.Context, client *model.Client) error {
	data := map[string]interface{}{
		"id":         client.ID,
		"name":       client.Name,
		"domain":     client.Domain,
		"status":     client.Status,
		"created_by": client.CreatedBy,
		"ctime":      client.Ctime,
		"mtime":      client.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("clients", []map[string]interface{}{data})
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

func (r *ClientRepo) Get(ctx context.Context, clientID string) (*model.Client, error) {
	where := map[string]interface{}{"id": clientID}
	sqlStr, args, err := builder.BuildSelect("clients", where, clientFields)
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
	var client model.Client
	if err := rows.Scan(&client.ID, &client.Name, &client.Domain, &client.Status, &client.CreatedBy, &client.Ctime, &client.Mtime); err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *ClientRepo) List(ctx context.Context) ([]model.Client, error) {
	sqlStr, args, err := builder.BuildSelect("clients", map[string]interface{}{"_orderby": "ctime desc"}, clientFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var clients []model.Client
	for rows.Next() {
		var client model.Client
		if err := rows.Scan(&client.ID, &client.Name, &client.Domain, &client.Status, &client.CreatedBy, &client.Ctime, &client.Mtime); err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}

// UpdateStatus is the only mutation clients support; they are never
// hard-deleted.
func (r *ClientRepo) UpdateStatus(ctx context.Context, clientID, status string, mtime int64) error {
	where := map[string]interface{}{"id": clientID}
	update := map[string]interface{}{"status": status, "mtime": mtime}
	sqlStr, args, err := builder.BuildUpdate("clients", where, update)
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
