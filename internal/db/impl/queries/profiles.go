package queries

import (
	"context"
)

const getProfile = `SELECT address, fid, name, email, created, updated FROM profiles WHERE address = ?`

func (q *Queries) GetProfile(ctx context.Context, address string) (Profile, error) {
	row := q.db.QueryRowContext(ctx, getProfile, address)
	var i Profile
	err := row.Scan(
		&i.Address,
		&i.Fid,
		&i.Name,
		&i.Email,
		&i.Created,
		&i.Updated,
	)
	return i, err
}

const nextFid = `SELECT COALESCE(MAX(fid), 0) + 1 FROM profiles`

func (q *Queries) NextFid(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, nextFid)
	var fid int64
	err := row.Scan(&fid)
	return fid, err
}

const insertProfile = `INSERT INTO profiles (address, fid, name, email, created, updated)
VALUES (?, ?, '', '', ?, ?)
ON CONFLICT (address) DO NOTHING`

type InsertProfileParams struct {
	Address string
	Fid     int64
	Created int64
}

func (q *Queries) InsertProfile(ctx context.Context, arg InsertProfileParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, insertProfile, arg.Address, arg.Fid, arg.Created, arg.Created)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updateProfile = `UPDATE profiles SET name = ?, email = ?, updated = ? WHERE address = ?`

type UpdateProfileParams struct {
	Name    string
	Email   string
	Updated int64
	Address string
}

func (q *Queries) UpdateProfile(ctx context.Context, arg UpdateProfileParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateProfile, arg.Name, arg.Email, arg.Updated, arg.Address)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getSocials = `SELECT address, network, handle FROM socials WHERE address = ? ORDER BY network`

func (q *Queries) GetSocials(ctx context.Context, address string) ([]Social, error) {
	rows, err := q.db.QueryContext(ctx, getSocials, address)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Social
	for rows.Next() {
		var i Social
		if err := rows.Scan(&i.Address, &i.Network, &i.Handle); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteSocials = `DELETE FROM socials WHERE address = ?`

func (q *Queries) DeleteSocials(ctx context.Context, address string) error {
	_, err := q.db.ExecContext(ctx, deleteSocials, address)
	return err
}

const insertSocial = `INSERT INTO socials (address, network, handle) VALUES (?, ?, ?)`

func (q *Queries) InsertSocial(ctx context.Context, arg Social) error {
	_, err := q.db.ExecContext(ctx, insertSocial, arg.Address, arg.Network, arg.Handle)
	return err
}

const insertRevision = `INSERT INTO revisions (address, patch, created) VALUES (?, ?, ?) RETURNING id`

type InsertRevisionParams struct {
	Address string
	Patch   string
	Created int64
}

func (q *Queries) InsertRevision(ctx context.Context, arg InsertRevisionParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, insertRevision, arg.Address, arg.Patch, arg.Created)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const getRevisions = `SELECT id, address, patch, created FROM revisions WHERE address = ? ORDER BY id DESC`

func (q *Queries) GetRevisions(ctx context.Context, address string) ([]Revision, error) {
	rows, err := q.db.QueryContext(ctx, getRevisions, address)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Revision
	for rows.Next() {
		var i Revision
		if err := rows.Scan(&i.ID, &i.Address, &i.Patch, &i.Created); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
