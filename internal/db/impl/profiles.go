package impl

import (
	"context"
	"time"

	"github.com/sidereusnuntius/donata/internal/db"
	"github.com/sidereusnuntius/donata/internal/db/impl/queries"
	"github.com/sidereusnuntius/donata/internal/domain"
)

func (d *dbImpl) GetProfile(ctx context.Context, address string) (domain.Profile, error) {
	return d.getProfile(ctx, d.queries, address)
}

func (d *dbImpl) getProfile(ctx context.Context, q *queries.Queries, address string) (domain.Profile, error) {
	row, err := q.GetProfile(ctx, address)
	if err != nil {
		return domain.Profile{}, d.HandleError(err)
	}

	socials, err := q.GetSocials(ctx, address)
	if err != nil {
		return domain.Profile{}, d.HandleError(err)
	}

	p := domain.Profile{
		Address: row.Address,
		Name:    row.Name,
		FID:     row.Fid,
		Email:   row.Email,
		Socials: make(domain.Socials, len(socials)),
	}
	for _, s := range socials {
		p.Socials[s.Network] = s.Handle
	}
	return p, nil
}

func (d *dbImpl) CreateProfile(ctx context.Context, address string) (p domain.Profile, err error) {
	err = d.WithTx(func(tx *queries.Queries) error {
		fid, err := tx.NextFid(ctx)
		if err != nil {
			return err
		}

		if _, err = tx.InsertProfile(ctx, queries.InsertProfileParams{
			Address: address,
			Fid:     fid,
			Created: time.Now().Unix(),
		}); err != nil {
			return err
		}

		p, err = d.getProfile(ctx, tx, address)
		return err
	})
	return p, d.HandleError(err)
}

func (d *dbImpl) UpdateProfile(ctx context.Context, update domain.ProfileUpdate, patch string) (p domain.Profile, err error) {
	now := time.Now().Unix()
	err = d.WithTx(func(tx *queries.Queries) error {
		n, err := tx.UpdateProfile(ctx, queries.UpdateProfileParams{
			Name:    update.Name,
			Email:   update.Email,
			Updated: now,
			Address: update.Address,
		})
		if err != nil {
			return err
		}
		if n == 0 {
			return db.ErrNotFound
		}

		if err = tx.DeleteSocials(ctx, update.Address); err != nil {
			return err
		}
		for network, handle := range update.Socials {
			if handle == "" {
				continue
			}
			err = tx.InsertSocial(ctx, queries.Social{
				Address: update.Address,
				Network: network,
				Handle:  handle,
			})
			if err != nil {
				return err
			}
		}

		if patch != "" {
			if _, err = tx.InsertRevision(ctx, queries.InsertRevisionParams{
				Address: update.Address,
				Patch:   patch,
				Created: now,
			}); err != nil {
				return err
			}
		}

		p, err = d.getProfile(ctx, tx, update.Address)
		return err
	})
	return p, d.HandleError(err)
}

func (d *dbImpl) GetRevisions(ctx context.Context, address string) ([]domain.Revision, error) {
	rows, err := d.queries.GetRevisions(ctx, address)
	if err != nil {
		return nil, d.HandleError(err)
	}

	revisions := make([]domain.Revision, len(rows))
	for i, r := range rows {
		revisions[i] = domain.Revision{
			ID:      r.ID,
			Address: r.Address,
			Patch:   r.Patch,
			Created: r.Created,
		}
	}
	return revisions, nil
}
