package store

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/dmitrijs2005/seowatch/internal/client/models"
	"github.com/dmitrijs2005/seowatch/internal/client/repositories/kv"
	"github.com/dmitrijs2005/seowatch/internal/dbx"
	"github.com/google/uuid"
)

// legacyIdentity is the single-slot record written before layout version 2.
// Older builds stored the balance as "credits" and had no id.
type legacyIdentity struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Plan      string     `json:"plan"`
	Credit    *int       `json:"credit"`
	Credits   *int       `json:"credits"`
	CreatedAt *time.Time `json:"createdAt"`
}

func (l legacyIdentity) toIdentity(now time.Time) *models.Identity {
	id := l.ID
	if id == "" {
		id = uuid.NewString()
	}
	plan, err := models.ParsePlan(l.Plan)
	if err != nil {
		plan = models.PlanMetered
	}
	created := now.UTC()
	if l.CreatedAt != nil {
		created = l.CreatedAt.UTC()
	}

	i := &models.Identity{
		ID:        id,
		Username:  strings.TrimSpace(l.Username),
		Email:     l.Email,
		Plan:      plan,
		CreatedAt: created,
	}
	switch {
	case l.Credit != nil:
		i.SetCredit(*l.Credit)
	case l.Credits != nil:
		i.SetCredit(*l.Credits)
	}
	return i
}

// Migrate brings the device layout to LayoutVersion. It is a no-op when the
// version marker already matches. Otherwise a legacy single-slot identity is
// moved to the id-keyed layout, registered in the user index and made the
// active session; the legacy slot is removed and the marker written. All of
// it happens in one transaction.
func (s *Store) Migrate(ctx context.Context) error {
	var changed []string

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		changed = changed[:0]
		repo := kv.NewSQLiteRepository(tx)

		version, err := repo.Get(ctx, KeyVersion)
		if err != nil {
			return err
		}
		if string(version) == LayoutVersion {
			return nil
		}

		raw, err := repo.Get(ctx, KeyLegacyUser)
		if err != nil {
			return err
		}
		if raw != nil {
			keys, err := s.migrateLegacy(ctx, repo, raw)
			if err != nil {
				return err
			}
			changed = append(changed, keys...)
			if err := repo.Delete(ctx, KeyLegacyUser); err != nil {
				return err
			}
		}

		if err := repo.Set(ctx, KeyVersion, []byte(LayoutVersion)); err != nil {
			return err
		}
		changed = append(changed, KeyVersion)
		return nil
	})
	if err != nil {
		return err
	}

	for _, key := range changed {
		s.notify(ctx, key)
	}
	if len(changed) > 0 {
		s.log.Info(ctx, "layout migrated", "version", LayoutVersion)
	}
	return nil
}

func (s *Store) migrateLegacy(ctx context.Context, repo kv.Repository, raw []byte) ([]string, error) {
	var legacy legacyIdentity
	if err := json.Unmarshal(raw, &legacy); err != nil || strings.TrimSpace(legacy.Username) == "" {
		s.log.Warn(ctx, "legacy identity unreadable, dropped", "error", err)
		return nil, nil
	}

	identity := legacy.toIdentity(s.now())

	b, err := json.Marshal(identity)
	if err != nil {
		return nil, err
	}
	if err := repo.Set(ctx, IdentityKey(identity.ID), b); err != nil {
		return nil, err
	}

	index, err := readJSON[map[string]string](ctx, repo, s.log, KeyUserIndex)
	if err != nil {
		return nil, err
	}
	if index == nil {
		index = map[string]string{}
	}
	index[identity.Username] = identity.ID
	if b, err = json.Marshal(index); err != nil {
		return nil, err
	}
	if err := repo.Set(ctx, KeyUserIndex, b); err != nil {
		return nil, err
	}

	if b, err = json.Marshal(identity.ID); err != nil {
		return nil, err
	}
	if err := repo.Set(ctx, KeySession, b); err != nil {
		return nil, err
	}

	return []string{IdentityKey(identity.ID), KeyUserIndex, KeySession}, nil
}
