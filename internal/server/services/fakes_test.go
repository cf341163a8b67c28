package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/dmitrijs2005/userkeeper/internal/common"
	"github.com/dmitrijs2005/userkeeper/internal/dbx"
	"github.com/dmitrijs2005/userkeeper/internal/logging"
	"github.com/dmitrijs2005/userkeeper/internal/server/config"
	"github.com/dmitrijs2005/userkeeper/internal/server/directory"
	"github.com/dmitrijs2005/userkeeper/internal/server/models"
	"github.com/dmitrijs2005/userkeeper/internal/server/repositories/users"
)

type fakeUserRepo struct {
	nextID int64
	byID   map[int64]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[int64]*models.User{}}
}

func (r *fakeUserRepo) findByEmail(email string) *fakeUserRepoEntry {
	for id, u := range r.byID {
		if u.Email == email {
			return &fakeUserRepoEntry{id: id, user: u}
		}
	}
	return nil
}

type fakeUserRepoEntry struct {
	id   int64
	user *models.User
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if r.findByEmail(user.Email) != nil {
		return nil, common.ErrorAlreadyExists
	}
	r.nextID++
	stored := *user
	stored.ID = r.nextID
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.byID[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	e := r.findByEmail(email)
	if e == nil {
		return nil, common.ErrorNotFound
	}
	out := *e.user
	return &out, nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *u
	return &out, nil
}

func (r *fakeUserRepo) List(ctx context.Context) ([]*models.User, error) {
	ids := make([]int64, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	result := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		out := *r.byID[id]
		result = append(result, &out)
	}
	return result, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, id int64, patch users.Patch) (*models.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if patch.Email != nil {
		if e := r.findByEmail(*patch.Email); e != nil && e.id != id {
			return nil, common.ErrorAlreadyExists
		}
		u.Email = *patch.Email
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	if patch.FirstName != nil {
		u.FirstName = patch.FirstName
	}
	if patch.LastName != nil {
		u.LastName = patch.LastName
	}
	if patch.Avatar != nil {
		u.Avatar = patch.Avatar
	}
	u.UpdatedAt = time.Now()
	out := *u
	return &out, nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	return nil
}

type fakeRepoManager struct {
	repo *fakeUserRepo
}

func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository { return m.repo }

func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }

type fakeAvatarStore struct {
	key       string
	err       error
	savedName string
}

func (s *fakeAvatarStore) Save(ctx context.Context, filename string, content io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.savedName = filename
	return s.key, nil
}

type fakeDirectory struct {
	users []directory.User
	err   error
}

func (d *fakeDirectory) ListUsers(ctx context.Context) ([]directory.User, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.users, nil
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	cfg.TokenValidityDuration = time.Hour
	return cfg
}
