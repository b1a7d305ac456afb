package users

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/google/uuid"
)

// record guards one user. Fingerprint reads and swaps for a user hold only
// its own lock, so different users never contend.
type record struct {
	mu   sync.Mutex
	user models.User
}

// MemoryRepository is an in-process Repository used for local runs and
// tests. The map lock is held only to find or index a record; lock order is
// map then record.
type MemoryRepository struct {
	mu         sync.RWMutex
	byID       map[string]*record
	byUserName map[string]string
	byEmail    map[string]string
	now        func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:       make(map[string]*record),
		byUserName: make(map[string]string),
		byEmail:    make(map[string]string),
		now:        time.Now,
	}
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUserName[user.UserName]; ok {
		return nil, common.ErrorAlreadyExists
	}
	if _, ok := r.byEmail[user.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}

	now := r.now()
	stored := *user
	stored.ID = uuid.NewString()
	stored.RefreshToken = nil
	stored.CreatedAt = now
	stored.UpdatedAt = now

	r.byID[stored.ID] = &record{user: stored}
	r.byUserName[stored.UserName] = stored.ID
	r.byEmail[stored.Email] = stored.ID

	return copyUser(&stored), nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	rec, err := r.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return copyUser(&rec.user), nil
}

func (r *MemoryRepository) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	id, ok := r.byUserName[login]
	if !ok {
		id, ok = r.byEmail[login]
	}
	r.mu.RUnlock()

	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *MemoryRepository) Exists(ctx context.Context, userName, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	_, byName := r.byUserName[userName]
	_, byMail := r.byEmail[email]
	return byName || byMail, nil
}

func (r *MemoryRepository) SetRefreshToken(ctx context.Context, id string, token *string) error {
	rec, err := r.lookup(ctx, id)
	if err != nil {
		return err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.user.RefreshToken = copyString(token)
	rec.user.UpdatedAt = r.now()
	return nil
}

func (r *MemoryRepository) SwapRefreshToken(ctx context.Context, id, expected, next string) (bool, error) {
	rec, err := r.lookup(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.user.RefreshToken == nil || *rec.user.RefreshToken != expected {
		return false, nil
	}
	rec.user.RefreshToken = &next
	rec.user.UpdatedAt = r.now()
	return true, nil
}

func (r *MemoryRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	rec, err := r.lookup(ctx, id)
	if err != nil {
		return err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.user.PasswordHash = passwordHash
	rec.user.UpdatedAt = r.now()
	return nil
}

func (r *MemoryRepository) UpdateAccount(ctx context.Context, id, fullName, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// email is indexed, so the map lock is held for the whole update
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if owner, taken := r.byEmail[email]; taken && owner != id {
		return nil, common.ErrorAlreadyExists
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	delete(r.byEmail, rec.user.Email)
	r.byEmail[email] = id
	rec.user.Email = email
	rec.user.FullName = fullName
	rec.user.UpdatedAt = r.now()

	return copyUser(&rec.user), nil
}

func (r *MemoryRepository) lookup(ctx context.Context, id string) (*record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	rec, ok := r.byID[id]
	r.mu.RUnlock()

	if !ok {
		return nil, common.ErrorNotFound
	}
	return rec, nil
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.RefreshToken = copyString(u.RefreshToken)
	return &c
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
