package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/auth"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

const msgBadCredentials = "invalid user credentials"

type RegisterInput struct {
	UserName   string
	Email      string
	FullName   string
	Password   string
	Avatar     string
	CoverImage string
}

type LoginInput struct {
	UserName string
	Email    string
	Password string
}

// UserService handles account operations. Logging in hands over to the
// SessionService once the password has been verified.
type UserService struct {
	repomanager repomanager.RepositoryManager
	hasher      *auth.PasswordHasher
	sessions    *SessionService
}

func NewUserService(m repomanager.RepositoryManager, hasher *auth.PasswordHasher, sessions *SessionService) *UserService {
	return &UserService{repomanager: m, hasher: hasher, sessions: sessions}
}

// Register creates a user. Username and email are stored lower-cased and
// must both be unused.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.Identity, error) {
	if blank(in.FullName, in.Email, in.UserName, in.Password) {
		return nil, common.Validation("all fields are required")
	}
	if strings.TrimSpace(in.Avatar) == "" {
		return nil, common.Validation("avatar file is required")
	}
	if strings.Contains(in.UserName, "@") {
		return nil, common.Validation("username must not contain @")
	}
	if !strings.Contains(in.Email, "@") {
		return nil, common.Validation("invalid email")
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		UserName:     models.NormalizeLogin(in.UserName),
		Email:        models.NormalizeLogin(in.Email),
		FullName:     strings.TrimSpace(in.FullName),
		Avatar:       in.Avatar,
		CoverImage:   in.CoverImage,
		PasswordHash: hash,
	}

	err = s.repomanager.WithTx(ctx, func(ctx context.Context, repo users.Repository) error {
		exists, err := repo.Exists(ctx, user.UserName, user.Email)
		if err != nil {
			return err
		}
		if exists {
			return common.ErrorAlreadyExists
		}
		user, err = repo.Create(ctx, user)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.Conflict("user with email or username already exists", err)
		}
		return nil, common.Internal(fmt.Errorf("create user: %w", err))
	}

	id := user.Identity()
	return &id, nil
}

// Login checks the credentials and starts a new session. The user is looked
// up by username, then by email, whichever are given. An unknown user and a
// wrong password are reported the same way.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*models.Identity, *TokenPair, error) {
	var logins []string
	for _, l := range []string{in.UserName, in.Email} {
		if l = models.NormalizeLogin(l); l != "" {
			logins = append(logins, l)
		}
	}
	if len(logins) == 0 {
		return nil, nil, common.Validation("username or email is required")
	}

	user, err := s.findByAnyLogin(ctx, logins)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.Unauthenticated(msgBadCredentials, err)
		}
		return nil, nil, common.Internal(fmt.Errorf("find user: %w", err))
	}

	ok, err := s.hasher.Verify(user.PasswordHash, in.Password)
	if err != nil {
		return nil, nil, common.Internal(err)
	}
	if !ok {
		return nil, nil, common.Unauthenticated(msgBadCredentials, nil)
	}

	pair, err := s.sessions.Issue(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	id := user.Identity()
	return &id, pair, nil
}

// findByAnyLogin returns the first user matching one of logins. Usernames
// never contain "@" and emails always do, so a login matches one row at most.
func (s *UserService) findByAnyLogin(ctx context.Context, logins []string) (*models.User, error) {
	repo := s.repomanager.Users()
	for _, l := range logins {
		user, err := repo.FindByLogin(ctx, l)
		if errors.Is(err, common.ErrorNotFound) {
			continue
		}
		return user, err
	}
	return nil, common.ErrorNotFound
}

// ChangePassword replaces the password after checking the old one. Sessions
// already issued stay valid.
func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return common.Validation("old and new password are required")
	}

	repo := s.repomanager.Users()

	user, err := repo.FindByID(ctx, userID)
	if err != nil {
		return common.Internal(fmt.Errorf("load user %s: %w", userID, err))
	}

	ok, err := s.hasher.Verify(user.PasswordHash, oldPassword)
	if err != nil {
		return common.Internal(err)
	}
	if !ok {
		return common.Validation("invalid old password")
	}

	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := repo.UpdatePassword(ctx, userID, hash); err != nil {
		return common.Internal(fmt.Errorf("update password: %w", err))
	}
	return nil
}

// UpdateAccount changes the display name and email.
func (s *UserService) UpdateAccount(ctx context.Context, userID, fullName, email string) (*models.Identity, error) {
	if blank(fullName, email) {
		return nil, common.Validation("all fields are required")
	}
	if !strings.Contains(email, "@") {
		return nil, common.Validation("invalid email")
	}

	user, err := s.repomanager.Users().UpdateAccount(ctx, userID, strings.TrimSpace(fullName), models.NormalizeLogin(email))
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.Conflict("email is already in use", err)
		}
		return nil, common.Internal(fmt.Errorf("update account: %w", err))
	}

	id := user.Identity()
	return &id, nil
}

func (s *UserService) hashPassword(password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", common.Validation("password is too long")
		}
		return "", common.Internal(err)
	}
	return hash, nil
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}
