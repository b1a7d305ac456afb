package client

import (
	"context"

	"github.com/dmitrijs2005/vidtube/internal/client/repositories/metadata"
)

const (
	accessTokenKey  = "access_token"
	refreshTokenKey = "refresh_token"
)

// SessionStore persists the tokens between CLI runs.
type SessionStore interface {
	Load(ctx context.Context) (Tokens, error)
	Save(ctx context.Context, t Tokens) error
	Clear(ctx context.Context) error
}

// MetadataSessionStore keeps the tokens in the metadata table of the local
// database.
type MetadataSessionStore struct {
	repo metadata.Repository
}

func NewMetadataSessionStore(repo metadata.Repository) *MetadataSessionStore {
	return &MetadataSessionStore{repo: repo}
}

func (s *MetadataSessionStore) Load(ctx context.Context) (Tokens, error) {
	access, err := s.repo.Get(ctx, accessTokenKey)
	if err != nil {
		return Tokens{}, err
	}
	refresh, err := s.repo.Get(ctx, refreshTokenKey)
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{AccessToken: string(access), RefreshToken: string(refresh)}, nil
}

func (s *MetadataSessionStore) Save(ctx context.Context, t Tokens) error {
	if err := s.repo.Set(ctx, accessTokenKey, []byte(t.AccessToken)); err != nil {
		return err
	}
	return s.repo.Set(ctx, refreshTokenKey, []byte(t.RefreshToken))
}

func (s *MetadataSessionStore) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx)
}
