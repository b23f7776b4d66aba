package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// EnsureUser returns the local User row for externalSubject, creating one
// with displayName if none exists yet. A User is created at most once per
// distinct external subject; every later call returns the existing row and
// bumps last_seen_at. The identity resolver caches viewers, so a cached
// request does not reach this method.
func (s *Store) EnsureUser(ctx context.Context, externalSubject, displayName string) (*User, error) {
	var u User
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (id, external_subject, display_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (external_subject) DO UPDATE
			SET last_seen_at = now()
		RETURNING id, external_subject, display_name, bio, profile_public, created_at, last_seen_at
	`, uuid.New().String(), externalSubject, displayName).Scan(
		&u.ID, &u.ExternalSubject, &u.DisplayName, &u.Bio, &u.ProfilePublic, &u.CreatedAt, &u.LastSeenAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser returns the user with id, or (nil, nil) if none exists.
func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	var u User
	err := s.pool.QueryRow(ctx, `
		SELECT id, external_subject, display_name, bio, profile_public, created_at, last_seen_at
		FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.ExternalSubject, &u.DisplayName, &u.Bio, &u.ProfilePublic, &u.CreatedAt, &u.LastSeenAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile updates the caller's own mutable profile fields
// (spec.md §3: "Mutable fields: display name, bio").
func (s *Store) UpdateProfile(ctx context.Context, id, displayName, bio string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE users SET display_name = $2, bio = $3 WHERE id = $1
	`, id, displayName, bio)
	return err
}
