package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/bobarin/lyricburn/internal/apierr"
	"github.com/bobarin/lyricburn/internal/models"
)

func (db *DB) CreateVideo(ctx context.Context, video *models.Video) error {
	query := `
		INSERT INTO videos (id, source_path, owner_key)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	return db.QueryRowContext(ctx, query, video.ID, video.SourcePath, video.OwnerKey).Scan(&video.CreatedAt)
}

// GetVideo fetches a video and checks ownerKey against the stored
// owner credential. A missing row is NotFound; a mismatched key is
// Forbidden — never leaking whether the video exists to the wrong
// caller is not a goal here since IDs are opaque UUIDs already.
func (db *DB) GetVideo(ctx context.Context, id uuid.UUID, ownerKey string) (*models.Video, error) {
	query := `SELECT id, source_path, owner_key, created_at FROM videos WHERE id = $1`

	video := &models.Video{}
	err := db.QueryRowContext(ctx, query, id).Scan(&video.ID, &video.SourcePath, &video.OwnerKey, &video.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apierr.New(apierr.KindNotFound, "video not found")
	}
	if err != nil {
		return nil, apierr.Wrap(apierr.KindRenderFailed, "loading video failed", err)
	}

	if video.OwnerKey != ownerKey {
		return nil, apierr.New(apierr.KindForbidden, "owner key does not match this video")
	}

	return video, nil
}

// SourcePath returns the on-disk path for id without an owner check,
// for internal callers that have already authorized the request. The
// HTTP burn path does not call it: it takes the path from the Video
// that GetVideo returned.
func (db *DB) SourcePath(ctx context.Context, id uuid.UUID) (string, error) {
	var path string
	err := db.QueryRowContext(ctx, `SELECT source_path FROM videos WHERE id = $1`, id).Scan(&path)
	if err == sql.ErrNoRows {
		return "", apierr.New(apierr.KindNotFound, "video not found")
	}
	if err != nil {
		return "", apierr.Wrap(apierr.KindRenderFailed, fmt.Sprintf("loading source path for %s failed", id), err)
	}
	return path, nil
}
