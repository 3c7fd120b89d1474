package db

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/bobarin/lyricburn/internal/apierr"
	"github.com/bobarin/lyricburn/internal/models"
)

const maxSegmentTextLen = 10_000

// List returns videoID's segments sorted by start_s ascending. The
// sort is enforced in SQL and is also an invariant of how Replace and
// UpsertFromTranscription leave the table, so this is belt-and-braces.
func (db *DB) List(ctx context.Context, videoID uuid.UUID) ([]models.Segment, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, video_id, start_s, end_s, text
		FROM segments
		WHERE video_id = $1
		ORDER BY start_s ASC
	`, videoID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindRenderFailed, "listing segments failed", err)
	}
	defer rows.Close()

	var segments []models.Segment
	for rows.Next() {
		var s models.Segment
		if err := rows.Scan(&s.ID, &s.VideoID, &s.StartS, &s.EndS, &s.Text); err != nil {
			return nil, apierr.Wrap(apierr.KindRenderFailed, "scanning segment row failed", err)
		}
		segments = append(segments, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apierr.Wrap(apierr.KindRenderFailed, "reading segment rows failed", err)
	}
	return segments, nil
}

// Replace atomically validates and rewrites videoID's segment set, per
// spec.md §4.4: validate every row, reject on overlap with Conflict and
// no mutation, otherwise delete-and-reinsert in one transaction under a
// row-level lock on the video record.
func (db *DB) Replace(ctx context.Context, videoID uuid.UUID, segments []models.Segment) ([]models.Segment, error) {
	if err := validateSegmentSet(segments); err != nil {
		return nil, err
	}

	sorted := append([]models.Segment(nil), segments...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartS < sorted[j].StartS })

	if err := detectOverlap(sorted); err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindRenderFailed, "starting transaction failed", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM videos WHERE id = $1 FOR UPDATE)`, videoID).Scan(&exists); err != nil {
		return nil, apierr.Wrap(apierr.KindRenderFailed, "locking video row failed", err)
	}
	if !exists {
		return nil, apierr.New(apierr.KindNotFound, "video not found")
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM segments WHERE video_id = $1`, videoID); err != nil {
		return nil, apierr.Wrap(apierr.KindRenderFailed, "clearing prior segments failed", err)
	}

	for _, s := range sorted {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO segments (id, video_id, start_s, end_s, text)
			VALUES ($1, $2, $3, $4, $5)
		`, s.ID, videoID, s.StartS, s.EndS, s.Text); err != nil {
			return nil, apierr.Wrap(apierr.KindRenderFailed, "inserting segment failed", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apierr.Wrap(apierr.KindRenderFailed, "committing segment replace failed", err)
	}

	return sorted, nil
}

// UpsertFromTranscription takes the STT collaborator's raw output,
// renumbers it to a contiguous 0..N-1, truncates overlong text, drops
// degenerate segments, and clips any overlap the external service
// produced rather than rejecting it outright (unlike Replace, which
// rejects overlap from a human editor).
func (db *DB) UpsertFromTranscription(ctx context.Context, videoID uuid.UUID, raw []models.RawSegment) ([]models.Segment, error) {
	sorted := append([]models.RawSegment(nil), raw...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartS < sorted[j].StartS })

	clipped := make([]models.RawSegment, 0, len(sorted))
	for i, s := range sorted {
		if i+1 < len(sorted) && s.EndS > sorted[i+1].StartS {
			s.EndS = sorted[i+1].StartS
		}
		if s.EndS <= s.StartS {
			continue
		}
		if len(s.Text) > maxSegmentTextLen {
			s.Text = s.Text[:maxSegmentTextLen]
		}
		clipped = append(clipped, s)
	}

	segments := make([]models.Segment, len(clipped))
	for i, s := range clipped {
		segments[i] = models.Segment{ID: i, VideoID: videoID, StartS: s.StartS, EndS: s.EndS, Text: s.Text}
	}

	return db.Replace(ctx, videoID, segments)
}

func validateSegmentSet(segments []models.Segment) error {
	seen := make(map[int]bool, len(segments))
	for _, s := range segments {
		if s.StartS < 0 {
			return apierr.New(apierr.KindInvalidInput, fmt.Sprintf("segment %d: start_s must be >= 0", s.ID))
		}
		if s.EndS <= s.StartS {
			return apierr.New(apierr.KindInvalidInput, fmt.Sprintf("segment %d: end_s must be > start_s", s.ID))
		}
		if len(s.Text) > maxSegmentTextLen {
			return apierr.New(apierr.KindInvalidInput, fmt.Sprintf("segment %d: text exceeds %d chars", s.ID, maxSegmentTextLen))
		}
		if seen[s.ID] {
			return apierr.New(apierr.KindInvalidInput, fmt.Sprintf("duplicate segment id %d in submitted set", s.ID))
		}
		seen[s.ID] = true
	}
	return nil
}

// detectOverlap assumes segments is already sorted by start_s.
func detectOverlap(sorted []models.Segment) error {
	for i := 1; i < len(sorted); i++ {
		if sorted[i].StartS < sorted[i-1].EndS {
			return apierr.New(apierr.KindConflict, fmt.Sprintf("segment %d overlaps segment %d", sorted[i].ID, sorted[i-1].ID))
		}
	}
	return nil
}
