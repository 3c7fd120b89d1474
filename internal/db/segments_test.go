package db

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/bobarin/lyricburn/internal/apierr"
	"github.com/bobarin/lyricburn/internal/models"
)

// openTestDB connects to DATABASE_URL for integration tests, skipping
// when it isn't set — the same gate the rest of the pack's db-backed
// tests use rather than standing up a fake driver.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	database, err := New(dsn)
	if err != nil {
		t.Fatalf("connecting to test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestReplaceRejectsOverlap(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	video := &models.Video{ID: uuid.New(), SourcePath: "/tmp/source.mp4", OwnerKey: "k"}
	if err := database.CreateVideo(ctx, video); err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}

	prior := []models.Segment{{ID: 0, StartS: 0, EndS: 1, Text: "prior"}}
	if _, err := database.Replace(ctx, video.ID, prior); err != nil {
		t.Fatalf("seeding prior segments: %v", err)
	}

	overlapping := []models.Segment{
		{ID: 0, StartS: 0, EndS: 2, Text: "a"},
		{ID: 1, StartS: 1, EndS: 3, Text: "b"},
	}
	_, err := database.Replace(ctx, video.ID, overlapping)
	if apierr.KindOf(err) != apierr.KindConflict {
		t.Fatalf("expected KindConflict, got %v", err)
	}

	after, err := database.List(ctx, video.ID)
	if err != nil {
		t.Fatalf("List after rejected replace: %v", err)
	}
	if len(after) != 1 || after[0].Text != "prior" {
		t.Errorf("segment set mutated despite Conflict: %+v", after)
	}
}

func TestListReturnsSortedSegments(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	video := &models.Video{ID: uuid.New(), SourcePath: "/tmp/source.mp4", OwnerKey: "k"}
	if err := database.CreateVideo(ctx, video); err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}

	unsorted := []models.Segment{
		{ID: 1, StartS: 5, EndS: 6, Text: "second"},
		{ID: 0, StartS: 0, EndS: 2, Text: "first"},
	}
	if _, err := database.Replace(ctx, video.ID, unsorted); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	segments, err := database.List(ctx, video.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(segments) != 2 || segments[0].Text != "first" || segments[1].Text != "second" {
		t.Fatalf("segments not sorted by start_s: %+v", segments)
	}
}

func TestUpsertFromTranscriptionClipsOverlap(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	video := &models.Video{ID: uuid.New(), SourcePath: "/tmp/source.mp4", OwnerKey: "k"}
	if err := database.CreateVideo(ctx, video); err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}

	raw := []models.RawSegment{
		{StartS: 0, EndS: 2.5, Text: "first line"},
		{StartS: 2.0, EndS: 4.0, Text: "second line"},
	}

	segments, err := database.UpsertFromTranscription(ctx, video.ID, raw)
	if err != nil {
		t.Fatalf("UpsertFromTranscription: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(segments))
	}
	if segments[0].EndS != 2.0 {
		t.Errorf("first segment not clipped: EndS = %v, want 2.0", segments[0].EndS)
	}
	if segments[0].ID != 0 || segments[1].ID != 1 {
		t.Errorf("segments not renumbered contiguously: %+v", segments)
	}
}

func TestGetVideoForbidsWrongOwnerKey(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	video := &models.Video{ID: uuid.New(), SourcePath: "/tmp/source.mp4", OwnerKey: "correct-key"}
	if err := database.CreateVideo(ctx, video); err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}

	_, err := database.GetVideo(ctx, video.ID, "wrong-key")
	if apierr.KindOf(err) != apierr.KindForbidden {
		t.Fatalf("expected KindForbidden, got %v", err)
	}
}
