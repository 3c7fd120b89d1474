package services

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bobarin/lyricburn/internal/apierr"
	"github.com/bobarin/lyricburn/internal/models"
)

// fakeSegments satisfies the Segments interface with a fixed, in-memory
// list — the Burn Orchestrator only ever reads through it.
type fakeSegments struct {
	segments []models.Segment
	err      error
}

func (f *fakeSegments) List(ctx context.Context, videoID uuid.UUID) ([]models.Segment, error) {
	return f.segments, f.err
}

// writeStubBinary writes an executable shell script to dir/name and
// returns its path. Used in place of the real ffmpeg/ffprobe binaries
// so the Burn Orchestrator's control flow can be exercised without
// either being installed.
func writeStubBinary(t *testing.T, dir, name, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub binaries are POSIX shell scripts")
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("writing stub binary %s: %v", name, err)
	}
	return path
}

func newTestOrchestrator(t *testing.T, encoderScript string, segs []models.Segment) (*BurnOrchestrator, string) {
	t.Helper()
	dataRoot := t.TempDir()

	probeScript := `echo '{"streams":[{"codec_type":"video","width":1280,"height":720}]}'`
	probeBin := writeStubBinary(t, dataRoot, "fake-ffprobe", probeScript)
	encoderBin := writeStubBinary(t, dataRoot, "fake-ffmpeg", encoderScript)

	prober := NewProber(probeBin)
	store := &fakeSegments{segments: segs}
	orch := NewBurnOrchestrator(prober, store, encoderBin, dataRoot, filepath.Join(dataRoot, "fonts"), 5*time.Second)
	return orch, dataRoot
}

func TestBurnWritesOutputAndCleansUp(t *testing.T) {
	// The stub encoder ignores its arguments and writes a fixed byte
	// string to the last argument (the expected out.mp4 path).
	script := `
for arg in "$@"; do last="$arg"; done
printf 'fake-mp4-bytes' > "$last"
exit 0
`
	orch, dataRoot := newTestOrchestrator(t, script, []models.Segment{
		{ID: 0, StartS: 0, EndS: 1, Text: "hello"},
	})

	artifact, err := orch.Burn(context.Background(), uuid.New(), "/tmp/source.mp4", models.StyleDescriptor{}.ResolveDefaults())
	if err != nil {
		t.Fatalf("Burn returned error: %v", err)
	}
	if string(artifact.Bytes) != "fake-mp4-bytes" {
		t.Errorf("artifact bytes = %q, want %q", artifact.Bytes, "fake-mp4-bytes")
	}

	entries, err := os.ReadDir(filepath.Join(dataRoot, "tmp"))
	if err != nil {
		t.Fatalf("reading scratch root: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("scratch directory not cleaned up, found %d entries", len(entries))
	}
}

func TestBurnSurfacesEncoderFailure(t *testing.T) {
	script := `
echo "synthetic encoder failure" 1>&2
exit 1
`
	orch, _ := newTestOrchestrator(t, script, nil)

	_, err := orch.Burn(context.Background(), uuid.New(), "/tmp/source.mp4", models.StyleDescriptor{}.ResolveDefaults())
	if apierr.KindOf(err) != apierr.KindRenderFailed {
		t.Fatalf("expected KindRenderFailed, got %v (%v)", apierr.KindOf(err), err)
	}
}

func TestBurnSurfacesTimeout(t *testing.T) {
	script := `sleep 5; exit 0`
	dataRoot := t.TempDir()
	probeBin := writeStubBinary(t, dataRoot, "fake-ffprobe", `echo '{"streams":[{"codec_type":"video","width":1920,"height":1080}]}'`)
	encoderBin := writeStubBinary(t, dataRoot, "fake-ffmpeg", script)

	prober := NewProber(probeBin)
	store := &fakeSegments{}
	orch := NewBurnOrchestrator(prober, store, encoderBin, dataRoot, filepath.Join(dataRoot, "fonts"), 50*time.Millisecond)

	_, err := orch.Burn(context.Background(), uuid.New(), "/tmp/source.mp4", models.StyleDescriptor{}.ResolveDefaults())
	if apierr.KindOf(err) != apierr.KindTimeout {
		t.Fatalf("expected KindTimeout, got %v (%v)", apierr.KindOf(err), err)
	}
}

func TestBurnPropagatesSegmentStoreError(t *testing.T) {
	dataRoot := t.TempDir()
	probeBin := writeStubBinary(t, dataRoot, "fake-ffprobe", `echo '{"streams":[{"codec_type":"video","width":1920,"height":1080}]}'`)
	encoderBin := writeStubBinary(t, dataRoot, "fake-ffmpeg", `exit 0`)

	prober := NewProber(probeBin)
	store := &fakeSegments{err: apierr.New(apierr.KindNotFound, "video not found")}
	orch := NewBurnOrchestrator(prober, store, encoderBin, dataRoot, filepath.Join(dataRoot, "fonts"), 5*time.Second)

	_, err := orch.Burn(context.Background(), uuid.New(), "/tmp/source.mp4", models.StyleDescriptor{}.ResolveDefaults())
	if err == nil {
		t.Fatal("expected an error when the segment store fails")
	}
}
