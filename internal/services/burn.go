package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/bobarin/lyricburn/internal/apierr"
	"github.com/bobarin/lyricburn/internal/models"
)

// maxStderrBytes caps how much encoder stderr is kept in memory per
// burn. ffmpeg can be extremely chatty; only the tail matters for
// diagnosing a failure.
const maxStderrBytes = 64 * 1024

// killGrace is how long the orchestrator waits after SIGTERM before
// escalating to SIGKILL once a burn's timeout or the caller's context
// expires.
const killGrace = 5 * time.Second

// Segments is the minimal view of the Segment Store a burn needs: an
// ordered, non-overlapping list for one video.
type Segments interface {
	List(ctx context.Context, videoID uuid.UUID) ([]models.Segment, error)
}

// BurnOrchestrator renders a subtitled MP4 from a source video, a
// resolved style, and that video's stored segments. Every invocation
// gets a fresh scratch directory under dataRoot/tmp that is removed on
// every exit path, success or failure.
type BurnOrchestrator struct {
	prober     *Prober
	segments   Segments
	encoderBin string
	dataRoot   string
	fontsDir   string
	timeout    time.Duration
}

func NewBurnOrchestrator(prober *Prober, segments Segments, encoderBin, dataRoot, fontsDir string, timeout time.Duration) *BurnOrchestrator {
	if encoderBin == "" {
		encoderBin = "ffmpeg"
	}
	if timeout <= 0 {
		timeout = 180 * time.Second
	}

	// Every burn gets its own scratch directory under dataRoot/tmp;
	// MkdirTemp doesn't create its parent, so that directory has to
	// exist before the first burn ever runs.
	if err := os.MkdirAll(filepath.Join(dataRoot, "tmp"), 0o755); err != nil {
		panic(fmt.Sprintf("failed to create burn scratch root: %v", err))
	}

	return &BurnOrchestrator{
		prober:     prober,
		segments:   segments,
		encoderBin: encoderBin,
		dataRoot:   dataRoot,
		fontsDir:   fontsDir,
		timeout:    timeout,
	}
}

// Burn renders video at sourcePath with subtitles burned in per style,
// returning the finished MP4's bytes. Probing the source resolution
// and fetching the segment list happen concurrently — both are
// required before the ASS file can be written.
func (b *BurnOrchestrator) Burn(ctx context.Context, videoID uuid.UUID, sourcePath string, style models.StyleDescriptor) (*models.RenderArtifact, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	var playResX, playResY int
	var segments []models.Segment

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		w, h, err := b.prober.Probe(gctx, sourcePath)
		if err != nil {
			return apierr.Wrap(apierr.KindRenderFailed, "probing source video failed", err)
		}
		playResX, playResY = w, h
		return nil
	})
	g.Go(func() error {
		segs, err := b.segments.List(gctx, videoID)
		if err != nil {
			return apierr.Wrap(apierr.KindRenderFailed, "loading segments failed", err)
		}
		segments = segs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	workDir, err := os.MkdirTemp(filepath.Join(b.dataRoot, "tmp"), "burn-*")
	if err != nil {
		return nil, apierr.Wrap(apierr.KindRenderFailed, "creating scratch directory failed", err)
	}
	defer os.RemoveAll(workDir)

	assPath := filepath.Join(workDir, "subs.ass")
	doc := BuildASS(segments, style, playResX, playResY)
	if err := os.WriteFile(assPath, []byte(doc), 0o644); err != nil {
		return nil, apierr.Wrap(apierr.KindRenderFailed, "writing subtitle file failed", err)
	}

	outPath := filepath.Join(workDir, "out.mp4")
	if err := b.encode(ctx, sourcePath, assPath, outPath); err != nil {
		return nil, err
	}

	bytes, err := os.ReadFile(outPath)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindRenderFailed, "reading rendered output failed", err)
	}

	return &models.RenderArtifact{Bytes: bytes}, nil
}

func (b *BurnOrchestrator) encode(ctx context.Context, sourcePath, assPath, outPath string) error {
	vf := fmt.Sprintf("ass='%s':fontsdir='%s'", escapeFFmpegFilterPath(assPath), escapeFFmpegFilterPath(b.fontsDir))

	args := []string{
		"-i", sourcePath,
		"-vf", vf,
		"-c:v", "libx264",
		"-crf", "18",
		"-preset", "medium",
		"-pix_fmt", "yuv420p",
		"-c:a", "copy",
		"-movflags", "+faststart",
		"-y",
		outPath,
	}

	cmd := exec.CommandContext(ctx, b.encoderBin, args...)
	var stderr boundedBuffer
	cmd.Stdout = nil
	cmd.Stderr = &stderr

	if err := runWithGrace(cmd); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return apierr.Wrap(apierr.KindTimeout, "encoder exceeded burn timeout", err).WithDiagnostic(stderr.String())
		}
		if ctx.Err() == context.Canceled {
			return apierr.New(apierr.KindCancelled, "burn cancelled by caller")
		}
		log.Printf("[Burn] encoder failed: %v (stderr tail: %s)", err, truncate(stderr.String(), 2000))
		return apierr.Wrap(apierr.KindRenderFailed, "encoder exited with an error", err).WithDiagnostic(stderr.String())
	}

	return nil
}

// runWithGrace runs cmd to completion, sending SIGTERM (not the default
// SIGKILL from exec.CommandContext's context cancellation) and giving
// the encoder killGrace to exit cleanly before escalating to SIGKILL.
func runWithGrace(cmd *exec.Cmd) error {
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = killGrace
	return cmd.Run()
}

// escapeFFmpegFilterPath escapes a path for embedding inside an
// ffmpeg -vf filter argument: backslashes and colons are filter
// metacharacters, single quotes close the filter's quoted string.
func escapeFFmpegFilterPath(path string) string {
	path = strings.ReplaceAll(path, "\\", "\\\\")
	path = strings.ReplaceAll(path, ":", "\\:")
	path = strings.ReplaceAll(path, "'", "'\\''")
	return path
}

// boundedBuffer keeps only the last maxStderrBytes written to it,
// dropping the start of very chatty encoder output rather than the
// end, where the actual failure reason usually is.
type boundedBuffer struct {
	buf bytes.Buffer
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	n := len(p)
	b.buf.Write(p)
	if b.buf.Len() > maxStderrBytes {
		trimmed := b.buf.Bytes()[b.buf.Len()-maxStderrBytes:]
		b.buf = *bytes.NewBuffer(append([]byte(nil), trimmed...))
	}
	return n, nil
}

func (b *boundedBuffer) String() string {
	return b.buf.String()
}
