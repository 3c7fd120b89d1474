package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/exec"
	"regexp"
	"strconv"
	"time"
)

// fallbackPlayRes is returned when the probe binary cannot be run or
// its output cannot be parsed at all. 1080p is the most common source
// resolution for user uploads and keeps PlayRes sane even in the
// worst case.
const (
	fallbackPlayResX = 1920
	fallbackPlayResY = 1080

	probeTimeout = 30 * time.Second
)

// Prober queries a source video's native width/height via an external
// media probe (ffprobe). The result doubles as the ASS PlayResX/PlayResY
// and as the scale basis the preview uses — the identity between the
// two is the contract that keeps preview and burn pixel-aligned.
type Prober struct {
	probeBin string
}

func NewProber(probeBin string) *Prober {
	if probeBin == "" {
		probeBin = "ffprobe"
	}
	return &Prober{probeBin: probeBin}
}

type probeStream struct {
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

type probeResult struct {
	Streams []probeStream `json:"streams"`
}

// Probe returns the (width, height) of the first video stream in
// videoPath. On failure it falls back, in order: (1) scrape any
// textual width/height out of whatever the probe printed, (2) return
// the hardcoded 1920x1080 default.
func (p *Prober) Probe(ctx context.Context, videoPath string) (width, height int, err error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-select_streams", "v:0",
		"-show_entries", "stream=codec_type,width,height",
		videoPath,
	}

	cmd := exec.CommandContext(ctx, p.probeBin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if runErr := cmd.Run(); runErr != nil {
		log.Printf("[Probe] ffprobe failed for %s: %v (stderr: %s)", videoPath, runErr, truncate(stderr.String(), 500))
		if w, h, ok := scrapeWidthHeight(stdout.String() + stderr.String()); ok {
			return w, h, nil
		}
		log.Printf("[Probe] falling back to %dx%d for %s", fallbackPlayResX, fallbackPlayResY, videoPath)
		return fallbackPlayResX, fallbackPlayResY, nil
	}

	var result probeResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		log.Printf("[Probe] failed to parse ffprobe JSON for %s: %v", videoPath, err)
		if w, h, ok := scrapeWidthHeight(stdout.String()); ok {
			return w, h, nil
		}
		return fallbackPlayResX, fallbackPlayResY, nil
	}

	for _, s := range result.Streams {
		if s.CodecType == "video" && s.Width > 0 && s.Height > 0 {
			return s.Width, s.Height, nil
		}
	}

	log.Printf("[Probe] no video stream with dimensions found for %s, falling back", videoPath)
	return fallbackPlayResX, fallbackPlayResY, nil
}

var widthHeightRe = regexp.MustCompile(`"?width"?\s*[:=]\s*(\d+).*?"?height"?\s*[:=]\s*(\d+)`)

// scrapeWidthHeight is the last-resort textual fallback: pull any
// width/height pair out of whatever the probe printed, even if it
// isn't valid JSON (e.g. a truncated or malformed stream).
func scrapeWidthHeight(text string) (width, height int, ok bool) {
	m := widthHeightRe.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, false
	}
	w, err1 := strconv.Atoi(m[1])
	h, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + fmt.Sprintf("... (%d more bytes)", len(s)-maxLen)
}
