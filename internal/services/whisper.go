package services

import (
	"bytes"
	"context"
	"sort"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bobarin/lyricburn/internal/apierr"
	"github.com/bobarin/lyricburn/internal/models"
)

// pauseGapS is the minimum silence between two consecutive words that
// forces a line break even mid-sentence. Whisper's word timestamps are
// noisy at the millisecond level, so this is deliberately generous.
const pauseGapS = 0.6

var sentenceEnders = map[byte]bool{'.': true, '!': true, '?': true}

// Transcriber turns raw vocal audio into timed lyric segments via an
// external speech-to-text model. It is a collaborator of the Segment
// Store: callers feed RawSegments into UpsertFromTranscription rather
// than trusting them as final.
type Transcriber struct {
	client *openai.Client
}

func NewTranscriber(apiKey string) *Transcriber {
	return &Transcriber{client: openai.NewClient(apiKey)}
}

// Transcribe runs Whisper word-timestamp transcription on audio and
// groups the resulting words into lyric-line RawSegments, breaking on
// sentence punctuation or a pause of at least pauseGapS seconds.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, language string) ([]models.RawSegment, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:                  openai.Whisper1,
		Reader:                 bytes.NewReader(audio),
		FilePath:               "audio.mp3",
		Format:                 openai.AudioResponseFormatVerboseJSON,
		Language:               language,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{openai.TranscriptionTimestampGranularityWord},
	})
	if err != nil {
		return nil, apierr.Wrap(apierr.KindRenderFailed, "transcription request failed", err)
	}

	words := resp.Words
	sort.Slice(words, func(i, j int) bool { return words[i].Start < words[j].Start })

	return groupWords(words), nil
}

func groupWords(words []openai.Word) []models.RawSegment {
	var segments []models.RawSegment
	var line strings.Builder
	var lineStart, lineEnd float64
	open := false

	flush := func() {
		if open && line.Len() > 0 {
			segments = append(segments, models.RawSegment{
				StartS: lineStart,
				EndS:   lineEnd,
				Text:   line.String(),
			})
		}
		line.Reset()
		open = false
	}

	for _, w := range words {
		word := strings.TrimSpace(w.Word)
		if word == "" {
			continue
		}

		if open && w.Start-lineEnd >= pauseGapS {
			flush()
		}

		if !open {
			lineStart = w.Start
			open = true
		} else {
			line.WriteString(" ")
		}
		line.WriteString(word)
		lineEnd = w.End

		if endsSentence(word) {
			flush()
		}
	}
	flush()

	return segments
}

func endsSentence(word string) bool {
	if word == "" {
		return false
	}
	return sentenceEnders[word[len(word)-1]]
}
