package services

import "testing"

func TestScrapeWidthHeight(t *testing.T) {
	cases := []struct {
		text       string
		wantWidth  int
		wantHeight int
		wantOK     bool
	}{
		{`"width": 1280, "height": 720`, 1280, 720, true},
		{`width=1920 height=1080`, 1920, 1080, true},
		{`garbage with no dimensions`, 0, 0, false},
		{``, 0, 0, false},
	}

	for _, c := range cases {
		w, h, ok := scrapeWidthHeight(c.text)
		if ok != c.wantOK {
			t.Errorf("scrapeWidthHeight(%q) ok = %v, want %v", c.text, ok, c.wantOK)
			continue
		}
		if ok && (w != c.wantWidth || h != c.wantHeight) {
			t.Errorf("scrapeWidthHeight(%q) = (%d, %d), want (%d, %d)", c.text, w, h, c.wantWidth, c.wantHeight)
		}
	}
}

func TestProbeFallsBackWhenBinaryMissing(t *testing.T) {
	p := NewProber("lyricburn-nonexistent-probe-binary")
	w, h, err := p.Probe(t.Context(), "irrelevant.mp4")
	if err != nil {
		t.Fatalf("Probe returned error instead of falling back: %v", err)
	}
	if w != fallbackPlayResX || h != fallbackPlayResY {
		t.Errorf("Probe fallback = (%d, %d), want (%d, %d)", w, h, fallbackPlayResX, fallbackPlayResY)
	}
}
