package main

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "0m00s"},
		{59*time.Second + 600*time.Millisecond, "1m00s"},
		{2*time.Minute + 3*time.Second, "2m03s"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1h02m03s"},
	}
	for _, c := range cases {
		if got := formatDuration(c.d); got != c.want {
			t.Errorf("formatDuration(%v) = %q, want %q", c.d, got, c.want)
		}
	}
}

func TestEvalLogTracksBest(t *testing.T) {
	var buf bytes.Buffer
	pv := NewParamVector()
	l := newEvalLog(&buf, pv)

	v1 := pv.DefaultVector()
	v2 := pv.DefaultVector()
	v2[0] = 7

	if n, err := l.record(-0.4, 0.4, v1); n != 1 || err != nil {
		t.Fatalf("record 1: %d, %v", n, err)
	}
	l.record(-0.7, 0.7, v2)
	l.record(-0.5, 0.5, v1)

	if l.count != 3 || l.bestQuality() != 0.7 || l.best[0] != 7 {
		t.Errorf("count %d best %v %v", l.count, l.bestQuality(), l.best)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 rows, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "eval,fitness,quality,self,") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "2,-0.700000,0.700000,7.000000") {
		t.Errorf("unexpected row %q", lines[2])
	}
}
