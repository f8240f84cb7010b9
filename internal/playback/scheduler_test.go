package playback

import (
	"testing"
	"time"
)

func TestNextNatural(t *testing.T) {
	tests := []struct {
		name    string
		current int
		total   int
		loop    bool
		want    int
		wantOK  bool
	}{
		{"middle of list", 0, 3, false, 1, true},
		{"last without loop", 2, 3, false, 0, false},
		{"last with loop", 2, 3, true, 0, true},
		{"single track without loop", 0, 1, false, 0, false},
		{"single track with loop", 0, 1, true, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NextNatural(tt.current, tt.total, tt.loop)
			if ok != tt.wantOK {
				t.Fatalf("NextNatural(%d, %d, %v) ok = %v, want %v", tt.current, tt.total, tt.loop, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("NextNatural(%d, %d, %v) = %d, want %d", tt.current, tt.total, tt.loop, got, tt.want)
			}
		})
	}
}

func TestApplyForcedSkip(t *testing.T) {
	tests := []struct {
		name    string
		current int
		total   int
		loop    bool
		dir     int
		want    int
		wantOK  bool
	}{
		{"forward in middle", 1, 3, false, +1, 2, true},
		{"forward at last without loop", 2, 3, false, +1, 2, false},
		{"forward at last with loop", 2, 3, true, +1, 0, true},
		{"backward in middle", 1, 3, false, -1, 0, true},
		{"backward at zero without loop", 0, 3, false, -1, 0, false},
		{"backward at zero with loop", 0, 3, true, -1, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ApplyForcedSkip(tt.current, tt.total, tt.loop, tt.dir)
			if ok != tt.wantOK {
				t.Fatalf("ApplyForcedSkip(%d, %d, %v, %+d) ok = %v, want %v",
					tt.current, tt.total, tt.loop, tt.dir, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ApplyForcedSkip(%d, %d, %v, %+d) = %d, want %d",
					tt.current, tt.total, tt.loop, tt.dir, got, tt.want)
			}
		})
	}
}

func TestApplyForcedSkipDeterministic(t *testing.T) {
	for i := 0; i < 5; i++ {
		got, ok := ApplyForcedSkip(1, 4, true, +1)
		if got != 2 || !ok {
			t.Fatalf("ApplyForcedSkip not deterministic: got (%d, %v)", got, ok)
		}
	}
}

func TestSkipLimiter(t *testing.T) {
	base := time.Unix(2000, 0)
	l := NewSkipLimiter(MinSkipInterval)

	if !l.Allow(base) {
		t.Fatal("first skip should always be allowed")
	}
	if l.Allow(base.Add(100 * time.Millisecond)) {
		t.Error("skip inside the window should be dropped")
	}
	// The dropped request must not have reset the window.
	if !l.Allow(base.Add(260 * time.Millisecond)) {
		t.Error("skip after the window should be allowed")
	}
}

func TestSkipLimiterBurstYieldsOne(t *testing.T) {
	base := time.Unix(3000, 0)
	l := NewSkipLimiter(MinSkipInterval)

	honored := 0
	for i := 0; i < 10; i++ {
		if l.Allow(base.Add(time.Duration(i) * 10 * time.Millisecond)) {
			honored++
		}
	}
	if honored != 1 {
		t.Errorf("burst of 10 skips honored %d times, want 1", honored)
	}
}
