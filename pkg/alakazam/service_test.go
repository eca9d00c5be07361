package alakazam

import (
	"context"
	"io"
	"math"
	"math/rand"
	"testing"

	"github.com/arunnats/alakazam/pkg/alakazam/fingerprint"
	"github.com/arunnats/alakazam/pkg/alakazam/model"
	"github.com/arunnats/alakazam/pkg/alakazam/storage"
	"github.com/arunnats/alakazam/pkg/logger"
)

func newTestService(t *testing.T) Service {
	t.Helper()

	quiet := logger.New(logger.Config{Output: io.Discard, Colorize: false})
	svc, err := NewService(
		WithStore(storage.NewMemory()),
		WithLogger(quiet),
	)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return svc
}

// toneStack synthesises a deterministic mixture of mid-band sinusoids; a
// single pure tone yields too few peaks per band to pair.
func toneStack(seconds float64, sampleRate int) []float64 {
	n := int(seconds * float64(sampleRate))
	samples := make([]float64, n)
	for i := range samples {
		ts := float64(i) / float64(sampleRate)
		samples[i] = 0.5*math.Sin(2*math.Pi*1000*ts) +
			0.4*math.Sin(2*math.Pi*1800*ts) +
			0.3*math.Sin(2*math.Pi*2500*ts)
	}
	return samples
}

// noise returns a deterministic pseudo-random signal standing in for a real
// recording.
func noise(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = rng.Float64()*2 - 1
	}
	return samples
}

func TestToneIdentification(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tone := toneStack(3, 44100)
	if _, err := svc.StoreSong(ctx, model.SongInfo{Name: "tone", Artist: "T"}, tone, 44100); err != nil {
		t.Fatalf("StoreSong failed: %v", err)
	}

	matches, err := svc.SearchSong(ctx, tone, 44100)
	if err != nil {
		t.Fatalf("SearchSong failed: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected exactly 1 candidate, got %d", len(matches))
	}
	if matches[0].Song.Name != "tone" {
		t.Errorf("candidate name = %q, want %q", matches[0].Song.Name, "tone")
	}
	if matches[0].Confidence < 0.10 {
		t.Errorf("self-query confidence = %v, want >= 0.10", matches[0].Confidence)
	}
	if matches[0].Confidence > 1.0 {
		t.Errorf("confidence = %v, want <= 1.0", matches[0].Confidence)
	}
}

func TestSilenceQuery(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.StoreSong(ctx, model.SongInfo{Name: "song", Artist: "A"}, noise(10*44100, 1), 44100); err != nil {
		t.Fatalf("StoreSong failed: %v", err)
	}

	matches, err := svc.SearchSong(ctx, make([]float64, 3*44100), 44100)
	if err != nil {
		t.Fatalf("SearchSong failed: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("silence query returned %d candidates, want 0", len(matches))
	}
}

func TestEmptyQuery(t *testing.T) {
	svc := newTestService(t)

	matches, err := svc.SearchSong(context.Background(), nil, 44100)
	if err != nil {
		t.Fatalf("SearchSong failed: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("empty query returned %d candidates, want 0", len(matches))
	}
}

func TestSubclipQuery(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	full := noise(30*44100, 2)
	id, err := svc.StoreSong(ctx, model.SongInfo{Name: "long", Artist: "L"}, full, 44100)
	if err != nil {
		t.Fatalf("StoreSong failed: %v", err)
	}

	// A window-aligned 5-second subclip.
	offset := fingerprint.HopSize * 100
	clip := full[offset : offset+5*44100]

	matches, err := svc.SearchSong(ctx, clip, 44100)
	if err != nil {
		t.Fatalf("SearchSong failed: %v", err)
	}

	found := false
	for _, m := range matches {
		if m.SongID == id {
			found = true
		}
	}
	if !found {
		t.Errorf("subclip query did not return the enrolled recording")
	}
}

func TestDisjointNoiseQuery(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tone := toneStack(3, 44100)
	id, err := svc.StoreSong(ctx, model.SongInfo{Name: "tone", Artist: "T"}, tone, 44100)
	if err != nil {
		t.Fatalf("StoreSong failed: %v", err)
	}

	self, err := svc.SearchSong(ctx, tone, 44100)
	if err != nil || len(self) == 0 {
		t.Fatalf("self query failed: %v (%d matches)", err, len(self))
	}
	selfConfidence := self[0].Confidence

	matches, err := svc.SearchSong(ctx, noise(len(tone), 99), 44100)
	if err != nil {
		t.Fatalf("noise query failed: %v", err)
	}
	for _, m := range matches {
		if m.SongID == id && m.Confidence >= selfConfidence {
			t.Errorf("unrelated noise matched with confidence %v >= self-query %v", m.Confidence, selfConfidence)
		}
	}
}

func TestDoubleEnrollment(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	song := noise(10*44100, 3)
	info := model.SongInfo{Name: "twice", Artist: "D"}

	first, err := svc.StoreSong(ctx, info, song, 44100)
	if err != nil {
		t.Fatalf("first enrollment failed: %v", err)
	}
	second, err := svc.StoreSong(ctx, info, song, 44100)
	if err != nil {
		t.Fatalf("second enrollment failed: %v", err)
	}
	if first == second {
		t.Fatalf("both enrollments got id %d", first)
	}

	matches, err := svc.SearchSong(ctx, song, 44100)
	if err != nil {
		t.Fatalf("SearchSong failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected both enrollments as candidates, got %d", len(matches))
	}
	if matches[0].Confidence != matches[1].Confidence {
		t.Errorf("duplicate enrollments have different confidences: %v vs %v",
			matches[0].Confidence, matches[1].Confidence)
	}
	// Equal confidence breaks the tie by ascending id.
	if matches[0].SongID != first || matches[1].SongID != second {
		t.Errorf("tie not broken by id: got %d then %d", matches[0].SongID, matches[1].SongID)
	}
}

func TestSelfRanksAboveDisjoint(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	a := noise(10*44100, 10)
	b := noise(10*44100, 20)

	idA, err := svc.StoreSong(ctx, model.SongInfo{Name: "a", Artist: "A"}, a, 44100)
	if err != nil {
		t.Fatalf("StoreSong a failed: %v", err)
	}
	idB, err := svc.StoreSong(ctx, model.SongInfo{Name: "b", Artist: "B"}, b, 44100)
	if err != nil {
		t.Fatalf("StoreSong b failed: %v", err)
	}

	matches, err := svc.SearchSong(ctx, a, 44100)
	if err != nil {
		t.Fatalf("SearchSong failed: %v", err)
	}
	if len(matches) == 0 || matches[0].SongID != idA {
		t.Fatalf("expected %d ranked first, got %+v", idA, matches)
	}
	for _, m := range matches[1:] {
		if m.SongID == idB && m.Confidence >= matches[0].Confidence {
			t.Errorf("disjoint song ranked at %v, not below %v", m.Confidence, matches[0].Confidence)
		}
	}
}

func TestGenerateFingerprintPure(t *testing.T) {
	svc := newTestService(t)
	samples := toneStack(1, 44100)

	first := svc.GenerateFingerprint(samples, 44100)
	second := svc.GenerateFingerprint(samples, 44100)

	if len(first) == 0 {
		t.Fatal("expected hashes")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("fingerprint not pure at hash %d", i)
		}
	}
}

func TestRank(t *testing.T) {
	accs := map[uint64]*candidate{
		1: {raw: 80, matched: make([]uint64, 80)},  // base 0.8
		2: {raw: 100, matched: make([]uint64, 50)}, // base 0.5, ratio 2 -> 0.9 penalty
		3: {raw: 5, matched: make([]uint64, 5)},    // base 0.05 -> dropped
	}

	results := rank(accs, 100)

	if len(results) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(results))
	}
	if results[0].id != 1 || math.Abs(results[0].confidence-0.8) > 1e-12 {
		t.Errorf("first = %+v, want id 1 at 0.8", results[0])
	}
	if results[1].id != 2 || math.Abs(results[1].confidence-0.45) > 1e-12 {
		t.Errorf("second = %+v, want id 2 at 0.45", results[1])
	}
}

func TestRankHeavyPenaltyAndTies(t *testing.T) {
	accs := map[uint64]*candidate{
		7: {raw: 90, matched: make([]uint64, 30)}, // ratio 3 -> 0.8 penalty
		5: {raw: 30, matched: make([]uint64, 30)}, // ratio 1 -> no penalty
		9: {raw: 30, matched: make([]uint64, 30)}, // tie with 5 by confidence
	}

	results := rank(accs, 100)

	if len(results) != 3 {
		t.Fatalf("expected 3 survivors, got %d", len(results))
	}
	if results[0].id != 5 || results[1].id != 9 {
		t.Errorf("tied songs must rank by ascending id: %+v", results)
	}
	if math.Abs(results[2].confidence-0.24) > 1e-12 {
		t.Errorf("heavy penalty confidence = %v, want 0.24", results[2].confidence)
	}
}
