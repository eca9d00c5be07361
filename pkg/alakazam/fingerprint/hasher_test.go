package fingerprint

import "testing"

func TestPackHashKnownPair(t *testing.T) {
	// Two mid-band peaks: bins 100 and 140, amplitudes 2.0 and 1.0.
	got := PackHash(3, 100, 2.0, 140, 1.0)
	want := uint64(3)<<58 | uint64(40)<<42 | uint64(200)<<34 | uint64(240)<<18

	if got != want {
		t.Errorf("PackHash = %#x, want %#x", got, want)
	}
}

func TestPackHashReservedBitsZero(t *testing.T) {
	cases := []struct {
		bandID     uint8
		binI, binJ int
		ampI, ampJ float64
	}{
		{1, 0, 1, 1.0, 1.0},
		{3, 100, 140, 2.0, 1.0},
		{6, 400, 465, 0.5, 3.0},
		{2, 7, 18, 1e6, 1e-6},
	}

	for _, c := range cases {
		h := PackHash(c.bandID, c.binI, c.ampI, c.binJ, c.ampJ)
		if h&0x3FFFF != 0 {
			t.Errorf("PackHash(%d,%d,%d) low 18 bits not zero: %#x", c.bandID, c.binI, c.binJ, h)
		}
		if band := h >> 58; band != uint64(c.bandID) {
			t.Errorf("band field = %d, want %d", band, c.bandID)
		}
	}
}

func TestPackHashFreqDiffSaturates(t *testing.T) {
	h := PackHash(1, 0, 1.0, 100000, 1.0)
	if diff := (h >> 42) & 0xFFFF; diff != 0xFFFF {
		t.Errorf("freq diff = %d, want saturated 0xFFFF", diff)
	}
}

func TestPackHashFreqSumWraps(t *testing.T) {
	h := PackHash(1, 40000, 1.0, 40000, 1.0)
	if sum := (h >> 18) & 0xFFFF; sum != 80000&0xFFFF {
		t.Errorf("freq sum = %d, want %d", sum, 80000&0xFFFF)
	}
}

func TestPackHashAmpRatioWraps(t *testing.T) {
	// floor(300/1 * 100) = 30000, which wraps to 30000 mod 256 = 48.
	h := PackHash(1, 0, 300.0, 10, 1.0)
	if ratio := (h >> 34) & 0xFF; ratio != 48 {
		t.Errorf("amp ratio = %d, want 48", ratio)
	}
}

func TestPackHashZeroDenominator(t *testing.T) {
	h := PackHash(1, 0, 1.0, 10, 0.0)
	if ratio := (h >> 34) & 0xFF; ratio != 0 {
		t.Errorf("amp ratio with zero denominator = %d, want 0", ratio)
	}
}

func TestHashPeaksPairCount(t *testing.T) {
	peaks := []Peak{
		{Bin: 30, Amplitude: 1.0, BandID: 3},
		{Bin: 40, Amplitude: 2.0, BandID: 3},
		{Bin: 50, Amplitude: 0.5, BandID: 3},
		{Bin: 60, Amplitude: 1.5, BandID: 3},
	}

	hashes := HashPeaks(peaks)
	if len(hashes) != 6 {
		t.Errorf("expected C(4,2)=6 hashes, got %d", len(hashes))
	}
}

func TestHashPeaksNoCrossBandPairs(t *testing.T) {
	peaks := []Peak{
		{Bin: 10, Amplitude: 1.0, BandID: 2},
		{Bin: 30, Amplitude: 1.0, BandID: 3},
	}

	if hashes := HashPeaks(peaks); len(hashes) != 0 {
		t.Errorf("peaks in different bands must not pair, got %d hashes", len(hashes))
	}
}

func TestHashPeaksAscendingBinOrder(t *testing.T) {
	// Peaks arrive in amplitude order; pairing must sort them by bin first,
	// so the first emitted pair is (30, 40) regardless of input order.
	peaks := []Peak{
		{Bin: 50, Amplitude: 3.0, BandID: 3},
		{Bin: 30, Amplitude: 2.0, BandID: 3},
		{Bin: 40, Amplitude: 1.0, BandID: 3},
	}

	hashes := HashPeaks(peaks)
	if len(hashes) != 3 {
		t.Fatalf("expected 3 hashes, got %d", len(hashes))
	}

	want := PackHash(3, 30, 2.0, 40, 1.0)
	if hashes[0] != want {
		t.Errorf("first hash = %#x, want pair (30,40) = %#x", hashes[0], want)
	}
}

func TestHashPeaksBandOrderDeterministic(t *testing.T) {
	peaks := []Peak{
		{Bin: 100, Amplitude: 1.0, BandID: 4},
		{Bin: 110, Amplitude: 1.0, BandID: 4},
		{Bin: 30, Amplitude: 1.0, BandID: 3},
		{Bin: 40, Amplitude: 1.0, BandID: 3},
	}

	hashes := HashPeaks(peaks)
	if len(hashes) != 2 {
		t.Fatalf("expected 2 hashes, got %d", len(hashes))
	}
	if band := hashes[0] >> 58; band != 3 {
		t.Errorf("first hash from band %d, want band 3 first", band)
	}
	if band := hashes[1] >> 58; band != 4 {
		t.Errorf("second hash from band %d, want band 4", band)
	}
}
