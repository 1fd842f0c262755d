package capture

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/go-audio/wav"
)

func sine(n int) []int16 {
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16((i%100 - 50) * 300)
	}
	return samples
}

func TestEncodeWAVRoundTrip(t *testing.T) {
	// From just above the minimum take up to a multi-minute buffer.
	for _, n := range []int{8001, 48000, 16000 * 120} {
		payload, err := EncodeWAV(sine(n), 16000, 1)
		if err != nil {
			t.Fatalf("EncodeWAV(%d) failed: %v", n, err)
		}

		dec := wav.NewDecoder(bytes.NewReader(payload))
		buf, err := dec.FullPCMBuffer()
		if err != nil {
			t.Fatalf("decode %d samples: %v", n, err)
		}
		if len(buf.Data) != n {
			t.Fatalf("expected %d samples back, got %d", n, len(buf.Data))
		}
		if dec.SampleRate != 16000 || dec.BitDepth != 16 || dec.NumChans != 1 {
			t.Fatalf("unexpected format: rate=%d depth=%d chans=%d", dec.SampleRate, dec.BitDepth, dec.NumChans)
		}

		in := sine(n)
		for i, v := range buf.Data {
			if int16(v) != in[i] {
				t.Fatalf("sample %d mismatch: got %d want %d", i, v, in[i])
			}
		}
	}
}

func TestEncodeWAVHeaderSizes(t *testing.T) {
	const n = 16000
	payload, err := EncodeWAV(sine(n), 16000, 1)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	if string(payload[0:4]) != "RIFF" || string(payload[8:12]) != "WAVE" {
		t.Fatalf("not a RIFF/WAVE payload")
	}
	riffSize := binary.LittleEndian.Uint32(payload[4:8])
	if int(riffSize) != len(payload)-8 {
		t.Fatalf("RIFF size %d does not match payload length %d", riffSize, len(payload))
	}

	idx := bytes.Index(payload, []byte("data"))
	if idx < 0 {
		t.Fatalf("no data chunk")
	}
	dataSize := binary.LittleEndian.Uint32(payload[idx+4 : idx+8])
	if int(dataSize) != n*2 {
		t.Fatalf("data chunk size %d, want %d", dataSize, n*2)
	}
	if idx+8+int(dataSize) != len(payload) {
		t.Fatalf("declared data size %d does not end at payload end %d", dataSize, len(payload))
	}
}

func TestDuration(t *testing.T) {
	cases := []struct {
		samples int
		want    time.Duration
	}{
		{0, 0},
		{8000, 500 * time.Millisecond},
		{16000, time.Second},
		{3200, 200 * time.Millisecond},
	}
	for _, tc := range cases {
		if got := Duration(tc.samples, 16000); got != tc.want {
			t.Fatalf("Duration(%d) = %v, want %v", tc.samples, got, tc.want)
		}
	}
	if got := Duration(100, 0); got != 0 {
		t.Fatalf("Duration with zero rate = %v, want 0", got)
	}
}
