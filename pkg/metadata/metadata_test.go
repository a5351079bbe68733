package metadata

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestExtractFallsBackToFilename(t *testing.T) {
	// Not a real audio file, so tag parsing fails and the filename wins.
	r := bytes.NewReader([]byte("not audio"))
	info := Extract(r, "uploads/My_Favorite-Song.mp3")
	if info.Title != "My Favorite Song" {
		t.Fatalf("unexpected title: %q", info.Title)
	}
	if info.Artist != "" {
		t.Fatalf("expected empty artist, got %q", info.Artist)
	}
}

func TestExtractNilReader(t *testing.T) {
	info := Extract(nil, "track.flac")
	if info.Title != "track" {
		t.Fatalf("unexpected title: %q", info.Title)
	}
	if info.Duration != 0 {
		t.Fatalf("expected zero duration, got %d", info.Duration)
	}
}

func TestWavDuration(t *testing.T) {
	const byteRate = 176400 // 44.1kHz stereo 16-bit
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+3*byteRate))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	fmtChunk := make([]byte, 16)
	binary.LittleEndian.PutUint16(fmtChunk[0:2], 1) // PCM
	binary.LittleEndian.PutUint16(fmtChunk[2:4], 2)
	binary.LittleEndian.PutUint32(fmtChunk[4:8], 44100)
	binary.LittleEndian.PutUint32(fmtChunk[8:12], byteRate)
	binary.LittleEndian.PutUint16(fmtChunk[12:14], 4)
	binary.LittleEndian.PutUint16(fmtChunk[14:16], 16)
	buf.Write(fmtChunk)

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(3*byteRate))

	info := Extract(bytes.NewReader(buf.Bytes()), "clip.wav")
	if info.Duration != 3 {
		t.Fatalf("expected 3s duration, got %d", info.Duration)
	}
	if info.Title != "clip" {
		t.Fatalf("unexpected title: %q", info.Title)
	}
}

func TestFlacDuration(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("fLaC")
	buf.WriteByte(0x80) // last block, STREAMINFO
	buf.Write([]byte{0x00, 0x00, 34})

	info := make([]byte, 34)
	// 44.1kHz sample rate, 61 seconds worth of samples.
	const sampleRate = 44100
	const totalSamples = uint64(sampleRate * 61)
	info[10] = byte(sampleRate >> 12)
	info[11] = byte(sampleRate >> 4 & 0xFF)
	info[12] = byte(sampleRate&0x0F) << 4
	info[13] |= byte(totalSamples >> 32 & 0x0F)
	info[14] = byte(totalSamples >> 24)
	info[15] = byte(totalSamples >> 16)
	info[16] = byte(totalSamples >> 8 & 0xFF)
	info[17] = byte(totalSamples & 0xFF)
	buf.Write(info)

	got := Extract(bytes.NewReader(buf.Bytes()), "clip.flac")
	if got.Duration != 61 {
		t.Fatalf("expected 61s duration, got %d", got.Duration)
	}
}

func TestDurationUnknownFormat(t *testing.T) {
	info := Extract(bytes.NewReader([]byte("OggS garbage")), "clip.ogg")
	if info.Duration != 0 {
		t.Fatalf("expected zero duration for unsupported format, got %d", info.Duration)
	}
}
