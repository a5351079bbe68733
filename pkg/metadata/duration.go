package metadata

import (
	"encoding/binary"
	"io"
	"time"

	"github.com/tcolgate/mp3"
)

// readDuration estimates playing time in whole seconds for the formats whose
// containers expose it cheaply. Unknown formats report zero.
func readDuration(r io.ReadSeeker, ext string) int {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 0
	}
	switch ext {
	case ".mp3":
		return mp3Duration(r)
	case ".wav":
		return wavDuration(r)
	case ".flac":
		return flacDuration(r)
	}
	return 0
}

// mp3Duration walks every frame and sums their durations. MP3 carries no
// header-level total, so this reads the whole stream.
func mp3Duration(r io.Reader) int {
	dec := mp3.NewDecoder(r)
	var frame mp3.Frame
	skipped := 0
	var total time.Duration
	for {
		if err := dec.Decode(&frame, &skipped); err != nil {
			break
		}
		total += frame.Duration()
	}
	return int(total.Round(time.Second) / time.Second)
}

// wavDuration reads the RIFF chunk list: duration is the data chunk size over
// the byte rate from the fmt chunk.
func wavDuration(r io.ReadSeeker) int {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return 0
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return 0
	}
	var byteRate, dataSize uint32
	for {
		var header [8]byte
		if _, err := io.ReadFull(r, header[:]); err != nil {
			break
		}
		size := binary.LittleEndian.Uint32(header[4:8])
		switch string(header[0:4]) {
		case "fmt ":
			if size < 16 {
				return 0
			}
			var fmtChunk [16]byte
			if _, err := io.ReadFull(r, fmtChunk[:]); err != nil {
				return 0
			}
			byteRate = binary.LittleEndian.Uint32(fmtChunk[8:12])
			if size > 16 {
				if _, err := r.Seek(int64(size-16), io.SeekCurrent); err != nil {
					return 0
				}
			}
		case "data":
			dataSize = size
		default:
			if _, err := r.Seek(int64(size), io.SeekCurrent); err != nil {
				return 0
			}
		}
		if byteRate > 0 && dataSize > 0 {
			return int(float64(dataSize)/float64(byteRate) + 0.5)
		}
		if string(header[0:4]) == "data" {
			if _, err := r.Seek(int64(size), io.SeekCurrent); err != nil {
				return 0
			}
		}
	}
	return 0
}

// flacDuration reads the STREAMINFO block: total samples over sample rate.
func flacDuration(r io.Reader) int {
	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0
	}
	if string(header[0:4]) != "fLaC" {
		return 0
	}
	// First metadata block must be STREAMINFO (type 0), 34 bytes.
	if header[4]&0x7F != 0 {
		return 0
	}
	blockLen := uint32(header[5])<<16 | uint32(header[6])<<8 | uint32(header[7])
	if blockLen < 34 {
		return 0
	}
	var info [34]byte
	if _, err := io.ReadFull(r, info[:]); err != nil {
		return 0
	}
	sampleRate := uint32(info[10])<<12 | uint32(info[11])<<4 | uint32(info[12])>>4
	totalSamples := uint64(info[13]&0x0F)<<32 |
		uint64(info[14])<<24 | uint64(info[15])<<16 |
		uint64(info[16])<<8 | uint64(info[17])
	if sampleRate == 0 || totalSamples == 0 {
		return 0
	}
	return int(float64(totalSamples)/float64(sampleRate) + 0.5)
}
