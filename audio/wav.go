// Package audio decodes the raw waveform bytes handed to the detection
// pipeline into a normalized mono clip.
package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

var (
	// ErrNotWAV is returned when the input is not a RIFF/WAVE container.
	ErrNotWAV = errors.New("audio: not a RIFF/WAVE container")
	// ErrUnsupportedFormat is returned for compressed or exotic encodings.
	ErrUnsupportedFormat = errors.New("audio: unsupported WAV encoding")
)

const (
	formatPCM       = 1
	formatIEEEFloat = 3
)

// Clip is a decoded mono waveform with samples normalized to [-1, 1].
type Clip struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the clip length in seconds.
func (c Clip) Duration() float64 {
	if c.SampleRate <= 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

type wavFormat struct {
	audioFormat   uint16
	numChannels   uint16
	sampleRate    uint32
	bitsPerSample uint16
}

// DecodeWAV parses an uncompressed WAV buffer into a mono Clip.
// 8/16/24/32-bit PCM and 32-bit float data are accepted; multi-channel
// audio is downmixed by averaging. Chunk order and unknown chunks follow
// the RIFF rules (even-byte alignment, skip what we don't know).
func DecodeWAV(data []byte) (Clip, error) {
	r := bytes.NewReader(data)

	var riffID [4]byte
	if err := binary.Read(r, binary.LittleEndian, &riffID); err != nil {
		return Clip{}, fmt.Errorf("%w: %v", ErrNotWAV, err)
	}
	if string(riffID[:]) != "RIFF" {
		return Clip{}, ErrNotWAV
	}
	var fileSize uint32
	if err := binary.Read(r, binary.LittleEndian, &fileSize); err != nil {
		return Clip{}, fmt.Errorf("audio: read RIFF size: %w", err)
	}
	var waveID [4]byte
	if err := binary.Read(r, binary.LittleEndian, &waveID); err != nil {
		return Clip{}, fmt.Errorf("audio: read WAVE ID: %w", err)
	}
	if string(waveID[:]) != "WAVE" {
		return Clip{}, ErrNotWAV
	}

	var (
		format    wavFormat
		fmtFound  bool
		dataFound bool
		samples   []float64
	)

	for {
		var chunkID [4]byte
		if err := binary.Read(r, binary.LittleEndian, &chunkID); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return Clip{}, fmt.Errorf("audio: read chunk ID: %w", err)
		}
		var chunkSize uint32
		if err := binary.Read(r, binary.LittleEndian, &chunkSize); err != nil {
			return Clip{}, fmt.Errorf("audio: read chunk size: %w", err)
		}

		switch string(chunkID[:]) {
		case "fmt ":
			if err := readFormatChunk(r, chunkSize, &format); err != nil {
				return Clip{}, err
			}
			fmtFound = true

		case "data":
			if !fmtFound {
				return Clip{}, errors.New("audio: data chunk before fmt chunk")
			}
			raw := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, raw); err != nil {
				return Clip{}, fmt.Errorf("audio: read data chunk: %w", err)
			}
			var err error
			samples, err = decodeSamples(raw, format)
			if err != nil {
				return Clip{}, err
			}
			dataFound = true

		default:
			skip := int64(chunkSize)
			if chunkSize%2 != 0 {
				skip++
			}
			if _, err := r.Seek(skip, io.SeekCurrent); err != nil {
				return Clip{}, fmt.Errorf("audio: skip chunk %q: %w", chunkID, err)
			}
		}

		if fmtFound && dataFound {
			break
		}
	}

	if !fmtFound {
		return Clip{}, errors.New("audio: missing fmt chunk")
	}
	if !dataFound {
		return Clip{}, errors.New("audio: missing data chunk")
	}

	return Clip{Samples: samples, SampleRate: int(format.sampleRate)}, nil
}

func readFormatChunk(r *bytes.Reader, size uint32, f *wavFormat) error {
	if size < 16 {
		return fmt.Errorf("audio: fmt chunk too small (%d bytes)", size)
	}
	var blockAlign uint16
	var byteRate uint32
	fields := []any{&f.audioFormat, &f.numChannels, &f.sampleRate, &byteRate, &blockAlign, &f.bitsPerSample}
	for _, field := range fields {
		if err := binary.Read(r, binary.LittleEndian, field); err != nil {
			return fmt.Errorf("audio: read fmt chunk: %w", err)
		}
	}
	// Skip any extension bytes (e.g. cbSize for non-PCM).
	if size > 16 {
		skip := int64(size - 16)
		if size%2 != 0 {
			skip++
		}
		if _, err := r.Seek(skip, io.SeekCurrent); err != nil {
			return fmt.Errorf("audio: skip fmt extension: %w", err)
		}
	}

	if f.audioFormat != formatPCM && f.audioFormat != formatIEEEFloat {
		return fmt.Errorf("%w: format tag %d", ErrUnsupportedFormat, f.audioFormat)
	}
	if f.numChannels == 0 {
		return fmt.Errorf("%w: zero channels", ErrUnsupportedFormat)
	}
	if f.sampleRate == 0 {
		return fmt.Errorf("%w: zero sample rate", ErrUnsupportedFormat)
	}
	return nil
}

func decodeSamples(raw []byte, f wavFormat) ([]float64, error) {
	bytesPerSample := int(f.bitsPerSample) / 8
	if bytesPerSample == 0 {
		return nil, fmt.Errorf("%w: %d bits per sample", ErrUnsupportedFormat, f.bitsPerSample)
	}
	channels := int(f.numChannels)
	frameSize := bytesPerSample * channels
	numFrames := len(raw) / frameSize

	out := make([]float64, numFrames)
	for i := 0; i < numFrames; i++ {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			offset := i*frameSize + ch*bytesPerSample
			v, err := decodeSample(raw[offset:offset+bytesPerSample], f)
			if err != nil {
				return nil, err
			}
			sum += v
		}
		out[i] = sum / float64(channels)
	}
	return out, nil
}

func decodeSample(b []byte, f wavFormat) (float64, error) {
	if f.audioFormat == formatIEEEFloat {
		if len(b) != 4 {
			return 0, fmt.Errorf("%w: %d-bit float", ErrUnsupportedFormat, f.bitsPerSample)
		}
		bits := binary.LittleEndian.Uint32(b)
		return float64(math.Float32frombits(bits)), nil
	}

	switch len(b) {
	case 1:
		// 8-bit PCM is unsigned.
		return (float64(b[0]) - 128.0) / 128.0, nil
	case 2:
		s := int16(binary.LittleEndian.Uint16(b))
		return float64(s) / 32768.0, nil
	case 3:
		s := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		if s&0x800000 != 0 {
			s |= ^0xffffff // sign extend
		}
		return float64(s) / 8388608.0, nil
	case 4:
		s := int32(binary.LittleEndian.Uint32(b))
		return float64(s) / 2147483648.0, nil
	default:
		return 0, fmt.Errorf("%w: %d bits per sample", ErrUnsupportedFormat, f.bitsPerSample)
	}
}

// EncodeWAV serializes a clip as 16-bit PCM mono WAV bytes. Used by the
// offline tooling and tests to round-trip synthetic clips.
func EncodeWAV(clip Clip) []byte {
	dataSize := len(clip.Samples) * 2
	buf := bytes.NewBuffer(make([]byte, 0, 44+dataSize))

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(formatPCM))
	binary.Write(buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(buf, binary.LittleEndian, uint32(clip.SampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(clip.SampleRate*2)) // byte rate
	binary.Write(buf, binary.LittleEndian, uint16(2))                 // block align
	binary.Write(buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(dataSize))
	for _, s := range clip.Samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		binary.Write(buf, binary.LittleEndian, int16(s*32767))
	}
	return buf.Bytes()
}
