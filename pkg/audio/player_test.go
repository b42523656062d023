package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// buildWAV assembles a minimal RIFF/WAVE file around the given PCM bytes.
func buildWAV(sampleRate int, channels int, bits uint16, pcm []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*channels*int(bits)/8))
	binary.Write(&buf, binary.LittleEndian, uint16(channels*int(bits)/8))
	binary.Write(&buf, binary.LittleEndian, bits)

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}

func TestParseWAV(t *testing.T) {
	pcm := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	data := buildWAV(44100, 2, 16, pcm)

	format, got, err := parseWAV(data)
	if err != nil {
		t.Fatal(err)
	}
	if format.SampleRate != 44100 || format.Channels != 2 {
		t.Errorf("format = %+v", format)
	}
	if !bytes.Equal(got, pcm) {
		t.Errorf("pcm = %v, want %v", got, pcm)
	}
}

func TestParseWAVSkipsUnknownChunks(t *testing.T) {
	pcm := []byte{9, 9, 9, 9}
	data := buildWAV(8000, 1, 16, pcm)

	// Splice a LIST chunk between fmt and data.
	var buf bytes.Buffer
	buf.Write(data[:36])
	buf.WriteString("LIST")
	binary.Write(&buf, binary.LittleEndian, uint32(4))
	buf.WriteString("INFO")
	buf.Write(data[36:])

	format, got, err := parseWAV(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if format.SampleRate != 8000 || format.Channels != 1 {
		t.Errorf("format = %+v", format)
	}
	if !bytes.Equal(got, pcm) {
		t.Errorf("pcm = %v", got)
	}
}

func TestParseWAVOddChunkPadding(t *testing.T) {
	pcm := []byte{1, 2, 3, 4}
	data := buildWAV(8000, 1, 16, pcm)

	// An odd-sized chunk is followed by one pad byte; the walk must skip
	// it to stay aligned on the data chunk header.
	var buf bytes.Buffer
	buf.Write(data[:36])
	buf.WriteString("LIST")
	binary.Write(&buf, binary.LittleEndian, uint32(5))
	buf.WriteString("INFOX")
	buf.WriteByte(0) // pad
	buf.Write(data[36:])

	format, got, err := parseWAV(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if format.SampleRate != 8000 || format.Channels != 1 {
		t.Errorf("format = %+v", format)
	}
	if !bytes.Equal(got, pcm) {
		t.Errorf("pcm = %v", got)
	}
}

func TestParseWAVRejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"garbage", []byte("this is definitely not audio data at all")},
		{"wrong magic", append([]byte("RIFX"), buildWAV(44100, 2, 16, []byte{0, 0})[4:]...)},
		{"8-bit samples", buildWAV(44100, 2, 8, []byte{0, 0})},
		{"truncated data chunk", buildWAV(44100, 2, 16, []byte{0, 0, 0, 0})[:46]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := parseWAV(tt.data); !errors.Is(err, ErrNotWAV) {
				t.Errorf("err = %v, want ErrNotWAV", err)
			}
		})
	}
}
