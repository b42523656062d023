// Package audio plays alarm sounds through the system mixer. WAV files
// are decoded here; playback loops until stopped, the way an alarm is
// expected to behave.
package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/groupalarm/alarmd/pkg/logger"
)

// ErrNotWAV is returned in strict mode for files that are not 16-bit PCM
// WAV. The tolerant player falls back to raw PCM instead.
var ErrNotWAV = errors.New("audio: not a 16-bit PCM WAV file")

// Raw-PCM fallback format, used when a file cannot be parsed as WAV.
const (
	rawSampleRate = 44100
	rawChannels   = 2
)

// The mixer context is process-global and initialized once, with the
// format of the first sound played. oto does not support re-creating it.
var (
	globalCtx     *oto.Context
	globalCtxOnce sync.Once
	globalCtxErr  error
	globalFormat  wavFormat
)

type wavFormat struct {
	SampleRate int
	Channels   int
}

func initContext(format wavFormat, l logger.Logger) error {
	globalCtxOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   format.SampleRate,
			ChannelCount: format.Channels,
			Format:       oto.FormatSignedInt16LE,
		}
		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			globalCtxErr = fmt.Errorf("initialize audio context: %w", err)
			return
		}
		// Wait for the hardware device before the first write.
		<-ready
		globalCtx = ctx
		globalFormat = format
		l.Info("audio context ready: %d Hz, %d channels", format.SampleRate, format.Channels)
	})
	if globalCtxErr != nil {
		return globalCtxErr
	}
	if format != globalFormat {
		l.Warning("audio: %d Hz/%d ch requested but context is %d Hz/%d ch, playing as-is",
			format.SampleRate, format.Channels, globalFormat.SampleRate, globalFormat.Channels)
	}
	return nil
}

// Player opens sound files and starts looping playback. In strict mode
// only valid 16-bit PCM WAV files play; the tolerant mode additionally
// accepts anything else as raw PCM, so a sound of last resort still
// makes noise even when its header is mangled.
type Player struct {
	strict bool
	log    logger.Logger
}

// NewPlayer returns a strict WAV player.
func NewPlayer(l logger.Logger) *Player {
	return &Player{strict: true, log: l}
}

// NewRawPlayer returns the tolerant fallback player.
func NewRawPlayer(l logger.Logger) *Player {
	return &Player{strict: false, log: l}
}

// Play opens ref and starts looping it until Stop is called on the
// returned Playback.
func (p *Player) Play(ref string) (*Playback, error) {
	data, err := os.ReadFile(ref)
	if err != nil {
		return nil, fmt.Errorf("read sound %q: %w", ref, err)
	}

	format, pcm, err := parseWAV(data)
	if err != nil {
		if p.strict {
			return nil, fmt.Errorf("parse sound %q: %w", ref, err)
		}
		p.log.Warning("audio: %q is not WAV (%v), playing as raw PCM", ref, err)
		format = wavFormat{SampleRate: rawSampleRate, Channels: rawChannels}
		pcm = data
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("parse sound %q: empty audio data", ref)
	}

	if err := initContext(format, p.log); err != nil {
		return nil, err
	}

	pb := &Playback{stop: make(chan struct{}), log: p.log}
	go pb.loop(pcm)
	return pb, nil
}

// Playback is a single looping sound. Stop is safe to call more than
// once and from any goroutine.
type Playback struct {
	mu      sync.Mutex
	cur     *oto.Player
	stop    chan struct{}
	stopped bool
	log     logger.Logger
}

func (pb *Playback) loop(pcm []byte) {
	for {
		player := globalCtx.NewPlayer(bytes.NewReader(pcm))
		pb.mu.Lock()
		if pb.stopped {
			pb.mu.Unlock()
			player.Close()
			return
		}
		pb.cur = player
		pb.mu.Unlock()

		player.Play()
		for player.IsPlaying() {
			select {
			case <-pb.stop:
				player.Pause()
				player.Close()
				return
			case <-time.After(10 * time.Millisecond):
			}
		}
		if err := player.Close(); err != nil {
			pb.log.Warning("audio: close player: %v", err)
		}

		select {
		case <-pb.stop:
			return
		default:
		}
	}
}

// Stop ends playback.
func (pb *Playback) Stop() {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	if pb.stopped {
		return
	}
	pb.stopped = true
	close(pb.stop)
	if pb.cur != nil {
		pb.cur.Pause()
	}
}

// parseWAV validates a RIFF/WAVE container and returns the sample format
// and the PCM payload of the data chunk. Only uncompressed 16-bit PCM is
// accepted.
func parseWAV(data []byte) (wavFormat, []byte, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return wavFormat{}, nil, ErrNotWAV
	}
	r := bytes.NewReader(data[12:])

	var format wavFormat
	var haveFmt bool
	for {
		var hdr [4]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return wavFormat{}, nil, ErrNotWAV
			}
			return wavFormat{}, nil, err
		}
		var size uint32
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return wavFormat{}, nil, ErrNotWAV
		}

		switch string(hdr[:]) {
		case "fmt ":
			if size < 16 {
				return wavFormat{}, nil, ErrNotWAV
			}
			var f struct {
				AudioFormat   uint16
				NumChannels   uint16
				SampleRate    uint32
				ByteRate      uint32
				BlockAlign    uint16
				BitsPerSample uint16
			}
			if err := binary.Read(r, binary.LittleEndian, &f); err != nil {
				return wavFormat{}, nil, ErrNotWAV
			}
			if f.AudioFormat != 1 || f.BitsPerSample != 16 || f.NumChannels == 0 {
				return wavFormat{}, nil, ErrNotWAV
			}
			format = wavFormat{SampleRate: int(f.SampleRate), Channels: int(f.NumChannels)}
			haveFmt = true
			// Skip any format extension, plus the pad byte RIFF adds
			// after odd-sized chunks.
			if skip := int64(size-16) + int64(size%2); skip > 0 {
				if _, err := r.Seek(skip, io.SeekCurrent); err != nil {
					return wavFormat{}, nil, ErrNotWAV
				}
			}
		case "data":
			if !haveFmt {
				return wavFormat{}, nil, ErrNotWAV
			}
			pcm := make([]byte, size)
			if _, err := io.ReadFull(r, pcm); err != nil {
				return wavFormat{}, nil, ErrNotWAV
			}
			return format, pcm, nil
		default:
			if _, err := r.Seek(int64(size)+int64(size%2), io.SeekCurrent); err != nil {
				return wavFormat{}, nil, ErrNotWAV
			}
		}
	}
}
