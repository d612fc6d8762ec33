package out

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
	hclog "github.com/hashicorp/go-hclog"

	mixerout "soundblanket/internal/modules/mixer/port/out"
	apperrors "soundblanket/internal/platform/errors"
)

// oto allows a single context per process.
var sharedDevice = &deviceCache[*oto.Context]{open: openOtoContext}

func sharedDeviceContext(sampleRate int) (*oto.Context, error) {
	return sharedDevice.get(sampleRate)
}

func openOtoContext(sampleRate int) (*oto.Context, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, err
	}
	<-ready
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ctx, nil
}

// deviceCache holds the first successfully opened device. Failed opens are
// not remembered, so a later caller tries again.
type deviceCache[C any] struct {
	open func(sampleRate int) (C, error)

	mu   sync.Mutex
	ctx  C
	rate int
	ok   bool
}

func (c *deviceCache[C]) get(sampleRate int) (C, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ok {
		if c.rate != sampleRate {
			var zero C
			return zero, fmt.Errorf("%w: device already opened at %d Hz", apperrors.ErrConfiguration, c.rate)
		}
		return c.ctx, nil
	}
	ctx, err := c.open(sampleRate)
	if err != nil {
		var zero C
		return zero, fmt.Errorf("%w: %v", apperrors.ErrBackendUnavailable, err)
	}
	c.ctx, c.rate, c.ok = ctx, sampleRate, true
	return ctx, nil
}

type DeviceBackendFactory struct {
	sampleRate int
	log        hclog.Logger
}

func NewDeviceBackendFactory(sampleRate int, log hclog.Logger) *DeviceBackendFactory {
	return &DeviceBackendFactory{sampleRate: sampleRate, log: log}
}

// Open decodes source and prepares a paused player for it. It runs off the
// loop thread, so device and decoder setup may block.
func (f *DeviceBackendFactory) Open(source string) (mixerout.Backend, error) {
	ctx, err := sharedDeviceContext(f.sampleRate)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open sound: %w", err)
	}
	stream, err := decode(f.sampleRate, source, file)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	loop := &loopStream{src: stream}
	player := ctx.NewPlayer(loop)
	f.log.Debug("device player ready", "source", source)
	return &deviceBackend{player: player, stream: loop, file: file}, nil
}

func decode(sampleRate int, source string, r io.Reader) (io.ReadSeeker, error) {
	var (
		stream io.ReadSeeker
		err    error
	)
	switch ext := strings.ToLower(filepath.Ext(source)); ext {
	case ".wav":
		stream, err = wav.DecodeWithSampleRate(sampleRate, r)
	case ".ogg":
		stream, err = vorbis.DecodeWithSampleRate(sampleRate, r)
	case ".mp3":
		stream, err = mp3.DecodeWithSampleRate(sampleRate, r)
	default:
		return nil, fmt.Errorf("%w: unsupported sound format %q", apperrors.ErrInvalidInput, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(source), err)
	}
	return stream, nil
}

// loopStream rewinds its source at EOF while looping is on.
type loopStream struct {
	src  io.ReadSeeker
	loop atomic.Bool
}

func (s *loopStream) Read(p []byte) (int, error) {
	n, err := s.src.Read(p)
	if err != io.EOF || !s.loop.Load() {
		return n, err
	}
	if _, serr := s.src.Seek(0, io.SeekStart); serr != nil {
		return n, serr
	}
	if n > 0 {
		return n, nil
	}
	return s.src.Read(p)
}

func (s *loopStream) Seek(offset int64, whence int) (int64, error) {
	return s.src.Seek(offset, whence)
}

type deviceBackend struct {
	mu     sync.Mutex
	player *oto.Player
	stream *loopStream
	file   io.Closer
}

func (b *deviceBackend) Play() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.player == nil {
		return errReleased
	}
	if b.player.IsPlaying() {
		b.player.Pause()
	}
	if _, err := b.player.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind: %w", err)
	}
	b.player.Play()
	return b.player.Err()
}

func (b *deviceBackend) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.player == nil {
		return errReleased
	}
	b.player.Pause()
	if _, err := b.player.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind: %w", err)
	}
	return nil
}

func (b *deviceBackend) SetVolume(v float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.player == nil {
		return errReleased
	}
	b.player.SetVolume(v)
	return nil
}

func (b *deviceBackend) SetLoop(loop bool) error {
	b.stream.loop.Store(loop)
	return nil
}

func (b *deviceBackend) Release() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.player == nil {
		return nil
	}
	err := b.player.Close()
	if cerr := b.file.Close(); err == nil {
		err = cerr
	}
	b.player = nil
	return err
}
