package out

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	mixerout "soundblanket/internal/modules/mixer/port/out"
	apperrors "soundblanket/internal/platform/errors"
)

const (
	// quickFailure is how long a player must run before a failing exit is
	// treated as transient rather than as a file it cannot play.
	quickFailure = time.Second
	// restartDelay separates restarts after a failure or a very short run.
	restartDelay = 250 * time.Millisecond
)

// playerCommand is an external program able to play one file to completion.
type playerCommand struct {
	name string
	path string
	args func(file string, volume float64) []string

	// formats lists the extensions the player decodes; nil means any.
	formats []string
}

func (p playerCommand) command(ctx context.Context, file string, volume float64) *exec.Cmd {
	return exec.CommandContext(ctx, p.path, p.args(file, volume)...) //nolint:gosec // path comes from LookPath
}

func (p playerCommand) supports(file string) bool {
	if p.formats == nil {
		return true
	}
	return slices.Contains(p.formats, strings.ToLower(filepath.Ext(file)))
}

// detectPlayers returns every installed player for goos in preference order.
func detectPlayers(goos string, lookPath func(string) (string, error)) []playerCommand {
	var found []playerCommand
	for _, candidate := range playerCandidates(goos) {
		if path, err := lookPath(candidate.name); err == nil {
			candidate.path = path
			found = append(found, candidate)
		}
	}
	return found
}

func playerCandidates(goos string) []playerCommand {
	switch goos {
	case "darwin":
		return []playerCommand{{
			name: "afplay",
			args: func(file string, volume float64) []string {
				return []string{"-v", strconv.FormatFloat(volume, 'f', 2, 64), file}
			},
		}}
	case "linux", "freebsd", "openbsd", "netbsd":
		return []playerCommand{
			{
				name: "ffplay",
				args: func(file string, volume float64) []string {
					return []string{"-nodisp", "-autoexit", "-loglevel", "quiet", "-volume", strconv.Itoa(int(volume * 100)), file}
				},
			},
			{
				name: "paplay",
				args: func(file string, volume float64) []string {
					return []string{"--volume=" + strconv.Itoa(int(volume*65536)), file}
				},
				formats: []string{".wav", ".ogg"},
			},
			{
				name: "aplay",
				args: func(file string, _ float64) []string {
					return []string{"-q", file}
				},
				formats: []string{".wav"},
			},
		}
	case "windows":
		return []playerCommand{{
			name: "powershell.exe",
			args: func(file string, _ float64) []string {
				return []string{"-c", fmt.Sprintf("(New-Object System.Media.SoundPlayer '%s').PlaySync()", file)}
			},
			formats: []string{".wav"},
		}}
	}
	return nil
}

// SystemBackendFactory plays sounds through an OS audio command, restarting
// the command for as long as the channel loops.
type SystemBackendFactory struct {
	players []playerCommand
	log     hclog.Logger
}

func NewSystemBackendFactory(log hclog.Logger) *SystemBackendFactory {
	players := detectPlayers(runtime.GOOS, exec.LookPath)
	names := make([]string, 0, len(players))
	for _, p := range players {
		names = append(names, p.name)
	}
	log.Debug("system audio players detected", "players", strings.Join(names, ","), "platform", runtime.GOOS)
	return &SystemBackendFactory{players: players, log: log}
}

// Available reports whether any player is installed.
func (f *SystemBackendFactory) Available() bool {
	return len(f.players) > 0
}

func (f *SystemBackendFactory) Open(source string) (mixerout.Backend, error) {
	if !f.Available() {
		return nil, fmt.Errorf("%w: no audio player found for %s", apperrors.ErrBackendUnavailable, runtime.GOOS)
	}
	player, ok := f.playerFor(source)
	if !ok {
		return nil, fmt.Errorf("%w: no installed player decodes %s files", apperrors.ErrBackendUnavailable, filepath.Ext(source))
	}
	if _, err := os.Stat(source); err != nil {
		return nil, fmt.Errorf("open sound: %w", err)
	}
	return &systemBackend{
		player:       player,
		source:       source,
		volume:       1,
		quickFailure: quickFailure,
		restartDelay: restartDelay,
		log:          f.log.With("source", source, "player", player.name),
	}, nil
}

func (f *SystemBackendFactory) playerFor(source string) (playerCommand, bool) {
	for _, p := range f.players {
		if p.supports(source) {
			return p, true
		}
	}
	return playerCommand{}, false
}

type systemBackend struct {
	player       playerCommand
	source       string
	quickFailure time.Duration
	restartDelay time.Duration
	log          hclog.Logger

	mu       sync.Mutex
	volume   float64
	loop     bool
	cancel   context.CancelFunc
	done     chan struct{}
	failure  error
	released bool
}

// Play restarts the player from the top of the file. It reports the error of
// a player that failed right after its last start.
func (b *systemBackend) Play() error {
	b.mu.Lock()
	if b.released {
		b.mu.Unlock()
		return errReleased
	}
	b.mu.Unlock()
	b.halt()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failure != nil {
		return b.failure
	}
	ctx, cancel := context.WithCancel(context.Background())
	cmd := b.player.command(ctx, b.source, b.volume)
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("start %s: %w", b.player.name, err)
	}
	done := make(chan struct{})
	b.cancel = cancel
	b.done = done
	go b.run(ctx, cmd, done)
	return nil
}

func (b *systemBackend) run(ctx context.Context, cmd *exec.Cmd, done chan struct{}) {
	defer close(done)
	for {
		started := time.Now()
		err := cmd.Wait()
		if ctx.Err() != nil {
			return
		}
		ran := time.Since(started)
		if err != nil {
			if ran < b.quickFailure {
				b.log.Warn("audio player failed", "error", err)
				b.mu.Lock()
				b.failure = fmt.Errorf("%s exited after %s: %w", b.player.name, ran.Round(time.Millisecond), err)
				b.mu.Unlock()
				return
			}
			b.log.Debug("audio player exited", "error", err)
		}
		b.mu.Lock()
		loop, volume := b.loop, b.volume
		b.mu.Unlock()
		if !loop {
			return
		}
		if err != nil || ran < b.quickFailure {
			select {
			case <-ctx.Done():
				return
			case <-time.After(b.restartDelay):
			}
		}
		cmd = b.player.command(ctx, b.source, volume)
		if err := cmd.Start(); err != nil {
			b.log.Warn("audio player restart failed", "error", err)
			b.mu.Lock()
			b.failure = fmt.Errorf("restart %s: %w", b.player.name, err)
			b.mu.Unlock()
			return
		}
	}
}

// lastFailure is the error that ended the player loop, if any.
func (b *systemBackend) lastFailure() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failure
}

func (b *systemBackend) Stop() error {
	b.mu.Lock()
	released := b.released
	b.mu.Unlock()
	if released {
		return errReleased
	}
	b.halt()
	return nil
}

// halt cancels the running player, if any, and waits for it to exit.
func (b *systemBackend) halt() {
	b.mu.Lock()
	cancel, done := b.cancel, b.done
	b.cancel, b.done = nil, nil
	b.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// SetVolume takes effect on the next start of the player.
func (b *systemBackend) SetVolume(v float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.volume = v
	return nil
}

func (b *systemBackend) SetLoop(loop bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loop = loop
	return nil
}

func (b *systemBackend) Release() error {
	b.halt()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.released = true
	return nil
}
