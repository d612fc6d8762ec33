package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"soundblanket/internal/modules/mixer/domain"
	"soundblanket/internal/modules/mixer/service"
	"soundblanket/internal/platform/clock"
	apperrors "soundblanket/internal/platform/errors"
	"soundblanket/internal/platform/runloop"
)

func snapshots(mgr *service.MixManager) []domain.Snapshot {
	var out []domain.Snapshot
	for _, ch := range mgr.Channels() {
		out = append(out, ch.Snapshot())
	}
	return out
}

func TestSaveStopLoadRestoresPlayback(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newRig(newMemStore(), "rain", "wind")

	r.channel("rain").Play()
	r.sched.RunPending()
	if _, err := r.mgr.SaveMix(ctx, "Storm"); err != nil {
		t.Fatalf("save: %v", err)
	}
	r.channel("rain").Stop()

	if _, err := r.mgr.LoadMix(ctx, "Storm"); err != nil {
		t.Fatalf("load: %v", err)
	}
	r.sched.Advance(200 * time.Millisecond)

	rain, wind := r.channel("rain").State(), r.channel("wind").State()
	if !rain.Playing || rain.Volume != 0.7 {
		t.Fatalf("expected rain playing at 0.7, got %+v", rain)
	}
	if wind.Playing || wind.Volume != 0.7 {
		t.Fatalf("expected wind silent at 0.7, got %+v", wind)
	}
	if got := r.mgr.ActiveMix(); got != "Storm" {
		t.Fatalf("expected active mix Storm, got %q", got)
	}
}

func TestSaveThenLoadRoundTripsChannelState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newRig(newMemStore(), "rain", "wind", "fire")

	r.channel("rain").SetVolume(0.3)
	r.channel("rain").Play()
	r.channel("wind").SetVolume(0.9)
	r.sched.RunPending()
	want := snapshots(r.mgr)
	if _, err := r.mgr.SaveMix(ctx, "Evening"); err != nil {
		t.Fatalf("save: %v", err)
	}

	r.channel("rain").Stop()
	r.channel("rain").SetVolume(0.5)
	r.channel("wind").SetVolume(0.1)
	r.channel("wind").Play()
	r.channel("fire").Play()
	r.sched.RunPending()

	if _, err := r.mgr.LoadMix(ctx, "Evening"); err != nil {
		t.Fatalf("load: %v", err)
	}
	r.sched.Advance(time.Second)

	got := snapshots(r.mgr)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("channel %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestLoadMixSkipsUnknownSounds(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemStore()
	first := newRig(store, "rain")
	first.channel("rain").SetVolume(0.5)
	first.channel("rain").Play()
	first.sched.RunPending()
	if _, err := first.mgr.SaveMix(ctx, "Storm"); err != nil {
		t.Fatalf("save: %v", err)
	}

	second := newRig(store, "thunder")
	if _, err := second.mgr.LoadMix(ctx, "Storm"); err != nil {
		t.Fatalf("load: %v", err)
	}
	second.sched.Advance(time.Second)
	st := second.channel("thunder").State()
	if st.Playing || st.Volume != 0.7 || st.Status != domain.StatusUnloaded {
		t.Fatalf("expected thunder untouched, got %+v", st)
	}
}

func TestSuspendThenRestartRestoresSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemStore()
	first := newRig(store, "rain", "wind")
	first.channel("rain").Play()
	first.sched.RunPending()
	if err := first.mgr.AutoSaveSession(ctx); err != nil {
		t.Fatalf("autosave: %v", err)
	}
	first.mgr.ReleaseAll()

	names, err := first.mgr.ListMixes(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("reserved session leaked into listing: %v", names)
	}

	second := newRig(store, "rain", "wind")
	restored, err := second.mgr.RestoreLastSession(ctx)
	if err != nil || !restored {
		t.Fatalf("expected restore, got %v %v", restored, err)
	}
	second.sched.Advance(200 * time.Millisecond)
	if !second.channel("rain").State().Playing {
		t.Fatalf("expected rain playing after restore")
	}
	if second.channel("wind").State().Playing {
		t.Fatalf("expected wind silent after restore")
	}
	if got := second.mgr.ActiveMix(); got != "" {
		t.Fatalf("restoring the session must not set an active mix, got %q", got)
	}
}

func TestRestoreOnFirstRunIsNoop(t *testing.T) {
	t.Parallel()
	r := newRig(newMemStore(), "rain")
	restored, err := r.mgr.RestoreLastSession(context.Background())
	if err != nil || restored {
		t.Fatalf("expected nothing restored, got %v %v", restored, err)
	}
	if st := r.channel("rain").State(); st.Status != domain.StatusUnloaded || st.Playing {
		t.Fatalf("unexpected channel change %+v", st)
	}
}

func TestSaveMixRejectsInvalidNames(t *testing.T) {
	t.Parallel()
	r := newRig(newMemStore(), "rain")
	for _, name := range []string{"", domain.LastSession} {
		if _, err := r.mgr.SaveMix(context.Background(), name); !errors.Is(err, apperrors.ErrInvalidName) {
			t.Fatalf("name %q: expected ErrInvalidName, got %v", name, err)
		}
	}
	if r.store.puts != 0 {
		t.Fatalf("invalid names must not reach the store")
	}
}

func TestSaveMixReportsStoreFailure(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	store.failPut = errors.New("disk full")
	r := newRig(store, "rain")
	if _, err := r.mgr.SaveMix(context.Background(), "Storm"); err == nil {
		t.Fatalf("expected store failure")
	}
	if got := r.mgr.ActiveMix(); got != "" {
		t.Fatalf("failed save must not set active mix, got %q", got)
	}
}

func TestMissingMixLeavesStateUnchanged(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newRig(newMemStore(), "rain", "wind")
	r.channel("rain").Play()
	r.sched.RunPending()
	if _, err := r.mgr.SaveMix(ctx, "Storm"); err != nil {
		t.Fatalf("save: %v", err)
	}
	before := snapshots(r.mgr)

	if _, err := r.mgr.LoadMix(ctx, "Nope"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on load, got %v", err)
	}
	if err := r.mgr.DeleteMix(ctx, "Nope"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on delete, got %v", err)
	}
	if _, err := r.mgr.GetMix(ctx, "Nope"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on get, got %v", err)
	}
	r.sched.Advance(time.Second)

	after := snapshots(r.mgr)
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("channel %d changed: %+v -> %+v", i, before[i], after[i])
		}
	}
	keys, _ := r.store.Keys(ctx)
	if len(keys) != 1 || keys[0] != "Storm" {
		t.Fatalf("store changed: %v", keys)
	}
	if r.mgr.ActiveMix() != "Storm" {
		t.Fatalf("active mix changed to %q", r.mgr.ActiveMix())
	}
}

func TestListMixesKeepsStoreOrderAndHidesReserved(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newRig(newMemStore(), "rain")
	for _, name := range []string{"Night", "Focus"} {
		if _, err := r.mgr.SaveMix(ctx, name); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
	}
	if err := r.mgr.AutoSaveSession(ctx); err != nil {
		t.Fatalf("autosave: %v", err)
	}
	if _, err := r.mgr.SaveMix(ctx, "Storm"); err != nil {
		t.Fatalf("save: %v", err)
	}

	names, err := r.mgr.ListMixes(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"Night", "Focus", "Storm"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
}

func TestDeleteMixClearsActiveAndAllowsReserved(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newRig(newMemStore(), "rain")
	if _, err := r.mgr.SaveMix(ctx, "Storm"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := r.mgr.AutoSaveSession(ctx); err != nil {
		t.Fatalf("autosave: %v", err)
	}
	if err := r.mgr.DeleteMix(ctx, "Storm"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := r.mgr.ActiveMix(); got != "" {
		t.Fatalf("expected active mix cleared, got %q", got)
	}
	if err := r.mgr.DeleteMix(ctx, domain.LastSession); err != nil {
		t.Fatalf("delete reserved: %v", err)
	}
	if ok, _ := r.store.Exists(ctx, domain.LastSession); ok {
		t.Fatalf("reserved mix still stored")
	}
}

func TestSaveMixOverwritesAndStampsTime(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newRig(newMemStore(), "rain")
	if _, err := r.mgr.SaveMix(ctx, "Storm"); err != nil {
		t.Fatalf("save: %v", err)
	}
	r.channel("rain").SetVolume(0.2)
	mix, err := r.mgr.SaveMix(ctx, "Storm")
	if err != nil {
		t.Fatalf("resave: %v", err)
	}
	if mix.SavedAt.IsZero() || len(mix.Snapshots) != 1 {
		t.Fatalf("unexpected mix %+v", mix)
	}
	stored, err := r.mgr.GetMix(ctx, "Storm")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Snapshots[0].Volume != 0.2 {
		t.Fatalf("expected overwrite, got %+v", stored.Snapshots[0])
	}
	if keys, _ := r.store.Keys(ctx); len(keys) != 1 {
		t.Fatalf("expected a single key, got %v", keys)
	}
}

func TestRegisterChannelRejectsCaseInsensitiveDuplicate(t *testing.T) {
	t.Parallel()
	sched, factory := runloop.NewManual(), newFakeFactory()
	mgr := service.NewMixManager(newMemStore(), clock.SystemClock{}, nil)
	if err := mgr.RegisterChannel(newChannel("Rain", factory, sched)); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := mgr.RegisterChannel(newChannel("rain", factory, sched))
	if !errors.Is(err, apperrors.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if ch, ok := mgr.Channel("RAIN"); !ok || ch.ID() != "Rain" {
		t.Fatalf("expected case-insensitive lookup to find Rain")
	}
	if len(mgr.Channels()) != 1 {
		t.Fatalf("duplicate must not be registered")
	}
}

func TestResumePlayingRestartsOnlyPlayingChannels(t *testing.T) {
	t.Parallel()
	r := newRig(newMemStore(), "rain", "wind")
	r.channel("rain").Play()
	r.channel("wind").Load()
	r.sched.RunPending()

	r.mgr.ResumePlaying()
	plays := map[string]int{}
	for _, b := range r.factory.opened {
		plays[b.source] = b.plays
	}
	if plays["rain.ogg"] != 2 || plays["wind.ogg"] != 0 {
		t.Fatalf("unexpected plays %v", plays)
	}
}

func TestSubscribeForwardsChannelChanges(t *testing.T) {
	t.Parallel()
	r := newRig(newMemStore(), "rain")
	var got []domain.ChannelState
	cancel := r.mgr.Subscribe(func(s domain.ChannelState) { got = append(got, s) })
	r.channel("rain").SetVolume(0.1)
	cancel()
	r.channel("rain").SetVolume(0.2)
	if len(got) != 1 || got[0].Volume != 0.1 {
		t.Fatalf("unexpected notifications %+v", got)
	}
}
