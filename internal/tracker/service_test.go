package tracker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vikrant82/elnet-dashboard/internal/config"
	"github.com/vikrant82/elnet-dashboard/internal/models"
)

// fakeMeterClient returns queued readings in order, then repeats the last.
type fakeMeterClient struct {
	mu       sync.Mutex
	readings []*models.Reading
	err      error
	home     *models.HomeData
}

func (f *fakeMeterClient) FetchLive(_ context.Context) (*models.Reading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if len(f.readings) == 0 {
		return nil, errors.New("no readings queued")
	}
	r := f.readings[0]
	if len(f.readings) > 1 {
		f.readings = f.readings[1:]
	}
	return r, nil
}

func (f *fakeMeterClient) FetchHome(_ context.Context) (*models.HomeData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.home, nil
}

type capturingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (c *capturingNotifier) Name() string { return "capturing" }

func (c *capturingNotifier) Send(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, text)
	return nil
}

func (c *capturingNotifier) sent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.messages...)
}

func newTestService(t *testing.T, client MeterClient) (*Service, *capturingNotifier) {
	t.Helper()
	cfg := &config.Config{
		LowBalanceThreshold: 50,
		CurrencySymbol:      "₹",
		FetchInterval:       time.Second,
	}
	notifier := &capturingNotifier{}
	svc := NewService(cfg, client, newTestStore(t), notifier)
	return svc, notifier
}

func TestService_PollPersistsReading(t *testing.T) {
	base := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	client := &fakeMeterClient{readings: []*models.Reading{
		{Balance: 100, PresentLoad: 1.2, EB: 10, DG: 5, UpdatedOn: base},
	}}
	svc, notifier := newTestService(t, client)
	svc.now = func() time.Time { return base }

	svc.pollOnce()

	rec, err := svc.store.GetLastRecord()
	if err != nil {
		t.Fatalf("GetLastRecord() failed: %v", err)
	}
	if rec == nil || rec.Balance != 100 {
		t.Fatalf("persisted record = %+v, want balance 100", rec)
	}
	if got := notifier.sent(); len(got) != 0 {
		t.Errorf("bootstrap reading sent notifications: %v", got)
	}
}

func TestService_GeneratorTransitionNotifies(t *testing.T) {
	base := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	client := &fakeMeterClient{readings: []*models.Reading{
		{Balance: 100, PresentLoad: 1.2, EB: 10, DG: 5, UpdatedOn: base},
		{Balance: 95, PresentLoad: 1.2, EB: 10, DG: 8, UpdatedOn: base.Add(time.Minute)},
	}}
	svc, notifier := newTestService(t, client)
	tick := base
	svc.now = func() time.Time { return tick }

	svc.pollOnce()
	tick = base.Add(time.Minute)
	svc.pollOnce()

	got := notifier.sent()
	if len(got) != 1 {
		t.Fatalf("notifications = %v, want exactly one", got)
	}
	if !strings.Contains(got[0], "now on DG") {
		t.Errorf("notification = %q, want generator-on message", got[0])
	}
	if !svc.engine.state.OnGenerator() {
		t.Error("session state is not on generator after transition")
	}
}

func TestService_FetchErrorSkipsTick(t *testing.T) {
	client := &fakeMeterClient{err: errors.New("connection refused")}
	svc, notifier := newTestService(t, client)

	svc.pollOnce()

	rec, err := svc.store.GetLastRecord()
	if err != nil {
		t.Fatalf("GetLastRecord() failed: %v", err)
	}
	if rec != nil {
		t.Errorf("failed fetch persisted a record: %+v", rec)
	}
	if got := notifier.sent(); len(got) != 0 {
		t.Errorf("failed fetch sent notifications: %v", got)
	}
}

func TestService_StaleReadingRejected(t *testing.T) {
	base := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	client := &fakeMeterClient{readings: []*models.Reading{
		{Balance: 100, PresentLoad: 1.2, EB: 10, DG: 5, UpdatedOn: base.Add(-10 * time.Minute)},
	}}
	svc, _ := newTestService(t, client)
	svc.now = func() time.Time { return base }

	svc.pollOnce()

	rec, err := svc.store.GetLastRecord()
	if err != nil {
		t.Fatalf("GetLastRecord() failed: %v", err)
	}
	if rec != nil {
		t.Errorf("stale reading was persisted: %+v", rec)
	}
}

func TestService_DuplicateBalanceNotRepersisted(t *testing.T) {
	base := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	client := &fakeMeterClient{readings: []*models.Reading{
		{Balance: 100, PresentLoad: 1.2, EB: 10, DG: 5, UpdatedOn: base},
		{Balance: 100, PresentLoad: 1.3, EB: 10, DG: 5, UpdatedOn: base.Add(time.Minute)},
	}}
	svc, _ := newTestService(t, client)
	tick := base
	svc.now = func() time.Time { return tick }

	svc.pollOnce()
	tick = base.Add(time.Minute)
	svc.pollOnce()

	var count int
	if err := svc.store.QueryRow("SELECT COUNT(*) FROM power_usage").Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("persisted records = %d, want 1", count)
	}
}

func TestService_RechargeNotifies(t *testing.T) {
	base := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	client := &fakeMeterClient{readings: []*models.Reading{
		{Balance: 97, PresentLoad: 1.2, EB: 10, DG: 5, UpdatedOn: base},
		{Balance: 150, PresentLoad: 1.2, EB: 10, DG: 5, UpdatedOn: base.Add(time.Minute)},
	}}
	svc, notifier := newTestService(t, client)
	tick := base
	svc.now = func() time.Time { return tick }

	svc.pollOnce()
	tick = base.Add(time.Minute)
	svc.pollOnce()

	got := notifier.sent()
	if len(got) != 1 {
		t.Fatalf("notifications = %v, want exactly one", got)
	}
	if !strings.Contains(got[0], "recharged with ₹53.00") {
		t.Errorf("notification = %q, want recharge message", got[0])
	}
}

func TestNextSummaryDelay(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Duration
	}{
		{
			name: "Morning",
			now:  time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
			want: 13*time.Hour + 59*time.Minute,
		},
		{
			name: "JustBeforeFire",
			now:  time.Date(2025, 6, 15, 23, 58, 0, 0, time.UTC),
			want: time.Minute,
		},
		{
			name: "ExactlyAtFireRollsToTomorrow",
			now:  time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC),
			want: 24 * time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextSummaryDelay(tt.now); got != tt.want {
				t.Errorf("nextSummaryDelay(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestService_StartAndClose(t *testing.T) {
	base := time.Now()
	client := &fakeMeterClient{readings: []*models.Reading{
		{Balance: 100, PresentLoad: 1.2, EB: 10, DG: 5, UpdatedOn: base},
	}}
	svc, _ := newTestService(t, client)

	svc.Start()
	svc.Close()

	rec, err := svc.store.GetLastRecord()
	if err != nil {
		t.Fatalf("GetLastRecord() failed: %v", err)
	}
	if rec == nil {
		t.Error("initial poll did not persist a record")
	}
}
