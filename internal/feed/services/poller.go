package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go-campwatch/internal/activity/models"
	"go-campwatch/internal/feed/dto"
)

// State is the Poller's current operating state.
type State int32

const (
	StateStopped State = iota
	StateRunning
	StateThrottled
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	case StateThrottled:
		return "throttled"
	default:
		return "unknown"
	}
}

// Metrics tracks poller activity counters, exposed over the status route.
type Metrics struct {
	TotalPolls    atomic.Int64
	NullResponses atomic.Int64
	EventsFound   atomic.Int64
	HTTPErrors    atomic.Int64
	ParseErrors   atomic.Int64
	RateLimitHits atomic.Int64
	LastEventID   atomic.Int64
}

// Poller long-polls the upstream killmail feed and hands each decoded event
// to the configured sink. It paces itself with a RateLimiter and backs off
// exponentially on server-side rate limiting. Transport errors and
// unexpected statuses wait a fixed 5 seconds before the next poll.
type Poller struct {
	httpClient *http.Client
	sink       func(models.Event)
	rateLimit  *RateLimiter

	endpoint      string
	queueID       string
	ttwSeconds    int
	nullThreshold int
	backoffCeiling time.Duration

	mu         sync.RWMutex
	state      atomic.Int32
	running    atomic.Bool
	lastPoll   time.Time
	nullStreak int
	startTime  time.Time

	metrics Metrics

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Config configures a Poller.
type Config struct {
	Endpoint       string
	QueueID        string
	PollTimeout    time.Duration
	NullThreshold  int
	BackoffCeiling time.Duration
}

// NewPoller builds a poller that forwards decoded events to sink.
func NewPoller(cfg Config, sink func(models.Event)) *Poller {
	if cfg.QueueID == "" {
		cfg.QueueID = fmt.Sprintf("campwatch-%d", time.Now().UnixNano())
	}
	if cfg.NullThreshold <= 0 {
		cfg.NullThreshold = 5
	}
	ttw := int(cfg.PollTimeout.Seconds())
	if ttw <= 0 {
		ttw = 10
	}

	p := &Poller{
		httpClient: &http.Client{
			Timeout: cfg.PollTimeout + 10*time.Second,
		},
		sink:           sink,
		rateLimit:      NewRateLimiter(500*time.Millisecond, 5*time.Second, 4),
		endpoint:       cfg.Endpoint,
		queueID:        cfg.QueueID,
		ttwSeconds:     ttw,
		nullThreshold:  cfg.NullThreshold,
		backoffCeiling: cfg.BackoffCeiling,
	}
	p.state.Store(int32(StateStopped))
	return p
}

// Start begins the polling loop in a background goroutine.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running.Load() {
		return fmt.Errorf("poller already running")
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.nullStreak = 0
	p.startTime = time.Now()

	p.wg.Add(1)
	go p.loop()

	p.running.Store(true)
	p.state.Store(int32(StateRunning))
	slog.Info("feed poller started", "queue_id", p.queueID, "endpoint", p.endpoint)
	return nil
}

// Stop cancels the polling loop and waits for it to drain.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running.Load() {
		p.mu.Unlock()
		return
	}
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		slog.Info("feed poller stopped")
	case <-time.After(15 * time.Second):
		slog.Warn("feed poller stop timed out")
	}

	p.running.Store(false)
	p.state.Store(int32(StateStopped))
}

func (p *Poller) loop() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		default:
			p.poll()
		}
	}
}

func (p *Poller) poll() {
	if err := p.rateLimit.Acquire(); err != nil {
		time.Sleep(time.Second)
		return
	}
	defer p.rateLimit.Release()

	url := fmt.Sprintf("%s?queueID=%s&ttw=%d", p.endpoint, p.queueID, p.ttwSeconds)

	req, err := http.NewRequestWithContext(p.ctx, http.MethodGet, url, nil)
	if err != nil {
		p.metrics.HTTPErrors.Add(1)
		time.Sleep(5 * time.Second)
		return
	}
	req.Header.Set("Accept", "application/json")

	p.metrics.TotalPolls.Add(1)
	p.mu.Lock()
	p.lastPoll = time.Now()
	p.mu.Unlock()

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if p.ctx.Err() != nil {
			return
		}
		p.metrics.HTTPErrors.Add(1)
		slog.Warn("feed poll failed", "error", err)
		time.Sleep(5 * time.Second)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		p.metrics.RateLimitHits.Add(1)
		p.rateLimit.IncrementBackoff()
		p.state.Store(int32(StateThrottled))
		backoff := p.rateLimit.BackoffDuration()
		if p.backoffCeiling > 0 && backoff > p.backoffCeiling {
			backoff = p.backoffCeiling
		}
		slog.Warn("feed rate limited, backing off", "backoff", backoff)
		time.Sleep(backoff)
		p.state.Store(int32(StateRunning))
		return
	}

	if resp.StatusCode != http.StatusOK {
		p.metrics.HTTPErrors.Add(1)
		slog.Error("unexpected feed status", "status", resp.StatusCode)
		time.Sleep(5 * time.Second)
		return
	}

	var parsed dto.RedisQResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		p.metrics.ParseErrors.Add(1)
		slog.Error("failed to decode feed response", "error", err)
		return
	}

	p.handleResponse(&parsed)
}

func (p *Poller) handleResponse(resp *dto.RedisQResponse) {
	if resp.Package == nil {
		p.metrics.NullResponses.Add(1)
		p.mu.Lock()
		p.nullStreak++
		p.mu.Unlock()
		return
	}

	p.mu.Lock()
	p.nullStreak = 0
	p.mu.Unlock()

	ev, err := toEvent(resp.Package)
	if err != nil {
		p.metrics.ParseErrors.Add(1)
		slog.Warn("skipping malformed killmail", "kill_id", resp.Package.KillID, "error", err)
		return
	}

	p.metrics.EventsFound.Add(1)
	p.metrics.LastEventID.Store(ev.EventID)
	p.sink(ev)
}

// toEvent converts the upstream wire package into the activity engine's
// immutable Event record. A malformed package — missing killmail_time, a
// non-positive kill or system id — is rejected per the "drop the event,
// log once with the offending id" error policy; the caller never crashes
// on it.
func toEvent(pkg *dto.RedisQPackage) (models.Event, error) {
	if pkg.KillID <= 0 {
		return models.Event{}, fmt.Errorf("missing or invalid killID")
	}
	km := pkg.Killmail
	if km.SolarSystemID <= 0 {
		return models.Event{}, fmt.Errorf("kill %d: missing solar_system_id", pkg.KillID)
	}
	if km.KillmailTime == "" {
		return models.Event{}, fmt.Errorf("kill %d: missing killmail_time", pkg.KillID)
	}
	timestamp, err := time.Parse(time.RFC3339, km.KillmailTime)
	if err != nil {
		return models.Event{}, fmt.Errorf("kill %d: invalid killmail_time %q: %w", pkg.KillID, km.KillmailTime, err)
	}

	victim := models.Participant{
		PilotID:       km.Victim.CharacterID,
		CorporationID: km.Victim.CorporationID,
		AllianceID:    km.Victim.AllianceID,
		ShipTypeID:    km.Victim.ShipTypeID,
	}

	attackers := make([]models.Attacker, 0, len(km.Attackers))
	for _, a := range km.Attackers {
		attackers = append(attackers, models.Attacker{
			PilotID:       a.CharacterID,
			CorporationID: a.CorporationID,
			AllianceID:    a.AllianceID,
			ShipTypeID:    a.ShipTypeID,
			WeaponTypeID:  a.WeaponTypeID,
			FinalBlow:     a.FinalBlow,
		})
	}

	return models.Event{
		EventID:    pkg.KillID,
		Timestamp:  timestamp,
		SystemID:   km.SolarSystemID,
		Victim:     victim,
		Attackers:  attackers,
		TotalValue: pkg.ZKB.TotalValue,
		Labels:     pkg.ZKB.Labels,
		Awox:       pkg.ZKB.Awox,
	}, nil
}

// Status reports the poller's current state for the status route.
func (p *Poller) Status() dto.ServiceStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var uptime time.Duration
	if !p.startTime.IsZero() {
		uptime = time.Since(p.startTime)
	}

	return dto.ServiceStatus{
		State:         State(p.state.Load()).String(),
		QueueID:       p.queueID,
		TotalPolls:    p.metrics.TotalPolls.Load(),
		NullResponses: p.metrics.NullResponses.Load(),
		EventsFound:   p.metrics.EventsFound.Load(),
		HTTPErrors:    p.metrics.HTTPErrors.Load(),
		ParseErrors:   p.metrics.ParseErrors.Load(),
		RateLimitHits: p.metrics.RateLimitHits.Load(),
		CurrentTTW:    p.ttwSeconds,
		NullStreak:    p.nullStreak,
		LastEventID:   p.metrics.LastEventID.Load(),
		UptimeSeconds: uptime.Seconds(),
	}
}
