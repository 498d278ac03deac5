package services

import (
	"context"
	"log/slog"
	"sync"

	"go-campwatch/internal/activity/models"
	"go-campwatch/pkg/pinpoint"
	"go-campwatch/pkg/shipcatalog"
)

// sequenced pairs a decoded Event with its arrival order, so that
// concurrent enrichment work can be re-joined in the order events arrived
// even though worker completion order is not guaranteed.
type sequenced struct {
	seq uint64
	ev  models.Event
}

// Enricher runs incoming events through the pinpoint and ship-catalog
// lookups on a bounded worker pool (mirroring the character module's
// semaphore-gated batch workers), then re-sequences the results back into
// arrival order before handing them to the sink.
type Enricher struct {
	pinpoint    pinpoint.Client
	shipCatalog shipcatalog.Client
	sink        func(models.EnrichedEvent)
	workers     int

	intake chan sequenced
	wg     sync.WaitGroup

	reorderMu  sync.Mutex
	reorderBuf map[uint64]models.EnrichedEvent
	nextOut    uint64

	nextIn uint64
	inMu   sync.Mutex
}

// NewEnricher builds an enricher with the given worker-pool width.
func NewEnricher(pp pinpoint.Client, sc shipcatalog.Client, workers int, sink func(models.EnrichedEvent)) *Enricher {
	if workers <= 0 {
		workers = 1
	}
	return &Enricher{
		pinpoint:    pp,
		shipCatalog: sc,
		sink:        sink,
		workers:     workers,
		intake:      make(chan sequenced, workers*4),
		reorderBuf:  make(map[uint64]models.EnrichedEvent),
	}
}

// Start launches the worker pool. Call Submit to feed it events and Stop to
// drain and shut it down.
func (e *Enricher) Start(ctx context.Context) {
	for i := 0; i < e.workers; i++ {
		e.wg.Add(1)
		go e.worker(ctx)
	}
}

// Submit enqueues ev for enrichment, blocking if every worker is busy and
// the intake buffer is full. Each event gets an internal sequence number in
// call order so downstream ordering survives concurrent processing.
func (e *Enricher) Submit(ev models.Event) {
	e.inMu.Lock()
	seq := e.nextIn
	e.nextIn++
	e.inMu.Unlock()

	e.intake <- sequenced{seq: seq, ev: ev}
}

// Stop closes the intake queue and waits for every in-flight event to finish.
func (e *Enricher) Stop() {
	close(e.intake)
	e.wg.Wait()
}

func (e *Enricher) worker(ctx context.Context) {
	defer e.wg.Done()
	for item := range e.intake {
		enriched := e.enrich(ctx, item.ev)
		e.emitInOrder(item.seq, enriched)
	}
}

func (e *Enricher) enrich(ctx context.Context, ev models.Event) models.EnrichedEvent {
	enriched := models.EnrichedEvent{Event: ev}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		p, err := e.pinpoint.Locate(ctx, pinpoint.Request{SystemID: ev.SystemID, KillID: ev.EventID})
		if err != nil {
			slog.Warn("pinpoint lookup failed, degrading to unresolved location", "event_id", ev.EventID, "error", err)
			return
		}
		enriched.Pinpoint = p
	}()

	go func() {
		defer wg.Done()
		victimShip, err := e.shipCatalog.Resolve(ctx, ev.Victim.ShipTypeID)
		if err != nil {
			slog.Warn("ship catalog lookup failed for victim, degrading to other", "event_id", ev.EventID, "error", err)
			victimShip = models.ShipInfo{Category: models.CategoryOther, Name: "Unknown", Tier: "unknown"}
		}
		enriched.VictimShip = victimShip
	}()

	wg.Wait()

	enriched.AttackerShips = make([]models.ShipInfo, len(ev.Attackers))
	var attackerWG sync.WaitGroup
	attackerWG.Add(len(ev.Attackers))
	for i, a := range ev.Attackers {
		go func(i int, a models.Attacker) {
			defer attackerWG.Done()
			if a.ShipTypeID == nil {
				enriched.AttackerShips[i] = models.ShipInfo{Category: models.CategoryOther, Name: "Unknown", Tier: "unknown"}
				return
			}
			ship, err := e.shipCatalog.Resolve(ctx, *a.ShipTypeID)
			if err != nil {
				ship = models.ShipInfo{Category: models.CategoryOther, Name: "Unknown", Tier: "unknown"}
			}
			enriched.AttackerShips[i] = ship
		}(i, a)
	}
	attackerWG.Wait()

	return enriched
}

// emitInOrder buffers out-of-order completions and flushes every
// contiguous run starting at nextOut to the sink.
func (e *Enricher) emitInOrder(seq uint64, enriched models.EnrichedEvent) {
	e.reorderMu.Lock()
	defer e.reorderMu.Unlock()

	e.reorderBuf[seq] = enriched
	for {
		next, ok := e.reorderBuf[e.nextOut]
		if !ok {
			return
		}
		delete(e.reorderBuf, e.nextOut)
		e.nextOut++
		e.sink(next)
	}
}
