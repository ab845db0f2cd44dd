package fanout

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"tidewater/harbormaster/internal/common"
	"tidewater/harbormaster/internal/constants"
	"tidewater/harbormaster/internal/db/repositories"
	"tidewater/harbormaster/internal/logging"
	gormModels "tidewater/harbormaster/internal/models/gorm"

	"golang.org/x/sync/errgroup"
)

const (
	// BatchSize stays one below the store's 500-operation transactional
	// limit.
	BatchSize = 499

	// DependencyWindow bounds how far back historical visits and trips
	// are still republished to.
	DependencyWindow = 60 * 24 * time.Hour
)

// Propagator republishes ship master-data changes (name, tonnage) onto
// the dependent visit and trip records. The write payload is a pure
// function of the new ship state, so reprocessing the same change event
// converges instead of diverging.
type Propagator struct {
	visitRepo *repositories.VisitRepo
	tripRepo  *repositories.TripRepo
	pub       common.ChangePublisher
}

// NewPropagator creates a new fan-out propagator
func NewPropagator(
	visitRepo *repositories.VisitRepo,
	tripRepo *repositories.TripRepo,
	pub common.ChangePublisher,
) *Propagator {
	return &Propagator{
		visitRepo: visitRepo,
		tripRepo:  tripRepo,
		pub:       pub,
	}
}

// HandleShipChange processes one ship change event. Returns how many
// dependent records were updated.
func (p *Propagator) HandleShipChange(ctx context.Context, ev *common.ChangeEvent) (int, error) {
	if ev.Kind != common.ChangeUpdated {
		return 0, nil
	}

	var before, after gormModels.Ship
	if err := json.Unmarshal(ev.Before, &before); err != nil {
		return 0, fmt.Errorf("failed to decode ship before-state: %w", err)
	}
	if err := json.Unmarshal(ev.After, &after); err != nil {
		return 0, fmt.Errorf("failed to decode ship after-state: %w", err)
	}

	nameChanged := before.Name != after.Name
	tonnageChanged := before.Tonnage != after.Tonnage

	// Skip all downstream work when the edit touched neither field.
	if !nameChanged && !tonnageChanged {
		return 0, nil
	}

	logging.Info("Fanning out ship change",
		"ship_id", after.ID,
		"name_changed", nameChanged,
		"tonnage_changed", tonnageChanged,
	)

	visits, err := p.dependentVisits(ctx, after.ID)
	if err != nil {
		return 0, err
	}
	trips, err := p.tripRepo.FindByShipBoardingSince(ctx, after.ID, time.Now().UTC().Add(-DependencyWindow))
	if err != nil {
		return 0, fmt.Errorf("failed to fetch dependent trips: %w", err)
	}

	visitPayload := map[string]interface{}{
		"updated_by": constants.WriterShipFanout,
	}
	tripPayload := map[string]interface{}{
		"updated_by": constants.WriterShipFanout,
	}
	if nameChanged {
		visitPayload["ship_name"] = after.Name
		visitPayload["ship_name_lower"] = strings.ToLower(after.Name)
		tripPayload["ship_name"] = after.Name
	}
	if tonnageChanged {
		visitPayload["tonnage"] = after.Tonnage
		tripPayload["tonnage"] = after.Tonnage
	}

	// Commit the capped batches concurrently; the invocation waits for
	// every batch before finishing.
	g, gctx := errgroup.WithContext(ctx)

	for _, chunk := range Chunk(visits, BatchSize) {
		chunk := chunk
		g.Go(func() error {
			ids := make([]string, len(chunk))
			for i := range chunk {
				ids[i] = chunk[i].ID
			}
			if err := p.visitRepo.BulkUpdateFields(gctx, ids, visitPayload); err != nil {
				return fmt.Errorf("visit batch failed: %w", err)
			}
			p.publishVisitEvents(gctx, chunk, &after, nameChanged, tonnageChanged)
			return nil
		})
	}

	for _, chunk := range Chunk(trips, BatchSize) {
		chunk := chunk
		g.Go(func() error {
			ids := make([]string, len(chunk))
			for i := range chunk {
				ids[i] = chunk[i].ID
			}
			if err := p.tripRepo.BulkUpdateFields(gctx, ids, tripPayload); err != nil {
				return fmt.Errorf("trip batch failed: %w", err)
			}
			p.publishTripEvents(gctx, chunk, &after, nameChanged, tonnageChanged)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}

	total := len(visits) + len(trips)
	logging.Info("Fan-out complete",
		"ship_id", after.ID,
		"visits", len(visits),
		"trips", len(trips),
	)
	return total, nil
}

// dependentVisits unions the two selection clauses: active visits of any
// age, and visits with an ETA inside the dependency window regardless of
// status. A visit can satisfy both, so results are deduplicated by id.
func (p *Propagator) dependentVisits(ctx context.Context, shipID string) ([]gormModels.Visit, error) {
	active, err := p.visitRepo.FindActiveByShip(ctx, shipID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active visits: %w", err)
	}
	now := time.Now().UTC()
	recent, err := p.visitRepo.FindByShipETAWindow(ctx, shipID, now.Add(-DependencyWindow), now)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent visits: %w", err)
	}

	seen := make(map[string]bool, len(active)+len(recent))
	var out []gormModels.Visit
	for _, v := range append(active, recent...) {
		if seen[v.ID] {
			continue
		}
		seen[v.ID] = true
		out = append(out, v)
	}
	return out, nil
}

// publishVisitEvents feeds the audit logger the before/after pairs for a
// committed batch. Publish failure is logged, never fatal: observability
// must not undo a correct write.
func (p *Propagator) publishVisitEvents(ctx context.Context, chunk []gormModels.Visit, ship *gormModels.Ship, nameChanged, tonnageChanged bool) {
	if p.pub == nil {
		return
	}

	evs := make([]*common.ChangeEvent, 0, len(chunk))
	for i := range chunk {
		beforeDoc := chunk[i]
		afterDoc := chunk[i]
		if nameChanged {
			afterDoc.ShipName = ship.Name
			afterDoc.ShipNameLower = strings.ToLower(ship.Name)
		}
		if tonnageChanged {
			afterDoc.Tonnage = ship.Tonnage
		}
		afterDoc.UpdatedBy = constants.WriterShipFanout

		evs = append(evs, &common.ChangeEvent{
			Collection: constants.CollectionVisits,
			Kind:       common.ChangeUpdated,
			DocID:      chunk[i].ID,
			Before:     mustMarshal(&beforeDoc),
			After:      mustMarshal(&afterDoc),
			OccurredAt: time.Now().UTC(),
		})
	}

	if err := p.pub.PublishChangeBatch(ctx, evs); err != nil {
		logging.Warn("Failed to publish visit fan-out events", "error", err.Error())
	}
}

func (p *Propagator) publishTripEvents(ctx context.Context, chunk []gormModels.Trip, ship *gormModels.Ship, nameChanged, tonnageChanged bool) {
	if p.pub == nil {
		return
	}

	evs := make([]*common.ChangeEvent, 0, len(chunk))
	for i := range chunk {
		beforeDoc := chunk[i]
		afterDoc := chunk[i]
		if nameChanged {
			afterDoc.ShipName = ship.Name
		}
		if tonnageChanged {
			afterDoc.Tonnage = ship.Tonnage
		}
		afterDoc.UpdatedBy = constants.WriterShipFanout

		evs = append(evs, &common.ChangeEvent{
			Collection: constants.CollectionTrips,
			Kind:       common.ChangeUpdated,
			DocID:      chunk[i].ID,
			Before:     mustMarshal(&beforeDoc),
			After:      mustMarshal(&afterDoc),
			OccurredAt: time.Now().UTC(),
		})
	}

	if err := p.pub.PublishChangeBatch(ctx, evs); err != nil {
		logging.Warn("Failed to publish trip fan-out events", "error", err.Error())
	}
}

func mustMarshal(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
