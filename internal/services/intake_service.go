package services

import (
	"context"
	"errors"
	"fmt"

	"tidewater/harbormaster/internal/auth"
	"tidewater/harbormaster/internal/constants"
	"tidewater/harbormaster/internal/db/repositories"
	"tidewater/harbormaster/internal/logging"
	"tidewater/harbormaster/internal/matching"
	"tidewater/harbormaster/internal/models/dtos"
	gormModels "tidewater/harbormaster/internal/models/gorm"
)

var (
	// ErrShipNotInFeed means the accept target is not in the latest
	// snapshot; the review surface is stale.
	ErrShipNotInFeed = errors.New("ship not present in latest feed snapshot")
	// ErrVisitExists means the ship already has an active visit, so the
	// record is not pdf-only anymore.
	ErrVisitExists = errors.New("active visit already exists for ship")
)

// IntakeService turns a pdf-only reconciliation row into internal records.
// This is the explicit, user-triggered counterpart of the read-only
// reconciliation view: a ship row and a Due visit are created on accept.
type IntakeService struct {
	feedRepo  *repositories.FeedSnapshotRepo
	shipRepo  *repositories.ShipRepo
	visitRepo *repositories.VisitRepo
	reconSvc  *ReconciliationService
}

// NewIntakeService creates a new intake service
func NewIntakeService(
	feedRepo *repositories.FeedSnapshotRepo,
	shipRepo *repositories.ShipRepo,
	visitRepo *repositories.VisitRepo,
	reconSvc *ReconciliationService,
) *IntakeService {
	return &IntakeService{
		feedRepo:  feedRepo,
		shipRepo:  shipRepo,
		visitRepo: visitRepo,
		reconSvc:  reconSvc,
	}
}

// AcceptShip adopts a feed-only ship into the system: finds or creates the
// Ship record and opens a Due visit sourced from the feed row.
func (s *IntakeService) AcceptShip(ctx context.Context, shipName string, actor auth.Actor) (*dtos.AcceptShipResult, error) {
	feedShip, err := s.feedRepo.FindInLatestByName(ctx, shipName)
	if err != nil {
		return nil, fmt.Errorf("failed to look up feed ship: %w", err)
	}
	if feedShip == nil {
		return nil, ErrShipNotInFeed
	}

	existing, err := s.visitRepo.FindByShipNameActive(ctx, feedShip.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing visits: %w", err)
	}
	if len(existing) > 0 {
		return nil, ErrVisitExists
	}

	ship, err := s.shipRepo.FindByName(ctx, feedShip.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up ship: %w", err)
	}

	result := &dtos.AcceptShipResult{}
	if ship == nil {
		ship = &gormModels.Ship{
			Name:      feedShip.Name,
			UpdatedBy: actor.String(),
		}
		if feedShip.Tonnage != nil {
			ship.Tonnage = *feedShip.Tonnage
		}
		if err := s.shipRepo.Create(ctx, ship); err != nil {
			return nil, fmt.Errorf("failed to create ship: %w", err)
		}
		result.ShipCreated = true
	}
	result.ShipID = ship.ID

	visit := &gormModels.Visit{
		ShipID:    ship.ID,
		ShipName:  ship.Name,
		Tonnage:   ship.Tonnage,
		Status:    constants.VisitStatusDue,
		Source:    constants.SourcePDFFeed,
		UpdatedBy: actor.String(),
	}
	if feedShip.ETA != nil {
		visit.ETA = matching.ParseFlexibleTime(*feedShip.ETA)
	}
	if feedShip.Port != "" {
		port := feedShip.Port
		visit.Berth = &port
	}
	if err := s.visitRepo.Create(ctx, visit); err != nil {
		return nil, fmt.Errorf("failed to create visit: %w", err)
	}
	result.VisitID = visit.ID

	// The accepted ship is no longer pdf-only; drop the cached view.
	s.reconSvc.InvalidateView()

	logging.Info("Accepted feed ship into system",
		"ship", ship.Name,
		"ship_created", result.ShipCreated,
		"visit_id", visit.ID,
		"actor", actor.String(),
	)
	return result, nil
}
