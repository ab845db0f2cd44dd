package workers

import (
	"context"

	"tidewater/harbormaster/internal/audit"
	"tidewater/harbormaster/internal/bridge"
	"tidewater/harbormaster/internal/common"
	"tidewater/harbormaster/internal/constants"
	"tidewater/harbormaster/internal/fanout"
	"tidewater/harbormaster/internal/metrics"

	"time"
)

// Consumer group names. Distinct groups on the same stream each receive
// every event, so the audit group and the fan-out group both observe the
// full ship write history.
const (
	GroupChargeBridge = "charge-bridge"
	GroupShipFanout   = "ship-fanout"
	GroupAuditLog     = "audit-log"
)

type WorkersContainer struct {
	Workers []*ChangeFeedWorker
}

// InitWorkers wires the change streams to their consumers and starts them.
// Charges feed the bridge; ship writes feed the fan-out; ship, visit and
// trip writes all feed the audit logger.
func InitWorkers(
	queue *common.ChangeQueueService,
	chargeBridge *bridge.Bridge,
	propagator *fanout.Propagator,
	auditLogger *audit.Logger,
	metricsReg *metrics.MetricsRegistry,
) *WorkersContainer {
	bridgeHandler := func(ctx context.Context, ev *common.ChangeEvent) error {
		action, err := chargeBridge.HandleChargeChange(ctx, ev)
		if err != nil {
			return err
		}
		if metricsReg != nil {
			metricsReg.ChargesBridgedTotal.WithLabelValues(string(action)).Inc()
			if action == bridge.ActionCreated {
				metricsReg.TripsFabricatedTotal.Inc()
			}
		}
		return nil
	}

	fanoutHandler := func(ctx context.Context, ev *common.ChangeEvent) error {
		updated, err := propagator.HandleShipChange(ctx, ev)
		if err != nil {
			return err
		}
		if metricsReg != nil && updated > 0 {
			metricsReg.FanoutWritesTotal.Add(float64(updated))
		}
		return nil
	}

	auditHandler := func(ctx context.Context, ev *common.ChangeEvent) error {
		logged, err := auditLogger.HandleChange(ctx, ev)
		if err != nil {
			return err
		}
		if metricsReg != nil {
			if logged {
				metricsReg.AuditEntriesTotal.WithLabelValues(string(ev.Collection), string(ev.Kind)).Inc()
			} else if ev.Kind == common.ChangeUpdated {
				metricsReg.GhostSavesTotal.Inc()
			}
		}
		return nil
	}

	all := []*ChangeFeedWorker{
		NewChangeFeedWorker("bridge", queue,
			common.StreamFor(constants.CollectionCharges), GroupChargeBridge, bridgeHandler, metricsReg),
		NewChangeFeedWorker("fanout", queue,
			common.StreamFor(constants.CollectionShips), GroupShipFanout, fanoutHandler, metricsReg),
		NewChangeFeedWorker("audit-ships", queue,
			common.StreamFor(constants.CollectionShips), GroupAuditLog, auditHandler, metricsReg),
		NewChangeFeedWorker("audit-visits", queue,
			common.StreamFor(constants.CollectionVisits), GroupAuditLog, auditHandler, metricsReg),
		NewChangeFeedWorker("audit-trips", queue,
			common.StreamFor(constants.CollectionTrips), GroupAuditLog, auditHandler, metricsReg),
	}

	for _, w := range all {
		go w.Start(context.Background(), 2)
		go w.MonitorLag(context.Background(), 30*time.Second)
	}

	return &WorkersContainer{Workers: all}
}
