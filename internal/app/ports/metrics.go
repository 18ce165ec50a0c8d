package ports

import "github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"

type EngineMetrics interface {
	RecordEngagement(topology game.Topology)
	RecordResolution(topology game.Topology, walkover bool)
	RecordDeath()
	RecordCommitFailure()
	RecordReconcileRepair()
	RecordAllianceFormed()
	RecordAllianceBroken()
	RecordIgnore()
}
