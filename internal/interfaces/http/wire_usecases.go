package http

import (
	mmApp "github.com/harbinger-games/harbinger/internal/application/matchmaking"
	progressionUsecases "github.com/harbinger-games/harbinger/internal/application/progression/usecases"
)

type allUseCases struct {
	formationEngine *mmApp.FormationEngine
	matchmaker      *mmApp.Service
	repairOrphansUC *mmApp.RepairOrphansUseCase
	sweepBucketsUC  *mmApp.SweepBucketsUseCase
	reportMatchUC   *progressionUsecases.ReportMatchUseCase
}

func (c *Container) initUseCases() {
	repos := c.repos
	mm := c.cfg.Matchmaking

	var publisher mmApp.MatchEventPublisher = c.hub
	if c.matchEventBus != nil {
		publisher = c.matchEventBus
	}

	engine := mmApp.NewFormationEngine(
		repos.ticketRepo,
		repos.matchRepo,
		repos.txManager,
		publisher,
		c.log.Named("formation"),
	)

	c.ucs = &allUseCases{
		formationEngine: engine,
		matchmaker: mmApp.NewService(
			repos.ticketRepo,
			repos.matchRepo,
			engine,
			mm.DefaultPlayersPerMatch,
			c.log.Named("matchmaking"),
			mmApp.WithPartySizeBounds(mm.MinPlayersPerMatch, mm.MaxPlayersPerMatch),
		),
		repairOrphansUC: mmApp.NewRepairOrphansUseCase(repos.ticketRepo, mm.OrphanGrace(), c.log.Named("orphan-repair")),
		sweepBucketsUC:  mmApp.NewSweepBucketsUseCase(repos.ticketRepo, engine, c.log.Named("bucket-sweep")),
		reportMatchUC: progressionUsecases.NewReportMatchUseCase(
			repos.matchRepo,
			repos.progressionRepo,
			repos.txManager,
			progressionUsecases.ReportMatchConfig{
				XPPerLevel:     c.cfg.Progression.XPPerLevel,
				MaxXPPerReport: c.cfg.Progression.MaxXPPerReport,
			},
			c.log.Named("match-report"),
		),
	}
}
