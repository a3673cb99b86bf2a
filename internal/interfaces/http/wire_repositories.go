package http

import (
	"github.com/harbinger-games/harbinger/internal/domain/matchmaking"
	"github.com/harbinger-games/harbinger/internal/domain/progression"
	"github.com/harbinger-games/harbinger/internal/infrastructure/repository"
	"github.com/harbinger-games/harbinger/internal/shared/db"
)

// repositories holds all repository instances used by the application.
type repositories struct {
	ticketRepo      matchmaking.TicketRepository
	matchRepo       matchmaking.MatchRepository
	progressionRepo progression.Repository
	txManager       *db.TransactionManager
}

func (c *Container) initRepositories() {
	c.repos = &repositories{
		ticketRepo:      repository.NewQueueTicketRepository(c.db),
		matchRepo:       repository.NewMatchRepository(c.db),
		progressionRepo: repository.NewProgressionRepository(c.db),
		txManager:       db.NewTransactionManager(c.db, c.cfg.Matchmaking.UseTransactions),
	}
}
