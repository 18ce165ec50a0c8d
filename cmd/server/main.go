package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cloudwego/hertz/pkg/app/server"

	httpadapter "github.com/MiddleEarthAI/mearth-backend-sub000/internal/adapter/http"
	ledgermock "github.com/MiddleEarthAI/mearth-backend-sub000/internal/adapter/ledger/mock"
	ledgerrpc "github.com/MiddleEarthAI/mearth-backend-sub000/internal/adapter/ledger/rpc"
	metricsinmem "github.com/MiddleEarthAI/mearth-backend-sub000/internal/adapter/metrics/inmemory"
	gormrepo "github.com/MiddleEarthAI/mearth-backend-sub000/internal/adapter/repo/gorm"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/alliance"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/chronicle"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/cooldown"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/engage"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/ports"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/resolve"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/status"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/sweep"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/battle"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/random"
)

type config struct {
	HTTPAddr      string `env:"MEARTH_HTTP_ADDR" envDefault:":8080"`
	DBDSN         string `env:"MEARTH_DB_DSN"`
	MigrationsDir string `env:"MEARTH_MIGRATIONS_DIR" envDefault:"./migrations"`

	LedgerMode       string        `env:"MEARTH_LEDGER_MODE" envDefault:"mock"`
	LedgerBaseURL    string        `env:"MEARTH_LEDGER_URL"`
	LedgerProgramTag string        `env:"MEARTH_LEDGER_PROGRAM_TAG"`
	LedgerTimeout    time.Duration `env:"MEARTH_LEDGER_TIMEOUT" envDefault:"10s"`

	BattleWait       time.Duration `env:"MEARTH_BATTLE_WAIT" envDefault:"30m"`
	BattleCooldown   time.Duration `env:"MEARTH_BATTLE_COOLDOWN" envDefault:"1h"`
	AllianceCooldown time.Duration `env:"MEARTH_ALLIANCE_COOLDOWN" envDefault:"4h"`
	IgnoreCooldown   time.Duration `env:"MEARTH_IGNORE_COOLDOWN" envDefault:"2h"`

	LossMin     int     `env:"MEARTH_LOSS_MIN" envDefault:"21"`
	LossMax     int     `env:"MEARTH_LOSS_MAX" envDefault:"50"`
	DeathChance float64 `env:"MEARTH_DEATH_CHANCE" envDefault:"0.10"`

	SweepInterval  time.Duration `env:"MEARTH_SWEEP_INTERVAL" envDefault:"1m"`
	SweepBatch     int           `env:"MEARTH_SWEEP_BATCH" envDefault:"16"`
	ReconcileGrace time.Duration `env:"MEARTH_RECONCILE_GRACE" envDefault:"1m"`
	RetryBase      time.Duration `env:"MEARTH_RETRY_BASE" envDefault:"30s"`
	RetryCap       time.Duration `env:"MEARTH_RETRY_CAP" envDefault:"15m"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("parse config: %v", err)
	}
	if cfg.DBDSN == "" {
		log.Fatal("MEARTH_DB_DSN is required")
	}

	db, err := gormrepo.OpenPostgres(cfg.DBDSN)
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}
	if err := gormrepo.ApplyMigrations(context.Background(), db, cfg.MigrationsDir); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	ledger, err := buildLedger(cfg)
	if err != nil {
		log.Fatalf("build ledger client: %v", err)
	}

	calc, err := battle.NewCalculator(cfg.LossMin, cfg.LossMax, cfg.DeathChance)
	if err != nil {
		log.Fatalf("build outcome calculator: %v", err)
	}

	games := gormrepo.NewGameRepo(db)
	agents := gormrepo.NewAgentRepo(db)
	alliances := gormrepo.NewAllianceRepo(db)
	cooldowns := gormrepo.NewCooldownRepo(db)
	battles := gormrepo.NewBattleRepo(db)
	commits := gormrepo.NewBattleCommitRepo(db)
	events := gormrepo.NewEventRepo(db)
	txManager := gormrepo.NewTxManager(db)

	gate := cooldown.Gate{Cooldowns: cooldowns, Durations: cooldownDurations(cfg)}
	kpiRecorder := metricsinmem.NewRecorder()

	resolver := resolve.UseCase{
		TxManager: txManager,
		Games:     games,
		Agents:    agents,
		Battles:   battles,
		Commits:   commits,
		Alliances: alliances,
		Events:    events,
		Ledger:    ledger,
		Gate:      gate,
		Metrics:   kpiRecorder,
		Calc:      calc,
		NewRand:   random.NewRand,
		RetryBase: cfg.RetryBase,
		RetryCap:  cfg.RetryCap,
	}

	h := httpadapter.Handler{
		FormUC: alliance.FormUseCase{
			TxManager: txManager,
			Games:     games,
			Agents:    agents,
			Alliances: alliances,
			Events:    events,
			Ledger:    ledger,
			Gate:      gate,
			Metrics:   kpiRecorder,
		},
		BreakUC: alliance.BreakUseCase{
			TxManager: txManager,
			Games:     games,
			Agents:    agents,
			Alliances: alliances,
			Events:    events,
			Ledger:    ledger,
			Gate:      gate,
			Metrics:   kpiRecorder,
		},
		EngageUC: engage.UseCase{
			TxManager: txManager,
			Agents:    agents,
			Battles:   battles,
			Events:    events,
			Gate:      gate,
			Metrics:   kpiRecorder,
			WaitFor:   cfg.BattleWait,
		},
		IgnoreUC: engage.IgnoreUseCase{
			TxManager: txManager,
			Agents:    agents,
			Events:    events,
			Gate:      gate,
			Metrics:   kpiRecorder,
		},
		StatusUC:    status.UseCase{Games: games, Agents: agents, Alliances: alliances, Battles: battles},
		ChronicleUC: chronicle.UseCase{Events: events},
		KPI:         kpiRecorder,
	}

	sweepCtx, stopSweep := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSweep()
	runner := sweep.Runner{
		Battles:  battles,
		Resolver: resolver,
		Interval: cfg.SweepInterval,
		Batch:    cfg.SweepBatch,
		Grace:    cfg.ReconcileGrace,
	}
	go runner.Run(sweepCtx)

	s := server.Default(server.WithHostPorts(cfg.HTTPAddr))
	h.RegisterRoutes(s)

	log.Printf("mearth engine listening on %s (ledger mode: %s)", cfg.HTTPAddr, cfg.LedgerMode)
	s.Spin()
}

func buildLedger(cfg config) (ports.LedgerClient, error) {
	switch cfg.LedgerMode {
	case "mock":
		return ledgermock.NewLedger(), nil
	case "rpc":
		if cfg.LedgerBaseURL == "" {
			return nil, fmt.Errorf("MEARTH_LEDGER_URL is required in rpc mode")
		}
		return ledgerrpc.NewClient(cfg.LedgerBaseURL, cfg.LedgerProgramTag, cfg.LedgerTimeout)
	default:
		return nil, fmt.Errorf("unknown ledger mode %q", cfg.LedgerMode)
	}
}

func cooldownDurations(cfg config) map[game.CooldownType]time.Duration {
	durations := game.DefaultCooldownDurations()
	if cfg.BattleCooldown > 0 {
		durations[game.CooldownBattle] = cfg.BattleCooldown
	}
	if cfg.AllianceCooldown > 0 {
		durations[game.CooldownAlliance] = cfg.AllianceCooldown
	}
	if cfg.IgnoreCooldown > 0 {
		durations[game.CooldownIgnore] = cfg.IgnoreCooldown
	}
	return durations
}
