package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"NewsHarvest/internal/bias"
	"NewsHarvest/internal/classifier"
	"NewsHarvest/internal/config"
	"NewsHarvest/internal/discovery"
	"NewsHarvest/internal/domain"
	"NewsHarvest/internal/extractor"
	"NewsHarvest/internal/harvest"
	"NewsHarvest/internal/infrastructure/fetcher"
	"NewsHarvest/internal/infrastructure/scheduler"
	"NewsHarvest/internal/infrastructure/storage"
	"NewsHarvest/internal/infrastructure/telegram"
	"NewsHarvest/internal/logging"
	"NewsHarvest/internal/ports"
	"NewsHarvest/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg        config.Config
	logger     *slog.Logger
	harvester  *harvest.Harvester
	pipeline   *usecase.Pipeline
	db         *sql.DB
	repository *storage.PostgresRepository
}

// New builds the application from cfg. Sinks are enabled only when configured.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	pageFetcher := fetcher.New(nil, fetcher.Options{
		Timeout:       cfg.Fetcher.Timeout,
		MinDelay:      cfg.Fetcher.MinDelay,
		MaxDelay:      cfg.Fetcher.MaxDelay,
		NoDelay:       cfg.Fetcher.DisableDelay,
		UserAgent:     cfg.Fetcher.UserAgent,
		MaxBodyBytes:  cfg.Fetcher.MaxBodyBytes,
		RespectRobots: cfg.Fetcher.RespectRobots,
	}, baseLogger.With("component", "fetcher"))

	urlClassifier, err := classifier.New(cfg.Discovery.IncludePatterns, cfg.Discovery.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("url classifier: %w", err)
	}

	discoverer := discovery.New(pageFetcher, urlClassifier, discovery.Options{
		MaxCandidates: cfg.Discovery.MaxCandidates,
		IncludeFeeds:  cfg.Discovery.IncludeFeeds,
	}, baseLogger.With("component", "discovery"))

	harvester, err := harvest.New(harvest.Deps{
		Fetcher:    pageFetcher,
		Discoverer: discoverer,
		Extractor:  extractor.New(profileRegistry(cfg.Extraction.Profiles)),
		Bias: bias.NewAnalyzer(bias.KeywordTable(cfg.Bias.Keywords),
			bias.WithDemographicConcerns(cfg.Bias.DemographicConcernsEnabled())),
		Sources: harvest.NewSourceLabeler(sourceRules(cfg.Sources)),
		Logger:  baseLogger,
	}, harvest.Options{MaxArticlesLimit: cfg.Harvest.MaxArticlesLimit})
	if err != nil {
		return nil, fmt.Errorf("harvester: %w", err)
	}

	a := &Application{cfg: cfg, logger: baseLogger, harvester: harvester}

	deps := usecase.PipelineDeps{Harvester: harvester, Logger: baseLogger}
	if cfg.Database.DSN != "" {
		db, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		a.db = db
		a.repository = storage.NewPostgresRepository(db, cfg.Database.Table)
		deps.Repository = a.repository
	}
	if tg := cfg.Notifications.Telegram; tg.Enabled() {
		deps.Notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID, tg.APIURL)
	}
	a.pipeline = usecase.NewPipeline(deps)

	return a, nil
}

// Prepare creates the archive table when the archive is enabled.
func (a *Application) Prepare(ctx context.Context) error {
	if a.repository == nil {
		return nil
	}
	return a.repository.EnsureSchema(ctx)
}

// DefaultTarget returns a target for url carrying the configured run parameters.
func (a *Application) DefaultTarget(url string) usecase.Target {
	return a.withDefaults(usecase.Target{URL: url})
}

// Harvest runs one session with exactly the parameters of target and delivers it to the
// configured sinks.
func (a *Application) Harvest(ctx context.Context, target usecase.Target) (domain.HarvestStatus, error) {
	return a.pipeline.Run(ctx, target)
}

// Schedule runs the configured targets on the cron expression until ctx is done.
func (a *Application) Schedule(ctx context.Context) error {
	if len(a.cfg.Scheduler.Targets) == 0 {
		return errors.New("no scheduler targets configured")
	}

	targets := make([]usecase.Target, 0, len(a.cfg.Scheduler.Targets))
	for _, t := range a.cfg.Scheduler.Targets {
		targets = append(targets, a.withDefaults(usecase.Target{
			URL:              t.URL,
			MaxArticles:      t.MaxArticles,
			QualityThreshold: t.QualityThreshold,
		}))
	}

	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Scheduler.Location())
	return a.runScheduler(ctx, driver, targets)
}

// nextRunner is implemented by drivers that can report their next activation.
type nextRunner interface {
	Next(t time.Time) (time.Time, error)
}

func (a *Application) runScheduler(ctx context.Context, driver ports.Scheduler, targets []usecase.Target) error {
	s := usecase.NewScheduler(driver, a.pipeline, targets, a.logger)
	if err := s.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started", "cron", a.cfg.Scheduler.CronExpression, "targets", len(targets))
	if n, ok := driver.(nextRunner); ok {
		if next, err := n.Next(time.Now()); err == nil {
			a.logger.Info("next harvest scheduled", "next_run", next)
		}
	}

	<-ctx.Done()
	return s.Stop(context.WithoutCancel(ctx))
}

// Status returns the latest session snapshot.
func (a *Application) Status() domain.HarvestStatus {
	return a.harvester.GetStatus()
}

// Close releases the database handle.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *Application) withDefaults(t usecase.Target) usecase.Target {
	if t.MaxArticles == 0 {
		t.MaxArticles = a.cfg.Harvest.MaxArticles
	}
	if t.QualityThreshold == 0 {
		t.QualityThreshold = a.cfg.Harvest.QualityThreshold
	}
	return t
}

func profileRegistry(profiles []config.ProfileConfig) *extractor.Registry {
	registry := extractor.NewRegistry()
	for _, p := range profiles {
		registry.Register(extractor.Profile{
			Name:        p.Name,
			Hosts:       p.Hosts,
			Title:       p.Title,
			Content:     p.Content,
			Author:      p.Author,
			PublishDate: p.PublishDate,
		})
	}
	return registry
}

func sourceRules(sources []config.SourceConfig) []harvest.SourceRule {
	rules := make([]harvest.SourceRule, 0, len(sources))
	for _, s := range sources {
		rules = append(rules, harvest.SourceRule{Match: s.Match, Label: s.Label})
	}
	return rules
}
