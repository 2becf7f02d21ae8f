package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"NewsHarvest/internal/domain"
	"NewsHarvest/internal/harvest"
	"NewsHarvest/internal/ports"
)

const sinkTimeout = 30 * time.Second

// Target is one homepage to harvest with its run parameters.
type Target struct {
	URL              string
	MaxArticles      int
	QualityThreshold float64
}

// PipelineDeps wires the harvester and optional result sinks.
type PipelineDeps struct {
	Harvester  *harvest.Harvester
	Repository ports.ResultRepository
	Notifier   ports.Notifier
	Logger     *slog.Logger
}

// Pipeline runs a harvest to completion and hands the outcome to the sinks.
type Pipeline struct {
	harvester  *harvest.Harvester
	repository ports.ResultRepository
	notifier   ports.Notifier
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		harvester:  deps.Harvester,
		repository: deps.Repository,
		notifier:   deps.Notifier,
		logger:     logger.With("component", "pipeline"),
	}
}

// Run starts a session for target and waits for it. Cancelling ctx cancels the session
// cooperatively; the partial result still reaches the sinks. Sink failures are returned
// joined and never change the returned status.
func (p *Pipeline) Run(ctx context.Context, target Target) (domain.HarvestStatus, error) {
	if p.harvester == nil {
		return domain.HarvestStatus{}, errors.New("pipeline: harvester is not configured")
	}

	handle, err := p.harvester.StartHarvest(ctx, target.URL, target.MaxArticles, target.QualityThreshold)
	if err != nil {
		return domain.HarvestStatus{}, fmt.Errorf("start harvest %s: %w", target.URL, err)
	}

	select {
	case <-handle.Done():
	case <-ctx.Done():
		p.logger.Info("cancelling harvest", "session", handle.ID())
		handle.Cancel()
		<-handle.Done()
	}

	status := handle.Status()
	return status, p.deliver(ctx, status)
}

func (p *Pipeline) deliver(ctx context.Context, status domain.HarvestStatus) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sinkTimeout)
	defer cancel()

	var errs []error
	if p.repository != nil {
		if err := p.repository.SaveSession(ctx, status); err != nil {
			p.logger.Warn("archive failed", "session", status.SessionID, "error", err)
			errs = append(errs, fmt.Errorf("archive session: %w", err))
		}
	}

	if p.notifier != nil && len(status.Articles) > 0 {
		if err := p.notifier.PublishDigest(ctx, buildDigestMessage(status)); err != nil {
			p.logger.Warn("digest failed", "session", status.SessionID, "error", err)
			errs = append(errs, fmt.Errorf("publish digest: %w", err))
		}
	}

	return errors.Join(errs...)
}

func buildDigestMessage(status domain.HarvestStatus) string {
	var b strings.Builder
	fmt.Fprintf(&b, "NewsHarvest: %s\n%s\n", status.HomepageURL, status.Status)

	if m := status.Metrics; m != nil {
		fmt.Fprintf(&b, "Avg quality %.3f, avg bias density %.2f%%, balanced %d/%d (%.1f%%)\n",
			m.AvgQualityScore, m.AvgBiasDensity, m.BalancedArticles, m.TotalArticles, m.BalancePercentage)
	}
	b.WriteString("\n")

	for _, a := range status.Articles {
		fmt.Fprintf(&b, "- %s\n%s, score %.2f, %d words\n%s\n\n",
			a.Title, a.Source, a.QualityScore, a.WordCount, a.URL)
	}

	return strings.TrimRight(b.String(), "\n")
}
