package jobs

import (
	"context"
	"time"

	"github.com/tripdesk/agency-api/internal/domain"
	"go.uber.org/zap"
)

const (
	CatalogSnapshotJobName = "catalog_snapshot"
	AuditPurgeJobName      = "audit_purge"
)

// SnapshotExporter stores a snapshot of the whole catalog
type SnapshotExporter interface {
	ExportSnapshot(ctx context.Context) (*domain.SnapshotResultDTO, error)
}

// CatalogSnapshotJob writes the nightly catalog snapshot
type CatalogSnapshotJob struct {
	exporter SnapshotExporter
	timeout  time.Duration
	logger   *zap.Logger
}

func NewCatalogSnapshotJob(exporter SnapshotExporter, timeout time.Duration, logger *zap.Logger) *CatalogSnapshotJob {
	return &CatalogSnapshotJob{exporter: exporter, timeout: timeout, logger: logger}
}

func (j *CatalogSnapshotJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	result, err := j.exporter.ExportSnapshot(ctx)
	if err != nil {
		j.logger.Error("catalog snapshot job failed", zap.Error(err))
		return
	}
	j.logger.Info("catalog snapshot stored",
		zap.String("path", result.Path),
		zap.Int("hotels", result.Hotels),
		zap.Int("transportations", result.Transportations),
		zap.Int("sightseeings", result.Sightseeings),
		zap.Int("activities", result.Activities),
		zap.Int("entryTickets", result.EntryTickets),
		zap.Int("meals", result.Meals))
}

// AuditPurger deletes audit entries older than the retention
type AuditPurger interface {
	Purge(ctx context.Context, retention time.Duration) (int64, error)
}

// AuditPurgeJob enforces the audit log retention
type AuditPurgeJob struct {
	purger    AuditPurger
	retention time.Duration
	timeout   time.Duration
	logger    *zap.Logger
}

func NewAuditPurgeJob(purger AuditPurger, retentionDays int, timeout time.Duration, logger *zap.Logger) *AuditPurgeJob {
	return &AuditPurgeJob{
		purger:    purger,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		timeout:   timeout,
		logger:    logger,
	}
}

func (j *AuditPurgeJob) Run() {
	if j.retention <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	n, err := j.purger.Purge(ctx, j.retention)
	if err != nil {
		j.logger.Error("audit purge job failed", zap.Error(err))
		return
	}
	j.logger.Info("audit log purged", zap.Int64("deleted", n), zap.Duration("retention", j.retention))
}
