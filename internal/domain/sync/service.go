package sync

import (
	"context"
	"strconv"
	gosync "sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"

	"medsync/internal/domain/errs"
	"medsync/internal/domain/permission"
	"medsync/internal/telemetry"
)

const auditTimeout = 5 * time.Second

// Формы ISO-8601 без смещения, считаются UTC
var localTimestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Servicer интерфейс сервиса синхронизации
type Servicer interface {
	// Run выполняет инкрементальную выгрузку по всем запрошенным коллекциям
	Run(ctx context.Context, req Request) (*Response, error)
}

// Service оркестратор выгрузки: определяет область доступа, параллельно
// синхронизирует коллекции и пишет запись в журнал операций
type Service struct {
	syncer   *Syncer
	resolver permission.Resolverer
	audit    AuditRepository
	config   *ServiceConfig
	now      func() time.Time
	log      *slog.Logger

	pending gosync.WaitGroup

	pulls   metric.Int64Counter
	changes metric.Int64Counter
}

// NewService создает новый сервис синхронизации
func NewService(syncer *Syncer, resolver permission.Resolverer, audit AuditRepository, log *slog.Logger, config *ServiceConfig) *Service {
	if config == nil {
		config = &ServiceConfig{}
	}

	return &Service{
		syncer:   syncer,
		resolver: resolver,
		audit:    audit,
		config:   config.withDefaults(),
		now:      time.Now,
		log:      log.With("component", "sync_service"),
		pulls:    telemetry.Counter("medsync.sync.pulls", "Incremental pull requests per collection"),
		changes:  telemetry.Counter("medsync.sync.records", "Change and tombstone records returned to devices"),
	}
}

// Run выполняет выгрузку. Отметка syncTimestamp берется в начале запроса: клиент
// может повторно получить узкое окно, но не пропустит изменения.
func (s *Service) Run(ctx context.Context, req Request) (*Response, error) {
	syncTimestamp := s.now().UTC()

	if req.DeviceID == "" || req.UserID == "" {
		return nil, errs.BadRequest("%v", ErrMissingIdentity)
	}
	lastSync, err := ParseTimestamp(req.LastSyncTimestamp)
	if err != nil {
		return nil, errs.BadRequest("%v: %v", ErrBadTimestamp, err)
	}

	collections := s.collections(req.Collections)
	scope := s.resolver.Resolve(ctx, req.UserID, req.FacilityID)
	paging := s.paging(req)

	outcomes := make([]errs.Result[*CollectionResult], len(collections))
	var g errgroup.Group
	for i, name := range collections {
		g.Go(func() error {
			outcomes[i] = s.syncer.SyncCollection(ctx, name, lastSync, scope, paging)
			return nil
		})
	}
	_ = g.Wait()

	results := make(map[string]*CollectionResult, len(collections))
	failed := 0
	for i, name := range collections {
		out := outcomes[i]
		if out.Failed() {
			failed++
			s.log.Warn("collection sync failed",
				"collection", name,
				"device_id", req.DeviceID,
				"kind", out.Kind(),
				"error", out.Err,
			)
			results[name] = &CollectionResult{
				Success: false,
				Updated: []ChangeRecord{},
				Deleted: []TombstoneRecord{},
				Error:   out.Err.Error(),
			}
			continue
		}
		results[name] = out.Value
		s.record(ctx, name, out.Value)
	}

	s.appendAudit(ctx, req, scope, syncTimestamp, lastSync, collections, results, failed)

	resp := &Response{
		Success:             true,
		SyncTimestamp:       syncTimestamp,
		NextSyncRecommended: s.now().UTC().Add(s.config.SyncInterval),
	}
	if req.Compress {
		payload, err := compressResults(results)
		if err == nil {
			compression := CompressionGzipBase64
			resp.Results = nil
			resp.CompressedResults = payload
			resp.Compression = &compression
			return resp, nil
		}
		s.log.Debug("compression failed, sending plain results", "error", err)
	}
	resp.Results = results

	return resp, nil
}

// Wait дожидается фоновых записей в журнал операций
func (s *Service) Wait() {
	s.pending.Wait()
}

func (s *Service) collections(requested []string) []string {
	if len(requested) == 0 {
		requested = s.config.DefaultCollections
	}
	seen := make(map[string]struct{}, len(requested))
	out := make([]string, 0, len(requested))
	for _, name := range requested {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func (s *Service) paging(req Request) Paging {
	limit := s.config.PageLimit
	if req.PageLimit > 0 {
		limit = min(req.PageLimit, s.config.MaxPageLimit)
	}
	return Paging{
		PageLimit:    limit,
		MaxPages:     s.config.MaxPages,
		DeletedLimit: s.config.DeletedLimit,
		Cursor:       req.PageCursor,
	}
}

func (s *Service) record(ctx context.Context, collection string, res *CollectionResult) {
	attrs := attribute.String("collection", collection)
	s.pulls.Add(ctx, 1, metric.WithAttributes(attrs))
	s.changes.Add(ctx, int64(len(res.Updated)), metric.WithAttributes(attrs, attribute.String("operation", "update")))
	s.changes.Add(ctx, int64(len(res.Deleted)), metric.WithAttributes(attrs, attribute.String("operation", "delete")))
}

// appendAudit пишет запись журнала в фоне. Ошибка только логируется.
func (s *Service) appendAudit(ctx context.Context, req Request, scope permission.Scope, syncTimestamp, lastSync time.Time, collections []string, results map[string]*CollectionResult, failed int) {
	entry := &AuditEntry{
		ID:                uuid.Must(uuid.NewV4()).String(),
		DeviceID:          req.DeviceID,
		UserID:            req.UserID,
		FacilityID:        req.FacilityID,
		SyncTimestamp:     syncTimestamp,
		LastSyncTimestamp: lastSync,
		Collections:       collections,
		Status:            AuditStatusCompleted,
		Results:           make(map[string]AuditResult, len(results)),
	}
	if scope.FacilityID != nil {
		entry.FacilityID = *scope.FacilityID
	}
	if failed > 0 {
		entry.Status = AuditStatusPartial
	}
	for name, r := range results {
		entry.Results[name] = AuditResult{
			Success: r.Success,
			Updated: len(r.Updated),
			Deleted: len(r.Deleted),
			HasMore: r.HasMore,
			Error:   r.Error,
		}
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
		defer cancel()
		if err := s.audit.Append(actx, entry); err != nil {
			s.log.Warn("failed to append sync audit entry", "device_id", entry.DeviceID, "error", err)
		}
	}()
}

// ParseTimestamp разбирает отметку последней синхронизации. Пустая строка -
// начало эпохи. Допускается ISO-8601 или миллисекунды Unix.
func ParseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Unix(0, 0).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range localTimestampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	ms, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}
