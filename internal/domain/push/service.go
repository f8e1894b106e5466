package push

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"

	"medsync/internal/domain/document"
	"medsync/internal/domain/errs"
	"medsync/internal/domain/validation"
	"medsync/internal/telemetry"
)

const defaultWorkers = 8

// Servicer интерфейс обработки пакетов от устройств
type Servicer interface {
	Process(ctx context.Context, req Request) (*Response, error)
}

// Service проверяет и сохраняет пакеты документов
type Service struct {
	rules      *validation.Registry
	reconciler *Reconciler
	workers    int
	log        *slog.Logger
	documents  metric.Int64Counter
}

// NewService создает сервис. workers ограничивает число одновременно
// обрабатываемых документов.
func NewService(rules *validation.Registry, reconciler *Reconciler, workers int, log *slog.Logger) *Service {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Service{
		rules:      rules,
		reconciler: reconciler,
		workers:    workers,
		log:        log.With("component", "push_service"),
		documents:  telemetry.Counter("medsync.push.documents", "Documents received from devices"),
	}
}

// Process обрабатывает пакет. Ошибка одного документа попадает в его результат и
// не прерывает обработку остальных.
func (s *Service) Process(ctx context.Context, req Request) (*Response, error) {
	if req.Collection == "" {
		return nil, errs.BadRequest("collection is required")
	}
	if req.Documents == nil {
		return nil, errs.BadRequest("documents are required")
	}
	if req.Mode == "" {
		req.Mode = ModeValidate
	}
	if req.Mode != ModeValidate && req.Mode != ModeUpsert {
		return nil, errs.BadRequest("%v: %q", ErrUnknownMode, req.Mode)
	}

	rules, err := s.rules.Lookup(req.Collection)
	if err != nil {
		return nil, err
	}

	results := make([]ItemResult, len(req.Documents))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, doc := range req.Documents {
		g.Go(func() error {
			results[i] = s.processItem(ctx, req.Collection, req.Mode, rules, doc)
			return nil
		})
	}
	_ = g.Wait()

	totals := Totals{Processed: len(results)}
	for _, r := range results {
		if r.Valid {
			totals.Valid++
		} else {
			totals.Invalid++
		}
	}

	s.documents.Add(ctx, int64(totals.Valid), metric.WithAttributes(
		attribute.String("collection", req.Collection), attribute.Bool("valid", true)))
	s.documents.Add(ctx, int64(totals.Invalid), metric.WithAttributes(
		attribute.String("collection", req.Collection), attribute.Bool("valid", false)))

	s.log.Info("push batch processed",
		"collection", req.Collection,
		"mode", req.Mode,
		"valid", totals.Valid,
		"invalid", totals.Invalid,
	)

	return &Response{
		Success:    true,
		Collection: req.Collection,
		Mode:       req.Mode,
		Totals:     totals,
		Results:    results,
	}, nil
}

func (s *Service) processItem(ctx context.Context, collection string, mode Mode, rules validation.RuleSet, doc document.Fields) ItemResult {
	id := documentID(doc)
	res := ItemResult{ID: id}

	clean := validation.Sanitize(doc)
	check := validation.Validate(rules, clean)
	if !check.Valid {
		res.Errors = check.Errors
		return res
	}
	res.Valid = true

	if mode != ModeUpsert {
		return res
	}

	// без id запись не выполняется, метаданные клиента возвращаются как есть
	if id == "" {
		res.CreatedAt = doc.String("$createdAt")
		res.UpdatedAt = doc.String("$updatedAt")
		return res
	}

	out, err := s.reconciler.Upsert(ctx, collection, id, clean)
	if err != nil {
		err = errs.Item(id, err)
		s.log.Warn("upsert failed", "collection", collection, "error", err)
		res.Valid = false
		res.Errors = []string{fmt.Sprintf("upsert failed: %v", err)}
		return res
	}

	res.Operation = out.Operation
	if out.Operation == document.OpCreate {
		res.CreatedAt = out.Timestamp.UTC().Format(time.RFC3339Nano)
	} else {
		res.UpdatedAt = out.Timestamp.UTC().Format(time.RFC3339Nano)
	}
	return res
}

func documentID(doc document.Fields) string {
	if id := doc.String("id"); id != "" {
		return id
	}
	return doc.String("$id")
}
