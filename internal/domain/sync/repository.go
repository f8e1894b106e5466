package sync

import (
	"context"
)

// AuditRepository журнал операций синхронизации, только добавление
type AuditRepository interface {
	Append(ctx context.Context, entry *AuditEntry) error
}
