package directoryRepo

import (
	"context"

	"lexbook/models"
)

// UserDirectory resolves identities owned by the external user subsystem.
// The scheduling core only reads it for authorization and participant checks.
type UserDirectory interface {
	ResolveUser(ctx context.Context, id string) (*models.DirectoryUser, error)
}

// CaseDirectory resolves external case records, used for display enrichment
// only, never for scheduling decisions.
type CaseDirectory interface {
	ResolveCase(ctx context.Context, id string) (*models.CaseRecord, error)
}
