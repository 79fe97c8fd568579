package driven

import (
	"context"

	"github.com/custodia-labs/cswcalc/internal/core/domain"
)

// WorkbookClient is the document API. Every call after CreateSession carries
// the session id; the client itself keeps no session state.
//
// Errors: ResolveItem returns *domain.NotFoundError when the path does not
// resolve, CreateSession returns *domain.SessionError, and range and
// calculate calls return *domain.CellAccessError.
type WorkbookClient interface {
	// ResolveItem looks up a logical document path.
	ResolveItem(ctx context.Context, path string) (domain.DocumentRef, error)

	// CreateSession opens an editing session. persist selects whether edits
	// are saved when the session closes.
	CreateSession(ctx context.Context, doc domain.DocumentRef, persist bool) (domain.SessionHandle, error)

	// CloseSession ends the session.
	CloseSession(ctx context.Context, doc domain.DocumentRef, session domain.SessionHandle) error

	// PatchRange writes a value grid shaped like the target range.
	PatchRange(
		ctx context.Context, doc domain.DocumentRef, session domain.SessionHandle,
		addr domain.CellAddress, values domain.Grid,
	) error

	// GetRange reads a range. An empty range returns an empty grid.
	GetRange(
		ctx context.Context, doc domain.DocumentRef, session domain.SessionHandle,
		addr domain.CellAddress,
	) (domain.Grid, error)

	// Calculate recomputes the workbook's formulas.
	Calculate(
		ctx context.Context, doc domain.DocumentRef, session domain.SessionHandle,
		calcType domain.CalculationType,
	) error
}
