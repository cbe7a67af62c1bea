package models

import "errors"

// Error taxonomy shared by the engine, the ledger service and the stores.
// Callers match with errors.Is; producers wrap with fmt.Errorf("...: %w", Err...).
var (
	// ErrInvalidTransaction marks malformed amounts or shares.
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrInvalidSplitRequest marks a malformed allocation request.
	ErrInvalidSplitRequest = errors.New("invalid split request")

	// ErrNotFound marks a missing squad, member or transaction.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a concurrent modification detected at commit. Reload and retry.
	ErrConflict = errors.New("concurrent modification")

	// ErrStorage marks a persistence collaborator failure.
	ErrStorage = errors.New("storage failure")

	// ErrAlreadyMember is returned when adding an identity that is already a member.
	ErrAlreadyMember = errors.New("already a member")

	// ErrInvalidSquad marks a malformed squad or membership request.
	ErrInvalidSquad = errors.New("invalid squad request")

	// ErrForbidden marks a membership rule violation (non-admin, self-removal).
	ErrForbidden = errors.New("forbidden")
)
