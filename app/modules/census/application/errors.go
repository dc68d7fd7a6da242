package censusservice

import "errors"

// Failure taxonomy for a reconciliation run. These classify the failed
// pipeline stage; none of them crash the process or trigger an
// automatic re-run.
var (
	ErrGuildInfoUnavailable   = errors.New("guild info unavailable")
	ErrMemberCountUnavailable = errors.New("member count unavailable")
	ErrTemplateMissing        = errors.New("no name template registered for guild")
	ErrAllAdaptersFailed      = errors.New("no rename adapter succeeded")
)
