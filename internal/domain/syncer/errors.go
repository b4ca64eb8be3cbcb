package syncer

import "errors"

// ErrListApproved means the approved set could not be read; the run
// aborts before touching any metrics.
var ErrListApproved = errors.New("failed to list approved submissions")
