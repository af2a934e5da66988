package registration

import "errors"

var ErrUnknownBatchOp = errors.New("unknown batch operation")
