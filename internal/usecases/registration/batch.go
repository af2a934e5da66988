package registration

import (
	"context"

	"botfleet/internal/domain/bot"
)

// BatchOp names a single-bot operation that can be applied across a batch.
type BatchOp string

const (
	BatchOpStart   = BatchOp("start")
	BatchOpStop    = BatchOp("stop")
	BatchOpRestart = BatchOp("restart")
	BatchOpApprove = BatchOp("approve")
)

// BatchItemResult reports the outcome of one item within a batch.
type BatchItemResult struct {
	BotID bot.ID
	Error string
}

// BatchResult summarizes a batch operation: each item commits or fails
// independently, so a batch with some failures still reports its
// successful items as completed.
type BatchResult struct {
	Total     int
	Completed int
	Failed    []BatchItemResult
}

// BatchApply describes the operation to apply across a batch of bot ids,
// along with the approval duration used when Op is BatchOpApprove.
type BatchApply struct {
	Op             BatchOp
	ApprovalMonths int
}

// Batch applies the same operation to every bot id in ids, one at a time.
// Each item is committed independently: a failure on one item does not
// roll back or block the others.
func (e *Engine) Batch(ctx context.Context, ids []bot.ID, apply BatchApply) *BatchResult {
	result := &BatchResult{Total: len(ids)}

	for _, id := range ids {
		var err error
		switch apply.Op {
		case BatchOpStart:
			err = e.supervisor.Start(ctx, id)
		case BatchOpStop:
			err = e.supervisor.Stop(ctx, id)
		case BatchOpRestart:
			err = e.supervisor.Restart(ctx, id)
		case BatchOpApprove:
			_, err = e.Approve(ctx, id, apply.ApprovalMonths)
		default:
			err = ErrUnknownBatchOp
		}

		if err != nil {
			result.Failed = append(result.Failed, BatchItemResult{BotID: id, Error: err.Error()})
			continue
		}
		result.Completed++
	}

	return result
}
