package console

import (
	"context"
	"errors"
)

const (
	deleteDefencesPrompt = "Supprimer tous ces soutenances ?"
	emptyDefenceNotice   = "Veuillez sélectionner au moins une soutenance à supprimer."
)

// DeletionOutcome lists what a bulk deletion did.
type DeletionOutcome struct {
	Deleted   []string      `json:"deleted"`
	Failed    []string      `json:"failed"`
	Failures  []StepFailure `json:"-"`
	Cancelled bool          `json:"cancelled"`
}

// DeleteSelected deletes every selected defence with one call per id, in
// selection order. An empty selection is refused with a notice and no call.
// Otherwise, once confirmed, every id is attempted, the selection is cleared
// and the board reloaded whatever the individual outcomes were.
func (b *Board) DeleteSelected(ctx context.Context) (DeletionOutcome, error) {
	b.workflow.Lock()
	defer b.workflow.Unlock()

	ids := b.SelectedDefences()
	if len(ids) == 0 {
		b.opts.notifier.Notify(ctx, NoticeWarning, emptyDefenceNotice)
		return DeletionOutcome{}, ErrEmptySelection
	}
	if !b.opts.confirmer.Confirm(ctx, deleteDefencesPrompt) {
		return DeletionOutcome{Cancelled: true}, nil
	}

	out := DeletionOutcome{Deleted: []string{}, Failed: []string{}}
	for _, id := range ids {
		if err := b.backend.DeleteDefence(ctx, id); err != nil {
			b.opts.logger.Error("delete defence failed", "defence_id", id, "error", err)
			out.Failed = append(out.Failed, id)
			out.Failures = append(out.Failures, StepFailure{Step: StepDeleteDefence, ItemID: id, Err: err})
			continue
		}
		out.Deleted = append(out.Deleted, id)
	}

	b.ClearSelection()
	var err error
	if len(out.Failures) > 0 {
		err = &DeletionError{Failures: out.Failures}
		b.opts.notifier.Notify(ctx, NoticeError, err.Error())
	}
	if reloadErr := b.Reload(ctx); reloadErr != nil {
		err = errors.Join(err, reloadErr)
	}
	return out, err
}
