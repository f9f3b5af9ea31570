package console

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"soutenancecore/pkg/domain"
)

// boardView is one immutable state of the defence list.
type boardView struct {
	all     []domain.Defence
	visible []domain.Defence
	filter  DefenceFilter
}

// Board is the defence management view of one track. It owns the loaded
// defences, the active filter and the defence selection, and runs the
// composition and bulk deletion workflows followed by a reload.
type Board struct {
	backend      Backend
	specialiteID string
	refs         *ReferenceStore
	composer     *Composer
	opts         options

	// workflow serialises the mutating workflows.
	workflow sync.Mutex
	// mu guards selection and view replacement.
	mu        sync.Mutex
	selection *Selection[string]
	view      atomic.Pointer[boardView]
}

// NewBoard builds an unmounted board for specialiteID.
func NewBoard(backend Backend, specialiteID string, opts ...Option) *Board {
	o := buildOptions(opts)
	b := &Board{
		backend:      backend,
		specialiteID: specialiteID,
		refs:         NewReferenceStore(backend, specialiteID, opts...),
		composer:     NewComposer(backend, specialiteID, opts...),
		opts:         o,
		selection:    NewSelection[string](),
	}
	b.view.Store(&boardView{all: []domain.Defence{}, visible: []domain.Defence{}})
	return b
}

// SpecialiteID returns the track the board shows.
func (b *Board) SpecialiteID() string { return b.specialiteID }

// References returns the reference lists the board picks people and rooms from.
func (b *Board) References() *ReferenceStore { return b.refs }

// Composer returns the composition workflow used by the board.
func (b *Board) Composer() *Composer { return b.composer }

// Mount loads the reference lists and the defences. Reference failures are
// reported but do not prevent the defences from loading.
func (b *Board) Mount(ctx context.Context) error {
	refErr := b.refs.Load(ctx)
	defErr := b.reloadDefences(ctx)
	return errors.Join(refErr, defErr)
}

// Reload re-fetches the defences and the students of the track, then
// re-applies the active filter to the fresh collection.
func (b *Board) Reload(ctx context.Context) error {
	defErr := b.reloadDefences(ctx)
	studentErr := b.refs.ReloadStudents(ctx)
	return errors.Join(defErr, studentErr)
}

func (b *Board) reloadDefences(ctx context.Context) error {
	defences, err := b.backend.ListSpecialiteDefences(ctx, b.specialiteID)
	if err != nil {
		b.opts.logger.Error("defence reload failed", "specialite_id", b.specialiteID, "error", err)
		return fmt.Errorf("load defences: %w", err)
	}
	b.replaceSnapshot(nonNil(defences))
	return nil
}

// replaceSnapshot installs a new defence collection and prunes the selection
// to what the new visible list still shows.
func (b *Board) replaceSnapshot(all []domain.Defence) {
	b.mu.Lock()
	defer b.mu.Unlock()
	filter := b.view.Load().filter
	b.install(&boardView{all: all, visible: ApplyFilter(all, filter), filter: filter})
}

// install must be called with mu held.
func (b *Board) install(v *boardView) {
	shown := make(map[string]struct{}, len(v.visible))
	for _, d := range v.visible {
		shown[d.ID] = struct{}{}
	}
	dropped := b.selection.Retain(func(id string) bool {
		_, ok := shown[id]
		return ok
	})
	if len(dropped) > 0 {
		b.opts.logger.Debug("selection pruned", "specialite_id", b.specialiteID, "dropped", len(dropped))
	}
	b.view.Store(v)
}

// Defences returns the full loaded collection.
func (b *Board) Defences() []domain.Defence { return b.view.Load().all }

// Visible returns the loaded defences that match the active filter.
func (b *Board) Visible() []domain.Defence { return b.view.Load().visible }

// Filter returns the active filter.
func (b *Board) Filter() DefenceFilter { return b.view.Load().filter }

// SetFilter replaces the active filter and re-derives the visible list.
func (b *Board) SetFilter(f DefenceFilter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	all := b.view.Load().all
	b.install(&boardView{all: all, visible: ApplyFilter(all, f), filter: f})
}

// ToggleDefence flips the selection of a visible defence. Ids that are not
// shown are ignored; the result reports whether id is selected afterwards.
func (b *Board) ToggleDefence(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.shown(id) {
		return false
	}
	return b.selection.Toggle(id)
}

// SelectAllVisible selects every visible defence.
func (b *Board) SelectAllVisible() {
	b.mu.Lock()
	defer b.mu.Unlock()
	visible := b.view.Load().visible
	ids := make([]string, len(visible))
	for i, d := range visible {
		ids[i] = d.ID
	}
	b.selection.SelectAll(ids)
}

// SelectDefences replaces the selection with the visible ids among ids and
// returns the ids it skipped.
func (b *Board) SelectDefences(ids []string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	keep := make([]string, 0, len(ids))
	var skipped []string
	for _, id := range ids {
		if b.shown(id) {
			keep = append(keep, id)
		} else {
			skipped = append(skipped, id)
		}
	}
	b.selection.SelectAll(keep)
	return skipped
}

// ClearSelection deselects every defence.
func (b *Board) ClearSelection() {
	b.mu.Lock()
	b.selection.Clear()
	b.mu.Unlock()
}

// SelectedDefences returns the selected ids in selection order.
func (b *Board) SelectedDefences() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selection.IDs()
}

func (b *Board) shown(id string) bool {
	for _, d := range b.view.Load().visible {
		if d.ID == id {
			return true
		}
	}
	return false
}

// Compose runs the composition workflow and reloads the board afterwards,
// whether it succeeded, partially failed or failed to create the defence.
// Invalid requests are rejected without any backend call or reload.
func (b *Board) Compose(ctx context.Context, req CompositionRequest) (CompositionOutcome, error) {
	b.workflow.Lock()
	defer b.workflow.Unlock()

	if err := b.composer.Validate(req); err != nil {
		return CompositionOutcome{}, err
	}
	out, err := b.composer.Compose(ctx, req)
	switch {
	case errors.Is(err, ErrPartialComposition):
		b.opts.notifier.Notify(ctx, NoticeWarning, partialCompositionNotice(out))
	case err != nil:
		b.opts.notifier.Notify(ctx, NoticeError, "La création de la soutenance a échoué.")
	}
	if reloadErr := b.Reload(ctx); reloadErr != nil {
		err = errors.Join(err, reloadErr)
	}
	return out, err
}

func partialCompositionNotice(out CompositionOutcome) string {
	if out.RolledBack {
		return fmt.Sprintf("La soutenance n'a pas pu être complétée (%d erreurs) et a été annulée.", len(out.Failures))
	}
	return fmt.Sprintf("La soutenance a été créée mais %d affectations ont échoué.", len(out.Failures))
}
