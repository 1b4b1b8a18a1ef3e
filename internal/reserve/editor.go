package reserve

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var ErrNotEditing = errors.New("no reserve is being edited")

// EditState is either Viewing (the zero value) or Editing a single reserve.
// Keeping it as one value rules out "editing" with no target or two targets
// at once.
type EditState struct {
	reserveID string
}

func Viewing() EditState {
	return EditState{}
}

func Editing(reserveID string) EditState {
	return EditState{reserveID: reserveID}
}

func (s EditState) IsEditing() bool {
	return s.reserveID != ""
}

func (s EditState) ReserveID() (string, bool) {
	return s.reserveID, s.reserveID != ""
}

func (s EditState) String() string {
	if !s.IsEditing() {
		return "viewing"
	}
	return "editing(" + s.reserveID + ")"
}

type Updater interface {
	Update(ctx context.Context, owner, reserveID string, dto UpdateReserveDTO) (*Reserve, error)
}

// Editor drives the edit flow for one owner. A failed save keeps the editor in
// Editing so the same edit can be retried.
type Editor struct {
	ledger Updater
	owner  string
	state  EditState
}

func NewEditor(ledger Updater, owner string) *Editor {
	return &Editor{ledger: ledger, owner: owner}
}

func (e *Editor) State() EditState {
	return e.state
}

// Begin switches to editing reserveID, replacing any edit in progress.
func (e *Editor) Begin(reserveID string) {
	e.state = Editing(reserveID)
}

func (e *Editor) Cancel() {
	e.state = Viewing()
}

func (e *Editor) Save(ctx context.Context, amount decimal.Decimal) (*Reserve, error) {
	reserveID, ok := e.state.ReserveID()
	if !ok {
		return nil, ErrNotEditing
	}

	saved, err := e.ledger.Update(ctx, e.owner, reserveID, UpdateReserveDTO{Amount: amount})
	if err != nil {
		return nil, err
	}

	e.state = Viewing()
	return saved, nil
}
