package outbox

import (
	"context"

	appoutbox "dwelling/internal/app/outbox"
)

// Wakeup cuts the worker's poll wait short after a commit. Notifications
// coalesce: many commits before the worker looks yield one extra drain.
type Wakeup struct {
	ch chan struct{}
}

func NewWakeup() *Wakeup {
	return &Wakeup{ch: make(chan struct{}, 1)}
}

func (w *Wakeup) Notify() {
	if w == nil {
		return
	}
	select {
	case w.ch <- struct{}{}:
	default:
	}
}

// C is nil for a nil Wakeup, which blocks forever in a select.
func (w *Wakeup) C() <-chan struct{} {
	if w == nil {
		return nil
	}
	return w.ch
}

// Notifying wakes the worker whenever the wrapped outbox is flushed.
type Notifying struct {
	appoutbox.Outbox
	Wakeup *Wakeup
}

func (n Notifying) Flush(ctx context.Context) error {
	if err := n.Outbox.Flush(ctx); err != nil {
		return err
	}
	n.Wakeup.Notify()
	return nil
}
