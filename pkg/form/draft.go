// Package form models records under construction.
//
// A Draft mirrors a form: the caller feeds it every name change and it
// re-derives the advisory code against the live collection. Nothing is
// written until Submit, which lets the collection derive the code again
// against the snapshot current at that moment.
package form

import (
	"context"

	"github.com/aretw0/slate/pkg/core"
	"github.com/aretw0/slate/pkg/typed"
)

// Draft is a transient record under construction.
type Draft[R core.Record] struct {
	coll     *typed.Collection[R]
	name     string
	code     string
	onChange func(name, code string)
}

// NewDraft creates an empty draft bound to coll.
func NewDraft[R core.Record](coll *typed.Collection[R]) *Draft[R] {
	return &Draft[R]{coll: coll}
}

// OnChange registers fn to be called whenever the derived code is
// recomputed. Passing nil removes the callback.
func (d *Draft[R]) OnChange(fn func(name, code string)) {
	d.onChange = fn
}

// Name returns the current display name.
func (d *Draft[R]) Name() string { return d.name }

// Code returns the advisory code. Empty means "not yet derivable".
func (d *Draft[R]) Code() string { return d.code }

// Ready reports whether the draft currently has a derivable code.
func (d *Draft[R]) Ready() bool { return d.code != "" }

// SetName records a name change and recomputes the code.
func (d *Draft[R]) SetName(ctx context.Context, name string) (string, error) {
	d.name = name
	return d.Refresh(ctx)
}

// Refresh recomputes the code for the current name. Call it when the
// collection is known to have changed under the draft.
func (d *Draft[R]) Refresh(ctx context.Context) (string, error) {
	code, err := d.coll.DeriveCode(ctx, d.name)
	if err != nil {
		return d.code, err
	}
	d.code = code
	if d.onChange != nil {
		d.onChange(d.name, d.code)
	}
	return code, nil
}

// Submit builds and appends the record. The code passed to build is the
// one derived at submission, which may differ from Code() if the
// collection grew since the last refresh. On success the draft is reset.
func (d *Draft[R]) Submit(ctx context.Context, build func(code string) R) (R, error) {
	return d.SubmitChecked(ctx, nil, build)
}

// SubmitChecked is Submit with a precondition evaluated against the
// snapshot at the time of the write (see typed.Collection.CreateChecked).
func (d *Draft[R]) SubmitChecked(ctx context.Context, check func(snapshot []R) error, build func(code string) R) (R, error) {
	rec, err := d.coll.CreateChecked(ctx, d.name, check, build)
	if err != nil {
		return rec, err
	}
	d.Reset()
	return rec, nil
}

// Reset clears the draft.
func (d *Draft[R]) Reset() {
	d.name = ""
	d.code = ""
}
