// Package gate runs the full pipeline: load the reference catalog and the
// workbook, check, and optionally repair, commit and re-verify.
//
// The catalog and workbook are reloaded from disk after every commit so a
// verification pass never sees an in-memory catalog that drifted from the
// documents.
package gate

import (
	"context"

	"github.com/agentstation/specgate/pkg/catalog"
	"github.com/agentstation/specgate/pkg/checker"
	"github.com/agentstation/specgate/pkg/logging"
	"github.com/agentstation/specgate/pkg/repair"
	"github.com/agentstation/specgate/pkg/report"
	"github.com/agentstation/specgate/pkg/tabular"
)

// Store is the workbook the gate reads and repairs.
type Store interface {
	Path() string
	Load(ctx context.Context) (*tabular.Book, error)
	Commit(ctx context.Context, ops []tabular.Op) error
}

// CatalogLoader builds a fresh reference catalog from the source documents.
type CatalogLoader interface {
	Load(ctx context.Context) (*catalog.Catalog, error)
}

// Result is the outcome of a gate run.
type Result struct {
	Report   *checker.Report
	Document report.Document
	// Plans are the committed repair plans, in order. Empty for check-only runs.
	Plans []*repair.Plan
	// Changes is nil for check-only runs.
	Changes *report.Changes
}

// ExitCode is the process exit status for the run.
func (r *Result) ExitCode() int {
	return r.Document.Policy.ExitCode(r.Report)
}

// Err returns a GateFailedError when a gating check failed.
func (r *Result) Err() error {
	return r.Document.Policy.Err(r.Report)
}

// Gate wires the pipeline stages together.
type Gate struct {
	catalogs CatalogLoader
	store    Store
	checker  *checker.Checker
	repair   *repair.Engine
	policy   report.Policy
	publish  bool
}

// Option configures a Gate.
type Option func(*Gate)

// WithChecker replaces the default checker.
func WithChecker(c *checker.Checker) Option {
	return func(g *Gate) { g.checker = c }
}

// WithRepairEngine replaces the default repair engine.
func WithRepairEngine(e *repair.Engine) Option {
	return func(g *Gate) { g.repair = e }
}

// WithPolicy sets the gating policy.
func WithPolicy(p report.Policy) Option {
	return func(g *Gate) { g.policy = p }
}

// WithPublish controls whether repair runs write the validation sheet.
// It is on by default.
func WithPublish(on bool) Option {
	return func(g *Gate) { g.publish = on }
}

// New returns a gate over the given catalog sources and workbook.
func New(catalogs CatalogLoader, store Store, opts ...Option) *Gate {
	g := &Gate{
		catalogs: catalogs,
		store:    store,
		checker:  checker.New(),
		repair:   repair.New(),
		policy:   report.DefaultPolicy(),
		publish:  true,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check runs a read-only pass.
func (g *Gate) Check(ctx context.Context) (*Result, error) {
	if err := g.policy.Validate(); err != nil {
		return nil, err
	}
	_, r, err := g.pass(ctx)
	if err != nil {
		return nil, err
	}
	return g.result(ctx, r, nil, nil), nil
}

// Repair checks, repairs, commits, re-verifies with freshly loaded
// documents, publishes the validation sheet and verifies once more. Any
// fatal error aborts the run before a result exists.
func (g *Gate) Repair(ctx context.Context) (*Result, error) {
	if err := g.policy.Validate(); err != nil {
		return nil, err
	}
	log := logging.FromContext(ctx)

	wb, r, err := g.pass(ctx)
	if err != nil {
		return nil, err
	}

	plans := []*repair.Plan{}
	plan, err := g.repair.Plan(ctx, wb, r)
	if err != nil {
		return nil, err
	}
	if !plan.Empty() {
		if err := g.store.Commit(ctx, plan.Ops); err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}

	wb, r, err = g.pass(ctx)
	if err != nil {
		return nil, err
	}

	if g.publish {
		g.policy.Apply(r)
		pub, err := g.repair.Publish(ctx, wb, r)
		if err != nil {
			return nil, err
		}
		if !pub.Empty() {
			if err := g.store.Commit(ctx, pub.Ops); err != nil {
				return nil, err
			}
			plans = append(plans, pub)
		}
		if _, r, err = g.pass(ctx); err != nil {
			return nil, err
		}
	}

	changes := report.NewChanges(g.store.Path(), plans...)
	log.Info().
		Int("entries", len(changes.Entries)).
		Int("sheets_added", changes.SheetsAdded).
		Int("cells_changed", changes.CellsChanged).
		Msg("Repair complete")
	return g.result(ctx, r, plans, &changes), nil
}

// pass loads fresh copies of the catalog and workbook and checks them.
func (g *Gate) pass(ctx context.Context) (*tabular.Book, *checker.Report, error) {
	cat, err := g.catalogs.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	wb, err := g.store.Load(logging.WithDocument(ctx, g.store.Path()))
	if err != nil {
		return nil, nil, err
	}
	r, err := g.checker.Check(ctx, cat, wb)
	if err != nil {
		return nil, nil, err
	}
	return wb, r, nil
}

func (g *Gate) result(ctx context.Context, r *checker.Report, plans []*repair.Plan, changes *report.Changes) *Result {
	res := &Result{
		Report:   r,
		Document: report.NewDocument(r, g.policy, changes != nil),
		Plans:    plans,
		Changes:  changes,
	}
	logging.FromContext(ctx).Info().
		Str("status", string(res.Document.Status)).
		Int("pass", r.PassCount).
		Int("fail", r.FailCount).
		Int("hard_fail", r.HardFailCount).
		Msg("Gate verdict")
	return res
}
