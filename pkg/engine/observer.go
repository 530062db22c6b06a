package engine

import (
	"context"
	"log/slog"

	"mercator-hq/saturn/pkg/brl/ast"
	brlerrors "mercator-hq/saturn/pkg/brl/errors"
	"mercator-hq/saturn/pkg/telemetry/logging"
	"mercator-hq/saturn/pkg/telemetry/tracing"
)

// observer traces and logs each declaration body the resolver walks.
type observer struct {
	tracer *tracing.Tracer
	logger *slog.Logger
}

func (o *observer) BodyStarted(ctx context.Context, d ast.Decl) context.Context {
	ctx = logging.WithDeclaration(ctx, d.DeclName())
	return o.tracer.BodyStarted(ctx, d)
}

func (o *observer) BodyFinished(ctx context.Context, d ast.Decl, errs *brlerrors.ErrorList) {
	logging.FromContext(ctx, o.logger).Debug("declaration resolved",
		"kind", tracing.DeclKind(d),
		"diagnostics", errs.Count(),
	)
	o.tracer.BodyFinished(ctx, d, errs)
}
