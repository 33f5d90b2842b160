package health

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jonwraymond/healthgate/observe"
)

// Liveness paths.
const (
	PathHealth = "/health"
	PathRoot   = "/"
)

// Responder serves liveness queries. Each query runs one full evaluation;
// any other request is answered 404 without running probes.
type Responder struct {
	engine *Engine
	mw     *observe.Middleware
	logger observe.Logger
	encode func(HealthReport) ([]byte, error)
}

// NewResponder creates a responder. A nil middleware or logger disables the
// corresponding telemetry.
func NewResponder(engine *Engine, mw *observe.Middleware, logger observe.Logger) *Responder {
	if mw == nil {
		mw = observe.NopMiddleware()
	}
	if logger == nil {
		logger = observe.NopLogger()
	}
	return &Responder{
		engine: engine,
		mw:     mw,
		logger: logger,
		encode: HealthReport.Encode,
	}
}

// Routes returns the HTTP handler: GET /health and GET / evaluate, every
// other method or path gets an empty 404, as do requests from healthgate's
// own HTTP probes.
func (r *Responder) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(rejectProbeRequests)

	router.Get(PathHealth, r.ServeLiveness)
	router.Get(PathRoot, r.ServeLiveness)

	router.NotFound(notFound)
	router.MethodNotAllowed(notFound)
	return router
}

// ServeLiveness evaluates and writes the JSON report with the resolved code.
func (r *Responder) ServeLiveness(w http.ResponseWriter, req *http.Request) {
	ev := r.Evaluate(req.Context())

	body, err := r.encode(ev.Report)
	if err != nil {
		r.logger.Error(req.Context(), "failed to encode health report",
			observe.Field{Key: "error", Value: err},
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(ev.Report.StatusCode)
	_, _ = w.Write(body)
}

// Evaluate runs one instrumented evaluation.
func (r *Responder) Evaluate(ctx context.Context) Evaluation {
	var ev Evaluation
	run := r.mw.Wrap(func(ctx context.Context) (observe.Summary, error) {
		ev = r.engine.Evaluate(ctx)
		return ev.Summary(), nil
	})
	_, _ = run(ctx)
	return ev
}

// Summary converts the evaluation into its telemetry form.
func (ev Evaluation) Summary() observe.Summary {
	probes := make([]observe.ProbeSummary, 0, 2+len(ev.Outcomes.Presence))
	for i, r := range ev.Outcomes.All() {
		probes = append(probes, observe.ProbeSummary{
			Name:     r.Name,
			Healthy:  r.Healthy,
			Gating:   i < 2,
			Detail:   r.Detail,
			Duration: r.Duration,
		})
	}

	s := observe.Summary{
		Status:        ev.Report.Status,
		StatusCode:    ev.Report.StatusCode,
		Phase:         ev.Report.Phase,
		UptimeSeconds: ev.Report.UptimeSeconds,
		Note:          ev.Report.Note,
		Probes:        probes,
	}
	if ev.UptimeErr != nil {
		s.UptimeError = ev.UptimeErr.Error()
	}
	return s
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNotFound)
}

// rejectProbeRequests stops an evaluation from probing its own listener.
func rejectProbeRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get(HeaderProbe) != "" {
			notFound(w, req)
			return
		}
		next.ServeHTTP(w, req)
	})
}
