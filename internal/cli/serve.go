package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mediatopo/pkg/analysis"
	"github.com/matzehuels/mediatopo/pkg/buildinfo"
	"github.com/matzehuels/mediatopo/pkg/errors"
	topoio "github.com/matzehuels/mediatopo/pkg/io"
	"github.com/matzehuels/mediatopo/pkg/mediactl"
	"github.com/matzehuels/mediatopo/pkg/metrics"
	"github.com/matzehuels/mediatopo/pkg/observability"
	"github.com/matzehuels/mediatopo/pkg/pipeline"
)

// snapshotHeader carries the id of the topology snapshot a response was
// built from.
const snapshotHeader = "X-Snapshot-ID"

const shutdownTimeout = 5 * time.Second

var contentTypes = map[string]string{
	pipeline.FormatDOT: "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG: "image/svg+xml",
	pipeline.FormatPNG: "image/png",
	pipeline.FormatPDF: "application/pdf",
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		src     sourceFlags
		addr    string
		engine  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the live topology over HTTP",
		Long: `Serve the live topology over HTTP.

Every request reads the topology again, so the responses follow link
changes made with media-ctl. Each response carries the snapshot id in the
X-Snapshot-ID header.

  GET /topology.dot|svg|png|pdf   diagram
  GET /topology.json              parsed model
  GET /links                      links grouped by status
  GET /formats                    sensor and receiver format check
  GET /healthz                    liveness
  GET /metrics                    Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			opts, err := c.options(cmd, &src, nil)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("engine") {
				opts.Engine = engine
			}
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Serve.Addr
			}
			opts.Output = ""
			opts.Formats = nil
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			reg := metrics.NewRegistry()
			reg.Install()
			defer observability.Reset()

			// Resolve auto-detection once; the device does not move while serving.
			source, err := pipeline.SourceFor(ctx, opts)
			if err != nil {
				return err
			}
			s := &server{
				runner:  runner,
				opts:    opts,
				source:  func(context.Context) (mediactl.Source, error) { return source, nil },
				metrics: reg.Handler(),
			}
			return s.listen(ctx, addr)
		},
	}

	src.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default \":8080\")")
	cmd.Flags().StringVar(&engine, "engine", "", "layout engine: graphviz (built in, default), dot (system binary)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// server answers topology requests by running the pipeline per request.
type server struct {
	runner  *pipeline.Runner
	opts    pipeline.Options
	source  func(context.Context) (mediactl.Source, error)
	metrics http.Handler
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(httpHooks)

	r.Get("/healthz", s.handleHealth)
	r.Get("/topology.json", s.handleModel)
	r.Get("/topology.{format}", s.handleDiagram)
	r.Get("/links", s.handleLinks)
	r.Get("/formats", s.handleFormats)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	return r
}

func (s *server) listen(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	printInfo("Serving topology on %s", StyleLink.Render("http://"+displayAddr(addr)+"/topology.svg"))

	select {
	case err := <-errCh:
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	printInfo("Server stopped")
	return nil
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

// run executes the pipeline for formats and sets the snapshot header.
func (s *server) run(w http.ResponseWriter, r *http.Request, formats ...string) (*pipeline.Result, bool) {
	src, err := s.source(r.Context())
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	opts := s.opts
	opts.Formats = formats
	result, err := s.runner.Execute(r.Context(), src, opts)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	w.Header().Set(snapshotHeader, result.ID)
	return result, true
}

func (s *server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeFileNotFound, err, "no such diagram: topology.%s", format))
		return
	}
	result, ok := s.run(w, r, format)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	_, _ = w.Write(result.Artifacts[format])
}

func (s *server) handleModel(w http.ResponseWriter, r *http.Request) {
	result, ok := s.run(w, r, pipeline.FormatDOT)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = topoio.WriteJSON(result.Graph, s.opts.Markers, w)
}

func (s *server) handleLinks(w http.ResponseWriter, r *http.Request) {
	result, ok := s.run(w, r, pipeline.FormatDOT)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analysis.SummarizeLinks(result.Graph))
}

func (s *server) handleFormats(w http.ResponseWriter, r *http.Request) {
	result, ok := s.run(w, r, pipeline.FormatDOT)
	if !ok {
		return
	}
	report := analysis.CheckFormats(result.Graph, s.opts.Markers)
	writeJSON(w, http.StatusOK, struct {
		analysis.FormatReport
		OK bool `json:"ok"`
	}{report, report.OK()})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, errors.HTTPStatus(err), map[string]string{
		"error": errors.UserMessage(err),
		"code":  string(code),
	})
}

// httpHooks reports every request to the observability HTTP hooks, labelled
// with the matched route pattern.
func httpHooks(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, route, status, time.Since(start))
	})
}
