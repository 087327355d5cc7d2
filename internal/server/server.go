package server

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/google/uuid"
	comms "github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/morezero/action-gateway/internal/config"
	"github.com/morezero/action-gateway/internal/metrics"
	"github.com/morezero/action-gateway/pkg/action"
	"github.com/morezero/action-gateway/pkg/bootstrap"
	"github.com/morezero/action-gateway/pkg/catalog"
	"github.com/morezero/action-gateway/pkg/commsutil"
	"github.com/morezero/action-gateway/pkg/engine"
	"github.com/morezero/action-gateway/pkg/policy"
)

const logPrefix = "server:server"

// Options configures Run.
type Options struct {
	// Registry holds the application's actions; merged over the built-in
	// system actions. Nil serves the built-ins alone.
	Registry *action.Registry
}

// Server is the action-gateway orchestrator.
type Server struct {
	cfg        *config.Config
	nc         *comms.Conn
	httpServer *http.Server
	eng        *engine.Engine
}

// BuildEngine constructs the engine from config and bootstrap: policy from
// env, deny rules and message catalogs from the bootstrap file, built-in
// actions plus the application registry. Shared by Run and the manifest
// CLI command.
func BuildEngine(cfg *config.Config, appRegistry *action.Registry, publisher *metrics.Collector) (*engine.Engine, error) {
	bootCfg, err := bootstrap.LoadConfig(cfg.BootstrapFile)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to load bootstrap config: %w", logPrefix, err)
	}

	pol, err := policy.New(policy.Params{
		Passkey:     cfg.Passkey,
		VersionNow:  cfg.VersionNow,
		VersionMin:  cfg.VersionMin,
		ForceUpdate: cfg.ForceUpdate,
	})
	if err != nil {
		return nil, fmt.Errorf("%s - failed to build policy: %w", logPrefix, err)
	}

	cat := catalog.New(bootCfg.DefaultLang)
	if err := bootCfg.Apply(pol, cat); err != nil {
		return nil, fmt.Errorf("%s - failed to apply bootstrap config: %w", logPrefix, err)
	}

	reg := action.NewRegistry()
	if err := registerBuiltins(reg); err != nil {
		return nil, fmt.Errorf("%s - failed to register built-in actions: %w", logPrefix, err)
	}
	reg.Merge(appRegistry)

	params := engine.Params{Registry: reg, Policy: pol, Catalog: cat}
	if publisher != nil {
		params.Publisher = publisher
	}
	return engine.New(params)
}

// Run starts the gateway, blocks until shutdown signal, then cleans up.
func Run(opts Options) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("%s - failed to load config: %w", logPrefix, err)
	}
	if err := cfg.ValidateForServe(); err != nil {
		return err
	}

	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info(fmt.Sprintf("%s - Starting action-gateway", logPrefix))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	collector := metrics.NewCollector(prometheus.DefaultRegisterer)
	eng, err := BuildEngine(cfg, opts.Registry, collector)
	if err != nil {
		return err
	}

	s := &Server{cfg: cfg, eng: eng}

	// Connect to NATS
	nc, err := commsutil.Connect(cfg.COMMSURL, cfg.COMMSName)
	if err != nil {
		return fmt.Errorf("%s - failed to connect to NATS: %w", logPrefix, err)
	}
	s.nc = nc

	// Subscribe to the dispatch subjects, one per protocol entry point
	subs, err := s.subscribeDispatch(ctx)
	if err != nil {
		nc.Close()
		return err
	}

	// Serve the manifest over its own subject
	manifestSub, err := nc.Subscribe(commsutil.SubjectManifest, func(msg *comms.Msg) {
		manifest, err := eng.Manifest()
		if err != nil {
			slog.Error(fmt.Sprintf("%s - manifest build: %v", logPrefix, err))
			return
		}
		data, err := json.Marshal(manifest)
		if err != nil {
			slog.Error(fmt.Sprintf("%s - manifest encode: %v", logPrefix, err))
			return
		}
		msg.Respond(data)
	})
	if err != nil {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
		nc.Close()
		return fmt.Errorf("%s - failed to subscribe to %s: %w", logPrefix, commsutil.SubjectManifest, err)
	}
	slog.Info(fmt.Sprintf("%s - Subscribed to %s", logPrefix, commsutil.SubjectManifest))

	// HTTP surface
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHome())
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/manifest", func(w http.ResponseWriter, r *http.Request) {
		manifest, err := eng.Manifest()
		if err != nil {
			http.Error(w, "manifest unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(manifest)
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "healthy",
			"actions":   eng.Registry().Len(),
			"comms":     nc.IsConnected(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	httpAddr := fmt.Sprintf(":%d", cfg.HTTPPort)
	s.httpServer = &http.Server{Addr: httpAddr, Handler: mux}
	go func() {
		slog.Info(fmt.Sprintf("%s - HTTP server listening on %s", logPrefix, httpAddr))
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error(fmt.Sprintf("%s - HTTP server error: %v", logPrefix, err))
		}
	}()

	slog.Info(fmt.Sprintf("%s - Action gateway is ready (%d actions)", logPrefix, eng.Registry().Len()))

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info(fmt.Sprintf("%s - Received signal %s, shutting down", logPrefix, sig))

	for _, sub := range subs {
		sub.Unsubscribe()
	}
	manifestSub.Unsubscribe()
	s.httpServer.Shutdown(ctx)
	nc.Drain()

	slog.Info(fmt.Sprintf("%s - Shutdown complete", logPrefix))
	return nil
}

// subscribeDispatch wires one NATS subscription per protocol entry point.
func (s *Server) subscribeDispatch(ctx context.Context) ([]*comms.Subscription, error) {
	entryPoints := []struct {
		subject  string
		dispatch func(context.Context, *action.Request) *action.Envelope
	}{
		{commsutil.SubjectDispatchAPI, s.eng.DispatchAPI},
		{commsutil.SubjectDispatchServer, s.eng.DispatchServer},
		{commsutil.SubjectDispatchSystem, s.eng.DispatchSystem},
	}

	subs := make([]*comms.Subscription, 0, len(entryPoints))
	for _, ep := range entryPoints {
		dispatch := ep.dispatch
		sub, err := s.nc.Subscribe(ep.subject, func(msg *comms.Msg) {
			var req DispatchRequest
			if err := json.Unmarshal(msg.Data, &req); err != nil {
				slog.Error(fmt.Sprintf("%s - failed to decode request: %v", logPrefix, err))
				data, _ := json.Marshal(&DispatchResponse{OK: false})
				msg.Respond(data)
				return
			}
			if req.ID == "" {
				req.ID = uuid.NewString()
			}

			reqCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
			defer cancel()

			env := dispatch(reqCtx, req.toRequest())

			data, err := json.Marshal(&DispatchResponse{ID: req.ID, OK: env.OK(), Envelope: env})
			if err != nil {
				slog.Error(fmt.Sprintf("%s - failed to encode response: %v", logPrefix, err))
				return
			}
			msg.Respond(data)
		})
		if err != nil {
			for _, opened := range subs {
				opened.Unsubscribe()
			}
			return nil, fmt.Errorf("%s - failed to subscribe to %s: %w", logPrefix, ep.subject, err)
		}
		slog.Info(fmt.Sprintf("%s - Subscribed to %s", logPrefix, ep.subject))
		subs = append(subs, sub)
	}
	return subs, nil
}

// homePageTemplate is the HTML for the gateway status page.
const homePageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Action Gateway</title>
  <style>
    * { box-sizing: border-box; }
    body { background: #fff; color: #000; font-family: system-ui, sans-serif; margin: 0; padding: 2rem; line-height: 1.5; }
    a { color: #0066cc; }
    h1, h2 { color: #0066cc; }
    table { border-collapse: collapse; width: 100%; max-width: 700px; margin-top: 0.5rem; }
    th, td { text-align: left; padding: 0.5rem 0.75rem; border: 1px solid #ccc; }
    th { background: #f0f4f8; color: #0066cc; }
    .stat { font-weight: bold; color: #0066cc; }
    .meta { color: #333; font-size: 0.9rem; margin-top: 1rem; }
    section { margin-bottom: 2rem; }
  </style>
</head>
<body>
  <h1>Action Gateway</h1>
  <p class="meta">Registered actions and version contract. <a href="/manifest">Manifest</a> · <a href="/metrics">Metrics</a> · <a href="/health">Health</a></p>

  <section>
    <h2>Version contract</h2>
    <p>Current: <span class="stat">{{.VersionNow}}</span> · Minimum: <span class="stat">{{.VersionMin}}</span> · Force update: <span class="stat">{{.ForceUpdate}}</span></p>
  </section>

  <section>
    <h2>Actions</h2>
    <table>
      <thead>
        <tr><th>Action key</th><th>API visible</th><th>Server visible</th></tr>
      </thead>
      <tbody>
        {{range .Actions}}
        <tr>
          <td>{{.Key}}</td>
          <td>{{if .API}}yes{{else}}denied{{end}}</td>
          <td>{{if .Server}}yes{{else}}denied{{end}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>
  </section>
</body>
</html>
`

// homeData is the data passed to the status page template.
type homeData struct {
	VersionNow  string
	VersionMin  string
	ForceUpdate bool
	Actions     []actionRow
}

type actionRow struct {
	Key    string
	API    bool
	Server bool
}

// handleHome returns an HTTP handler for the gateway status page.
func (s *Server) handleHome() http.HandlerFunc {
	tmpl := template.Must(template.New("home").Parse(homePageTemplate))
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		snap := s.eng.Policy().Snapshot()
		keys := s.eng.Registry().Keys()
		sort.Strings(keys)

		data := homeData{
			VersionNow:  snap.VersionNow,
			VersionMin:  snap.VersionMin,
			ForceUpdate: snap.ForceUpdate,
		}
		for _, key := range keys {
			data.Actions = append(data.Actions, actionRow{
				Key:    key,
				API:    !s.eng.Policy().Denied(key, action.ProtocolAPI),
				Server: !s.eng.Policy().Denied(key, action.ProtocolServer),
			})
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			slog.Error(fmt.Sprintf("%s - home template execute: %v", logPrefix, err))
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}
