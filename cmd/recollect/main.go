package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/always-cache/recollect"
	"github.com/always-cache/recollect/store"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

var (
	// CLI flags
	portFlag           int
	configFilenameFlag string
	dbFilenameFlag     string
	reapplyOn304Flag   bool
	verbosityTraceFlag bool
	logFilenameFlag    string

	// this is set by goreleaser
	version string
)

func init() {
	flag.IntVar(&portFlag, "port", 8080, "Port to listen on")
	flag.StringVar(&configFilenameFlag, "config", "", "Path to YAML policy file")
	flag.StringVar(&dbFilenameFlag, "db", "", "SQLite policy DB file name (policies from -config are stored in it)")
	flag.BoolVar(&reapplyOn304Flag, "extend-on-304", false, "Reapply policies to 304 responses when the policy allows it")
	flag.BoolVar(&verbosityTraceFlag, "vv", false, "Verbosity: trace logging")
	flag.StringVar(&logFilenameFlag, "log-file", "", "Log file to use (in addition to stdout)")

	if version == "" {
		version = "DEV"
	}
}

func main() {
	flag.Parse()

	// set log level
	logLevel := zerolog.DebugLevel
	if verbosityTraceFlag {
		logLevel = zerolog.TraceLevel
	}

	// set up log output to stdout
	// also output to logfile if specified
	logOutputs := make([]io.Writer, 0)
	logOutputs = append(logOutputs, zerolog.ConsoleWriter{Out: os.Stdout})
	if logFilenameFlag != "" {
		if logFileOutput, err := os.OpenFile(logFilenameFlag, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644); err != nil {
			log.Fatal().Err(err).Msg("Cannot open log file")
		} else {
			logOutputs = append(logOutputs, logFileOutput)
		}
	}
	multiWriter := zerolog.MultiLevelWriter(logOutputs...)
	log.Logger = log.Level(logLevel).Output(multiWriter).
		With().Str("version", version).Logger()

	registry, err := loadRegistry(configFilenameFlag, dbFilenameFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load cache policies")
	}
	log.Info().Msgf("Loaded %d cache policies", registry.Len())
	for _, rule := range registry.Rules() {
		log.Debug().
			Str("key", store.Key(rule)).
			Int("clientCacheSeconds", rule.Policy.ClientCacheSeconds).
			Stringer("publicCache", rule.Policy.PublicCache).
			Msg("Cache policy")
	}

	clientCache := recollect.New(recollect.Config{
		Logger:               &log.Logger,
		Authenticated:        hasBasicAuth,
		ReapplyOnNotModified: reapplyOn304Flag,
	})

	log.Info().Msgf("Listening on port %v", portFlag)
	err = http.ListenAndServe(fmt.Sprintf(":%d", portFlag), newRouter(clientCache, registry, log.Logger))

	if err != nil {
		panic(err)
	}
}

// loadRegistry builds the registry from the config file and the policy db.
// With both, the config rules are stored in the db first and the db is the
// source of the registry, so the db keeps rules of earlier runs as well.
// Without either, the built-in sample policies are used.
func loadRegistry(configFilename, dbFilename string) (*recollect.Registry, error) {
	registry := recollect.NewRegistry()

	var config recollect.FileConfig
	if configFilename != "" {
		var err error
		if config, err = recollect.LoadConfig(configFilename); err != nil {
			return nil, err
		}
	}

	if dbFilename == "" {
		config.Register(registry)
	} else {
		policyStore, err := store.NewSQLiteStore(dbFilename)
		if err != nil {
			return nil, err
		}
		defer policyStore.Close()
		for _, ruleConfig := range config.Policies {
			if err := policyStore.Put(ruleConfig.Rule()); err != nil {
				return nil, err
			}
		}
		n, err := store.Load(policyStore, registry)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("db", dbFilename).Int("stored", len(config.Policies)).Msgf("Loaded %d policies from db", n)
	}

	if registry.Len() == 0 {
		registerSamplePolicies(registry)
	}
	return registry, nil
}

// hasBasicAuth stands in for real authentication in the sample server.
func hasBasicAuth(r *http.Request) bool {
	user, _, ok := r.BasicAuth()
	return ok && user != ""
}

func newRouter(clientCache *recollect.ClientCache, registry *recollect.Registry, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(hlog.NewHandler(logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Debug().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Sending response to client")
	}))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(clientCache.Handler(registry))
		r.Get("/api/product/{id}", getProduct)
		r.Get("/api/info/servertime", getServerTime)
	})
	return r
}
