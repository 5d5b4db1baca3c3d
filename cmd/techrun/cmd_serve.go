package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sawpanic/techrun/internal/application"
	"github.com/sawpanic/techrun/internal/config"
	"github.com/sawpanic/techrun/internal/metrics"
	httpapi "github.com/sawpanic/techrun/internal/interfaces/http"
)

func runServe(cmd *cobra.Command, env config.Env) error {
	fs := cmd.Flags()
	addr, _ := fs.GetString("addr")
	rps, _ := fs.GetFloat64("rps")
	runOnStart, _ := fs.GetBool("run-on-start")
	every, _ := fs.GetDuration("every")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := metrics.NewRegistry()
	hub := httpapi.NewHub(reg)
	st, err := buildStack(ctx, env, readDatasetFlags(cmd), readStorageFlags(cmd), hub, reg)
	if err != nil {
		return err
	}
	defer st.Close()

	srvCfg := httpapi.DefaultServerConfig()
	srvCfg.Addr = addr
	srvCfg.RequestsPerSec = rps
	srvCfg.Version = version
	server := httpapi.NewServer(srvCfg, st.svc, reg, hub)

	if runOnStart {
		scheduledRun(ctx, st.svc)
	}
	if every > 0 {
		go runEvery(ctx, st.svc, every)
	}

	return server.Start(ctx)
}

func runEvery(ctx context.Context, svc *application.Service, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	log.Info().Dur("every", every).Msg("Scheduled runs enabled")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			scheduledRun(ctx, svc)
		}
	}
}

func scheduledRun(ctx context.Context, svc *application.Service) {
	res, err := svc.Execute(ctx, application.RunRequest{})
	switch {
	case errors.Is(err, application.ErrRunInProgress):
		log.Warn().Msg("Skipping scheduled run, previous run still executing")
	case res == nil:
		log.Error().Err(err).Msg("Scheduled run failed")
	default:
		if err != nil {
			log.Error().Err(err).Str("run_id", res.RunID).Msg("Scheduled run was not stored")
		}
		log.Info().
			Str("run_id", res.RunID).
			Int("signals", res.Summary.Signals).
			Int("high_conviction", res.Summary.HighConviction).
			Msg("Scheduled run completed")
	}
}
