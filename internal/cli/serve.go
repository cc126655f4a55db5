package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"lightline-cli/internal/preview"
	"lightline-cli/internal/store"
)

func newServeCmd(app *App) *cobra.Command {
	var (
		addr  string
		fps   int
		watch time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Stream a looping playback of the level over a websocket",
		Long: strings.TrimSpace(`
Serve a playback preview of the current level.

  GET /level    the level as json
  GET /frames   websocket; one json frame per tick: {t, frame_id, lights, effects}
  GET /health   clock and client count
`),
		Example: strings.TrimSpace(`
# Preview on localhost, reloading whenever the level is saved
lightline serve --addr 127.0.0.1:8080 --watch 1s
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			name, err := currentLevel(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			settings := cfg.PreviewSettings()
			if !cmd.Flags().Changed("addr") {
				addr = settings.Addr
			}
			if !cmd.Flags().Changed("fps") {
				fps = settings.FPS
			}
			if fps < 1 {
				return writeErr(cmd, errors.New("--fps must be at least 1"))
			}

			ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			lvl, rec, err := s.LoadLevel(ctx, name)
			if err != nil {
				return writeErr(cmd, err)
			}
			srv := preview.NewServer(lvl, fps)

			ln, err := net.Listen("tcp", strings.TrimSpace(addr))
			if err != nil {
				return writeErr(cmd, err)
			}
			httpSrv := &http.Server{Handler: srv.Handler(), ReadHeaderTimeout: 5 * time.Second}

			go srv.Run(ctx)
			if watch > 0 {
				go watchLevel(ctx, s, rec.Name, rec.Hash, watch, srv)
			}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = httpSrv.Shutdown(shutdownCtx)
			}()

			actual := ln.Addr().String()
			_ = writeData(cmd, app, map[string]any{
				"addr":      actual,
				"frames":    "ws://" + actual + "/frames",
				"level":     rec.Name,
				"fps":       fps,
				"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
			})
			fmt.Fprintf(cmd.ErrOrStderr(), "Lightline preview of %s at http://%s/ (ctrl+c to stop)\n", rec.Name, actual)

			if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Bind address (default: preview.addr from config)")
	cmd.Flags().IntVar(&fps, "fps", 30, "Frames per second (default: preview.fps from config)")
	cmd.Flags().DurationVar(&watch, "watch", 0, "Reload the level when its saved version changes, polling at this interval")
	return cmd
}

// watchLevel polls the store and swaps in newly saved versions of a level.
func watchLevel(ctx context.Context, s store.Store, name, hash string, every time.Duration, srv *preview.Server) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			lvl, rec, err := s.LoadLevel(ctx, name)
			if err != nil {
				log.Debug().Err(err).Str("levelName", name).Msg("watch level")
				continue
			}
			if rec.Hash == hash {
				continue
			}
			hash = rec.Hash
			srv.SetLevel(lvl)
			log.Info().Str("levelName", name).Str("hash", hash).Msg("level reloaded")
		}
	}
}
