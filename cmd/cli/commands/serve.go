package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/exam-timetabler/pkg/api"
	"github.com/jakechorley/exam-timetabler/pkg/core/services"
)

// ServeCmd creates the serve command
func ServeCmd(app *AppContext) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve timetable generation over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = app.Cfg.Server.Addr
			}

			defaults, err := services.OptionsFromConfig(app.Cfg, time.Now())
			if err != nil {
				return err
			}
			if app.Cfg.Horizon.StartDate == "" {
				// Let each request start from its own today
				defaults.Horizon.StartDate = time.Time{}
			}

			server := api.NewServer(app.Store, app.Engine, defaults, app.Logger)
			srv := &http.Server{
				Addr:              addr,
				Handler:           server.Mux,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				app.Logger.Info("Listening", zap.String("addr", addr))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-app.Ctx.Done():
			}

			app.Logger.Info("Shutting down server")
			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(app.Cfg.Server.ShutdownTimeout)*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				return fmt.Errorf("failed to shut down server: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to server.addr)")

	return cmd
}
