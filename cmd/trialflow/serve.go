package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/florandr/trialflow"
	"github.com/florandr/trialflow/internal/cli"
	httpAdapter "github.com/florandr/trialflow/pkg/adapters/http"
	"github.com/florandr/trialflow/pkg/adapters/memory"
	"github.com/florandr/trialflow/pkg/observability"
	redisadapter "github.com/florandr/trialflow/pkg/adapters/redis"
	"github.com/florandr/trialflow/pkg/ports"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the results HTTP server",
	Long:  `Serves collected run data and live lifecycle events over a JSON API with SSE.`,
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetString("port")
		storeKind, _ := cmd.Flags().GetString("store")
		redisAddr, _ := cmd.Flags().GetString("redis-addr")

		var store ports.DataStore
		switch storeKind {
		case "memory":
			store = memory.NewStore()
		case "redis":
			store = redisadapter.New(redisAddr, "", 0)
		default:
			fmt.Printf("Error: unknown store %q (expected memory or redis)\n", storeKind)
			os.Exit(1)
		}

		// The server's hooks must be on the engine so trials run through it
		// reach /events subscribers.
		api := httpAdapter.NewServer(store, nil)
		engine := trialflow.New(
			trialflow.WithPlugins(cli.BuiltinPlugins()...),
			trialflow.WithLifecycleHooks(api.Hooks()),
		)
		api.Engine = engine

		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())
		mux.Handle("/", api.Handler())

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: mux,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Trialflow Server on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Trialflow Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("store", "memory", "Persistence backend: memory or redis")
	serveCmd.Flags().String("redis-addr", "localhost:6379", "Redis address for --store redis")
}
