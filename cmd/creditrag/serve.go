package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/creditrag/internal/certs"
	"github.com/Veraticus/creditrag/internal/config"
	"github.com/Veraticus/creditrag/internal/letter"
	"github.com/Veraticus/creditrag/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dispute API over HTTP",
		Long: `Start the HTTP API:

  POST /api/categorize-accounts
  POST /api/resolve-category
  POST /api/generate-dispute
  POST /api/check-compliance
  GET  /api/namespaces
  GET  /healthz`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().Bool("tls", false, "serve HTTPS with a self-signed localhost certificate")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.tls", cmd.Flags().Lookup("tls"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if !strings.EqualFold(viper.GetString("logging.level"), "debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	format, err := letter.ParseFormat(viper.GetString("letters.format"))
	if err != nil {
		return err
	}

	a, err := newApp(ctx, appNeeds{generator: true})
	if err != nil {
		return err
	}
	defer a.Close()

	var namespaces server.NamespaceLister
	if a.index != nil {
		namespaces = a.index
	}

	cfg := server.Config{
		Addr:         viper.GetString("server.addr"),
		LetterFormat: format,
		CORSOrigins:  viper.GetStringSlice("server.cors_origins"),
	}
	if viper.GetBool("server.tls") {
		dir := viper.GetString("server.cert_dir")
		if dir == "" {
			dir = filepath.Join(config.ConfigDir(), "certs")
		}
		store := certs.NewStore(config.ExpandPath(dir))
		tlsCfg, err := store.TLSConfig()
		if err != nil {
			return fmt.Errorf("prepare TLS certificate: %w", err)
		}
		slog.Info("Using self-signed certificate", "cert", store.CertFile())
		cfg.TLS = tlsCfg
	}

	srv := server.New(a.engine, namespaces, cfg, slog.Default())

	return srv.Run(ctx)
}
