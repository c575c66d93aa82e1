package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/billmal071/pavilion/internal/cache"
	"github.com/billmal071/pavilion/internal/config"
	"github.com/billmal071/pavilion/internal/db"
	"github.com/billmal071/pavilion/internal/library"
	"github.com/billmal071/pavilion/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the library server",
	Long: `Run the REST backend that stores books.

Storage is sqlite by default; set database.driver=postgres and
database.dsn to use PostgreSQL. Set redis.addr to cache book lookups.

Examples:
  pavilion serve
  pavilion serve --addr :9000 --upload-dir /srv/books`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from server.addr)")
	serveCmd.Flags().String("upload-dir", "", "directory for stored files (default from server.upload_dir)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if dir, _ := cmd.Flags().GetString("upload-dir"); dir != "" {
		cfg.Server.UploadDir = dir
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	if err := db.Init(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	opts := []library.Option{
		library.WithMaxUploadSize(cfg.Server.MaxUploadSize),
		library.WithLogger(logger.With().Str("component", "library").Logger()),
	}
	if cfg.Redis.Addr != "" {
		rdb, err := cache.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		opts = append(opts, library.WithCache(cache.NewBookCache(rdb, cfg.Redis.TTL)))
		Printf("Caching books in redis at %s\n", cfg.Redis.Addr)
	}

	svc := library.NewService(db.NewBookRepo(db.DB()), cfg.Server.UploadDir, opts...)
	srv := server.New(svc, cfg.Server, logger.With().Str("component", "server").Logger())

	fmt.Printf("Listening on %s (%s, uploads in %s)\n", cfg.Server.Addr, cfg.Database.Driver, cfg.Server.UploadDir)
	return srv.Run(ctx)
}
