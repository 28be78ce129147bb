package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/acme/autocert"

	"yatube/config"
	"yatube/db"
	"yatube/domain"
	"yatube/feed"
	"yatube/follow"
	"yatube/handler"
	"yatube/logging"
	"yatube/mail"
	"yatube/media"
	"yatube/pagecache"
	"yatube/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logging.New("info", "json", nil)
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	log.Info().Str("driver", cfg.Database.Driver).Msg("running database schema migrations")
	conn, err := db.Open(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := db.Migrate(conn); err != nil {
		return err
	}

	st := store.New(conn)
	for _, seed := range cfg.Groups {
		g := domain.Group{Slug: seed.Slug, Title: seed.Title, Description: seed.Description}
		if err := st.EnsureGroup(ctx, &g); err != nil {
			return err
		}
	}

	cacheStore, err := setupCache(ctx, cfg, log)
	if err != nil {
		return err
	}
	mediaStore, err := setupMedia(ctx, cfg)
	if err != nil {
		return err
	}

	h := &handler.Handler{
		Store:        st,
		Feed:         feed.NewAssembler(st, cfg.Feed.PageSize),
		Follows:      follow.NewGraph(st),
		Cache:        pagecache.New(cacheStore, log),
		Media:        mediaStore,
		Mail:         setupMail(cfg, log),
		MailFrom:     cfg.Mail.From,
		BaseURL:      cfg.Server.BaseURL,
		JWTSecret:    cfg.Auth.JWTSecret,
		EnableSignup: cfg.Auth.EnableSignup,
		Environment:  cfg.Env,
		CacheTTL:     cfg.Feed.CacheTTL,
		TokenTTL:     cfg.Auth.TokenTTL,
		StaticDir:    cfg.Server.StaticDir,
		Log:          log,
	}
	if cfg.Media.Backend == "disk" {
		h.MediaDir = cfg.Media.Dir
	}
	e, err := handler.NewServer(h)
	if err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() {
		if cfg.Server.Address != "" {
			log.Info().Str("address", cfg.Server.Address).Msg("listening")
			errc <- e.Start(cfg.Server.Address)
			return
		}
		// Cache certificates to avoid issues with rate limits (https://letsencrypt.org/docs/rate-limits)
		e.AutoTLSManager.Cache = autocert.DirCache(cfg.Server.CertCacheDir)
		if cfg.Server.TLSHost != "" {
			e.AutoTLSManager.HostPolicy = autocert.HostWhitelist(cfg.Server.TLSHost)
		}
		e.Pre(middleware.HTTPSRedirect())
		log.Info().Str("host", cfg.Server.TLSHost).Msg("listening with AutoTLS on :443")
		errc <- e.StartAutoTLS(":443")
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownWait)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func setupCache(ctx context.Context, cfg *config.Config, log zerolog.Logger) (pagecache.Store, error) {
	if cfg.Cache.Backend == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			// Lookups fail open while Redis is down.
			log.Warn().Err(err).Str("addr", cfg.Cache.RedisAddr).Msg("redis unreachable, page cache will be bypassed")
		}
		return pagecache.NewRedisStore(client, cfg.Cache.Prefix), nil
	}

	mem := pagecache.NewMemoryStore()
	if cfg.Cache.JanitorInterval > 0 {
		go mem.Janitor(ctx, cfg.Cache.JanitorInterval)
	}
	return mem, nil
}

func setupMedia(ctx context.Context, cfg *config.Config) (media.Store, error) {
	if cfg.Media.Backend == "minio" {
		s, err := media.NewMinioStore(media.MinioConfig{
			Endpoint:  cfg.Media.Endpoint,
			AccessKey: cfg.Media.AccessKey,
			SecretKey: cfg.Media.SecretKey,
			UseSSL:    cfg.Media.UseSSL,
			Bucket:    cfg.Media.Bucket,
			URLTTL:    cfg.Media.URLTTL,
		})
		if err != nil {
			return nil, err
		}
		return s, s.EnsureBucket(ctx)
	}
	return media.NewDiskStore(filepath.Clean(cfg.Media.Dir), cfg.Media.BaseURL)
}

func setupMail(cfg *config.Config, log zerolog.Logger) mail.Sender {
	if cfg.Mail.Backend == "smtp" {
		return mail.SMTPSender{
			Addr:     cfg.Mail.SMTPAddr,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
		}
	}
	return mail.LogSender{Log: log.With().Str("component", "mail").Logger()}
}
