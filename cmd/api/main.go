package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"spacerh.dev/internal/auth"
	"spacerh.dev/internal/config"
	"spacerh.dev/internal/hr"
	"spacerh.dev/internal/httpapi"
	"spacerh.dev/internal/obs"
	"spacerh.dev/internal/store/pg"
	"spacerh.dev/internal/stream"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}

	var (
		store   hr.Store
		pgStore *pg.Store
	)
	if cfg.Database.DSN != "" {
		var err error
		pgStore, err = pg.Open(cfg.Database.DSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		store = pgStore
	} else {
		log.Printf("no database configured, using in-memory store")
		store = hr.NewInMemory()
	}

	svc, err := hr.NewService(store)
	if err != nil {
		log.Fatalf("init service: %v", err)
	}

	if err := bootstrapAdmin(context.Background(), svc, cfg.Bootstrap); err != nil {
		log.Fatalf("bootstrap admin: %v", err)
	}

	lockouts := auth.NewLockoutTracker()
	sched := cron.New()
	if _, err := sched.AddFunc("@every 10m", func() { lockouts.PurgeExpired() }); err != nil {
		log.Fatalf("schedule lockout purge: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	probe := httpapi.ReadyProbe{}
	if pgStore != nil {
		probe.DB = pgStore.DB()
	}

	api := httpapi.New(probe, version, svc, lockouts, stream.New())

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.WriteTimeout * 4,
	}

	log.Printf("Starting space-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if pgStore != nil {
		_ = pgStore.Close()
	}
	log.Println("Stopped")
}

// bootstrapAdmin creates the first admin account when the configured
// email does not exist yet, so repeated starts are harmless.
func bootstrapAdmin(ctx context.Context, svc *hr.Service, bs config.BootstrapConfig) error {
	if bs.AdminEmail == "" {
		return nil
	}
	if _, err := svc.GetUserByEmail(ctx, bs.AdminEmail); err == nil {
		return nil
	}
	cpf := bs.AdminCPF
	if cpf == "" {
		cpf = "00000000000"
	}
	_, err := svc.CreateUser(ctx, hr.NewUser{
		FirstName: "Admin",
		LastName:  "SPACE",
		CPF:       cpf,
		Email:     bs.AdminEmail,
		Password:  bs.AdminPassword,
		Role:      hr.RoleAdmin,
	})
	if err != nil {
		return err
	}
	log.Printf("bootstrapped admin account %s", bs.AdminEmail)
	return nil
}
