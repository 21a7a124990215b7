package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	httpHandler "github.com/anthanhphan/go-ramstore/internal/coordinator/adapter/inbound/http"
	"github.com/anthanhphan/go-ramstore/internal/coordinator/adapter/outbound/backup_client"
	"github.com/anthanhphan/go-ramstore/internal/coordinator/adapter/outbound/tablet_catalog"
	"github.com/anthanhphan/go-ramstore/internal/coordinator/config"
	"github.com/anthanhphan/go-ramstore/internal/coordinator/port"
	"github.com/anthanhphan/go-ramstore/internal/coordinator/service"
	"github.com/anthanhphan/go-ramstore/pkg/cluster"
	"github.com/anthanhphan/go-ramstore/pkg/gossip"
	"github.com/anthanhphan/go-ramstore/pkg/idgen"
	"github.com/anthanhphan/gosdk/logger"
)

type App struct {
	cfg     *config.Config
	server  *httpHandler.Server
	gossip  *gossip.GossipAdapter
	backups *backup_client.ClientAdapter
	redis   redis.UniversalClient
	svc     port.RecoveryService
}

func New(configPath string) (*App, error) {
	// 1. Load Config
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Initialize Logger
	logger.InitLogger(&cfg.Logger)

	// 3. Tablet catalog and recovery ids
	var (
		redisClient redis.UniversalClient
		catalog     port.TabletCatalog
		clock       idgen.Clock = &idgen.SystemClock{}
	)
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		catalog = tablet_catalog.NewRedisCatalog(redisClient, cfg.Redis.KeyPrefix)
		clock = idgen.NewRedisClock(redisClient)
	} else {
		logger.Warnw("No redis address configured, tablet catalog is kept in memory", "addr", cfg.Redis.Addr)
		catalog = tablet_catalog.NewMemoryCatalog()
	}

	idGen, err := idgen.New(cfg.Server.CoordinatorID, clock)
	if err != nil {
		return nil, fmt.Errorf("failed to init snowflake: %w", err)
	}

	// 4. Gossip
	// The coordinator carries no server identity, so it never appears in the directory.
	host, _ := os.Hostname()
	gossipAdapter, err := gossip.NewGossipAdapter(gossip.Config{
		Name:     fmt.Sprintf("coordinator-%s-%d", host, cfg.Gossip.Port),
		BindAddr: cfg.Gossip.BindAddr,
		BindPort: cfg.Gossip.Port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init gossip: %w", err)
	}

	// 5. Backup client and recovery manager
	backups := backup_client.NewClientAdapter(backup_client.Config{
		FailureThreshold: cfg.Backup.BreakerFailureThreshold,
		OpenTimeout:      time.Duration(cfg.Backup.BreakerOpenTimeoutMS) * time.Millisecond,
		DefaultTimeout:   cfg.Recovery.RPCTimeout(),
	})

	svc := service.NewRecoveryManager(service.ManagerConfig{
		LocateTimeout:        cfg.Recovery.LocateTimeout(),
		RPCTimeout:           cfg.Recovery.RPCTimeout(),
		RetrievalTimeout:     cfg.Recovery.RetrievalTimeout(),
		RetryInitialInterval: time.Duration(cfg.Recovery.RetryInitialIntervalMS) * time.Millisecond,
		RetryMaxInterval:     time.Duration(cfg.Recovery.RetryMaxIntervalMS) * time.Millisecond,
		MaxConcurrency:       cfg.Recovery.MaxConcurrency,
		MissingSegmentPolicy: cfg.Recovery.Policy(),
		AutoRecover:          cfg.Recovery.AutoRecover,
	}, gossipAdapter, backups, catalog, idGen, service.NewRand(cfg.Recovery.ShuffleSeed))

	gossipAdapter.SetLeaveHandler(func(n cluster.Node) {
		go svc.HandleNodeFailure(n)
	})

	// 6. HTTP Server
	httpServer := httpHandler.NewServer(cfg, svc)

	return &App{
		cfg:     cfg,
		server:  httpServer,
		gossip:  gossipAdapter,
		backups: backups,
		redis:   redisClient,
		svc:     svc,
	}, nil
}

func (a *App) Run() error {
	// Start Gossip
	seeds := make([]string, 0, len(a.cfg.Gossip.Seeds))
	for _, seed := range a.cfg.Gossip.Seeds {
		if seed != "" {
			seeds = append(seeds, seed)
		}
	}
	if len(seeds) > 0 {
		var joinErr error
		for i := 0; i < 5; i++ {
			joinErr = a.gossip.Join(seeds)
			if joinErr == nil {
				break
			}
			logger.Warnw("Failed to join cluster, retrying...", "attempt", i+1, "error", joinErr.Error())
			time.Sleep(2 * time.Second)
		}
		if joinErr != nil {
			logger.Errorw("Failed to join cluster after retries", "error", joinErr.Error())
		}
	}

	// Start HTTP
	logger.Infow("Coordinator starting",
		"addr", a.cfg.Server.Addr,
		"gossip", a.cfg.Gossip.Port,
		"auto_recover", a.cfg.Recovery.AutoRecover)
	serverErrCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			serverErrCh <- err
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr error
	select {
	case sig := <-stop:
		logger.Infow("Shutdown signal received", "signal", sig.String())
	case err := <-serverErrCh:
		runErr = fmt.Errorf("http server failed: %w", err)
		logger.Errorw("Coordinator server exited unexpectedly", "error", err.Error())
	}

	logger.Info("Shutting down coordinator")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.server.Stop(ctx); err != nil {
		logger.Errorw("HTTP shutdown error", "error", err.Error())
		if runErr == nil {
			runErr = err
		}
	}
	a.svc.Close()
	if err := a.gossip.Leave(); err != nil {
		logger.Warnw("Failed to leave cluster", "error", err.Error())
	}
	_ = a.backups.Close()
	if a.redis != nil {
		_ = a.redis.Close()
	}

	return runErr
}
