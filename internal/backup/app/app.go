package app

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"google.golang.org/grpc"

	grpcHandler "github.com/anthanhphan/go-ramstore/internal/backup/adapter/inbound/grpc"
	"github.com/anthanhphan/go-ramstore/internal/backup/adapter/outbound/replica_log"
	"github.com/anthanhphan/go-ramstore/internal/backup/config"
	"github.com/anthanhphan/go-ramstore/internal/backup/service"
	"github.com/anthanhphan/go-ramstore/pkg/cluster"
	"github.com/anthanhphan/go-ramstore/pkg/gossip"
	"github.com/anthanhphan/go-ramstore/pkg/resilience"
	"github.com/anthanhphan/go-ramstore/pkg/rpc/backupv1"
	"github.com/anthanhphan/gosdk/logger"
)

type App struct {
	cfg     *config.Config
	server  *grpc.Server
	gossip  *gossip.GossipAdapter
	store   *replica_log.LogAdapter
	service *service.BackupServiceImpl
}

func New(configPath string) (*App, error) {
	// 1. Load Config
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Initialize Logger
	logger.InitLogger(&cfg.Logger)

	caps, err := cluster.ParseCapabilities(cfg.Server.Capabilities)
	if err != nil {
		return nil, fmt.Errorf("invalid capabilities: %w", err)
	}
	identity := cluster.NodeIdentity{ID: cfg.Server.ServerID, Generation: cfg.Server.Generation}
	if identity.IsZero() {
		return nil, errors.New("server_id is required")
	}

	// 3. Gossip
	gossipAdapter, err := gossip.NewGossipAdapter(gossip.Config{
		Name:         fmt.Sprintf("backup-%s", identity),
		BindAddr:     cfg.Gossip.BindAddr,
		BindPort:     cfg.Gossip.Port,
		ServerPort:   cfg.Server.Port,
		Identity:     identity,
		Capabilities: caps,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init gossip: %w", err)
	}

	// 4. Replica storage
	store, err := replica_log.NewLogAdapter(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	// 5. gRPC Server
	// Replicas travel as whole segments; raise the default 4MB limit.
	maxMsgSize := 64 * 1024 * 1024
	grpcServer := grpc.NewServer(
		grpc.MaxRecvMsgSize(maxMsgSize),
		grpc.MaxSendMsgSize(maxMsgSize),
	)
	pool := resilience.NewWorkerPool(cfg.Partition.Workers, cfg.Partition.QueueSize)
	backupService := service.NewBackupService(store, pool)
	backupv1.RegisterBackupServiceServer(grpcServer, grpcHandler.NewServer(backupService))

	return &App{
		cfg:     cfg,
		server:  grpcServer,
		gossip:  gossipAdapter,
		store:   store,
		service: backupService,
	}, nil
}

func (a *App) Run() error {
	// Start Gossip
	seeds := make([]string, 0, len(a.cfg.Gossip.Seeds))
	selfSeedSuffix := fmt.Sprintf(":%d", a.cfg.Gossip.Port)
	for _, seed := range a.cfg.Gossip.Seeds {
		if seed == "" {
			continue
		}
		if strings.HasSuffix(seed, selfSeedSuffix) && strings.Contains(seed, a.cfg.Server.Hostname) {
			continue
		}
		seeds = append(seeds, seed)
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

	// Start gRPC
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", a.cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", a.cfg.Server.Port, err)
	}

	local := a.gossip.LocalNode()
	logger.Infow("Backup node starting",
		"id", local.Identity.String(),
		"addr", local.Addr,
		"capabilities", local.Capabilities.String(),
		"port", a.cfg.Server.Port,
		"gossip", a.cfg.Gossip.Port)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := a.server.Serve(listener); err != nil {
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
		// Ignore expected stop errors.
		errMsg := err.Error()
		if !strings.Contains(errMsg, "use of closed network connection") && !errors.Is(err, grpc.ErrServerStopped) {
			runErr = fmt.Errorf("gRPC server failed: %w", err)
			logger.Errorw("Backup gRPC server exited unexpectedly", "error", errMsg)
		}
	}

	logger.Info("Shutting down backup services")
	if err := a.gossip.Leave(); err != nil {
		logger.Warnw("Gossip leave failed", "error", err.Error())
	}
	a.server.GracefulStop()
	a.service.Close()
	if err := a.store.Close(); err != nil {
		logger.Warnw("Replica log close failed", "error", err.Error())
	}

	return runErr
}
