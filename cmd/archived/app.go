package main

// app.go – the node's single dependency-injection root. One app struct
// owns every subsystem manager, constructed once from NodeConfig/core.Config
// and wired together per the configured role. No package holds a global
// singleton; everything flows through this struct and the values it hands
// to nodes.Role constructors, per the module-wide no-globals design note.

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"archivechain/core"
	"archivechain/nodes"
	"archivechain/p2p"
	"archivechain/pkg/config"
)

// app bundles every constructed subsystem for one running node process.
type app struct {
	cfg     *config.NodeConfig
	domain  core.Config
	logger  *log.Logger

	archives    *core.ArchiveStore
	storageMgr  *core.StorageProofManager
	bandwidthMgr *core.BandwidthProofManager
	validators  *core.ValidatorPool
	blockValid  *core.BlockValidator
	replication *core.ReplicationManager
	regions     *core.DistributionManager
	ledger      *core.TokenLedger
	pools       *core.DistributionPools
	contracts   *core.ContractHost
	wasm        *core.WasmRuntime
	metrics     *core.Registry

	host      *p2p.Host
	conns     *p2p.ConnectionTable
	syncCoord *p2p.SyncCoordinator

	role nodes.Role
}

// newApp constructs every subsystem manager for a node process from its
// loaded configuration, then wires the role named by cfg.Role.Kind.
func newApp(ctx context.Context, cfg *config.NodeConfig) (*app, error) {
	lg := log.New()
	level, err := log.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, core.ErrValidation("newApp", "invalid log level "+cfg.Logging.Level)
	}
	lg.SetLevel(level)

	domain := core.DefaultConfig()
	if err := domain.Validate(); err != nil {
		return nil, err
	}

	archives := core.NewArchiveStore(lg)
	storageMgr := core.NewStorageProofManager(archives, domain, lg)
	bandwidthMgr := core.NewBandwidthProofManager(domain, lg)
	validators := core.NewValidatorPool(domain, lg)
	blockValid, err := core.NewBlockValidator(storageMgr)
	if err != nil {
		return nil, err
	}
	replication := core.NewReplicationManager(domain.Replication, archives)
	regions := core.NewDistributionManager(domain.Replication.MinRegionsPerContent)
	ledger := core.NewTokenLedger(500_000_000)
	pools := core.NewDistributionPools(ledger.TotalSupply(), time.Now())
	contracts := core.NewContractHost()
	wasm := core.NewWasmRuntime()
	metrics := core.NewRegistry()

	host, err := p2p.NewHost(ctx, cfg.Network.ListenAddr, cfg.Network.BootstrapPeers, cfg.Network.DiscoveryTag, lg)
	if err != nil {
		return nil, err
	}
	conns := p2p.NewConnectionTable()
	syncCoord := p2p.NewSyncCoordinator()

	a := &app{
		cfg:          cfg,
		domain:       domain,
		logger:       lg,
		archives:     archives,
		storageMgr:   storageMgr,
		bandwidthMgr: bandwidthMgr,
		validators:   validators,
		blockValid:   blockValid,
		replication:  replication,
		regions:      regions,
		ledger:       ledger,
		pools:        pools,
		contracts:    contracts,
		wasm:         wasm,
		metrics:      metrics,
		host:         host,
		conns:        conns,
		syncCoord:    syncCoord,
	}

	nodeID := core.NodeIdFromPublicKey([]byte(cfg.Network.ID))
	role, err := a.buildRole(nodeID, cfg.Role.Kind)
	if err != nil {
		host.Close()
		return nil, err
	}
	a.role = role
	return a, nil
}

// buildRole constructs the nodes.Role matching kind, wiring only the
// subsystems that role actually needs.
func (a *app) buildRole(id core.NodeId, kind string) (nodes.Role, error) {
	switch kind {
	case "full-archive":
		return nodes.NewFullArchiveNode(id, a.host, a.archives, a.storageMgr, a.validators, a.replication, a.blockValid, a.ledger, a.logger), nil
	case "light-storage":
		return nodes.NewLightStorageNode(id, a.host, a.archives, a.storageMgr, a.logger), nil
	case "relay":
		return nodes.NewRelayNode(id, a.host, a.conns, a.logger), nil
	case "gateway":
		return nodes.NewGatewayNode(id, a.host, a.archives, a.syncCoord, a.logger), nil
	default:
		return nil, core.ErrValidation("buildRole", fmt.Sprintf("unknown role kind %q", kind))
	}
}

// run starts the configured role and blocks until ctx is cancelled.
func (a *app) run(ctx context.Context) error {
	if err := a.role.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return a.role.Stop()
}
