package core

// metrics.go – prometheus instrumentation for consensus, replication, P2P
// and token-economy activity (SPEC_FULL.md §A). Deliberately avoids the
// package-level promauto default registry: every counter/gauge lives on a
// constructor-returned Registry a caller owns and can register into its own
// *prometheus.Registry, consistent with this module's no-global-singleton
// Design Note.

import "github.com/prometheus/client_golang/prometheus"

// Registry bundles every metric this module exports. Callers register it
// into their own prometheus.Registerer once at startup.
type Registry struct {
	StorageProofsIssued   prometheus.Counter
	StorageProofsVerified prometheus.Counter
	StorageProofsFailed   prometheus.Counter

	BlocksSealed   prometheus.Counter
	BlocksRejected prometheus.Counter

	ValidatorsEligible prometheus.Gauge
	ValidatorsSuspended prometheus.Gauge
	ValidatorsBanned    prometheus.Gauge

	ReplicasDesired  *prometheus.GaugeVec
	RedistributionPlansEmitted prometheus.Counter

	TokensCirculating prometheus.Gauge
	TokensBurned      prometheus.Gauge
	TokensLocked      prometheus.Gauge

	PeersConnected prometheus.Gauge
	SyncSessionsActive prometheus.Gauge
}

// NewRegistry constructs every metric under the archivechain namespace.
func NewRegistry() *Registry {
	const ns = "archivechain"
	return &Registry{
		StorageProofsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "consensus", Name: "storage_proofs_issued_total",
			Help: "Storage challenges issued to nodes.",
		}),
		StorageProofsVerified: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "consensus", Name: "storage_proofs_verified_total",
			Help: "Storage challenge responses that passed verification.",
		}),
		StorageProofsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "consensus", Name: "storage_proofs_failed_total",
			Help: "Storage challenge responses that failed verification.",
		}),
		BlocksSealed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "consensus", Name: "blocks_sealed_total",
			Help: "Blocks accepted into the local chain.",
		}),
		BlocksRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "consensus", Name: "blocks_rejected_total",
			Help: "Candidate blocks that failed validation.",
		}),
		ValidatorsEligible: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: "consensus", Name: "validators_eligible",
			Help: "Validators currently in the Eligible state.",
		}),
		ValidatorsSuspended: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: "consensus", Name: "validators_suspended",
			Help: "Validators currently Suspended.",
		}),
		ValidatorsBanned: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: "consensus", Name: "validators_banned",
			Help: "Validators currently Banned.",
		}),
		ReplicasDesired: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: "replication", Name: "replicas_desired",
			Help: "Desired replica count per archive importance class.",
		}, []string{"importance"}),
		RedistributionPlansEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "replication", Name: "redistribution_plans_emitted_total",
			Help: "RedistributionPlans emitted by re-evaluation.",
		}),
		TokensCirculating: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: "token", Name: "circulating",
			Help: "Sum of all account balances.",
		}),
		TokensBurned: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: "token", Name: "burned",
			Help: "Cumulative burned tokens.",
		}),
		TokensLocked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: "token", Name: "locked",
			Help: "Tokens currently locked (stake, vesting, long-term lock).",
		}),
		PeersConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: "p2p", Name: "peers_connected",
			Help: "Active peer connections.",
		}),
		SyncSessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: "p2p", Name: "sync_sessions_active",
			Help: "In-progress block sync sessions.",
		}),
	}
}

// MustRegister registers every metric in the bundle into reg, panicking on
// a duplicate-registration error the way prometheus's own helper does.
func (r *Registry) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		r.StorageProofsIssued, r.StorageProofsVerified, r.StorageProofsFailed,
		r.BlocksSealed, r.BlocksRejected,
		r.ValidatorsEligible, r.ValidatorsSuspended, r.ValidatorsBanned,
		r.ReplicasDesired, r.RedistributionPlansEmitted,
		r.TokensCirculating, r.TokensBurned, r.TokensLocked,
		r.PeersConnected, r.SyncSessionsActive,
	)
}
