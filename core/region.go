package core

// region.go – geographic distribution manager (§4.6). Replaces the deleted
// geolocation_network.go, which kept node locations in a package-level
// global registry behind a bare sync.RWMutex var; that pattern was ruled
// out by SPEC_FULL.md's dependency-injection Design Note, so this is a
// struct any caller constructs and owns. The scoring pass, region status
// transitions and RedistributionPlan emission are grounded directly on
// original_source/core/src/storage/distribution.rs, translated into the
// mutex-guarded-manager idiom the rest of core/ already uses.

import (
	"math"
	"sort"
	"sync"
)

// PlacementStrategy selects the (distance, latency, capacity) weight triple
// select_optimal_regions scores candidate regions with (§4.6).
type PlacementStrategy uint8

const (
	StrategyGlobalLatencyOptimized PlacementStrategy = iota
	StrategyMaximumResilience
	StrategyRegionalConcentrated
	StrategyBalanced
)

// Weights returns (distance, latency, capacity), each triple summing to 1.
func (s PlacementStrategy) Weights() (distance, latency, capacity float64) {
	switch s {
	case StrategyGlobalLatencyOptimized:
		return 0.2, 0.6, 0.2
	case StrategyMaximumResilience:
		return 0.5, 0.2, 0.3
	case StrategyRegionalConcentrated:
		return 0.1, 0.3, 0.6
	default: // StrategyBalanced
		return 0.3, 0.4, 0.3
	}
}

// RegionStatus is a region's operational state (§4.6).
type RegionStatus uint8

const (
	RegionActive RegionStatus = iota
	RegionMaintenance
	RegionOverloaded
	RegionDegraded
	RegionOffline
)

func (s RegionStatus) String() string {
	switch s {
	case RegionActive:
		return "Active"
	case RegionMaintenance:
		return "Maintenance"
	case RegionOverloaded:
		return "Overloaded"
	case RegionDegraded:
		return "Degraded"
	case RegionOffline:
		return "Offline"
	default:
		return "Unknown"
	}
}

// Coordinates is a point on Earth's surface.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// DistanceTo computes the great-circle distance in kilometres via the
// haversine formula.
func (c Coordinates) DistanceTo(other Coordinates) float64 {
	const earthRadiusKm = 6371.0
	lat1 := c.Latitude * math.Pi / 180
	lat2 := other.Latitude * math.Pi / 180
	dLat := (other.Latitude - c.Latitude) * math.Pi / 180
	dLon := (other.Longitude - c.Longitude) * math.Pi / 180

	a := math.Pow(math.Sin(dLat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLon/2), 2)
	x := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * x
}

// Region is a geographic placement zone's static identity.
type Region struct {
	ID        string
	Name      string
	Continent string
	Country   string
	Coords    Coordinates
}

// RegionInfo augments a Region with the live capacity/latency/reliability
// state select_optimal_regions scores against (§4.6).
type RegionInfo struct {
	Region          Region
	AvailableNodes  []NodeId
	TotalCapacity   uint64
	UsedCapacity    uint64
	AvgLatencyMs    float64
	ReliabilityScore float64
	Status          RegionStatus
}

// UsagePct returns capacity usage as a fraction in [0,1].
func (r RegionInfo) UsagePct() float64 {
	if r.TotalCapacity == 0 {
		return 0
	}
	return float64(r.UsedCapacity) / float64(r.TotalCapacity)
}

// CanAcceptContent is the §4.6 acceptability predicate: Active, usage < 85%,
// at least one available node.
func (r RegionInfo) CanAcceptContent() bool {
	return r.Status == RegionActive && r.UsagePct() < 0.85 && len(r.AvailableNodes) > 0
}

// maxAcceptableLatencyMs is θ_max_latency, the latency normalization ceiling
// used by the latency_score term.
const maxAcceptableLatencyMs = 500.0

// DistributionManager owns the region topology and runs §4.6's placement
// scoring and status-transition passes.
type DistributionManager struct {
	mu            sync.RWMutex
	regions       map[string]*RegionInfo
	nodeToRegion  map[NodeId]string
	minRegionsCfg int
}

func NewDistributionManager(minRegionsPerContent int) *DistributionManager {
	return &DistributionManager{
		regions:       make(map[string]*RegionInfo),
		nodeToRegion:  make(map[NodeId]string),
		minRegionsCfg: minRegionsPerContent,
	}
}

// AddRegion registers or replaces a region's live state.
func (d *DistributionManager) AddRegion(info RegionInfo) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := info
	d.regions[info.Region.ID] = &cp
	for _, n := range info.AvailableNodes {
		d.nodeToRegion[n] = info.Region.ID
	}
}

// RefreshStatus recomputes a region's status transitions per §4.6/Design
// Notes: Active -> Overloaded at >=85% usage, -> Offline when no nodes
// remain available, -> Degraded when failedPlacements crosses a repeated
// threshold. Maintenance is an explicit operator state this never sets or
// clears.
func (d *DistributionManager) RefreshStatus(regionID string, failedPlacements int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.regions[regionID]
	if !ok || r.Status == RegionMaintenance {
		return
	}
	switch {
	case len(r.AvailableNodes) == 0:
		r.Status = RegionOffline
	case failedPlacements >= 3:
		r.Status = RegionDegraded
	case r.UsagePct() >= 0.85:
		r.Status = RegionOverloaded
	default:
		r.Status = RegionActive
	}
}

func (d *DistributionManager) calculateMinRegionsRequired(importance Importance) int {
	req := importance.MinRegions()
	if d.minRegionsCfg > req {
		return d.minRegionsCfg
	}
	return req
}

func (d *DistributionManager) regionScore(r *RegionInfo, meta *ContentMetadata, strategy PlacementStrategy) float64 {
	distW, latW, capW := strategy.Weights()

	capacityScore := 1 - r.UsagePct()

	latencyScore := 1 - math.Min(1, r.AvgLatencyMs/maxAcceptableLatencyMs)

	distanceScore := 0.5
	for _, pref := range meta.PreferredRegions {
		if pref == r.Region.ID {
			distanceScore = 1.0
			break
		}
	}

	base := distanceScore*distW + latencyScore*latW + capacityScore*capW
	return base * r.ReliabilityScore
}

// SelectOptimalRegions implements select_optimal_regions (§4.6): scores
// every acceptable region under strategy and returns the top
// max(importance.min_regions, min_regions_per_content), or fails if that
// many cannot be satisfied.
func (d *DistributionManager) SelectOptimalRegions(meta *ContentMetadata, strategy PlacementStrategy) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	minRegions := d.calculateMinRegionsRequired(meta.Importance)

	type scored struct {
		id    string
		score float64
	}
	var candidates []scored
	for id, r := range d.regions {
		if !r.CanAcceptContent() {
			continue
		}
		candidates = append(candidates, scored{id: id, score: d.regionScore(r, meta, strategy)})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	if len(candidates) > minRegions {
		candidates = candidates[:minRegions]
	}
	if len(candidates) < minRegions {
		return nil, ErrValidation("DistributionManager.SelectOptimalRegions",
			"could not satisfy minimum region distribution constraint")
	}

	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.id
	}
	return out, nil
}

// AvailableRegions returns every region currently able to accept content.
func (d *DistributionManager) AvailableRegions() []RegionInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []RegionInfo
	for _, r := range d.regions {
		if r.CanAcceptContent() {
			out = append(out, *r)
		}
	}
	return out
}

// Optimize identifies overloaded regions (>90% usage) and pairs each with an
// underloaded, Active region (<50% usage), emitting a RedistributionPlan per
// pair (§4.6, grounded on distribution.rs's optimize_distribution).
func (d *DistributionManager) Optimize() []RedistributionPlan {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var overloaded, underloaded []string
	for id, r := range d.regions {
		switch {
		case r.UsagePct() > 0.90:
			overloaded = append(overloaded, id)
		case r.UsagePct() < 0.50 && r.Status == RegionActive:
			underloaded = append(underloaded, id)
		}
	}
	sort.Strings(overloaded)
	sort.Strings(underloaded)

	var plans []RedistributionPlan
	for _, src := range overloaded {
		if len(underloaded) == 0 {
			break
		}
		plans = append(plans, RedistributionPlan{
			SourceRegion: src,
			TargetRegion: underloaded[0],
			Reason:       "source region over 90% capacity",
		})
	}
	return plans
}
