package core

// contract_host.go – the native-contract half of §4.9's shared address
// space, plus the permission check and execution accounting applied to
// native-contract calls. Grounded on the teacher's access_control.go
// (key-prefixed role storage over a KVStore, in-struct cache guarded by a
// mutex) generalized from role strings to the owner/admin/public/whitelist
// model this spec defines.

import (
	"fmt"
	"sync"
	"time"
)

// ContractVisibility controls who may invoke a contract (§4.9 Permission check).
type ContractVisibility uint8

const (
	VisibilityPrivate ContractVisibility = iota
	VisibilityPublic
)

// ContractStatus gates whether a contract currently accepts calls.
type ContractStatus uint8

const (
	ContractActive ContractStatus = iota
	ContractSuspended
)

// ContractMeta is a deployed contract's permission and accounting state.
type ContractMeta struct {
	Address     Address
	Owner       Address
	Admins      map[Address]struct{}
	Whitelist   map[Address]struct{}
	Visibility  ContractVisibility
	Status      ContractStatus

	TotalCalls           uint64
	TotalGas             uint64
	TotalErrors          uint64
	LastCall             time.Time
	totalExecutionTime   time.Duration
}

// AverageExecutionTime returns total execution time divided by total calls.
func (m *ContractMeta) AverageExecutionTime() time.Duration {
	if m.TotalCalls == 0 {
		return 0
	}
	return m.totalExecutionTime / time.Duration(m.TotalCalls)
}

// NativeContract is a contract implemented directly in Go rather than as
// WASM bytecode (§4.9): archive-bounty, preservation-pool,
// content-verification and similar. Call/return payloads are
// caller-serialized, language-agnostic structures.
type NativeContract interface {
	Call(caller Address, method string, args []byte) ([]byte, error)
}

// ContractHost owns deployed contracts' metadata and dispatches calls
// through the permission check and execution accounting to registered
// native contracts. WASM invocations (WasmRuntime in wasm_host.go) do not
// go through ContractHost and get neither the check nor the accounting.
type ContractHost struct {
	mu        sync.RWMutex
	meta      map[Address]*ContractMeta
	native    map[Address]NativeContract
	deployCounter uint64
}

func NewContractHost() *ContractHost {
	return &ContractHost{
		meta:   make(map[Address]*ContractMeta),
		native: make(map[Address]NativeContract),
	}
}

// NewContractAddress derives H(contract_type || deployer || counter ||
// timestamp), per §4.9 Address generation.
func (h *ContractHost) NewContractAddress(contractType string, deployer Address, now time.Time) Address {
	h.mu.Lock()
	h.deployCounter++
	counter := h.deployCounter
	h.mu.Unlock()

	buf := []byte(contractType)
	buf = append(buf, deployer.Bytes()...)
	buf = append(buf, []byte(fmt.Sprintf("%d:%d", counter, now.UnixNano()))...)
	hash := Keccak256(buf)
	var addr Address
	copy(addr[:], hash[len(hash)-len(addr):])
	return addr
}

// DeployNative registers a native contract at addr, owned by owner.
func (h *ContractHost) DeployNative(addr, owner Address, contract NativeContract, visibility ContractVisibility) *ContractMeta {
	h.mu.Lock()
	defer h.mu.Unlock()
	meta := &ContractMeta{
		Address:    addr,
		Owner:      owner,
		Admins:     make(map[Address]struct{}),
		Whitelist:  make(map[Address]struct{}),
		Visibility: visibility,
		Status:     ContractActive,
	}
	h.meta[addr] = meta
	h.native[addr] = contract
	return meta
}

func (h *ContractHost) Meta(addr Address) (*ContractMeta, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	m, ok := h.meta[addr]
	return m, ok
}

// AddAdmin and Whitelist grant the owner's delegated call permissions.
func (h *ContractHost) AddAdmin(addr, admin Address) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.meta[addr]
	if !ok {
		return ErrNotFoundf("ContractHost.AddAdmin", "unknown contract")
	}
	m.Admins[admin] = struct{}{}
	return nil
}

func (h *ContractHost) Whitelist(addr, caller Address) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.meta[addr]
	if !ok {
		return ErrNotFoundf("ContractHost.Whitelist", "unknown contract")
	}
	m.Whitelist[caller] = struct{}{}
	return nil
}

// Suspend and Reactivate gate whether a contract accepts calls at all; only
// the owner or an admin may invoke either (enforced by the caller, which
// already has the meta and can check checkPermission itself).
func (h *ContractHost) Suspend(addr Address) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.meta[addr]
	if !ok {
		return ErrNotFoundf("ContractHost.Suspend", "unknown contract")
	}
	m.Status = ContractSuspended
	return nil
}

func (h *ContractHost) Reactivate(addr Address) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.meta[addr]
	if !ok {
		return ErrNotFoundf("ContractHost.Reactivate", "unknown contract")
	}
	m.Status = ContractActive
	return nil
}

// checkPermission implements §4.9's Permission check: caller is owner, or
// admin, or the contract is public, or caller is explicitly whitelisted.
func checkPermission(m *ContractMeta, caller Address) error {
	if caller == m.Owner {
		return nil
	}
	if _, ok := m.Admins[caller]; ok {
		return nil
	}
	if m.Visibility == VisibilityPublic {
		return nil
	}
	if _, ok := m.Whitelist[caller]; ok {
		return nil
	}
	return ErrUnauthorizedf("ContractHost.Call", "caller is not authorized for this contract")
}

// Call dispatches to a native contract, performing the permission check,
// suspension check, and execution accounting update every call path shares
// (§4.9). The host never retries a failed call.
func (h *ContractHost) Call(addr, caller Address, method string, args []byte) ([]byte, error) {
	h.mu.RLock()
	meta, ok := h.meta[addr]
	contract, hasNative := h.native[addr]
	h.mu.RUnlock()
	if !ok {
		return nil, ErrNotFoundf("ContractHost.Call", "unknown contract")
	}

	h.mu.Lock()
	if meta.Status == ContractSuspended {
		h.mu.Unlock()
		return nil, ErrUnauthorizedf("ContractHost.Call", "contract is suspended")
	}
	if err := checkPermission(meta, caller); err != nil {
		h.mu.Unlock()
		return nil, err
	}
	h.mu.Unlock()

	if !hasNative {
		return nil, ErrNotFoundf("ContractHost.Call", "no native implementation registered")
	}

	start := time.Now()
	out, err := contract.Call(caller, method, args)
	elapsed := time.Since(start)

	h.mu.Lock()
	meta.TotalCalls++
	meta.LastCall = time.Now()
	meta.totalExecutionTime += elapsed
	if err != nil {
		meta.TotalErrors++
	}
	h.mu.Unlock()

	return out, err
}
