package core

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubNativeContract struct {
	fail bool
}

func (c *stubNativeContract) Call(caller Address, method string, args []byte) ([]byte, error) {
	if c.fail {
		return nil, errors.New("stub contract failure")
	}
	return []byte("ok:" + method), nil
}

func TestNewContractAddressIsDeterministicPerCounterAndUnique(t *testing.T) {
	require := require.New(t)

	h := NewContractHost()
	var deployer Address
	deployer[0] = 0x01
	now := time.Unix(1700000000, 0)

	a1 := h.NewContractAddress("archive-bounty", deployer, now)
	a2 := h.NewContractAddress("archive-bounty", deployer, now)
	require.NotEqual(a1, a2, "the internal deploy counter must make each address unique")

	h2 := NewContractHost()
	b1 := h2.NewContractAddress("archive-bounty", deployer, now)
	require.Equal(a1, b1, "same contract type, deployer, counter value, and timestamp must be deterministic")
}

func TestDeployNativeRegistersMetaWithOwnerAndActiveStatus(t *testing.T) {
	require := require.New(t)

	h := NewContractHost()
	var addr, owner Address
	addr[0], owner[0] = 0xaa, 0xbb

	meta := h.DeployNative(addr, owner, &stubNativeContract{}, VisibilityPrivate)
	require.Equal(owner, meta.Owner)
	require.Equal(ContractActive, meta.Status)
	require.Equal(VisibilityPrivate, meta.Visibility)

	got, ok := h.Meta(addr)
	require.True(ok)
	require.Same(meta, got)
}

func TestMetaUnknownAddressNotFound(t *testing.T) {
	require := require.New(t)

	h := NewContractHost()
	var addr Address
	_, ok := h.Meta(addr)
	require.False(ok)
}

func TestCheckPermissionOwnerAlwaysAllowed(t *testing.T) {
	require := require.New(t)

	var owner, stranger Address
	owner[0], stranger[0] = 0x01, 0x02
	meta := &ContractMeta{Owner: owner, Admins: map[Address]struct{}{}, Whitelist: map[Address]struct{}{}, Visibility: VisibilityPrivate}

	require.NoError(checkPermission(meta, owner))
	require.Error(checkPermission(meta, stranger))
}

func TestCheckPermissionAdminAllowed(t *testing.T) {
	require := require.New(t)

	var owner, admin Address
	owner[0], admin[0] = 0x01, 0x02
	meta := &ContractMeta{Owner: owner, Admins: map[Address]struct{}{admin: {}}, Whitelist: map[Address]struct{}{}, Visibility: VisibilityPrivate}

	require.NoError(checkPermission(meta, admin))
}

func TestCheckPermissionPublicContractAllowsAnyCaller(t *testing.T) {
	require := require.New(t)

	var owner, stranger Address
	owner[0], stranger[0] = 0x01, 0x09
	meta := &ContractMeta{Owner: owner, Admins: map[Address]struct{}{}, Whitelist: map[Address]struct{}{}, Visibility: VisibilityPublic}

	require.NoError(checkPermission(meta, stranger))
}

func TestCheckPermissionWhitelistedCallerAllowed(t *testing.T) {
	require := require.New(t)

	var owner, caller Address
	owner[0], caller[0] = 0x01, 0x03
	meta := &ContractMeta{Owner: owner, Admins: map[Address]struct{}{}, Whitelist: map[Address]struct{}{caller: {}}, Visibility: VisibilityPrivate}

	require.NoError(checkPermission(meta, caller))
}

func TestCheckPermissionRejectsUnknownPrivateCaller(t *testing.T) {
	require := require.New(t)

	var owner, caller Address
	owner[0], caller[0] = 0x01, 0x04
	meta := &ContractMeta{Owner: owner, Admins: map[Address]struct{}{}, Whitelist: map[Address]struct{}{}, Visibility: VisibilityPrivate}

	err := checkPermission(meta, caller)
	require.Error(err)
	require.True(KindOf(err) == KindUnauthorized)
}

func TestContractHostAddAdminAndWhitelistGrantCallAccess(t *testing.T) {
	require := require.New(t)

	h := NewContractHost()
	var addr, owner, admin, listed Address
	addr[0], owner[0], admin[0], listed[0] = 0x10, 0x11, 0x12, 0x13

	h.DeployNative(addr, owner, &stubNativeContract{}, VisibilityPrivate)
	require.NoError(h.AddAdmin(addr, admin))
	require.NoError(h.Whitelist(addr, listed))

	_, err := h.Call(addr, admin, "ping", nil)
	require.NoError(err)
	_, err = h.Call(addr, listed, "ping", nil)
	require.NoError(err)
}

func TestContractHostAddAdminUnknownContract(t *testing.T) {
	require := require.New(t)

	h := NewContractHost()
	var addr, admin Address
	require.Error(h.AddAdmin(addr, admin))
	require.Error(h.Whitelist(addr, admin))
}

func TestContractHostCallRejectsUnauthorizedCaller(t *testing.T) {
	require := require.New(t)

	h := NewContractHost()
	var addr, owner, stranger Address
	addr[0], owner[0], stranger[0] = 0x20, 0x21, 0x22

	h.DeployNative(addr, owner, &stubNativeContract{}, VisibilityPrivate)
	_, err := h.Call(addr, stranger, "withdraw", nil)
	require.Error(err)
}

func TestContractHostCallRejectsUnknownContract(t *testing.T) {
	require := require.New(t)

	h := NewContractHost()
	var addr, caller Address
	_, err := h.Call(addr, caller, "ping", nil)
	require.Error(err)
}

func TestContractHostSuspendBlocksCallsAndReactivateRestores(t *testing.T) {
	require := require.New(t)

	h := NewContractHost()
	var addr, owner Address
	addr[0], owner[0] = 0x30, 0x31
	h.DeployNative(addr, owner, &stubNativeContract{}, VisibilityPublic)

	require.NoError(h.Suspend(addr))
	_, err := h.Call(addr, owner, "ping", nil)
	require.Error(err)

	require.NoError(h.Reactivate(addr))
	_, err = h.Call(addr, owner, "ping", nil)
	require.NoError(err)
}

func TestContractHostSuspendUnknownContract(t *testing.T) {
	require := require.New(t)

	h := NewContractHost()
	var addr Address
	require.Error(h.Suspend(addr))
	require.Error(h.Reactivate(addr))
}

func TestContractHostCallWithoutNativeImplementationFails(t *testing.T) {
	require := require.New(t)

	h := NewContractHost()
	var addr, owner Address
	addr[0], owner[0] = 0x40, 0x41

	// meta registered directly, bypassing DeployNative so no native
	// implementation is ever registered for addr.
	h.meta[addr] = &ContractMeta{
		Owner:      owner,
		Admins:     make(map[Address]struct{}),
		Whitelist:  make(map[Address]struct{}),
		Visibility: VisibilityPublic,
		Status:     ContractActive,
	}

	_, err := h.Call(addr, owner, "ping", nil)
	require.Error(err)
}

func TestContractHostCallAccumulatesExecutionAccounting(t *testing.T) {
	require := require.New(t)

	h := NewContractHost()
	var addr, owner Address
	addr[0], owner[0] = 0x50, 0x51
	h.DeployNative(addr, owner, &stubNativeContract{}, VisibilityPublic)

	out, err := h.Call(addr, owner, "read", nil)
	require.NoError(err)
	require.Equal("ok:read", string(out))

	meta, ok := h.Meta(addr)
	require.True(ok)
	require.Equal(uint64(1), meta.TotalCalls)
	require.Equal(uint64(0), meta.TotalErrors)
	require.False(meta.LastCall.IsZero())
}

func TestContractHostCallTracksErrorsFromFailingContract(t *testing.T) {
	require := require.New(t)

	h := NewContractHost()
	var addr, owner Address
	addr[0], owner[0] = 0x60, 0x61
	h.DeployNative(addr, owner, &stubNativeContract{fail: true}, VisibilityPublic)

	_, err := h.Call(addr, owner, "break", nil)
	require.Error(err)

	meta, ok := h.Meta(addr)
	require.True(ok)
	require.Equal(uint64(1), meta.TotalCalls)
	require.Equal(uint64(1), meta.TotalErrors)
}

func TestContractMetaAverageExecutionTimeZeroWhenNoCalls(t *testing.T) {
	require := require.New(t)

	meta := &ContractMeta{}
	require.Equal(time.Duration(0), meta.AverageExecutionTime())
}

func TestContractMetaAverageExecutionTimeDividesByCallCount(t *testing.T) {
	require := require.New(t)

	h := NewContractHost()
	var addr, owner Address
	addr[0], owner[0] = 0x70, 0x71
	h.DeployNative(addr, owner, &stubNativeContract{}, VisibilityPublic)

	_, err := h.Call(addr, owner, "a", nil)
	require.NoError(err)
	_, err = h.Call(addr, owner, "b", nil)
	require.NoError(err)

	meta, ok := h.Meta(addr)
	require.True(ok)
	require.Equal(uint64(2), meta.TotalCalls)
	require.GreaterOrEqual(meta.AverageExecutionTime(), time.Duration(0))
}
