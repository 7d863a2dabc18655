package core

// gas_schedule.go – the base gas cost for each WASM host-call category
// (§6). Adapted from the teacher's gas_table.go pattern (a lock-free map
// plus a punitive default for un-priced operations) but scoped to the
// fixed host-call surface this spec defines instead of a general VM
// opcode table.

import log "github.com/sirupsen/logrus"

// HostCall identifies one of the fixed WASM host-call categories from §6.
type HostCall uint8

const (
	CallReadStorage HostCall = iota
	CallWriteStorage
	CallGetBalance
	CallTransfer
	CallEmitEvent
	CallLog
	CallComputeHash
	CallGetCaller
	CallGetValueSent
	CallGetBlockNumber
	CallGetTimestamp
)

// DefaultHostCallGas is charged for any call that has slipped through the
// cracks of the schedule below.
const DefaultHostCallGas uint64 = 10_000

var gasSchedule = map[HostCall]uint64{
	CallReadStorage:    200,
	CallWriteStorage:   5_000,
	CallGetBalance:     100,
	CallTransfer:       9_000,
	CallEmitEvent:      1_500,
	CallLog:            300,
	CallComputeHash:    600,
	CallGetCaller:      20,
	CallGetValueSent:   20,
	CallGetBlockNumber: 20,
	CallGetTimestamp:   20,
}

// GasCost returns the base gas cost for a single host call. Unknown
// categories log a warning on every call and fall back to DefaultHostCallGas.
func GasCost(call HostCall) uint64 {
	if cost, ok := gasSchedule[call]; ok {
		return cost
	}
	log.WithField("call", call).Warn("gas_schedule: missing cost, charging default")
	return DefaultHostCallGas
}
