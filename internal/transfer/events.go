// events.go - Typed events emitted after each successful operation.
package transfer

import (
	"github.com/google/uuid"

	"blackout/internal/stealth"
)

// Event is implemented by every emitted event type.
type Event interface {
	EventName() string
}

// Sink receives events in emission order. Emit is called with the engine
// lock held, so implementations should return quickly.
type Sink interface {
	Emit(ev Event)
}

type TransferInitialized struct {
	Handle     uuid.UUID `json:"handle"`
	Owner      [32]byte  `json:"owner"`
	Amount     uint64    `json:"amount"`
	Fees       uint64    `json:"fees"`
	Recipients int       `json:"recipients"`
	Timestamp  int64     `json:"timestamp"`
}

func (TransferInitialized) EventName() string { return "transfer_initialized" }

type HopExecuted struct {
	Handle      uuid.UUID `json:"handle"`
	Hop         uint8     `json:"hop"`
	SplitsMoved int       `json:"splits_moved"`
	AmountMoved uint64    `json:"amount_moved"`
	Progress    uint8     `json:"progress"`
	Timestamp   int64     `json:"timestamp"`
}

func (HopExecuted) EventName() string { return "hop_executed" }

type BatchHopExecuted struct {
	Handle      uuid.UUID `json:"handle"`
	BatchIndex  uint32    `json:"batch_index"`
	Hops        uint8     `json:"hops"`
	SplitsMoved int       `json:"splits_moved"`
	AmountMoved uint64    `json:"amount_moved"`
	Progress    uint8     `json:"progress"`
	Timestamp   int64     `json:"timestamp"`
}

func (BatchHopExecuted) EventName() string { return "batch_hop_executed" }

type TransferFinalized struct {
	Handle     uuid.UUID `json:"handle"`
	Recipients int       `json:"recipients"`
	Payout     uint64    `json:"payout"`
	Reserve    uint64    `json:"reserve"`
	Timestamp  int64     `json:"timestamp"`
}

func (TransferFinalized) EventName() string { return "transfer_finalized" }

type RefundExecuted struct {
	Handle    uuid.UUID `json:"handle"`
	Refunded  uint64    `json:"refunded"`
	Fee       uint64    `json:"fee"`
	Timestamp int64     `json:"timestamp"`
}

func (RefundExecuted) EventName() string { return "refund_executed" }

type ConfigUpdated struct {
	Handle    uuid.UUID `json:"handle"`
	Config    Config    `json:"config"`
	Timestamp int64     `json:"timestamp"`
}

func (ConfigUpdated) EventName() string { return "config_updated" }

type FakeRevealed struct {
	Handle    uuid.UUID       `json:"handle"`
	Hop       uint8           `json:"hop"`
	Split     uint8           `json:"split"`
	Address   stealth.Address `json:"address"`
	Timestamp int64           `json:"timestamp"`
}

func (FakeRevealed) EventName() string { return "fake_revealed" }
