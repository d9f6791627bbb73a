// state.go - Per-transfer state tracked by the engine.
package transfer

import (
	"github.com/google/uuid"

	"blackout/internal/bloom"
)

// CommitmentCount is the number of amount commitments kept per transfer.
const CommitmentCount = 8

// State is the full record of one transfer: identity, funding, proof
// material, the decoy filter and the hop cursor. It is the unit of
// persistence; a reloaded State resumes exactly where it stopped.
type State struct {
	Handle      uuid.UUID                 `json:"handle"`
	Owner       [32]byte                  `json:"owner"`
	Seed        [32]byte                  `json:"seed"`
	Amount      uint64                    `json:"amount"`
	TotalFees   uint64                    `json:"total_fees"`
	ReserveFee  uint64                    `json:"reserve_fee"`
	Config      Config                    `json:"config"`
	Filter      bloom.Filter              `json:"filter"`
	Challenge   [32]byte                  `json:"challenge"`
	Proof       []byte                    `json:"proof"`
	RangeProof  []byte                    `json:"range_proof"`
	Commitments [CommitmentCount][32]byte `json:"commitments"`
	Recipients  [][32]byte                `json:"recipients"`
	CurrentHop  uint8                     `json:"current_hop"`
	BatchCount  uint32                    `json:"batch_count"`
	Completed   bool                      `json:"completed"`
	Refunded    bool                      `json:"refunded"`
	CreatedAt   int64                     `json:"created_at"`
	UpdatedAt   int64                     `json:"updated_at"`
}

// HopAmount is the canonical amount moved by one hop.
func (s *State) HopAmount() uint64 {
	return s.Amount / uint64(s.Config.NumHops)
}

// Progress reports executed hops as a percentage of the configured depth.
func (s *State) Progress() uint8 {
	return uint8(uint32(s.CurrentHop) * 100 / uint32(s.Config.NumHops))
}

// Primary is the first recipient; it receives rounding remainders and swept
// residue.
func (s *State) Primary() [32]byte {
	return s.Recipients[0]
}

func (s *State) commitmentSlice() [][32]byte {
	out := make([][32]byte, CommitmentCount)
	copy(out, s.Commitments[:])
	return out
}

// snapshot returns a deep copy safe to hand to callers.
func (s *State) snapshot() State {
	out := *s
	out.Proof = append([]byte(nil), s.Proof...)
	out.RangeProof = append([]byte(nil), s.RangeProof...)
	out.Recipients = append([][32]byte(nil), s.Recipients...)
	return out
}
