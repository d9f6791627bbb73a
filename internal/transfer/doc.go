// Package transfer implements a privacy-preserving multi-hop fund-splitting
// state machine.
//
// Overview:
//   - A transfer is initialized with a funded amount, a proof bound to a
//     caller challenge, and up to 6 recipients
//   - Each hop fans the per-hop amount out to derived sub-accounts; decoy
//     indices are classified by a 128-bit filter and never funded
//   - Hops execute strictly in order, singly or batched, gated by proofs
//   - Finalize distributes the payout and reserve; refund returns the pool
//     to the owner at any point before completion
//
// Security Model:
//   - Uses MiMC hash for sub-account derivation, challenges and commitments
//   - Proof verification is a capability boundary (proof.Gate); the engine
//     never inspects proof internals
//   - Hop and batch counters prevent replay and out-of-order execution
//   - Every operation fully commits or rolls back its fund movements
//
// Usage:
//   - Build an Engine with NewEngine over a proof gate and a Ledger
//   - Drive it with Initialize, ExecuteHop/ExecuteBatchHop, Finalize,
//     TriggerRefund, UpdateConfig, RevealFakeSplit
//   - Persist with WithStore; observe with WithSink and zerolog
package transfer
