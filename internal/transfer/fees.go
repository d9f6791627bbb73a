// fees.go - Fee schedule charged at initialization.
package transfer

// perOperationCost is the flat charge per expected protocol call: one
// initialize, one batch call per batch, one finalize.
const perOperationCost = 5_000

// ComputeFees returns the total fee for a transfer of the given amount under
// cfg: flat per-operation costs plus the basis-point share of the amount,
// with a 2% tolerance markup. The basis-point term divides before it
// multiplies and the markup is additive, so the full uint64 amount range is
// safe from wraparound.
func ComputeFees(amount uint64, cfg Config) uint64 {
	maxBatch := uint64(cfg.MaxBatchSize())
	batches := (uint64(cfg.NumHops) + maxBatch - 1) / maxBatch
	operations := 1 + batches + 1
	flat := operations * perOperationCost
	bp := uint64(cfg.FeeMultiplier)
	variable := amount/10_000*bp + amount%10_000*bp/10_000
	fee := flat + variable
	return fee + fee/50
}
