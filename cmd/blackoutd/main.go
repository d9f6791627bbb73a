// main.go - Entry point: wires the engine and runs a demonstration transfer
package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"blackout/internal/proof"
	"blackout/internal/transfer"
	"blackout/internal/zkgate"
)

func main() {
	configPath := flag.String("config", "blackoutd.json", "path to the configuration file")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, closeLog, err := NewLogger(cfg.LogLevel, cfg.LogFile, cfg.Pretty)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("daemon failed")
		os.Exit(1)
	}
}

func run(cfg *Config, log zerolog.Logger) error {
	store, err := transfer.OpenStore(cfg.StorePath)
	if err != nil {
		return err
	}
	defer store.Close()

	ledger := transfer.NewMemLedger()

	// Freeze the clock for the run so challenges built here stay valid
	// through verification.
	start := time.Now()
	clock := func() time.Time { return start }

	opts := []transfer.Option{
		transfer.WithStore(store),
		transfer.WithLogger(log),
		transfer.WithClock(clock),
	}

	var prover *zkgate.Prover
	if cfg.EnableMembership {
		log.Info().Msg("compiling membership circuit")
		ccs, err := zkgate.Compile()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(cfg.KeyDir, 0755); err != nil {
			return fmt.Errorf("create key dir: %w", err)
		}
		pk, vk, err := zkgate.SetupOrLoadKeys(ccs,
			filepath.Join(cfg.KeyDir, "ownership_pk.bin"),
			filepath.Join(cfg.KeyDir, "ownership_vk.bin"))
		if err != nil {
			return err
		}
		prover = zkgate.NewProver(ccs, pk)
		opts = append(opts, transfer.WithMembership(zkgate.NewGate(vk)))
	}

	engine, err := transfer.NewEngine(proof.Verifier{}, ledger, opts...)
	if err != nil {
		return err
	}

	return runDemo(cfg, log, engine, ledger, prover, start)
}

// runDemo drives one transfer through its whole lifecycle: initialize,
// batched hops, finalize.
func runDemo(cfg *Config, log zerolog.Logger, engine *transfer.Engine, ledger *transfer.MemLedger, prover *zkgate.Prover, now time.Time) error {
	var owner [32]byte
	var membershipProof []byte
	if prover != nil {
		sk := randomBytes(32)
		owner = zkgate.OwnerKey(sk)
		pf, err := prover.Prove(sk)
		if err != nil {
			return err
		}
		membershipProof = pf
	} else {
		copy(owner[:], randomBytes(32))
	}

	recipients := make([][32]byte, cfg.DemoRecipients)
	for i := range recipients {
		copy(recipients[i][:], randomBytes(32))
	}

	fees := transfer.ComputeFees(cfg.DemoAmount, cfg.Transfer)
	ledger.Credit(owner, cfg.DemoAmount+fees)

	var challenge, publicInputs [32]byte
	copy(challenge[:], randomBytes(32))
	copy(publicInputs[:], randomBytes(32))
	var commitments [proof.CommitmentsLen]byte
	copy(commitments[:], randomBytes(proof.CommitmentsLen))

	proofBytes := proof.Build(challenge, publicInputs, commitments)
	amountComms, err := proof.AmountCommitments(proofBytes)
	if err != nil {
		return err
	}
	rangeBytes := proof.BuildRange(challenge, amountComms)

	handle, err := engine.Initialize(owner, cfg.DemoAmount, proofBytes, rangeBytes,
		challenge, membershipProof, recipients, cfg.Transfer)
	if err != nil {
		return err
	}
	log.Info().Str("handle", handle.String()).Msg("demo transfer initialized")

	for batch := uint32(0); ; batch++ {
		st, err := engine.StateOf(handle)
		if err != nil {
			return err
		}
		if st.CurrentHop == st.Config.NumHops {
			break
		}
		if err := engine.ExecuteBatchHop(handle, batch); err != nil {
			return err
		}
	}

	st, err := engine.StateOf(handle)
	if err != nil {
		return err
	}
	finalCh := transfer.FinalizeChallenge(now.Unix(), st.Owner, st.Recipients[0], st.Seed)
	finalProof := proof.Build(finalCh, publicInputs, commitments)
	if err := engine.Finalize(handle, finalProof); err != nil {
		return err
	}

	for i, r := range recipients {
		log.Info().Int("recipient", i).Uint64("balance", ledger.Balance(r)).Msg("payout")
	}
	log.Info().
		Uint64("operator", ledger.Balance(engine.Operator())).
		Uint64("pool", ledger.Balance(transfer.PoolAddress(handle))).
		Msg("demo transfer complete")
	return nil
}

func randomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}
