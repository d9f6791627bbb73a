// engine.go - Transfer engine: construction, options and initialization.
package transfer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"blackout/internal/bloom"
	"blackout/internal/proof"
	"blackout/internal/zkhash"
)

// MembershipVerifier checks that the funding wallet belongs to the approved
// participant set. The production implementation is the Groth16 ownership
// gate; a nil verifier disables the check.
type MembershipVerifier interface {
	VerifyMembership(proof []byte, owner [32]byte) error
}

// Engine drives transfers through their lifecycle. All mutating operations
// take the engine lock, so calls against the same handle are serialized and
// each call either fully commits or leaves ledger and state untouched.
type Engine struct {
	mu         sync.Mutex
	gate       proof.Gate
	ledger     Ledger
	store      *Store
	membership MembershipVerifier
	sink       Sink
	log        zerolog.Logger
	now        func() time.Time
	operator   [32]byte
	transfers  map[uuid.UUID]*State
}

// Option configures an Engine.
type Option func(*Engine)

// WithStore persists state and events to the given store and restores any
// previously persisted transfers at construction.
func WithStore(s *Store) Option {
	return func(e *Engine) { e.store = s }
}

// WithMembership enables the membership check at initialization.
func WithMembership(v MembershipVerifier) Option {
	return func(e *Engine) { e.membership = v }
}

// WithSink delivers every emitted event to sink.
func WithSink(s Sink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithLogger sets the engine's structured logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithClock overrides the time source; challenges derive from it.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithOperator sets the account receiving reserve shares and refund fees.
func WithOperator(operator [32]byte) Option {
	return func(e *Engine) { e.operator = operator }
}

// NewEngine builds an engine over the given proof gate and ledger.
func NewEngine(gate proof.Gate, ledger Ledger, opts ...Option) (*Engine, error) {
	e := &Engine{
		gate:      gate,
		ledger:    ledger,
		log:       zerolog.Nop(),
		now:       time.Now,
		operator:  zkhash.Sum([]byte("blackout-operator")),
		transfers: make(map[uuid.UUID]*State),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store != nil {
		states, err := e.store.LoadAll()
		if err != nil {
			return nil, fmt.Errorf("restore transfers: %w", err)
		}
		for _, st := range states {
			e.transfers[st.Handle] = st
		}
		if len(states) > 0 {
			e.log.Info().Int("transfers", len(states)).Msg("restored persisted transfers")
		}
	}
	return e, nil
}

// Initialize validates and funds a new transfer. The proof must bind to the
// caller's challenge, the range proof to the amount commitments the proof
// carries, and amount plus fees moves from the owner into the transfer pool.
func (e *Engine) Initialize(
	owner [32]byte,
	amount uint64,
	proofBytes, rangeProofBytes []byte,
	challenge [32]byte,
	membershipProof []byte,
	recipients [][32]byte,
	cfg Config,
) (uuid.UUID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if amount == 0 {
		return uuid.Nil, fmt.Errorf("%w: zero amount", ErrValidation)
	}
	if challenge == ([32]byte{}) {
		return uuid.Nil, fmt.Errorf("%w: zero challenge", ErrValidation)
	}
	if len(recipients) == 0 || len(recipients) > MaxRecipients {
		return uuid.Nil, fmt.Errorf("%w: %d recipients outside [1,%d]",
			ErrValidation, len(recipients), MaxRecipients)
	}
	for i, r := range recipients {
		if r == ([32]byte{}) {
			return uuid.Nil, fmt.Errorf("%w: recipient %d is zero", ErrValidation, i)
		}
		if r == owner {
			return uuid.Nil, fmt.Errorf("%w: recipient %d equals owner", ErrValidation, i)
		}
	}
	if err := cfg.Validate(); err != nil {
		return uuid.Nil, err
	}
	if e.membership != nil {
		if err := e.membership.VerifyMembership(membershipProof, owner); err != nil {
			return uuid.Nil, fmt.Errorf("%w: membership: %v", ErrProofRejected, err)
		}
	}
	if err := classifyProofErr(e.gate.VerifyProof(proofBytes, challenge)); err != nil {
		return uuid.Nil, err
	}
	commitments, err := proof.AmountCommitments(proofBytes)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := classifyProofErr(e.gate.VerifyRangeProof(rangeProofBytes, commitments, challenge)); err != nil {
		return uuid.Nil, err
	}

	fees := ComputeFees(amount, cfg)
	handle := uuid.New()
	pool := PoolAddress(handle)
	if err := e.ledger.Transfer(owner, pool, amount+fees); err != nil {
		return uuid.Nil, fmt.Errorf("%w: funding: %v", ErrTransferFailure, err)
	}

	now := e.now().Unix()
	st := &State{
		Handle:     handle,
		Owner:      owner,
		Seed:       DeriveSeed(handle, challenge, owner),
		Amount:     amount,
		TotalFees:  fees,
		ReserveFee: fees * uint64(cfg.ReservePercent) / 100,
		Config:     cfg,
		Filter:     bloom.Generate(cfg.NumHops, cfg.RealSplits, cfg.FakeSplits),
		Challenge:  challenge,
		Proof:      append([]byte(nil), proofBytes...),
		RangeProof: append([]byte(nil), rangeProofBytes...),
		Recipients: append([][32]byte(nil), recipients...),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	copy(st.Commitments[:], commitments)
	e.transfers[handle] = st
	if err := e.persist(st); err != nil {
		delete(e.transfers, handle)
		e.rollback([]ledgerOp{{from: owner, to: pool, amount: amount + fees}})
		return uuid.Nil, err
	}

	e.emit(st, TransferInitialized{
		Handle:     handle,
		Owner:      owner,
		Amount:     amount,
		Fees:       fees,
		Recipients: len(recipients),
		Timestamp:  now,
	})
	e.log.Info().
		Str("handle", handle.String()).
		Uint64("amount", amount).
		Uint64("fees", fees).
		Uint8("hops", cfg.NumHops).
		Msg("transfer initialized")
	return handle, nil
}

// StateOf returns a copy of the transfer's current state.
func (e *Engine) StateOf(handle uuid.UUID) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, err := e.lookup(handle)
	if err != nil {
		return State{}, err
	}
	return st.snapshot(), nil
}

// Operator returns the account configured to receive reserves and fees.
func (e *Engine) Operator() [32]byte {
	return e.operator
}

func (e *Engine) lookup(handle uuid.UUID) (*State, error) {
	st, ok := e.transfers[handle]
	if !ok {
		return nil, fmt.Errorf("%w: unknown handle %s", ErrValidation, handle)
	}
	return st, nil
}

func checkActive(st *State) error {
	if st.Completed {
		return fmt.Errorf("%w: transfer already finalized", ErrReplayOrOrdering)
	}
	if st.Refunded {
		return fmt.Errorf("%w: transfer already refunded", ErrReplayOrOrdering)
	}
	return nil
}

// classifyProofErr maps gate errors onto the taxonomy: framing defects are
// validation failures, everything else is a rejected proof.
func classifyProofErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, proof.ErrInvalidSize) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return fmt.Errorf("%w: %v", ErrProofRejected, err)
}

func (e *Engine) persist(st *State) error {
	if e.store == nil {
		return nil
	}
	if err := e.store.SaveState(st); err != nil {
		e.log.Error().Err(err).Str("handle", st.Handle.String()).Msg("persist failed")
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}

func (e *Engine) emit(st *State, ev Event) {
	if e.store != nil {
		if err := e.store.AppendEvent(st.Handle, ev); err != nil {
			e.log.Warn().Err(err).Str("event", ev.EventName()).Msg("event not persisted")
		}
	}
	if e.sink != nil {
		e.sink.Emit(ev)
	}
	e.log.Debug().Str("event", ev.EventName()).Str("handle", st.Handle.String()).Msg("event emitted")
}
