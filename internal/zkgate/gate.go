// gate.go - Groth16 prove/verify drivers around the ownership circuit.
package zkgate

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bw6-761/fr"
	mimcNative "github.com/consensys/gnark-crypto/ecc/bw6-761/fr/mimc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
)

// Compile builds the R1CS for the ownership circuit over BW6-761.
func Compile() (constraint.ConstraintSystem, error) {
	ccs, err := frontend.Compile(ecc.BW6_761.ScalarField(), r1cs.NewBuilder, &OwnershipCircuit{})
	if err != nil {
		return nil, fmt.Errorf("compile ownership circuit: %w", err)
	}
	return ccs, nil
}

// Setup runs the Groth16 trusted setup for the compiled circuit.
func Setup(ccs constraint.ConstraintSystem) (groth16.ProvingKey, groth16.VerifyingKey, error) {
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, nil, fmt.Errorf("groth16 setup: %w", err)
	}
	return pk, vk, nil
}

// OwnerKey maps a secret key to its public owner identifier: the low 32
// bytes of the native MiMC digest of sk, matching the in-circuit relation.
func OwnerKey(sk []byte) [32]byte {
	var block [mimcNative.BlockSize]byte
	skElement(sk).FillBytes(block[:])
	h := mimcNative.NewMiMC()
	h.Write(block[:])
	digest := h.Sum(nil)
	var out [32]byte
	copy(out[:], digest[len(digest)-32:])
	return out
}

func skElement(sk []byte) *big.Int {
	v := new(big.Int).SetBytes(sk)
	return v.Mod(v, fr.Modulus())
}

// Prover generates membership proofs for wallet owners.
type Prover struct {
	ccs constraint.ConstraintSystem
	pk  groth16.ProvingKey
}

func NewProver(ccs constraint.ConstraintSystem, pk groth16.ProvingKey) *Prover {
	return &Prover{ccs: ccs, pk: pk}
}

// Prove returns a serialized Groth16 proof that the caller knows sk for the
// owner key OwnerKey(sk).
func (p *Prover) Prove(sk []byte) ([]byte, error) {
	owner := OwnerKey(sk)
	assignment := &OwnershipCircuit{
		Owner: new(big.Int).SetBytes(owner[:]),
		Sk:    skElement(sk),
	}
	witness, err := frontend.NewWitness(assignment, ecc.BW6_761.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("build witness: %w", err)
	}
	pf, err := groth16.Prove(p.ccs, p.pk, witness)
	if err != nil {
		return nil, fmt.Errorf("groth16 prove: %w", err)
	}
	var buf bytes.Buffer
	if _, err := pf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("serialize proof: %w", err)
	}
	return buf.Bytes(), nil
}

// Gate verifies membership proofs against a verifying key.
type Gate struct {
	vk groth16.VerifyingKey
}

func NewGate(vk groth16.VerifyingKey) *Gate {
	return &Gate{vk: vk}
}

// VerifyMembership checks that proofBytes proves ownership of the secret key
// behind the given owner identifier.
func (g *Gate) VerifyMembership(proofBytes []byte, owner [32]byte) error {
	pf := groth16.NewProof(ecc.BW6_761)
	if _, err := pf.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return fmt.Errorf("decode membership proof: %w", err)
	}
	assignment := &OwnershipCircuit{
		Owner: new(big.Int).SetBytes(owner[:]),
	}
	publicWitness, err := frontend.NewWitness(assignment, ecc.BW6_761.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("build public witness: %w", err)
	}
	if err := groth16.Verify(pf, g.vk, publicWitness); err != nil {
		return fmt.Errorf("membership proof rejected: %w", err)
	}
	return nil
}
