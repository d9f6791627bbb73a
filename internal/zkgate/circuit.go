// circuit.go - Ownership circuit for the membership gate.
package zkgate

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
)

// OwnershipCircuit proves knowledge of a secret key sk whose MiMC image
// matches the public owner key. The owner key is the low 256 bits of
// MiMC(sk), so it fits the 32-byte account identifiers used everywhere else.
type OwnershipCircuit struct {
	Owner frontend.Variable `gnark:",public"`
	Sk    frontend.Variable
}

// Define declares the circuit constraints: Owner == MiMC(Sk) mod 2^256.
func (c *OwnershipCircuit) Define(api frontend.API) error {
	hasher, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	hasher.Write(c.Sk)
	sum := hasher.Sum()

	bits := api.ToBinary(sum, api.Compiler().FieldBitLen())
	api.AssertIsEqual(c.Owner, api.FromBinary(bits[:256]...))
	return nil
}
