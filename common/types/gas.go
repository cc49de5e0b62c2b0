package types

import "math/big"

// GasModel represents the fee model a chain is configured with.
type GasModel string

const (
	// GasModelStandard represents chains priced by a single legacy gas price.
	GasModelStandard GasModel = "STANDARD"
	// GasModelEIP1559 represents chains priced by base fee plus priority tip.
	GasModelEIP1559 GasModel = "EIP1559"
	// GasModelMinimum represents chains without standard fee-history RPCs,
	// priced by a chain-specific minimum gas price RPC method.
	GasModelMinimum GasModel = "MINIMUM"
	// GasModelUnknown represents an unknown or unsupported gas model.
	GasModelUnknown GasModel = "UNKNOWN"
)

// String converts GasModel to its string representation.
func (m GasModel) String() string {
	return string(m)
}

// ParseGasModel converts a string to its GasModel representation.
func ParseGasModel(s string) GasModel {
	switch s {
	case GasModelStandard.String():
		return GasModelStandard
	case GasModelEIP1559.String():
		return GasModelEIP1559
	case GasModelMinimum.String():
		return GasModelMinimum
	default:
		return GasModelUnknown
	}
}

// GasPrice is a tagged union over the supported fee models. Exactly the
// fields matching Model are populated.
//
// Fields:
// - Model: the fee model the price was computed under.
// - Price: the legacy gas price (GasModelStandard, GasModelMinimum).
// - MaxFeePerGas: the EIP-1559 fee cap (GasModelEIP1559).
// - MaxPriorityFeePerGas: the EIP-1559 priority tip (GasModelEIP1559).
type GasPrice struct {
	Model                GasModel
	Price                *big.Int
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
}
