package types

import (
	"math/big"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// NativeAddress is the sentinel token address used for a chain's native asset.
const NativeAddress = ""

// Token identifies an asset on a specific chain.
//
// Fields:
// - ChainID: the unique identifier for the chain the token lives on.
// - Address: the token contract address, or NativeAddress for the native asset.
// - Decimals: the number of decimal places used by the token contract.
// - Symbol: the display symbol of the token.
type Token struct {
	ChainID  uint64
	Address  string
	Decimals int32
	Symbol   string
}

// IsNative reports whether the token is the chain's native asset.
func (t Token) IsNative() bool {
	return t.Address == NativeAddress
}

// Equal reports whether two tokens identify the same asset. Tokens on
// different chains are never equal, regardless of address.
func (t Token) Equal(other Token) bool {
	return t.ChainID == other.ChainID && t.Address == other.Address && t.Decimals == other.Decimals
}

// TokenAmount pairs a human-denominated amount with the token it is
// denominated in. Amounts must never be compared or combined across
// different tokens without an explicit conversion.
type TokenAmount struct {
	Token  Token
	Amount decimal.Decimal
}

// ToWei converts a human-denominated amount to the token's smallest unit.
// The result is floored toward negative infinity so that a wallet never
// attempts to send more than the user holds.
//
// Parameters:
// - amount: the human-denominated amount.
// - decimals: the number of decimal places of the token.
//
// Returns:
// - *big.Int: the amount in the token's smallest unit.
func ToWei(amount decimal.Decimal, decimals int32) *big.Int {
	return amount.Shift(decimals).Floor().BigInt()
}

// FromWei converts an amount in the token's smallest unit back to a
// human-denominated decimal. Flooring is consistent with ToWei: the
// conversion never rounds up.
//
// Parameters:
// - wei: the amount in the token's smallest unit.
// - decimals: the number of decimal places of the token.
//
// Returns:
// - decimal.Decimal: the human-denominated amount.
func FromWei(wei *big.Int, decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(wei, 0).Shift(-decimals)
}

// AddAmounts adds two amounts of the same token.
//
// Returns:
// - TokenAmount: the sum denominated in the shared token.
// - error: an error if the tokens differ.
func AddAmounts(a, b TokenAmount) (TokenAmount, error) {
	if !a.Token.Equal(b.Token) {
		return TokenAmount{}, errors.Errorf("cannot combine amounts of %s and %s", a.Token.Symbol, b.Token.Symbol)
	}
	return TokenAmount{Token: a.Token, Amount: a.Amount.Add(b.Amount)}, nil
}
