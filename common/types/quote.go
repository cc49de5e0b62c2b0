package types

import "github.com/shopspring/decimal"

// QuoteOption identifies one priced route offered by a quote provider.
// Re-fetches of the same option keep the same ID, which is how quotes are
// matched across the re-confirmation boundary.
type QuoteOption struct {
	ID       string
	Provider string
	VaultID  string
}

// AllowanceSpec declares an allowance a quote requires before its final
// transaction can execute.
type AllowanceSpec struct {
	Token          Token
	SpenderAddress string
	Amount         decimal.Decimal
}

// Quote is a priced route for a swap, zap, deposit, or withdraw, with the
// input and output amounts promised at quoting time. Quotes are immutable
// once issued.
type Quote struct {
	Option     QuoteOption
	Inputs     []TokenAmount
	Outputs    []TokenAmount
	Allowances []AllowanceSpec
}

// FindOutput returns the quote's output amount for the given token, and
// whether the token is present among the outputs at all.
func (q *Quote) FindOutput(token Token) (TokenAmount, bool) {
	for _, out := range q.Outputs {
		if out.Token.Equal(token) {
			return out, true
		}
	}
	return TokenAmount{}, false
}
