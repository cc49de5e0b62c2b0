package errors

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyWalletRejection(t *testing.T) {
	cases := []string{
		"MetaMask Tx Signature: User denied transaction signature",
		"user rejected the request",
		"Request rejected",
		"ACTION_REJECTED",
	}

	for _, msg := range cases {
		walletErr := Classify(errors.New(msg))
		assert.Equal(t, KindWalletRejection, walletErr.Kind, msg)
	}
}

func TestClassifySubmissionFailure(t *testing.T) {
	walletErr := Classify(errors.New("insufficient funds for gas * price + value"))
	assert.Equal(t, KindSubmission, walletErr.Kind)
}

func TestClassifyPassesThroughClassified(t *testing.T) {
	original := NewWalletError(KindRevert, errors.New("transaction 0xabc reverted"))
	wrapped := errors.Wrap(original, "step failed")

	walletErr := Classify(wrapped)
	assert.Equal(t, KindRevert, walletErr.Kind)
}

func TestFriendlyMessageFallbacks(t *testing.T) {
	rejection := NewWalletError(KindWalletRejection, errors.New("user denied"))
	assert.Equal(t, "Transaction was rejected in the wallet", rejection.FriendlyMessage())

	revert := RevertError("0xabc")
	assert.Equal(t, "Transaction failed on chain", revert.FriendlyMessage())

	confirmation := NewWalletError(KindConfirmation, errors.New("rpc connection lost"))
	assert.Equal(t, "Transaction was submitted but could not be confirmed", confirmation.FriendlyMessage())

	submission := NewWalletError(KindSubmission, errors.New("nonce too low"))
	assert.Equal(t, "Transaction could not be submitted", submission.FriendlyMessage())
}

func TestFriendlyMessagePassthrough(t *testing.T) {
	walletErr := NewFriendlyWalletError(KindSubmission, "Not enough ETH to cover gas", errors.New("insufficient funds"))
	assert.Equal(t, "Not enough ETH to cover gas", walletErr.FriendlyMessage())
}

func TestWalletErrorUnwrap(t *testing.T) {
	cause := errors.New("nonce too low")
	walletErr := NewWalletError(KindSubmission, cause)
	assert.Equal(t, cause, errors.Cause(walletErr.Unwrap()))
}

func TestQuoteStaleDetection(t *testing.T) {
	staleErr := NewQuoteStaleError("option-1", nil)
	assert.True(t, IsQuoteStale(staleErr))
	assert.True(t, IsQuoteStale(errors.Wrap(staleErr, "final step aborted")))
	assert.False(t, IsQuoteStale(errors.New("quote output drifted")))

	require.NotEmpty(t, staleErr.Error())
}

func TestMigratorNotFoundDetection(t *testing.T) {
	notFound := &MigratorNotFoundError{ID: "unsupported-protocol"}
	assert.True(t, IsMigratorNotFound(notFound))
	assert.False(t, IsMigratorNotFound(errors.New("migrator not found")))
	assert.Contains(t, notFound.Error(), "unsupported-protocol")
}
