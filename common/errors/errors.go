package errors

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrChainNotFound     = errors.New("chain not found")
	ErrVaultNotFound     = errors.New("vault not found")
	ErrInvalidChainID    = errors.New("invalid chain id")
	ErrDatabaseConnect   = errors.New("failed to connect to database")
	ErrInvalidConfig     = errors.New("invalid chain configuration")
	ErrChainExists       = errors.New("chain already exists in registry")
	ErrInvalidGasModel   = errors.New("invalid gas model")
	ErrNoWalletConnected = errors.New("no wallet connected")
	ErrNotImplemented    = errors.New("functionality not implemented")
)

// ErrorKind classifies a failed transaction attempt for logs and telemetry.
// A wallet rejection is user intent, not an application error; a submission
// failure never reached the chain; a confirmation failure happened while
// waiting on a transaction already in the mempool; a revert was mined and
// failed on-chain.
type ErrorKind string

const (
	KindWalletRejection ErrorKind = "WALLET_REJECTION"
	KindSubmission      ErrorKind = "SUBMISSION"
	KindConfirmation    ErrorKind = "CONFIRMATION"
	KindRevert          ErrorKind = "REVERT"
	KindQuoteStale      ErrorKind = "QUOTE_STALE"
	KindUnknown         ErrorKind = "UNKNOWN"
)

// WalletError is a classified transaction failure with an optional
// user-friendly message. When Friendly is non-empty the UI shows it verbatim;
// otherwise a generic message is shown and the raw cause is only logged.
type WalletError struct {
	Kind     ErrorKind
	Friendly string
	cause    error
}

// Error implements the error interface.
func (e *WalletError) Error() string {
	return e.cause.Error()
}

// Unwrap returns the underlying cause.
func (e *WalletError) Unwrap() error {
	return e.cause
}

// FriendlyMessage returns the user-facing message for the error: the friendly
// summary when the error self-identifies as friendly, a generic message
// otherwise.
func (e *WalletError) FriendlyMessage() string {
	if e.Friendly != "" {
		return e.Friendly
	}
	switch e.Kind {
	case KindWalletRejection:
		return "Transaction was rejected in the wallet"
	case KindConfirmation:
		return "Transaction was submitted but could not be confirmed"
	case KindRevert:
		return "Transaction failed on chain"
	default:
		return "Transaction could not be submitted"
	}
}

// NewWalletError wraps cause with a classification.
func NewWalletError(kind ErrorKind, cause error) *WalletError {
	return &WalletError{Kind: kind, cause: cause}
}

// NewFriendlyWalletError wraps cause with a classification and a message safe
// to surface verbatim.
func NewFriendlyWalletError(kind ErrorKind, friendly string, cause error) *WalletError {
	return &WalletError{Kind: kind, Friendly: friendly, cause: cause}
}

// rejectionMarkers are the substrings wallet providers use when the user
// declines to sign.
var rejectionMarkers = []string{
	"user rejected",
	"user denied",
	"rejected by user",
	"request rejected",
	"action_rejected",
}

// Classify converts an arbitrary submission-stage error into a WalletError.
// Errors already classified pass through unchanged.
func Classify(err error) *WalletError {
	var walletErr *WalletError
	if errors.As(err, &walletErr) {
		return walletErr
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range rejectionMarkers {
		if strings.Contains(msg, marker) {
			return NewWalletError(KindWalletRejection, err)
		}
	}
	return NewWalletError(KindSubmission, err)
}

// RevertError marks a transaction that was mined but reverted.
//
// Parameters:
// - txHash: the hash of the reverted transaction.
//
// Returns:
// - *WalletError: the classified error.
func RevertError(txHash string) *WalletError {
	return NewWalletError(KindRevert, errors.Errorf("transaction %s reverted", txHash))
}

// QuoteStaleError marks drift detected between a quote and its re-fetch. It
// never populates a transaction outcome; it routes to the needs-confirmation
// state instead.
type QuoteStaleError struct {
	OptionID string
	cause    error
}

// Error implements the error interface.
func (e *QuoteStaleError) Error() string {
	if e.cause != nil {
		return e.cause.Error()
	}
	return "quote output drifted beyond tolerance for option " + e.OptionID
}

// Unwrap returns the underlying cause, if any.
func (e *QuoteStaleError) Unwrap() error {
	return e.cause
}

// NewQuoteStaleError creates a QuoteStaleError for the given option.
func NewQuoteStaleError(optionID string, cause error) *QuoteStaleError {
	return &QuoteStaleError{OptionID: optionID, cause: cause}
}

// IsQuoteStale reports whether err is a quote staleness signal.
func IsQuoteStale(err error) bool {
	var staleErr *QuoteStaleError
	return errors.As(err, &staleErr)
}

// MigratorNotFoundError marks a migration plan referencing a protocol the
// registry does not know. Resolving an unknown id is a hard error: silently
// skipping a migration step would leave user funds unstaked without a
// deposit.
type MigratorNotFoundError struct {
	ID string
}

// Error implements the error interface.
func (e *MigratorNotFoundError) Error() string {
	return "migrator not found: " + e.ID
}

// IsMigratorNotFound reports whether err signals an unknown migrator id.
func IsMigratorNotFound(err error) bool {
	var notFound *MigratorNotFoundError
	return errors.As(err, &notFound)
}
