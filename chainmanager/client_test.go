package chainmanager

import (
	"context"
	"io"
	"math/big"
	"testing"

	commonerrors "github.com/ClipFinance/orchestrator-lib/common/errors"
	"github.com/ClipFinance/orchestrator-lib/common/types"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPricer struct {
	price *types.GasPrice
}

func (p *stubPricer) GetGasPrice(ctx context.Context) (*types.GasPrice, error) {
	return p.price, nil
}

func TestClientNilComponentsReturnNotImplemented(t *testing.T) {
	config := &types.ChainConfig{Name: "ethereum", ChainID: 1}
	client := NewClientBuilder(config).Build()

	_, err := client.Submit(context.Background(), &types.CallData{})
	assert.Equal(t, commonerrors.ErrNotImplemented, errors.Cause(err))

	_, err = client.WaitForReceipt(context.Background(), "0xabc")
	assert.Equal(t, commonerrors.ErrNotImplemented, errors.Cause(err))

	_, err = client.GetGasPrice(context.Background())
	assert.Equal(t, commonerrors.ErrNotImplemented, errors.Cause(err))

	_, err = client.EstimateGas(context.Background(), "0xabc", big.NewInt(0), nil)
	assert.Equal(t, commonerrors.ErrNotImplemented, errors.Cause(err))

	_, err = client.Allowance(context.Background(), types.Token{}, "0xo", "0xs")
	assert.Equal(t, commonerrors.ErrNotImplemented, errors.Cause(err))

	_, err = client.TokenBalance(context.Background(), "0xabc", types.NativeAddress)
	assert.Equal(t, commonerrors.ErrNotImplemented, errors.Cause(err))

	_, err = client.CallContract(context.Background(), "0xabc", nil)
	assert.Equal(t, commonerrors.ErrNotImplemented, errors.Cause(err))
}

func TestBuilderWiresComponents(t *testing.T) {
	config := &types.ChainConfig{Name: "ethereum", ChainID: 1, GasModel: types.GasModelEIP1559}
	pricer := &stubPricer{price: &types.GasPrice{
		Model:                types.GasModelEIP1559,
		MaxFeePerGas:         big.NewInt(30_000_000_000),
		MaxPriorityFeePerGas: big.NewInt(1_000_000_000),
	}}

	client := NewClientBuilder(config).WithGasPricer(pricer).Build()

	price, err := client.GetGasPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.GasModelEIP1559, price.Model)
	assert.Equal(t, int64(30_000_000_000), price.MaxFeePerGas.Int64())
}

type stubFactory struct {
	client types.Client
	err    error
}

func (f *stubFactory) CreateClient(ctx context.Context, config *types.ChainConfig, logger *logrus.Logger) (types.Client, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.client, nil
}

func TestRegistryAddGetRemove(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	built := NewClientBuilder(&types.ChainConfig{ChainID: 1}).Build()
	registry := NewClientRegistry(&stubFactory{client: built}, logger)

	require.NoError(t, registry.Add(context.Background(), &types.ChainConfig{ChainID: 1}))
	assert.NotNil(t, registry.Get(1))
	assert.Nil(t, registry.Get(42))

	registry.Remove(1)
	assert.Nil(t, registry.Get(1))
}

func TestRegistryRejectsDuplicateChain(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	built := NewClientBuilder(&types.ChainConfig{ChainID: 1}).Build()
	registry := NewClientRegistry(&stubFactory{client: built}, logger)

	require.NoError(t, registry.Add(context.Background(), &types.ChainConfig{ChainID: 1}))
	err := registry.Add(context.Background(), &types.ChainConfig{ChainID: 1})
	assert.Equal(t, commonerrors.ErrChainExists, errors.Cause(err))
}

func TestRegistryAddPropagatesFactoryError(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	registry := NewClientRegistry(&stubFactory{err: errors.New("dial failed")}, logger)

	err := registry.Add(context.Background(), &types.ChainConfig{ChainID: 1})
	assert.Error(t, err)
	assert.Nil(t, registry.Get(1))
}

func TestClientAllowanceStub(t *testing.T) {
	// Allowance through a wired reader returns its decimal untouched.
	config := &types.ChainConfig{ChainID: 1}
	client := NewClientBuilder(config).WithAllowanceReader(allowanceFunc(func() decimal.Decimal {
		return decimal.NewFromInt(5)
	})).Build()

	allowance, err := client.Allowance(context.Background(), types.Token{}, "0xo", "0xs")
	require.NoError(t, err)
	assert.True(t, allowance.Equal(decimal.NewFromInt(5)))
}

type allowanceFunc func() decimal.Decimal

func (f allowanceFunc) Allowance(ctx context.Context, token types.Token, owner, spender string) (decimal.Decimal, error) {
	return f(), nil
}
