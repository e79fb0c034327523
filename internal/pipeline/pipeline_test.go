// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dotandev/tranche/internal/errors"
	"github.com/dotandev/tranche/internal/rpc"
	"github.com/dotandev/tranche/internal/scval"
	"github.com/dotandev/tranche/internal/wallet"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeLedger struct {
	mu       sync.Mutex
	account  txnbuild.SimpleAccount
	accErr   error
	simulate *rpc.SimulateTransactionResponse
	simErr   error
	send     *rpc.SendTransactionResponse
	sendErr  error

	accountCalls  int
	simulateCalls int
	sendCalls     int
	lastSent      string
}

func (f *fakeLedger) GetAccount(_ context.Context, address string) (txnbuild.SimpleAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accountCalls++
	if f.accErr != nil {
		return txnbuild.SimpleAccount{}, f.accErr
	}
	return f.account, nil
}

func (f *fakeLedger) SimulateTransaction(_ context.Context, _ string) (*rpc.SimulateTransactionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.simulateCalls++
	return f.simulate, f.simErr
}

func (f *fakeLedger) SendTransaction(_ context.Context, envelopeXDR string) (*rpc.SendTransactionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls++
	f.lastSent = envelopeXDR
	return f.send, f.sendErr
}

type mockWallet struct {
	mock.Mock
}

func (m *mockWallet) DetectPresence(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

func (m *mockWallet) RequestAccess(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockWallet) GetAddress(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockWallet) SignTransaction(ctx context.Context, envelopeXDR, passphrase string) (string, error) {
	args := m.Called(ctx, envelopeXDR, passphrase)
	return args.String(0), args.Error(1)
}

func testContractID(t *testing.T) string {
	t.Helper()
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = 0x42
	}
	id, err := strkey.Encode(strkey.VersionByteContract, raw)
	require.NoError(t, err)
	return id
}

func successSimulation(t *testing.T, ret xdr.ScVal, resourceFee int64) *rpc.SimulateTransactionResponse {
	t.Helper()
	data := xdr.SorobanTransactionData{ResourceFee: xdr.Int64(resourceFee)}
	dataB64, err := xdr.MarshalBase64(data)
	require.NoError(t, err)
	retB64, err := xdr.MarshalBase64(ret)
	require.NoError(t, err)
	return &rpc.SimulateTransactionResponse{
		TransactionData: dataB64,
		MinResourceFee:  fmt.Sprintf("%d", resourceFee),
		Results:         []rpc.SimulateHostFunctionResult{{XDR: retB64}},
		LatestLedger:    1234,
	}
}

type stageRecorder struct {
	mu     sync.Mutex
	stages []Stage
	errs   map[Stage]error
}

func (r *stageRecorder) hooks() Hooks {
	return Hooks{OnStage: func(s Stage, err error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.stages = append(r.stages, s)
		if r.errs == nil {
			r.errs = map[Stage]error{}
		}
		r.errs[s] = err
	}}
}

func (r *stageRecorder) saw(s Stage) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, got := range r.stages {
		if got == s {
			return true
		}
	}
	return false
}

func newTestPipeline(t *testing.T, ledger *fakeLedger, w wallet.Wallet, rec *stageRecorder) *Pipeline {
	t.Helper()
	opts := []Option{WithBuilderOptions(WithClock(func() time.Time { return fixedNow }))}
	if rec != nil {
		opts = append(opts, WithHooks(rec.hooks()))
	}
	return New(ledger, w, network.TestNetworkPassphrase, opts...)
}

func subscribeRequest(t *testing.T, source string) Request {
	t.Helper()
	return Request{
		ContractID: testContractID(t),
		Function:   "subscribe",
		Args:       []xdr.ScVal{scval.Symbol("x")},
		Source:     source,
	}
}

func TestBuildResolvesSequenceWithoutMutatingAccount(t *testing.T) {
	kp := keypair.MustRandom()
	ledger := &fakeLedger{account: txnbuild.SimpleAccount{AccountID: kp.Address(), Sequence: 41}}
	p := newTestPipeline(t, ledger, nil, nil)

	env, err := p.Build(context.Background(), subscribeRequest(t, kp.Address()))
	require.NoError(t, err)

	assert.Equal(t, StateBuilt, env.State())
	assert.Equal(t, int64(42), env.Sequence())
	assert.Equal(t, int64(41), ledger.account.Sequence)
	assert.Equal(t, DefaultFeeCeiling, env.MaxFee())
	assert.Equal(t, fixedNow.Add(DefaultTimeout).Unix(), env.Transaction().Timebounds().MaxTime)

	op, err := env.invocation()
	require.NoError(t, err)
	assert.Equal(t, xdr.ScSymbol("subscribe"), op.HostFunction.InvokeContract.FunctionName)
}

func TestBuildIsDeterministic(t *testing.T) {
	kp := keypair.MustRandom()
	ledger := &fakeLedger{account: txnbuild.SimpleAccount{AccountID: kp.Address(), Sequence: 7}}
	p := newTestPipeline(t, ledger, nil, nil)
	req := subscribeRequest(t, kp.Address())

	a, err := p.Build(context.Background(), req)
	require.NoError(t, err)
	b, err := p.Build(context.Background(), req)
	require.NoError(t, err)

	ax, err := a.Base64()
	require.NoError(t, err)
	bx, err := b.Base64()
	require.NoError(t, err)
	assert.Equal(t, ax, bx)
}

func TestBuildAccountUnavailable(t *testing.T) {
	ledger := &fakeLedger{accErr: fmt.Errorf("boom")}
	p := newTestPipeline(t, ledger, nil, nil)

	_, err := p.Build(context.Background(), subscribeRequest(t, keypair.MustRandom().Address()))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrAccountUnavailable)
	assert.Equal(t, "AccountUnavailable", errors.KindOf(err))
}

func TestBuildRejectsNonContractTarget(t *testing.T) {
	p := newTestPipeline(t, &fakeLedger{}, nil, nil)
	req := subscribeRequest(t, "")
	req.ContractID = keypair.MustRandom().Address()

	_, err := p.Build(context.Background(), req)
	assert.ErrorIs(t, err, errors.ErrInvalidAddress)
}

func TestBuildQueryUsesSyntheticSource(t *testing.T) {
	ledger := &fakeLedger{}
	p := newTestPipeline(t, ledger, nil, nil)

	env, err := p.Build(context.Background(), subscribeRequest(t, ""))
	require.NoError(t, err)
	assert.Equal(t, 0, ledger.accountCalls)
	assert.Equal(t, SyntheticSource, env.Transaction().SourceAccount().AccountID)
	assert.Equal(t, int64(1), env.Sequence())
	assert.Equal(t, QueryFee, env.MaxFee())
}

func TestPrepareAttachesResourceData(t *testing.T) {
	kp := keypair.MustRandom()
	ledger := &fakeLedger{
		account:  txnbuild.SimpleAccount{AccountID: kp.Address(), Sequence: 10},
		simulate: successSimulation(t, scval.Bool(true), 5000),
	}
	p := newTestPipeline(t, ledger, nil, nil)

	env, err := p.Build(context.Background(), subscribeRequest(t, kp.Address()))
	require.NoError(t, err)

	assembled, outcome, err := p.Prepare(context.Background(), env)
	require.NoError(t, err)
	require.True(t, outcome.Succeeded())
	assert.Equal(t, int64(5000), outcome.MinResourceFee)

	assert.Equal(t, StateAssembled, assembled.State())
	assert.Equal(t, StateBuilt, env.State(), "input envelope is not modified")
	assert.Equal(t, env.Sequence(), assembled.Sequence())
	assert.GreaterOrEqual(t, assembled.MaxFee(), env.MaxFee())

	op, err := assembled.invocation()
	require.NoError(t, err)
	require.NotNil(t, op.Ext.SorobanData)
	assert.Equal(t, xdr.Int64(5000), op.Ext.SorobanData.ResourceFee)
}

func TestSimulationFailureNeverAssembles(t *testing.T) {
	kp := keypair.MustRandom()
	ledger := &fakeLedger{
		account:  txnbuild.SimpleAccount{AccountID: kp.Address(), Sequence: 10},
		simulate: &rpc.SimulateTransactionResponse{Error: "HostError: Error(WasmVm, InvalidAction)"},
	}
	rec := &stageRecorder{}
	w := &mockWallet{}
	p := newTestPipeline(t, ledger, w, rec)

	_, err := p.Execute(context.Background(), subscribeRequest(t, kp.Address()))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSimulationFailed)
	assert.ErrorIs(t, err, errors.ErrActionNotAllowed)

	assert.True(t, rec.saw(StageSimulate))
	rec.mu.Lock()
	simErr := rec.errs[StageSimulate]
	rec.mu.Unlock()
	assert.ErrorIs(t, simErr, errors.ErrSimulationFailed)
	assert.False(t, rec.saw(StageAssemble))
	assert.False(t, rec.saw(StageSign))
	assert.Equal(t, 0, ledger.sendCalls)
	w.AssertNotCalled(t, "SignTransaction", mock.Anything, mock.Anything, mock.Anything)
}

func TestAssembleRefusesFailedOutcome(t *testing.T) {
	p := newTestPipeline(t, &fakeLedger{}, nil, nil)
	env, err := p.Build(context.Background(), subscribeRequest(t, ""))
	require.NoError(t, err)

	outcome := failedOutcome("something broke", p.classifier)
	_, err = p.Assemble(env, outcome)
	assert.ErrorIs(t, err, errors.ErrSimulationFailed)
	assert.Contains(t, err.Error(), "something broke")
}

func TestStagesRejectWrongEnvelopeState(t *testing.T) {
	kp := keypair.MustRandom()
	ledger := &fakeLedger{
		account:  txnbuild.SimpleAccount{AccountID: kp.Address(), Sequence: 10},
		simulate: successSimulation(t, scval.Bool(true), 100),
	}
	p := newTestPipeline(t, ledger, wallet.NewSoftwareWalletFromKeypair(kp), nil)
	ctx := context.Background()

	env, err := p.Build(ctx, subscribeRequest(t, kp.Address()))
	require.NoError(t, err)

	_, err = p.Sign(ctx, env)
	assert.ErrorIs(t, err, errors.ErrEnvelopeState)
	_, err = p.Submit(ctx, env)
	assert.ErrorIs(t, err, errors.ErrEnvelopeState)

	assembled, _, err := p.Prepare(ctx, env)
	require.NoError(t, err)
	_, err = p.Simulate(ctx, assembled)
	assert.ErrorIs(t, err, errors.ErrEnvelopeState)
	_, err = p.Assemble(assembled, &SimulationOutcome{ok: true})
	assert.ErrorIs(t, err, errors.ErrEnvelopeState)
}

func TestSignRejections(t *testing.T) {
	kp := keypair.MustRandom()
	ledger := &fakeLedger{
		account:  txnbuild.SimpleAccount{AccountID: kp.Address(), Sequence: 10},
		simulate: successSimulation(t, scval.Bool(true), 100),
	}

	tests := []struct {
		name   string
		result string
		err    error
	}{
		{"wallet error", "", fmt.Errorf("user closed the popup")},
		{"empty envelope", "", nil},
		{"garbage envelope", "AAAA", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &mockWallet{}
			w.On("SignTransaction", mock.Anything, mock.Anything, network.TestNetworkPassphrase).Return(tt.result, tt.err)
			p := newTestPipeline(t, ledger, w, nil)

			env, err := p.Build(context.Background(), subscribeRequest(t, kp.Address()))
			require.NoError(t, err)
			assembled, _, err := p.Prepare(context.Background(), env)
			require.NoError(t, err)

			_, err = p.Sign(context.Background(), assembled)
			require.Error(t, err)
			assert.Equal(t, "SigningRejected", errors.KindOf(err))
			w.AssertExpectations(t)
		})
	}
}

func TestSignRequiresSignature(t *testing.T) {
	kp := keypair.MustRandom()
	ledger := &fakeLedger{
		account:  txnbuild.SimpleAccount{AccountID: kp.Address(), Sequence: 10},
		simulate: successSimulation(t, scval.Bool(true), 100),
	}
	w := &mockWallet{}
	p := newTestPipeline(t, ledger, w, nil)

	env, err := p.Build(context.Background(), subscribeRequest(t, kp.Address()))
	require.NoError(t, err)
	assembled, _, err := p.Prepare(context.Background(), env)
	require.NoError(t, err)

	// Echo the unsigned envelope back.
	unsigned, err := assembled.Base64()
	require.NoError(t, err)
	w.On("SignTransaction", mock.Anything, unsigned, network.TestNetworkPassphrase).Return(unsigned, nil)

	_, err = p.Sign(context.Background(), assembled)
	assert.ErrorIs(t, err, errors.ErrSigningRejected)
}

func TestExecuteSubmitsOnce(t *testing.T) {
	kp := keypair.MustRandom()
	ledger := &fakeLedger{
		account:  txnbuild.SimpleAccount{AccountID: kp.Address(), Sequence: 10},
		simulate: successSimulation(t, scval.Bool(true), 2500),
		send:     &rpc.SendTransactionResponse{Hash: "abc123", Status: rpc.StatusPending},
	}
	rec := &stageRecorder{}
	p := newTestPipeline(t, ledger, wallet.NewSoftwareWalletFromKeypair(kp), rec)

	result, err := p.Execute(context.Background(), subscribeRequest(t, kp.Address()))
	require.NoError(t, err)
	assert.Equal(t, "abc123", result.Hash)
	assert.Equal(t, rpc.StatusPending, result.Status)
	assert.Equal(t, 1, ledger.sendCalls)
	assert.Equal(t, []Stage{StageBuild, StageSimulate, StageAssemble, StageSign, StageSubmit}, rec.stages)

	parsed, err := txnbuild.TransactionFromXDR(ledger.lastSent)
	require.NoError(t, err)
	tx, ok := parsed.Transaction()
	require.True(t, ok)
	assert.Len(t, tx.Signatures(), 1)
}

func TestSubmitFailures(t *testing.T) {
	kp := keypair.MustRandom()

	tests := []struct {
		name    string
		send    *rpc.SendTransactionResponse
		sendErr error
	}{
		{"error status", &rpc.SendTransactionResponse{Hash: "h", Status: rpc.StatusError, ErrorResultXDR: "AAAA"}, nil},
		{"try again later", &rpc.SendTransactionResponse{Hash: "h", Status: rpc.StatusTryAgainLater}, nil},
		{"transport", nil, errors.WrapRPCConnectionFailed(fmt.Errorf("refused"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := &fakeLedger{
				account:  txnbuild.SimpleAccount{AccountID: kp.Address(), Sequence: 10},
				simulate: successSimulation(t, scval.Bool(true), 100),
				send:     tt.send,
				sendErr:  tt.sendErr,
			}
			p := newTestPipeline(t, ledger, wallet.NewSoftwareWalletFromKeypair(kp), nil)

			_, err := p.Execute(context.Background(), subscribeRequest(t, kp.Address()))
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrSubmissionFailed)
			assert.Equal(t, 1, ledger.sendCalls, "no automatic retry")
		})
	}
}

func TestDuplicateUsesLocalHash(t *testing.T) {
	kp := keypair.MustRandom()
	ledger := &fakeLedger{
		account:  txnbuild.SimpleAccount{AccountID: kp.Address(), Sequence: 10},
		simulate: successSimulation(t, scval.Bool(true), 100),
		send:     &rpc.SendTransactionResponse{Status: rpc.StatusDuplicate},
	}
	p := newTestPipeline(t, ledger, wallet.NewSoftwareWalletFromKeypair(kp), nil)

	result, err := p.Execute(context.Background(), subscribeRequest(t, kp.Address()))
	require.NoError(t, err)
	assert.Len(t, result.Hash, 64)
}

func TestQueryReturnsValueWithoutSigning(t *testing.T) {
	ledger := &fakeLedger{simulate: successSimulation(t, scval.Bool(true), 0)}
	w := &mockWallet{}
	p := newTestPipeline(t, ledger, w, nil)

	val, err := p.Query(context.Background(), Request{ContractID: testContractID(t), Function: "is_paused"})
	require.NoError(t, err)
	paused, err := scval.DecodeBool(val)
	require.NoError(t, err)
	assert.True(t, paused)

	assert.Equal(t, 0, ledger.accountCalls)
	assert.Equal(t, 0, ledger.sendCalls)
	w.AssertNotCalled(t, "SignTransaction", mock.Anything, mock.Anything, mock.Anything)
}

func TestQueryMissingReturnValue(t *testing.T) {
	ledger := &fakeLedger{simulate: &rpc.SimulateTransactionResponse{LatestLedger: 5}}
	p := newTestPipeline(t, ledger, nil, nil)

	_, err := p.Query(context.Background(), Request{ContractID: testContractID(t), Function: "get_totals"})
	assert.ErrorIs(t, err, errors.ErrUnexpectedValue)
}

func TestSimulateTransportError(t *testing.T) {
	ledger := &fakeLedger{simErr: errors.WrapRPCConnectionFailed(fmt.Errorf("dial tcp"))}
	p := newTestPipeline(t, ledger, nil, nil)

	_, err := p.Query(context.Background(), Request{ContractID: testContractID(t), Function: "get_totals"})
	assert.ErrorIs(t, err, errors.ErrRPCConnectionFailed)
	assert.NotErrorIs(t, err, errors.ErrSimulationFailed)
}
