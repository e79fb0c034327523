// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package tranche

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/dotandev/tranche/internal/contract"
	"github.com/dotandev/tranche/internal/errors"
	"github.com/dotandev/tranche/internal/rpc"
	"github.com/dotandev/tranche/internal/scval"
	"github.com/dotandev/tranche/internal/session"
	"github.com/dotandev/tranche/internal/wallet"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const settledHash = "3389e9f0f1a65f19736cacf544c2e825313e8447f569233bb8db39aa607c8889"

type invocation struct {
	contract string
	function string
	args     xdr.ScVec
}

type fakeLedger struct {
	mu sync.Mutex

	balance    string
	balanceErr error
	returns    map[string]xdr.ScVal
	simError   string
	sendStatus string
	// sendGate, when set, blocks SendTransaction until closed.
	sendGate    chan struct{}
	sendEntered chan struct{}

	accountCalls int
	simulated    []invocation
	sendCalls    int
	balanceCalls int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		balance:    "100.5",
		returns:    map[string]xdr.ScVal{},
		sendStatus: rpc.StatusPending,
	}
}

func (f *fakeLedger) GetAccount(_ context.Context, address string) (txnbuild.SimpleAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accountCalls++
	return txnbuild.SimpleAccount{AccountID: address, Sequence: 500}, nil
}

func decodeInvocation(envelopeXDR string) (invocation, error) {
	parsed, err := txnbuild.TransactionFromXDR(envelopeXDR)
	if err != nil {
		return invocation{}, err
	}
	tx, ok := parsed.Transaction()
	if !ok {
		return invocation{}, fmt.Errorf("fee bump")
	}
	op := tx.Operations()[0].(*txnbuild.InvokeHostFunction)
	call := op.HostFunction.InvokeContract
	contractID, err := call.ContractAddress.String()
	if err != nil {
		return invocation{}, err
	}
	return invocation{
		contract: contractID,
		function: string(call.FunctionName),
		args:     call.Args,
	}, nil
}

func (f *fakeLedger) SimulateTransaction(_ context.Context, envelopeXDR string) (*rpc.SimulateTransactionResponse, error) {
	inv, err := decodeInvocation(envelopeXDR)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.simulated = append(f.simulated, inv)

	if f.simError != "" {
		return &rpc.SimulateTransactionResponse{Error: f.simError, LatestLedger: 10}, nil
	}

	ret, ok := f.returns[inv.function]
	if !ok {
		ret = xdr.ScVal{Type: xdr.ScValTypeScvVoid}
	}
	retB64, err := xdr.MarshalBase64(ret)
	if err != nil {
		return nil, err
	}
	dataB64, err := xdr.MarshalBase64(xdr.SorobanTransactionData{ResourceFee: 1200})
	if err != nil {
		return nil, err
	}
	return &rpc.SimulateTransactionResponse{
		TransactionData: dataB64,
		MinResourceFee:  "1200",
		Results:         []rpc.SimulateHostFunctionResult{{XDR: retB64}},
		LatestLedger:    10,
	}, nil
}

func (f *fakeLedger) SendTransaction(_ context.Context, _ string) (*rpc.SendTransactionResponse, error) {
	f.mu.Lock()
	gate, entered := f.sendGate, f.sendEntered
	f.sendCalls++
	status := f.sendStatus
	f.mu.Unlock()

	if gate != nil {
		entered <- struct{}{}
		<-gate
	}
	return &rpc.SendTransactionResponse{Hash: settledHash, Status: status}, nil
}

func (f *fakeLedger) NativeBalance(_ context.Context, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balanceCalls++
	return f.balance, f.balanceErr
}

func (f *fakeLedger) networkCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accountCalls + len(f.simulated) + f.sendCalls + f.balanceCalls
}

func (f *fakeLedger) last() invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.simulated[len(f.simulated)-1]
}

func testContracts(t *testing.T) Contracts {
	t.Helper()
	id := func(fill byte) string {
		s, err := strkey.Encode(strkey.VersionByteContract, bytes.Repeat([]byte{fill}, 32))
		require.NoError(t, err)
		return s
	}
	return Contracts{Tranche: id(1), Pool: id(2), Token: id(3), RWAToken: id(4)}
}

func newTestService(t *testing.T, ledger *fakeLedger, w wallet.Wallet, opts ...Option) *Service {
	t.Helper()
	opts = append([]Option{WithContracts(testContracts(t))}, opts...)
	return NewService(ledger, w, network.TestNetworkPassphrase, opts...)
}

func connectedService(t *testing.T, ledger *fakeLedger, opts ...Option) (*Service, *keypair.Full) {
	t.Helper()
	kp := keypair.MustRandom()
	svc := newTestService(t, ledger, wallet.NewSoftwareWalletFromKeypair(kp), opts...)
	require.NoError(t, svc.Connect(context.Background()))
	return svc, kp
}

func i128(t *testing.T, v int64) xdr.ScVal {
	t.Helper()
	out, err := scval.I128(big.NewInt(v))
	require.NoError(t, err)
	return out
}

func TestDisconnectedOperationsMakeNoNetworkCalls(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(t, ledger, wallet.NewSoftwareWalletFromKeypair(keypair.MustRandom()))
	ctx := context.Background()

	calls := map[string]func() error{
		"initialize": func() error { _, err := svc.Initialize(ctx, "", "", "1", "1"); return err },
		"subscribe":  func() error { _, err := svc.Subscribe(ctx, contract.Senior, "10"); return err },
		"redeem":     func() error { _, err := svc.Redeem(ctx, contract.Junior, "10"); return err },
		"approve": func() error {
			_, err := svc.ApproveSubscription(ctx, keypair.MustRandom().Address(), contract.Senior, "1")
			return err
		},
		"supply":       func() error { _, err := svc.Supply(ctx, "", "10"); return err },
		"withdraw":     func() error { _, err := svc.Withdraw(ctx, "", "10"); return err },
		"borrow":       func() error { _, err := svc.Borrow(ctx, "", "10"); return err },
		"repay":        func() error { _, err := svc.Repay(ctx, "", "10"); return err },
		"invest":       func() error { _, err := svc.InvestInTranche(ctx, contract.Senior, "10"); return err },
		"share":        func() error { _, err := svc.GetUserShare(ctx, contract.Senior); return err },
		"totals":       func() error { _, err := svc.GetTotals(ctx); return err },
		"minimums":     func() error { _, err := svc.GetMinimums(ctx); return err },
		"paused":       func() error { _, err := svc.IsPaused(ctx); return err },
		"tokenBalance": func() error { _, err := svc.GetTokenBalance(ctx, ""); return err },
		"position":     func() error { _, err := svc.GetPoolPosition(ctx); return err },
		"balance":      func() error { _, err := svc.RefreshBalance(ctx); return err },
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			err := call()
			assert.ErrorIs(t, err, errors.ErrNotConnected)
			assert.Equal(t, "NotConnected", errors.KindOf(err))
		})
	}
	assert.Equal(t, 0, ledger.networkCalls())
	assert.False(t, svc.State().Busy)
}

func TestConnectWithoutWallet(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(t, ledger, nil)

	err := svc.Connect(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrWalletNotDetected)
	assert.Contains(t, err.Error(), "wallet not detected")

	st := svc.State()
	assert.Equal(t, session.StatusDisconnected, st.Status)
	assert.Contains(t, st.LastError, "wallet not detected")
	assert.Equal(t, 0, ledger.networkCalls())
}

func TestConnectRefreshesBalance(t *testing.T) {
	ledger := newFakeLedger()
	svc, kp := connectedService(t, ledger)

	st := svc.State()
	assert.Equal(t, session.StatusConnected, st.Status)
	assert.Equal(t, kp.Address(), st.Address)
	assert.Equal(t, "100.5", st.NativeBalance)
	assert.Equal(t, 1, ledger.balanceCalls)

	// Already connected: nothing happens.
	require.NoError(t, svc.Connect(context.Background()))
	assert.Equal(t, 1, ledger.balanceCalls)
}

func TestConnectBalanceFailureDegradesToZero(t *testing.T) {
	ledger := newFakeLedger()
	ledger.balanceErr = &rpc.AccountNotFoundError{Address: "x"}
	svc, _ := connectedService(t, ledger)

	st := svc.State()
	assert.Equal(t, session.StatusConnected, st.Status)
	assert.Equal(t, session.ZeroBalance, st.NativeBalance)
	assert.Empty(t, st.LastError)
}

func TestConnectDeclined(t *testing.T) {
	ledger := newFakeLedger()
	w := wallet.NewSoftwareWalletFromKeypair(keypair.MustRandom(), wallet.WithApprover(func(context.Context, string) error {
		return wallet.ErrDeclined
	}))
	svc := newTestService(t, ledger, w)

	err := svc.Connect(context.Background())
	assert.ErrorIs(t, err, wallet.ErrDeclined)
	assert.Equal(t, session.StatusDisconnected, svc.State().Status)
}

func TestResume(t *testing.T) {
	t.Run("existing grant", func(t *testing.T) {
		ledger := newFakeLedger()
		kp := keypair.MustRandom()
		svc := newTestService(t, ledger, wallet.NewSoftwareWalletFromKeypair(kp, wallet.WithPreauthorized(true)))

		svc.Resume(context.Background())
		st := svc.State()
		assert.Equal(t, session.StatusConnected, st.Status)
		assert.Equal(t, kp.Address(), st.Address)
		assert.Equal(t, "100.5", st.NativeBalance)
	})

	t.Run("no grant", func(t *testing.T) {
		ledger := newFakeLedger()
		svc := newTestService(t, ledger, wallet.NewSoftwareWalletFromKeypair(keypair.MustRandom()))

		svc.Resume(context.Background())
		st := svc.State()
		assert.Equal(t, session.StatusDisconnected, st.Status)
		assert.Empty(t, st.LastError)
		assert.Equal(t, 0, ledger.networkCalls())
	})
}

func TestDisconnect(t *testing.T) {
	ledger := newFakeLedger()
	svc, _ := connectedService(t, ledger)

	require.NoError(t, svc.Disconnect())
	st := svc.State()
	assert.Equal(t, session.StatusDisconnected, st.Status)
	assert.Empty(t, st.Address)
	assert.Equal(t, session.ZeroBalance, st.NativeBalance)

	_, err := svc.Subscribe(context.Background(), contract.Senior, "1")
	assert.ErrorIs(t, err, errors.ErrNotConnected)

	// The wallet forgot the grant, so a silent resume does nothing.
	svc.Resume(context.Background())
	assert.Equal(t, session.StatusDisconnected, svc.State().Status)
}

func TestSubscribeRejectsBadAmounts(t *testing.T) {
	tests := []struct {
		input string
		want  error
	}{
		{"0", errors.ErrInvalidAmount},
		{"0.0000000", errors.ErrInvalidAmount},
		{"0.00000001", errors.ErrInvalidAmount},
		{"-5", errors.ErrInvalidAmount},
		{"abc", errors.ErrMalformedAmount},
		{"", errors.ErrMalformedAmount},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ledger := newFakeLedger()
			svc, _ := connectedService(t, ledger)
			before := ledger.networkCalls()

			_, err := svc.Subscribe(context.Background(), contract.Senior, tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.NotErrorIs(t, err, errors.ErrRPCConnectionFailed)
			assert.Equal(t, before, ledger.networkCalls(), "no envelope is built")
			assert.False(t, svc.State().Busy)
			assert.NotEmpty(t, svc.State().LastError)
		})
	}
}

func TestSubscribeSuccess(t *testing.T) {
	ledger := newFakeLedger()
	svc, kp := connectedService(t, ledger)
	svc.Session().SetError(fmt.Errorf("stale failure"))
	ledger.balance = "90.25"

	var busy []bool
	cancel := svc.Watch(func(st session.State) { busy = append(busy, st.Busy) })
	defer cancel()

	hash, err := svc.Subscribe(context.Background(), contract.Senior, "12.5")
	require.NoError(t, err)
	assert.Equal(t, settledHash, hash)

	st := svc.State()
	assert.False(t, st.Busy)
	assert.Empty(t, st.LastError)
	assert.Equal(t, settledHash, st.LastTxHash)
	assert.Equal(t, "90.25", st.NativeBalance)
	assert.Equal(t, 2, ledger.balanceCalls)
	require.NotEmpty(t, busy)
	assert.True(t, busy[0])
	assert.False(t, busy[len(busy)-1])

	inv := ledger.last()
	assert.Equal(t, testContracts(t).Tranche, inv.contract)
	assert.Equal(t, contract.FnSubscribe, inv.function)
	require.Len(t, inv.args, 3)

	from, err := scval.DecodeAddress(inv.args[0])
	require.NoError(t, err)
	assert.Equal(t, kp.Address(), from)

	kind, err := contract.DecodeTranche(inv.args[1])
	require.NoError(t, err)
	assert.Equal(t, contract.Senior, kind)

	amt, err := scval.DecodeI128(inv.args[2])
	require.NoError(t, err)
	assert.Equal(t, int64(125000000), amt.Int64())
}

func TestSimulationFailureRecordsClassifiedError(t *testing.T) {
	ledger := newFakeLedger()
	svc, _ := connectedService(t, ledger)
	ledger.simError = "HostError: Error(WasmVm, InvalidAction)\nwasm trap: UnreachableCodeReached"

	_, err := svc.Redeem(context.Background(), contract.Junior, "3")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSimulationFailed)
	assert.ErrorIs(t, err, errors.ErrContractUninitialized)

	st := svc.State()
	assert.False(t, st.Busy)
	assert.Contains(t, st.LastError, "Contract Not Initialized")
	assert.Equal(t, "100.5", st.NativeBalance)
	assert.Equal(t, 0, ledger.sendCalls)
	assert.Equal(t, 1, ledger.balanceCalls, "no refresh after a failed operation")
}

func TestSubmissionFailure(t *testing.T) {
	ledger := newFakeLedger()
	svc, _ := connectedService(t, ledger)
	ledger.sendStatus = rpc.StatusError

	_, err := svc.Supply(context.Background(), "", "5")
	assert.ErrorIs(t, err, errors.ErrSubmissionFailed)
	assert.Equal(t, 1, ledger.sendCalls)
	assert.Empty(t, svc.State().LastTxHash)
}

func TestPoolOperations(t *testing.T) {
	tests := []struct {
		name string
		call func(*Service, string) (string, error)
		want contract.RequestType
	}{
		{"supply", func(s *Service, a string) (string, error) { return s.Supply(context.Background(), a, "2") }, contract.RequestSupply},
		{"withdraw", func(s *Service, a string) (string, error) { return s.Withdraw(context.Background(), a, "2") }, contract.RequestWithdraw},
		{"borrow", func(s *Service, a string) (string, error) { return s.Borrow(context.Background(), a, "2") }, contract.RequestBorrow},
		{"repay", func(s *Service, a string) (string, error) { return s.Repay(context.Background(), a, "2") }, contract.RequestRepay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := newFakeLedger()
			svc, kp := connectedService(t, ledger)
			asset := testContracts(t).RWAToken

			hash, err := tt.call(svc, asset)
			require.NoError(t, err)
			assert.Equal(t, settledHash, hash)

			inv := ledger.last()
			assert.Equal(t, testContracts(t).Pool, inv.contract)
			assert.Equal(t, contract.FnPoolSubmit, inv.function)
			require.Len(t, inv.args, 4)
			for _, a := range inv.args[:3] {
				who, err := scval.DecodeAddress(a)
				require.NoError(t, err)
				assert.Equal(t, kp.Address(), who)
			}

			requests, err := scval.DecodeVec(inv.args[3])
			require.NoError(t, err)
			require.Len(t, requests, 1)
			fields, err := scval.DecodeStruct(requests[0])
			require.NoError(t, err)

			gotAsset, err := scval.DecodeAddress(fields["address"])
			require.NoError(t, err)
			assert.Equal(t, asset, gotAsset)
			assert.Equal(t, uint32(tt.want), uint32(fields["request_type"].MustU32()))
			amt, err := scval.DecodeI128(fields["amount"])
			require.NoError(t, err)
			assert.Equal(t, int64(20000000), amt.Int64())
		})
	}
}

func TestInitialize(t *testing.T) {
	ledger := newFakeLedger()
	svc, kp := connectedService(t, ledger)
	c := testContracts(t)

	_, err := svc.Initialize(context.Background(), "", "", "100", "0")
	require.NoError(t, err)

	inv := ledger.last()
	assert.Equal(t, contract.FnInitialize, inv.function)
	require.Len(t, inv.args, 5)
	admin, _ := scval.DecodeAddress(inv.args[0])
	token, _ := scval.DecodeAddress(inv.args[1])
	pool, _ := scval.DecodeAddress(inv.args[2])
	assert.Equal(t, kp.Address(), admin)
	assert.Equal(t, c.Token, token)
	assert.Equal(t, c.Pool, pool)

	minSenior, err := scval.DecodeI128(inv.args[3])
	require.NoError(t, err)
	assert.Equal(t, int64(1000000000), minSenior.Int64())
}

func TestApproveSubscriptionTargetsUser(t *testing.T) {
	ledger := newFakeLedger()
	svc, _ := connectedService(t, ledger)
	user := keypair.MustRandom().Address()

	_, err := svc.ApproveSubscription(context.Background(), user, contract.Junior, "1.5")
	require.NoError(t, err)

	inv := ledger.last()
	assert.Equal(t, contract.FnApproveSubscription, inv.function)
	got, _ := scval.DecodeAddress(inv.args[0])
	assert.Equal(t, user, got)
	kind, _ := contract.DecodeTranche(inv.args[1])
	assert.Equal(t, contract.Junior, kind)
}

func TestInvestPolicy(t *testing.T) {
	t.Run("pool supply", func(t *testing.T) {
		ledger := newFakeLedger()
		svc, _ := connectedService(t, ledger)

		_, err := svc.InvestInTranche(context.Background(), contract.Junior, "4")
		require.NoError(t, err)
		inv := ledger.last()
		assert.Equal(t, contract.FnPoolSubmit, inv.function)

		requests, _ := scval.DecodeVec(inv.args[3])
		fields, _ := scval.DecodeStruct(requests[0])
		asset, _ := scval.DecodeAddress(fields["address"])
		assert.Equal(t, testContracts(t).RWAToken, asset)
	})

	t.Run("tranche subscribe", func(t *testing.T) {
		ledger := newFakeLedger()
		svc, _ := connectedService(t, ledger, WithInvestPolicy(PolicyTrancheSubscribe))

		_, err := svc.CreateTrancheTokens(context.Background(), contract.Senior, "4")
		require.NoError(t, err)
		assert.Equal(t, contract.FnSubscribe, ledger.last().function)
	})
}

func TestParseInvestPolicy(t *testing.T) {
	p, err := ParseInvestPolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyPoolSupply, p)

	p, err = ParseInvestPolicy("Tranche-Subscribe")
	require.NoError(t, err)
	assert.Equal(t, PolicyTrancheSubscribe, p)

	_, err = ParseInvestPolicy("yolo")
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestConcurrentMutationRejected(t *testing.T) {
	ledger := newFakeLedger()
	svc, _ := connectedService(t, ledger)
	ledger.sendGate = make(chan struct{})
	ledger.sendEntered = make(chan struct{}, 1)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Subscribe(context.Background(), contract.Senior, "1")
		done <- err
	}()
	<-ledger.sendEntered

	assert.True(t, svc.State().Busy)
	_, err := svc.Redeem(context.Background(), contract.Senior, "1")
	assert.ErrorIs(t, err, errors.ErrOperationInProgress)

	close(ledger.sendGate)
	require.NoError(t, <-done)
	assert.False(t, svc.State().Busy)
	assert.Equal(t, 1, ledger.sendCalls)
}

func TestQueries(t *testing.T) {
	ledger := newFakeLedger()
	svc, kp := connectedService(t, ledger)
	ctx := context.Background()

	ledger.returns[contract.FnGetTotals] = scval.Vec(i128(t, 125000000), i128(t, 30000000))
	ledger.returns[contract.FnGetMinimums] = scval.Vec(i128(t, 10000000), i128(t, 0))
	ledger.returns[contract.FnGetUserShare] = i128(t, 5000000)
	ledger.returns[contract.FnIsPaused] = scval.Bool(false)
	ledger.returns[contract.FnTokenBalance] = i128(t, 123456789)

	var events int
	cancel := svc.Watch(func(session.State) { events++ })
	defer cancel()

	totals, err := svc.GetTotals(ctx)
	require.NoError(t, err)
	assert.Equal(t, Totals{Senior: "12.5", Junior: "3"}, totals)

	minimums, err := svc.GetMinimums(ctx)
	require.NoError(t, err)
	assert.Equal(t, Totals{Senior: "1", Junior: "0"}, minimums)

	share, err := svc.GetUserShare(ctx, contract.Junior)
	require.NoError(t, err)
	assert.Equal(t, "0.5", share)
	inv := ledger.last()
	user, _ := scval.DecodeAddress(inv.args[0])
	assert.Equal(t, kp.Address(), user)

	paused, err := svc.IsPaused(ctx)
	require.NoError(t, err)
	assert.False(t, paused)

	bal, err := svc.GetTokenBalance(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "12.3456789", bal)
	assert.Equal(t, testContracts(t).Token, ledger.last().contract)

	assert.Equal(t, 0, ledger.sendCalls)
	assert.Equal(t, 0, ledger.accountCalls)
	assert.Equal(t, 1, ledger.balanceCalls, "queries never refresh the balance")
	assert.Equal(t, 0, events, "queries never touch the session")
}

func TestGetPoolPosition(t *testing.T) {
	ledger := newFakeLedger()
	svc, _ := connectedService(t, ledger)

	reserve := func(entries map[uint32]int64) xdr.ScVal {
		m := xdr.ScMap{}
		for _, idx := range []uint32{0, 1, 2} {
			v, ok := entries[idx]
			if !ok {
				continue
			}
			m = append(m, xdr.ScMapEntry{Key: scval.U32(idx), Val: i128(t, v)})
		}
		pm := &m
		return xdr.ScVal{Type: xdr.ScValTypeScvMap, Map: &pm}
	}
	ledger.returns[contract.FnPoolPositions] = scval.Struct(map[string]xdr.ScVal{
		"liabilities": reserve(map[uint32]int64{1: 20000000}),
		"collateral":  reserve(nil),
		"supply":      reserve(map[uint32]int64{2: 5, 0: 70000000}),
	})

	pos, err := svc.GetPoolPosition(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Reserve{{Index: 1, Amount: "2"}}, pos.Liabilities)
	assert.Empty(t, pos.Collateral)
	assert.Equal(t, []Reserve{{Index: 0, Amount: "7"}, {Index: 2, Amount: "0.0000005"}}, pos.Supply)
}

func TestQueryUnexpectedShape(t *testing.T) {
	ledger := newFakeLedger()
	svc, _ := connectedService(t, ledger)
	ledger.returns[contract.FnGetTotals] = scval.Bool(true)

	_, err := svc.GetTotals(context.Background())
	assert.ErrorIs(t, err, errors.ErrUnexpectedValue)
}
