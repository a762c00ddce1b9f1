package controller

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCommissioningWindowEnhancedDerivesVerifier(t *testing.T) {
	stack := &fakeStack{}
	ctrl := New(stack, Options{})

	err := ctrl.OpenCommissioningWindow(0x11, 20202021, WindowOptions{
		Enhanced:      true,
		WindowTimeout: 3 * time.Minute,
		Iterations:    1500,
		Discriminator: 3840,
	})
	require.NoError(t, err)

	assert.Len(t, stack.lastWindow.Salt, pakeSaltLen)
	assert.Len(t, stack.lastWindow.Verifier, pakeVerifierLen)
	assert.True(t, stack.lastWindow.Enhanced)
}

func TestOpenCommissioningWindowBasicSkipsVerifier(t *testing.T) {
	stack := &fakeStack{}
	ctrl := New(stack, Options{})

	err := ctrl.OpenCommissioningWindow(0x11, 0, WindowOptions{
		WindowTimeout: 3 * time.Minute,
		Discriminator: 3840,
	})
	require.NoError(t, err)

	assert.Empty(t, stack.lastWindow.Salt)
	assert.Empty(t, stack.lastWindow.Verifier)
}

func TestOpenCommissioningWindowRejectsIterationRange(t *testing.T) {
	ctrl := New(&fakeStack{}, Options{})

	err := ctrl.OpenCommissioningWindow(0x11, 20202021, WindowOptions{
		Enhanced:   true,
		Iterations: 10,
	})
	require.Error(t, err)
}

func TestPassthroughReportsBusy(t *testing.T) {
	ctrl := New(&fakeStack{}, Options{StackLockTimeout: 30 * time.Millisecond})

	require.True(t, ctrl.lock.Acquire(time.Second))
	defer ctrl.lock.Release()

	err := ctrl.PairOnNetwork(0x22, 20202021)
	assert.True(t, errors.Is(err, ErrStackBusy), "expected ErrStackBusy, got %v", err)

	err = ctrl.ShutdownAllSubscriptions()
	assert.True(t, errors.Is(err, ErrStackBusy), "expected ErrStackBusy, got %v", err)

	err = ctrl.AddGroup("kitchen", 1)
	assert.True(t, errors.Is(err, ErrStackBusy), "expected ErrStackBusy, got %v", err)

	err = ctrl.ResetUDCClients()
	assert.True(t, errors.Is(err, ErrStackBusy), "expected ErrStackBusy, got %v", err)
}

func TestGroupAndUDCPassthroughsReleaseLock(t *testing.T) {
	ctrl := New(&fakeStack{}, Options{})

	require.NoError(t, ctrl.AddGroup("kitchen", 1))
	_, err := ctrl.ListGroups()
	require.NoError(t, err)
	require.NoError(t, ctrl.RemoveGroup(1))
	_, err = ctrl.ListUDCClients()
	require.NoError(t, err)
	require.NoError(t, ctrl.CommissionUDCClient(0, 20202021))

	require.True(t, ctrl.lock.Acquire(10*time.Millisecond))
	ctrl.lock.Release()
}

func TestStackLockReleaseAfterPassthrough(t *testing.T) {
	ctrl := New(&fakeStack{}, Options{})

	require.NoError(t, ctrl.PairCode(0x33, "MT:Y.K9042C00KA0648G00"))

	// The lock must be free again immediately after the call.
	require.True(t, ctrl.lock.Acquire(10*time.Millisecond))
	ctrl.lock.Release()
}
