package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/LaunchPass_Go/internal/domain"
	"github.com/osse101/LaunchPass_Go/internal/payments"
	"github.com/osse101/LaunchPass_Go/internal/testing/leaktest"
)

const (
	testCreatorID = "c1"
	testAccountID = "acct_1"
	testEmail     = "a@x.com"
	testBuyer     = "buyer@x.com"
	roomA         = "!a:hs.test"
	roomB         = "!b:hs.test"
	defaultRoom   = "!lobby:hs.test"
)

type fixture struct {
	svc      Service
	store    *memStore
	provider *MockProvider
	chat     *MockChat
	notifier *MockNotifier
	clock    *stepClock
}

func newFixture(t *testing.T, seed ...domain.Creator) *fixture {
	t.Helper()
	f := &fixture{
		store:    newMemStore(seed...),
		provider: &MockProvider{},
		chat:     &MockChat{},
		notifier: &MockNotifier{},
		clock:    newStepClock(),
	}
	f.svc = NewService(f.store, f.provider, f.chat, f.notifier, fakeURLs{}, Options{
		DefaultRoomIDs:    []string{defaultRoom},
		DefaultFeePercent: 10,
		DefaultSuccessURL: "https://launchpass.test/success",
		DefaultCancelURL:  "https://launchpass.test/cancel",
		Now:               f.clock.Now,
	})
	t.Cleanup(func() {
		f.provider.AssertExpectations(t)
		f.chat.AssertExpectations(t)
		f.notifier.AssertExpectations(t)
	})
	return f
}

func onboardedCreator(rooms ...string) domain.Creator {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := domain.NewCreator(testCreatorID, testAccountID, testEmail, "A", created)
	c.ChatRoomIDs = append(c.ChatRoomIDs, rooms...)
	return *c
}

func onboardingLink(accountID string) *domain.Link {
	return &domain.Link{URL: "https://connect.test/setup/" + accountID, ExpiresAt: 1700000300}
}

func (f *fixture) expectOnboardingLink(accountID string) {
	f.provider.On("CreateOnboardingLink", mock.Anything, accountID,
		fakeURLs{}.OnboardingReturnURL(accountID),
		fakeURLs{}.OnboardingRefreshURL(accountID)).
		Return(onboardingLink(accountID), nil).Once()
}

func statusEvent(charges, details bool) domain.AccountStatus {
	return domain.AccountStatus{AccountID: testAccountID, ChargesEnabled: charges, DetailsSubmitted: details}
}

// --- Onboard ---

func TestOnboard_NewCreator(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.provider.On("CreateConnectedAccount", mock.Anything, testCreatorID, testEmail).Return(testAccountID, nil).Once()
	f.expectOnboardingLink(testAccountID)

	res, err := f.svc.Onboard(ctx, OnboardRequest{CreatorID: testCreatorID, Email: testEmail, DisplayName: "A"})
	require.NoError(t, err)

	assert.True(t, res.Created)
	assert.True(t, res.AccountCreated)
	assert.Equal(t, onboardingLink(testAccountID).URL, res.OnboardingLink.URL)

	stored, ok := f.store.record(testCreatorID)
	require.True(t, ok)
	assert.Equal(t, testAccountID, stored.ProviderAccountID)
	assert.Equal(t, testEmail, stored.Email)
	assert.Equal(t, "A", stored.DisplayName)
	assert.False(t, stored.OnboardingComplete)
	assert.False(t, stored.ChargesEnabled)
	assert.Empty(t, stored.ChatRoomIDs)
	assert.Equal(t, f.clock.Now(), stored.CreatedAt)
	assert.Equal(t, stored.CreatedAt, stored.UpdatedAt)
}

func TestOnboard_ExistingAccountIsReused(t *testing.T) {
	f := newFixture(t, onboardedCreator())
	f.expectOnboardingLink(testAccountID)

	res, err := f.svc.Onboard(context.Background(), OnboardRequest{CreatorID: testCreatorID, Email: "other@x.com"})
	require.NoError(t, err)

	assert.False(t, res.Created)
	assert.False(t, res.AccountCreated)
	assert.Equal(t, testAccountID, res.Creator.ProviderAccountID)
	assert.Zero(t, f.store.writeCount())
	f.provider.AssertNotCalled(t, "CreateConnectedAccount", mock.Anything, mock.Anything, mock.Anything)
}

func TestOnboard_ExistingRecordWithoutAccountIsPatched(t *testing.T) {
	seed := onboardedCreator(roomA)
	seed.ProviderAccountID = ""
	f := newFixture(t, seed)
	f.clock.Advance(time.Hour)

	f.provider.On("CreateConnectedAccount", mock.Anything, testCreatorID, testEmail).Return("acct_new", nil).Once()
	f.expectOnboardingLink("acct_new")

	res, err := f.svc.Onboard(context.Background(), OnboardRequest{CreatorID: testCreatorID, Email: testEmail})
	require.NoError(t, err)

	assert.False(t, res.Created)
	assert.True(t, res.AccountCreated)

	stored, _ := f.store.record(testCreatorID)
	assert.Equal(t, "acct_new", stored.ProviderAccountID)
	assert.Equal(t, seed.CreatedAt, stored.CreatedAt)
	assert.Equal(t, f.clock.Now(), stored.UpdatedAt)
	assert.Equal(t, []string{roomA}, stored.ChatRoomIDs)
}

func TestOnboard_AccountCreationFailureWritesNothing(t *testing.T) {
	f := newFixture(t)
	f.provider.On("CreateConnectedAccount", mock.Anything, testCreatorID, testEmail).
		Return("", fmt.Errorf("%w: timeout", domain.ErrProviderUnavailable)).Once()

	_, err := f.svc.Onboard(context.Background(), OnboardRequest{CreatorID: testCreatorID, Email: testEmail})

	require.ErrorIs(t, err, domain.ErrProviderUnavailable)
	assert.Zero(t, f.store.writeCount())
}

func TestOnboard_LinkFailureLeavesCompleteRecordForRetry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := OnboardRequest{CreatorID: testCreatorID, Email: testEmail}

	f.provider.On("CreateConnectedAccount", mock.Anything, testCreatorID, testEmail).Return(testAccountID, nil).Once()
	f.provider.On("CreateOnboardingLink", mock.Anything, testAccountID, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: 500", domain.ErrProviderUnavailable)).Once()

	_, err := f.svc.Onboard(ctx, req)
	require.ErrorIs(t, err, domain.ErrProviderUnavailable)

	stored, ok := f.store.record(testCreatorID)
	require.True(t, ok)
	assert.Equal(t, testAccountID, stored.ProviderAccountID)

	// the retry reuses the account instead of creating a second one
	f.expectOnboardingLink(testAccountID)
	res, err := f.svc.Onboard(ctx, req)
	require.NoError(t, err)
	assert.False(t, res.AccountCreated)
	f.provider.AssertNumberOfCalls(t, "CreateConnectedAccount", 1)
}

func TestOnboard_LinkRequestedAfterWrite(t *testing.T) {
	f := newFixture(t)
	f.provider.On("CreateConnectedAccount", mock.Anything, testCreatorID, testEmail).Return(testAccountID, nil).Once()
	f.provider.On("CreateOnboardingLink", mock.Anything, testAccountID, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			_, ok := f.store.record(testCreatorID)
			assert.True(t, ok, "record must exist before the link is requested")
		}).
		Return(onboardingLink(testAccountID), nil).Once()

	_, err := f.svc.Onboard(context.Background(), OnboardRequest{CreatorID: testCreatorID, Email: testEmail})
	require.NoError(t, err)
}

func TestOnboard_StoreUnavailable(t *testing.T) {
	f := newFixture(t)
	f.store.getErr = fmt.Errorf("%w: sheets 503", domain.ErrStoreUnavailable)

	_, err := f.svc.Onboard(context.Background(), OnboardRequest{CreatorID: testCreatorID, Email: testEmail})

	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
	f.provider.AssertNotCalled(t, "CreateConnectedAccount", mock.Anything, mock.Anything, mock.Anything)
}

func TestOnboard_SaveFailure(t *testing.T) {
	f := newFixture(t)
	f.store.upsertErr = fmt.Errorf("%w: sheets 503", domain.ErrStoreUnavailable)
	f.provider.On("CreateConnectedAccount", mock.Anything, testCreatorID, testEmail).Return(testAccountID, nil).Once()

	_, err := f.svc.Onboard(context.Background(), OnboardRequest{CreatorID: testCreatorID, Email: testEmail})

	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
	f.provider.AssertNotCalled(t, "CreateOnboardingLink", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOnboard_ConcurrentWinnerKeepsItsAccount(t *testing.T) {
	f := newFixture(t)
	// another request stores the record between our lookup and our write
	f.store.beforeUpsert = func(c *domain.Creator) {
		f.store.mu.Lock()
		defer f.store.mu.Unlock()
		if _, ok := f.store.records[c.CreatorID]; !ok {
			winner := onboardedCreator()
			winner.ProviderAccountID = "acct_winner"
			f.store.records[c.CreatorID] = winner
		}
	}
	f.provider.On("CreateConnectedAccount", mock.Anything, testCreatorID, testEmail).Return("acct_loser", nil).Once()
	f.expectOnboardingLink("acct_winner")

	res, err := f.svc.Onboard(context.Background(), OnboardRequest{CreatorID: testCreatorID, Email: testEmail})
	require.NoError(t, err)

	assert.Equal(t, "acct_winner", res.Creator.ProviderAccountID)
	assert.False(t, res.AccountCreated)
	stored, _ := f.store.record(testCreatorID)
	assert.Equal(t, "acct_winner", stored.ProviderAccountID)
}

func TestOnboard_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		req     OnboardRequest
		wantMsg string
	}{
		{"missing creator", OnboardRequest{Email: testEmail}, ErrMsgCreatorIDRequired},
		{"blank creator", OnboardRequest{CreatorID: "  ", Email: testEmail}, ErrMsgCreatorIDRequired},
		{"missing email", OnboardRequest{CreatorID: testCreatorID}, ErrMsgEmailRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.Onboard(context.Background(), tt.req)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

// --- ReconcileAccountUpdate ---

func TestReconcileAccountUpdate_AppliesStatus(t *testing.T) {
	f := newFixture(t, onboardedCreator())
	before, _ := f.store.record(testCreatorID)
	f.clock.Advance(time.Minute)

	res, err := f.svc.ReconcileAccountUpdate(context.Background(), statusEvent(true, true))
	require.NoError(t, err)

	assert.True(t, res.Known)
	assert.True(t, res.OnboardingCompleted)
	stored, _ := f.store.record(testCreatorID)
	assert.True(t, stored.ChargesEnabled)
	assert.True(t, stored.OnboardingComplete)
	assert.True(t, stored.UpdatedAt.After(before.UpdatedAt))
	assert.Equal(t, before.CreatedAt, stored.CreatedAt)
}

func TestReconcileAccountUpdate_RatchetHoldsChargesFollowLatest(t *testing.T) {
	f := newFixture(t, onboardedCreator())
	ctx := context.Background()

	_, err := f.svc.ReconcileAccountUpdate(ctx, statusEvent(true, true))
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	res, err := f.svc.ReconcileAccountUpdate(ctx, statusEvent(false, false))
	require.NoError(t, err)

	assert.False(t, res.OnboardingCompleted)
	stored, _ := f.store.record(testCreatorID)
	assert.True(t, stored.OnboardingComplete)
	assert.False(t, stored.ChargesEnabled)
}

func TestReconcileAccountUpdate_UnknownAccountIsNoop(t *testing.T) {
	f := newFixture(t, onboardedCreator())

	res, err := f.svc.ReconcileAccountUpdate(context.Background(), domain.AccountStatus{
		AccountID: "acct_unknown", ChargesEnabled: true, DetailsSubmitted: true,
	})

	require.NoError(t, err)
	assert.False(t, res.Known)
	assert.Zero(t, f.store.writeCount())
}

func TestReconcileAccountUpdate_Idempotent(t *testing.T) {
	f := newFixture(t, onboardedCreator())
	ctx := context.Background()
	event := statusEvent(true, false)

	_, err := f.svc.ReconcileAccountUpdate(ctx, event)
	require.NoError(t, err)
	first, _ := f.store.record(testCreatorID)

	_, err = f.svc.ReconcileAccountUpdate(ctx, event)
	require.NoError(t, err)
	second, _ := f.store.record(testCreatorID)

	assert.Equal(t, first, second)
}

func TestReconcileAccountUpdate_RatchetOverEveryOrder(t *testing.T) {
	events := []domain.AccountStatus{
		statusEvent(false, false),
		statusEvent(false, true),
		statusEvent(true, true),
		statusEvent(true, false),
	}

	for _, order := range permutations(len(events)) {
		t.Run(fmt.Sprint(order), func(t *testing.T) {
			f := newFixture(t, onboardedCreator())
			ctx := context.Background()
			completed := false

			for _, i := range order {
				_, err := f.svc.ReconcileAccountUpdate(ctx, events[i])
				require.NoError(t, err)
				stored, _ := f.store.record(testCreatorID)

				completed = completed || events[i].DetailsSubmitted
				assert.Equal(t, completed, stored.OnboardingComplete)
				assert.Equal(t, events[i].ChargesEnabled, stored.ChargesEnabled)
			}
		})
	}
}

func TestReconcileAccountUpdate_UpdatedAtNeverMovesBack(t *testing.T) {
	f := newFixture(t, onboardedCreator())
	ctx := context.Background()

	f.clock.Advance(time.Hour)
	_, err := f.svc.ReconcileAccountUpdate(ctx, statusEvent(true, true))
	require.NoError(t, err)
	after, _ := f.store.record(testCreatorID)

	f.clock.Advance(-30 * time.Minute)
	_, err = f.svc.ReconcileAccountUpdate(ctx, statusEvent(false, true))
	require.NoError(t, err)
	stored, _ := f.store.record(testCreatorID)

	assert.False(t, stored.UpdatedAt.Before(after.UpdatedAt))
}

func TestReconcileAccountUpdate_StoreErrors(t *testing.T) {
	unavailable := fmt.Errorf("%w: timeout", domain.ErrStoreUnavailable)

	t.Run("lookup", func(t *testing.T) {
		f := newFixture(t, onboardedCreator())
		f.store.findErr = unavailable
		_, err := f.svc.ReconcileAccountUpdate(context.Background(), statusEvent(true, true))
		require.ErrorIs(t, err, domain.ErrStoreUnavailable)
	})

	t.Run("write", func(t *testing.T) {
		f := newFixture(t, onboardedCreator())
		f.store.upsertErr = unavailable
		_, err := f.svc.ReconcileAccountUpdate(context.Background(), statusEvent(true, true))
		require.ErrorIs(t, err, domain.ErrStoreUnavailable)
	})
}

func TestReconcileAccountUpdate_ConcurrentDeliveries(t *testing.T) {
	f := newFixture(t, onboardedCreator())
	ctx := context.Background()

	leaktest.Check(t, func() {
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := f.svc.ReconcileAccountUpdate(ctx, statusEvent(i%2 == 0, i == 0))
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()
	})

	_, err := f.svc.ReconcileAccountUpdate(ctx, statusEvent(true, false))
	require.NoError(t, err)
	stored, _ := f.store.record(testCreatorID)
	assert.True(t, stored.ChargesEnabled)
}

func permutations(n int) [][]int {
	if n == 1 {
		return [][]int{{0}}
	}
	var out [][]int
	for _, p := range permutations(n - 1) {
		for pos := 0; pos <= len(p); pos++ {
			next := make([]int, 0, n)
			next = append(next, p[:pos]...)
			next = append(next, n-1)
			next = append(next, p[pos:]...)
			out = append(out, next)
		}
	}
	return out
}

// --- ReconcileCheckoutCompleted ---

func sent(room string) domain.InviteResult {
	return domain.InviteResult{RoomID: room, Status: domain.InviteSent}
}

func failed(room string) domain.InviteResult {
	return domain.InviteResult{RoomID: room, Status: domain.InviteFailed, Error: "upstream unavailable"}
}

func TestReconcileCheckoutCompleted_PartialFailureIsolated(t *testing.T) {
	f := newFixture(t, onboardedCreator(roomA, roomB))
	f.chat.On("InviteByEmail", mock.Anything, roomA, testBuyer).Return(sent(roomA)).Once()
	f.chat.On("InviteByEmail", mock.Anything, roomB, testBuyer).Return(failed(roomB)).Once()
	f.notifier.On("InviteFailures", mock.Anything, mock.MatchedBy(func(o domain.CheckoutOutcome) bool {
		return len(o.Failed()) == 1 && o.Failed()[0].RoomID == roomB
	})).Once()

	out, err := f.svc.ReconcileCheckoutCompleted(context.Background(), CheckoutCompleted{
		AccountID: testAccountID, DetailsEmail: testBuyer,
	})

	require.ErrorIs(t, err, domain.ErrPartialInviteFailure)
	require.NotNil(t, out)
	require.Len(t, out.Invites, 2)
	assert.Equal(t, sent(roomA), out.Invites[0])
	assert.Equal(t, domain.InviteFailed, out.Invites[1].Status)
	assert.True(t, out.Partial())
	assert.False(t, out.AllFailed())
	assert.Equal(t, testCreatorID, out.CreatorID)
	assert.False(t, out.UsedDefaultRooms)
	assert.Zero(t, f.store.writeCount())
}

func TestReconcileCheckoutCompleted_AllSent(t *testing.T) {
	f := newFixture(t, onboardedCreator(roomA, roomB))
	f.chat.On("InviteByEmail", mock.Anything, roomA, testBuyer).Return(sent(roomA)).Once()
	f.chat.On("InviteByEmail", mock.Anything, roomB, testBuyer).
		Return(domain.InviteResult{RoomID: roomB, Status: domain.InviteAlreadyMember}).Once()

	out, err := f.svc.ReconcileCheckoutCompleted(context.Background(), CheckoutCompleted{
		AccountID: testAccountID, DetailsEmail: testBuyer,
	})

	require.NoError(t, err)
	assert.Empty(t, out.Failed())
	assert.Equal(t, testBuyer, out.CustomerEmail)
	f.notifier.AssertNotCalled(t, "InviteFailures", mock.Anything, mock.Anything)
}

func TestReconcileCheckoutCompleted_DefaultRooms(t *testing.T) {
	tests := []struct {
		name        string
		seed        []domain.Creator
		wantCreator string
	}{
		{"unknown account", nil, ""},
		{"creator without rooms", []domain.Creator{onboardedCreator()}, testCreatorID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.seed...)
			f.chat.On("InviteByEmail", mock.Anything, defaultRoom, testBuyer).Return(sent(defaultRoom)).Once()

			out, err := f.svc.ReconcileCheckoutCompleted(context.Background(), CheckoutCompleted{
				AccountID: testAccountID, DetailsEmail: testBuyer,
			})

			require.NoError(t, err)
			assert.True(t, out.UsedDefaultRooms)
			assert.Equal(t, tt.wantCreator, out.CreatorID)
			require.Len(t, out.Invites, 1)
			assert.Zero(t, f.store.writeCount())
		})
	}
}

func TestReconcileCheckoutCompleted_EmailResolution(t *testing.T) {
	tests := []struct {
		name         string
		in           CheckoutCompleted
		customerMail string
		wantEmail    string
	}{
		{"customer details first", CheckoutCompleted{DetailsEmail: testBuyer, CustomerEmail: "other@x.com", CustomerID: "cus_1"}, "", testBuyer},
		{"session customer email", CheckoutCompleted{CustomerEmail: testBuyer, CustomerID: "cus_1"}, "", testBuyer},
		{"invalid details skipped", CheckoutCompleted{DetailsEmail: "nope", CustomerEmail: testBuyer}, "", testBuyer},
		{"customer record", CheckoutCompleted{CustomerID: "cus_1"}, testBuyer, testBuyer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, onboardedCreator(roomA))
			tt.in.AccountID = testAccountID
			if tt.customerMail != "" {
				f.provider.On("GetCustomerEmail", mock.Anything, testAccountID, "cus_1").Return(tt.customerMail, nil).Once()
			}
			f.chat.On("InviteByEmail", mock.Anything, roomA, tt.wantEmail).Return(sent(roomA)).Once()

			out, err := f.svc.ReconcileCheckoutCompleted(context.Background(), tt.in)

			require.NoError(t, err)
			assert.Equal(t, tt.wantEmail, out.CustomerEmail)
		})
	}
}

func TestReconcileCheckoutCompleted_NoEmailIsNoop(t *testing.T) {
	tests := []struct {
		name         string
		in           CheckoutCompleted
		customerMail string
	}{
		{"nothing at all", CheckoutCompleted{}, ""},
		{"invalid session email", CheckoutCompleted{CustomerEmail: "not-an-email"}, ""},
		{"customer without email", CheckoutCompleted{CustomerID: "cus_1"}, " "},
		{"customer with invalid email", CheckoutCompleted{CustomerID: "cus_1"}, "broken@"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, onboardedCreator(roomA))
			tt.in.AccountID = testAccountID
			if tt.in.CustomerID != "" {
				f.provider.On("GetCustomerEmail", mock.Anything, testAccountID, "cus_1").Return(tt.customerMail, nil).Once()
			}

			out, err := f.svc.ReconcileCheckoutCompleted(context.Background(), tt.in)

			require.NoError(t, err)
			assert.Empty(t, out.Invites)
			assert.Empty(t, out.CustomerEmail)
			f.chat.AssertNotCalled(t, "InviteByEmail", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestReconcileCheckoutCompleted_CustomerLookupFailureAborts(t *testing.T) {
	f := newFixture(t, onboardedCreator(roomA))
	f.provider.On("GetCustomerEmail", mock.Anything, testAccountID, "cus_1").
		Return("", fmt.Errorf("%w: timeout", domain.ErrProviderUnavailable)).Once()

	_, err := f.svc.ReconcileCheckoutCompleted(context.Background(), CheckoutCompleted{
		AccountID: testAccountID, CustomerID: "cus_1",
	})

	require.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestReconcileCheckoutCompleted_StoreUnavailableAborts(t *testing.T) {
	f := newFixture(t, onboardedCreator(roomA))
	f.store.findErr = fmt.Errorf("%w: 503", domain.ErrStoreUnavailable)

	_, err := f.svc.ReconcileCheckoutCompleted(context.Background(), CheckoutCompleted{
		AccountID: testAccountID, DetailsEmail: testBuyer,
	})

	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
	f.chat.AssertNotCalled(t, "InviteByEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcileCheckoutCompleted_AllFailed(t *testing.T) {
	f := newFixture(t, onboardedCreator(roomA, roomB))
	f.chat.On("InviteByEmail", mock.Anything, mock.Anything, testBuyer).
		Return(domain.InviteResult{Status: domain.InviteFailed, Error: "down"}).Twice()
	f.notifier.On("InviteFailures", mock.Anything, mock.Anything).Once()

	out, err := f.svc.ReconcileCheckoutCompleted(context.Background(), CheckoutCompleted{
		AccountID: testAccountID, DetailsEmail: testBuyer,
	})

	require.ErrorIs(t, err, domain.ErrPartialInviteFailure)
	assert.True(t, out.AllFailed())
	// room ids are filled in when the inviter leaves them out
	assert.Equal(t, roomA, out.Invites[0].RoomID)
	assert.Equal(t, roomB, out.Invites[1].RoomID)
}

func TestReconcileCheckoutCompleted_BoundedFanOutDoesNotLeak(t *testing.T) {
	rooms := make([]string, 12)
	for i := range rooms {
		rooms[i] = fmt.Sprintf("!r%d:hs.test", i)
	}
	f := newFixture(t, onboardedCreator(rooms...))

	var mu sync.Mutex
	inFlight, peak := 0, 0
	f.chat.On("InviteByEmail", mock.Anything, mock.Anything, testBuyer).
		Run(func(args mock.Arguments) {
			mu.Lock()
			inFlight++
			if inFlight > peak {
				peak = inFlight
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			mu.Lock()
			inFlight--
			mu.Unlock()
		}).
		Return(domain.InviteResult{Status: domain.InviteSent}).Times(len(rooms))

	leaktest.Check(t, func() {
		out, err := f.svc.ReconcileCheckoutCompleted(context.Background(), CheckoutCompleted{
			AccountID: testAccountID, DetailsEmail: testBuyer,
		})
		require.NoError(t, err)
		require.Len(t, out.Invites, len(rooms))
		for i, inv := range out.Invites {
			assert.Equal(t, rooms[i], inv.RoomID)
		}
	})

	assert.LessOrEqual(t, peak, DefaultInviteConcurrency)
}

func TestReconcileSubscriptionDeleted_IsNoop(t *testing.T) {
	f := newFixture(t, onboardedCreator(roomA))

	err := f.svc.ReconcileSubscriptionDeleted(context.Background(), testAccountID, "cus_1")

	require.NoError(t, err)
	assert.Zero(t, f.store.writeCount())
}

// --- onboarding return and refresh ---

func TestCompleteOnboardingReturn(t *testing.T) {
	t.Run("complete", func(t *testing.T) {
		f := newFixture(t, onboardedCreator())
		f.provider.On("GetAccountStatus", mock.Anything, testAccountID).
			Return(&domain.AccountStatus{AccountID: testAccountID, ChargesEnabled: true, DetailsSubmitted: true}, nil).Once()

		ret, err := f.svc.CompleteOnboardingReturn(context.Background(), testAccountID)
		require.NoError(t, err)

		assert.Equal(t, OnboardingStatusComplete, ret.Status)
		assert.Equal(t, testCreatorID, ret.CreatorID)
		assert.Nil(t, ret.RetryLink)
		stored, _ := f.store.record(testCreatorID)
		assert.True(t, stored.OnboardingComplete)
		assert.True(t, stored.ChargesEnabled)
	})

	t.Run("incomplete gets a retry link", func(t *testing.T) {
		f := newFixture(t, onboardedCreator())
		f.provider.On("GetAccountStatus", mock.Anything, testAccountID).
			Return(&domain.AccountStatus{AccountID: testAccountID, DetailsSubmitted: true}, nil).Once()
		f.expectOnboardingLink(testAccountID)

		ret, err := f.svc.CompleteOnboardingReturn(context.Background(), testAccountID)
		require.NoError(t, err)

		assert.Equal(t, OnboardingStatusIncomplete, ret.Status)
		require.NotNil(t, ret.RetryLink)
		assert.Equal(t, onboardingLink(testAccountID).URL, ret.RetryLink.URL)
		stored, _ := f.store.record(testCreatorID)
		assert.True(t, stored.OnboardingComplete)
		assert.False(t, stored.ChargesEnabled)
	})

	t.Run("unknown account", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.CompleteOnboardingReturn(context.Background(), testAccountID)
		require.ErrorIs(t, err, domain.ErrCreatorNotFound)
	})

	t.Run("provider failure writes nothing", func(t *testing.T) {
		f := newFixture(t, onboardedCreator())
		f.provider.On("GetAccountStatus", mock.Anything, testAccountID).
			Return(nil, fmt.Errorf("%w: 500", domain.ErrProviderUnavailable)).Once()

		_, err := f.svc.CompleteOnboardingReturn(context.Background(), testAccountID)
		require.ErrorIs(t, err, domain.ErrProviderUnavailable)
		assert.Zero(t, f.store.writeCount())
	})

	t.Run("missing account id", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.CompleteOnboardingReturn(context.Background(), "")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestRefreshOnboardingLink(t *testing.T) {
	f := newFixture(t)
	f.expectOnboardingLink(testAccountID)

	link, err := f.svc.RefreshOnboardingLink(context.Background(), testAccountID)
	require.NoError(t, err)
	assert.Equal(t, onboardingLink(testAccountID).URL, link.URL)

	_, err = f.svc.RefreshOnboardingLink(context.Background(), " ")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

// --- management ---

func chargeableCreator() domain.Creator {
	c := onboardedCreator()
	c.ChargesEnabled = true
	c.OnboardingComplete = true
	return c
}

func TestCreateCheckout(t *testing.T) {
	intPtr := func(v int) *int { return &v }
	session := &domain.CheckoutSession{ID: "cs_1", URL: "https://checkout.test/cs_1"}

	t.Run("default fee and urls", func(t *testing.T) {
		f := newFixture(t, chargeableCreator())
		f.provider.On("CreateCheckoutSession", mock.Anything, payments.CheckoutParams{
			AccountID:  testAccountID,
			PriceID:    "price_1",
			FeePercent: 10,
			SuccessURL: "https://launchpass.test/success",
			CancelURL:  "https://launchpass.test/cancel",
		}).Return(session, nil).Once()

		got, err := f.svc.CreateCheckout(context.Background(), CheckoutRequest{CreatorID: testCreatorID, PriceID: "price_1"})
		require.NoError(t, err)
		assert.Equal(t, session, got)
	})

	t.Run("explicit zero fee is honoured", func(t *testing.T) {
		f := newFixture(t, chargeableCreator())
		f.provider.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(p payments.CheckoutParams) bool {
			return p.FeePercent == 0 && p.SuccessURL == "https://creator.test/thanks"
		})).Return(session, nil).Once()

		_, err := f.svc.CreateCheckout(context.Background(), CheckoutRequest{
			CreatorID: testCreatorID, PriceID: "price_1", FeePercent: intPtr(0), SuccessURL: "https://creator.test/thanks",
		})
		require.NoError(t, err)
	})

	tests := []struct {
		name    string
		seed    []domain.Creator
		req     CheckoutRequest
		wantErr error
	}{
		{"unknown creator", nil, CheckoutRequest{CreatorID: testCreatorID, PriceID: "price_1"}, domain.ErrCreatorNotFound},
		{"charges not enabled", []domain.Creator{onboardedCreator()}, CheckoutRequest{CreatorID: testCreatorID, PriceID: "price_1"}, domain.ErrChargesNotEnabled},
		{"missing price", []domain.Creator{chargeableCreator()}, CheckoutRequest{CreatorID: testCreatorID}, domain.ErrInvalidInput},
		{"missing creator", nil, CheckoutRequest{PriceID: "price_1"}, domain.ErrInvalidInput},
		{"fee above 100", []domain.Creator{chargeableCreator()}, CheckoutRequest{CreatorID: testCreatorID, PriceID: "price_1", FeePercent: intPtr(101)}, domain.ErrInvalidInput},
		{"negative fee", []domain.Creator{chargeableCreator()}, CheckoutRequest{CreatorID: testCreatorID, PriceID: "price_1", FeePercent: intPtr(-1)}, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.seed...)
			_, err := f.svc.CreateCheckout(context.Background(), tt.req)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("provider failure", func(t *testing.T) {
		f := newFixture(t, chargeableCreator())
		f.provider.On("CreateCheckoutSession", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: no such price", domain.ErrProviderUnavailable)).Once()

		_, err := f.svc.CreateCheckout(context.Background(), CheckoutRequest{CreatorID: testCreatorID, PriceID: "price_x"})
		require.ErrorIs(t, err, domain.ErrProviderUnavailable)
	})
}

func TestGetCreatorStatus(t *testing.T) {
	f := newFixture(t, chargeableCreator())
	live := &domain.AccountStatus{
		AccountID:      testAccountID,
		ChargesEnabled: true,
		PayoutsEnabled: true,
		Requirements:   domain.AccountRequirements{CurrentlyDue: []string{"external_account"}},
	}
	f.provider.On("GetAccountStatus", mock.Anything, testAccountID).Return(live, nil).Once()

	status, err := f.svc.GetCreatorStatus(context.Background(), testCreatorID)
	require.NoError(t, err)

	assert.Equal(t, testCreatorID, status.Creator.CreatorID)
	assert.Equal(t, live, status.Provider)
	assert.Zero(t, f.store.writeCount())

	_, err = f.svc.GetCreatorStatus(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrCreatorNotFound)
}

func TestGetCreatorStatus_WithoutAccountSkipsProvider(t *testing.T) {
	seed := onboardedCreator()
	seed.ProviderAccountID = ""
	f := newFixture(t, seed)

	status, err := f.svc.GetCreatorStatus(context.Background(), testCreatorID)
	require.NoError(t, err)
	assert.Nil(t, status.Provider)
}

func TestListCreators_SortedByCreation(t *testing.T) {
	older := onboardedCreator()
	older.CreatorID = "z-first"
	older.ProviderAccountID = "acct_z"
	newer := onboardedCreator()
	newer.CreatedAt = older.CreatedAt.Add(time.Hour)
	f := newFixture(t, newer, older)

	list, err := f.svc.ListCreators(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "z-first", list[0].CreatorID)
	assert.Equal(t, testCreatorID, list[1].CreatorID)

	f.store.listErr = fmt.Errorf("%w: 503", domain.ErrStoreUnavailable)
	_, err = f.svc.ListCreators(context.Background())
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestCreateLoginLink_NotPersisted(t *testing.T) {
	f := newFixture(t, chargeableCreator())
	link := &domain.Link{URL: "https://connect.test/express/login"}
	f.provider.On("CreateLoginLink", mock.Anything, testAccountID).Return(link, nil).Once()

	got, err := f.svc.CreateLoginLink(context.Background(), testCreatorID)
	require.NoError(t, err)
	assert.Equal(t, link, got)
	assert.Zero(t, f.store.writeCount())
}

func TestCreateLoginLink_Errors(t *testing.T) {
	noAccount := onboardedCreator()
	noAccount.ProviderAccountID = ""

	f := newFixture(t, noAccount)
	_, err := f.svc.CreateLoginLink(context.Background(), testCreatorID)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.CreateLoginLink(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrCreatorNotFound)
}

func TestAddRooms(t *testing.T) {
	t.Run("union appends new rooms", func(t *testing.T) {
		f := newFixture(t, onboardedCreator(roomA))
		f.clock.Advance(time.Minute)

		c, err := f.svc.AddRooms(context.Background(), testCreatorID, []string{roomA, " ", roomB, roomB})
		require.NoError(t, err)

		assert.Equal(t, []string{roomA, roomB}, c.ChatRoomIDs)
		stored, _ := f.store.record(testCreatorID)
		assert.Equal(t, []string{roomA, roomB}, stored.ChatRoomIDs)
		assert.Equal(t, f.clock.Now(), stored.UpdatedAt)
		assert.Equal(t, 1, f.store.writeCount())
	})

	t.Run("nothing new skips the write", func(t *testing.T) {
		f := newFixture(t, onboardedCreator(roomA))
		_, err := f.svc.AddRooms(context.Background(), testCreatorID, []string{roomA})
		require.NoError(t, err)
		assert.Zero(t, f.store.writeCount())
	})

	t.Run("empty list", func(t *testing.T) {
		f := newFixture(t, onboardedCreator())
		_, err := f.svc.AddRooms(context.Background(), testCreatorID, []string{"", "  "})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown creator", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.AddRooms(context.Background(), "missing", []string{roomA})
		require.ErrorIs(t, err, domain.ErrCreatorNotFound)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newFixture(t, onboardedCreator())
		f.store.upsertErr = errors.Join(domain.ErrStoreUnavailable, errors.New("quota"))
		_, err := f.svc.AddRooms(context.Background(), testCreatorID, []string{roomA})
		require.ErrorIs(t, err, domain.ErrStoreUnavailable)
	})
}
