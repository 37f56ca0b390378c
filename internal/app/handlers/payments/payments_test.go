package payments_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apppayments "staybook/internal/app/handlers/payments"
	"staybook/internal/app/policies"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	domainpayments "staybook/internal/domain/payments"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
	domainuser "staybook/internal/domain/user"
	"staybook/internal/infra/storage/memory"
)

func july(d int) time.Time {
	return time.Date(2026, time.July, d, 0, 0, 0, 0, time.UTC)
}

// fakeGateway scripts gateway behavior per test.
type fakeGateway struct {
	initErr      error
	verifyErr    error
	verifyResult policies.VerifyResult
	verifyCalls  int
}

func (g *fakeGateway) Initialize(ctx context.Context, params policies.CheckoutParams) (policies.Checkout, error) {
	if g.initErr != nil {
		return policies.Checkout{}, g.initErr
	}
	return policies.Checkout{CheckoutURL: "https://checkout.test/" + params.TxRef, TxRef: params.TxRef}, nil
}

func (g *fakeGateway) Verify(ctx context.Context, txRef string) (policies.VerifyResult, error) {
	g.verifyCalls++
	if g.verifyErr != nil {
		return policies.VerifyResult{}, g.verifyErr
	}
	return g.verifyResult, nil
}

type fixture struct {
	factory *memory.Factory
	box     *memory.Outbox
	gateway *fakeGateway
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	factory := memory.NewFactory(store)
	ctx := context.Background()

	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:          "lst-1",
		Owner:       "owner-1",
		Title:       "Lakeside cottage",
		NightlyRate: money.Must(10000, "ETB"),
		Capacity:    2,
		Now:         july(1),
	})
	require.NoError(t, err)
	listing.ClearEvents()

	guest, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           "guest-1",
		Email:        "guest@example.com",
		Name:         "Abebe Bikila",
		PasswordHash: "x",
		CreatedAt:    july(1),
	})
	require.NoError(t, err)

	dr, err := daterange.New(july(10), july(12))
	require.NoError(t, err)
	booking, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:        "bkg-1",
		ListingID: listing.ID,
		GuestID:   "guest-1",
		Range:     dr,
		Guests:    2,
		Total:     money.Must(20000, "ETB"),
		CreatedAt: july(1),
	})
	require.NoError(t, err)
	booking.ClearEvents()

	unit, err := factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, unit.Listings().Save(ctx, listing))
	require.NoError(t, unit.Users().Save(ctx, guest))
	require.NoError(t, unit.Bookings().Save(ctx, booking))
	require.NoError(t, unit.Commit(ctx))

	return &fixture{factory: factory, box: memory.NewOutbox(), gateway: &fakeGateway{}}
}

func (f *fixture) initiateHandler() *apppayments.InitiatePaymentHandler {
	return &apppayments.InitiatePaymentHandler{UoWFactory: f.factory, Gateway: f.gateway, Outbox: f.box}
}

func (f *fixture) verifyHandler() *apppayments.VerifyPaymentHandler {
	return &apppayments.VerifyPaymentHandler{UoWFactory: f.factory, Gateway: f.gateway, Outbox: f.box}
}

func (f *fixture) payment(t *testing.T, reference string) *domainpayments.Payment {
	t.Helper()
	ctx := context.Background()
	unit, err := f.factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	require.NoError(t, err)
	defer unit.Rollback(ctx)
	p, err := unit.Payments().ByReference(ctx, reference)
	require.NoError(t, err)
	return p
}

func (f *fixture) booking(t *testing.T) *domainbooking.Booking {
	t.Helper()
	ctx := context.Background()
	unit, err := f.factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	require.NoError(t, err)
	defer unit.Rollback(ctx)
	b, err := unit.Bookings().ByID(ctx, "bkg-1")
	require.NoError(t, err)
	return b
}

func (f *fixture) eventNames() []string {
	var names []string
	for _, rec := range f.box.All() {
		names = append(names, rec.Name)
	}
	return names
}

func initiateCmd() apppayments.InitiatePaymentCommand {
	return apppayments.InitiatePaymentCommand{BookingID: "bkg-1", ActorID: "guest-1", Now: july(2)}
}

func TestInitiateCreatesPendingPayment(t *testing.T) {
	f := setup(t)

	result, err := f.initiateHandler().Handle(context.Background(), initiateCmd())
	require.NoError(t, err)
	assert.NotEmpty(t, result.Reference)
	assert.Equal(t, "https://checkout.test/"+result.Reference, result.CheckoutURL)
	assert.Equal(t, "200.00", result.Amount.Amount)
	assert.Equal(t, string(domainpayments.StatePending), result.Status)

	p := f.payment(t, result.Reference)
	assert.Equal(t, domainpayments.StatePending, p.State)
	assert.Regexp(t, `^TXN_[0-9A-F]{10}$`, p.TransactionID)
	assert.Equal(t, []string{"payments.initiated"}, f.eventNames())
}

func TestInitiateRejectsSecondActivePayment(t *testing.T) {
	f := setup(t)

	_, err := f.initiateHandler().Handle(context.Background(), initiateCmd())
	require.NoError(t, err)

	_, err = f.initiateHandler().Handle(context.Background(), initiateCmd())
	assert.ErrorIs(t, err, domainpayments.ErrDuplicatePayment)
}

func TestInitiateAllowsRetryAfterFailure(t *testing.T) {
	f := setup(t)
	f.gateway.initErr = policies.ErrGatewayUnavailable

	_, err := f.initiateHandler().Handle(context.Background(), initiateCmd())
	assert.ErrorIs(t, err, policies.ErrGatewayUnavailable)

	f.gateway.initErr = nil
	_, err = f.initiateHandler().Handle(context.Background(), initiateCmd())
	require.NoError(t, err)
}

func TestInitiateMarksPaymentFailedWhenGatewayDown(t *testing.T) {
	f := setup(t)
	f.gateway.initErr = policies.ErrGatewayUnavailable

	_, err := f.initiateHandler().Handle(context.Background(), initiateCmd())
	assert.ErrorIs(t, err, policies.ErrGatewayUnavailable)

	// the failed attempt is recorded, never left dangling in PENDING
	ctx := context.Background()
	unit, err := f.factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	require.NoError(t, err)
	defer unit.Rollback(ctx)
	items, err := unit.Payments().ListByBooking(ctx, "bkg-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domainpayments.StateFailed, items[0].State)
}

func TestInitiateRejectsNonGuest(t *testing.T) {
	f := setup(t)
	cmd := initiateCmd()
	cmd.ActorID = "owner-1"
	_, err := f.initiateHandler().Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, domainbooking.ErrNotGuest)
}

func TestVerifySuccessConfirmsBooking(t *testing.T) {
	f := setup(t)
	initResult, err := f.initiateHandler().Handle(context.Background(), initiateCmd())
	require.NoError(t, err)

	f.gateway.verifyResult = policies.VerifyResult{Succeeded: true}
	result, err := f.verifyHandler().Handle(context.Background(), apppayments.VerifyPaymentCommand{
		BookingID: "bkg-1", Reference: initResult.Reference, ActorID: "guest-1", Now: july(3),
	})
	require.NoError(t, err)
	assert.Equal(t, string(domainpayments.StateCompleted), result.PaymentStatus)
	assert.Equal(t, string(domainbooking.StateConfirmed), result.BookingStatus)

	assert.Equal(t, domainpayments.StateCompleted, f.payment(t, initResult.Reference).State)
	assert.Equal(t, domainbooking.StateConfirmed, f.booking(t).State)
	assert.Equal(t, []string{"payments.initiated", "payments.completed", "booking.confirmed"}, f.eventNames())
}

func TestVerifyIsIdempotent(t *testing.T) {
	f := setup(t)
	initResult, err := f.initiateHandler().Handle(context.Background(), initiateCmd())
	require.NoError(t, err)

	f.gateway.verifyResult = policies.VerifyResult{Succeeded: true}
	cmd := apppayments.VerifyPaymentCommand{BookingID: "bkg-1", Reference: initResult.Reference, ActorID: "guest-1", Now: july(3)}
	_, err = f.verifyHandler().Handle(context.Background(), cmd)
	require.NoError(t, err)

	before := len(f.box.All())
	calls := f.gateway.verifyCalls

	result, err := f.verifyHandler().Handle(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, string(domainpayments.StateCompleted), result.PaymentStatus)
	assert.Len(t, f.box.All(), before, "settled payment must not emit more events")
	assert.Equal(t, calls, f.gateway.verifyCalls, "settled payment must not hit the gateway again")
}

func TestVerifyFailureKeepsBookingPending(t *testing.T) {
	f := setup(t)
	initResult, err := f.initiateHandler().Handle(context.Background(), initiateCmd())
	require.NoError(t, err)

	f.gateway.verifyResult = policies.VerifyResult{Succeeded: false}
	result, err := f.verifyHandler().Handle(context.Background(), apppayments.VerifyPaymentCommand{
		BookingID: "bkg-1", Reference: initResult.Reference, ActorID: "guest-1", Now: july(3),
	})
	require.NoError(t, err)
	assert.Equal(t, string(domainpayments.StateFailed), result.PaymentStatus)
	assert.Equal(t, string(domainbooking.StatePending), result.BookingStatus)
	assert.Equal(t, domainbooking.StatePending, f.booking(t).State)
}

func TestVerifyTransportErrorFailsPayment(t *testing.T) {
	f := setup(t)
	initResult, err := f.initiateHandler().Handle(context.Background(), initiateCmd())
	require.NoError(t, err)

	f.gateway.verifyErr = policies.ErrGatewayUnavailable
	_, err = f.verifyHandler().Handle(context.Background(), apppayments.VerifyPaymentCommand{
		BookingID: "bkg-1", Reference: initResult.Reference, ActorID: "guest-1", Now: july(3),
	})
	assert.ErrorIs(t, err, policies.ErrGatewayUnavailable)
	assert.Equal(t, domainpayments.StateFailed, f.payment(t, initResult.Reference).State)
	assert.Equal(t, domainbooking.StatePending, f.booking(t).State)
}

func TestVerifyUnknownReference(t *testing.T) {
	f := setup(t)
	_, err := f.verifyHandler().Handle(context.Background(), apppayments.VerifyPaymentCommand{
		BookingID: "bkg-1", Reference: "nope", ActorID: "guest-1", Now: july(3),
	})
	assert.ErrorIs(t, err, domainpayments.ErrNotFound)
}
