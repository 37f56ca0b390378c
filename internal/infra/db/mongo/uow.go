package mongo

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
	driversession "go.mongodb.org/mongo-driver/x/mongo/driver/session"

	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	domainpayments "staybook/internal/domain/payments"
	domainreviews "staybook/internal/domain/reviews"
	domainuser "staybook/internal/domain/user"
)

// ErrVersionConflict signals a lost optimistic-concurrency race: the document
// changed since it was read.
var ErrVersionConflict = errors.New("mongo: version conflict")

type Factory struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewFactory(client *mongo.Client, database string) *Factory {
	return &Factory{client: client, db: client.Database(database)}
}

func (f *Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	session, err := f.client.StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{session: session, db: f.db}, nil
}

// Unit binds all repository calls to one mongo session so the overlap and
// uniqueness checks observe the transaction's own snapshot.
type Unit struct {
	session mongo.Session
	db      *mongo.Database

	endOnce sync.Once
}

func (u *Unit) Listings() domainlistings.Repository { return &listingRepo{unit: u} }
func (u *Unit) Bookings() domainbooking.Repository  { return &bookingRepo{unit: u} }
func (u *Unit) Payments() domainpayments.Repository { return &paymentRepo{unit: u} }
func (u *Unit) Reviews() domainreviews.Repository   { return &reviewRepo{unit: u} }
func (u *Unit) Users() domainuser.Repository        { return &userRepo{unit: u} }

func (u *Unit) Commit(ctx context.Context) error {
	err := u.session.CommitTransaction(ctx)
	u.endOnce.Do(func() { u.session.EndSession(ctx) })
	return err
}

func (u *Unit) Rollback(ctx context.Context) error {
	err := u.session.AbortTransaction(ctx)
	u.endOnce.Do(func() { u.session.EndSession(ctx) })
	if errors.Is(err, driversession.ErrSessionEnded) {
		return nil
	}
	return err
}

// bind routes an operation through the unit's session.
func (u *Unit) bind(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}
