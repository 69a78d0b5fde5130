package services

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/maxwellzeha/jonduplastics/models"
	"github.com/maxwellzeha/jonduplastics/repository"
	"github.com/maxwellzeha/jonduplastics/storage"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

var errUndefinedTable = &pgconn.PgError{Code: "42P01", Message: `relation "profiles" does not exist`}

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) CreateRefreshToken(ctx context.Context, rt *models.RefreshToken) error {
	return m.Called(ctx, rt).Error(0)
}

func (m *MockUserRepository) GetRefreshTokenByTokenID(ctx context.Context, tokenID string) (*models.RefreshToken, error) {
	args := m.Called(ctx, tokenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RefreshToken), args.Error(1)
}

func (m *MockUserRepository) RevokeRefreshTokenByTokenID(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) RevokeAllUserRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockUserRepository) DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// fakeProfileRepo keeps profiles in memory. err, when set, is returned by every call.
type fakeProfileRepo struct {
	profiles map[uuid.UUID]*models.Profile
	err      error
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[uuid.UUID]*models.Profile{}}
}

func (f *fakeProfileRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfileRepo) Create(_ context.Context, p *models.Profile) error {
	if f.err != nil {
		return f.err
	}
	cp := *p
	f.profiles[p.ID] = &cp
	return nil
}

func (f *fakeProfileRepo) Update(_ context.Context, id uuid.UUID, req *models.UpdateProfileRequest) (*models.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	p.FirstName, p.LastName, p.Phone, p.BusinessAddress = req.FirstName, req.LastName, req.Phone, req.BusinessAddress
	cp := *p
	return &cp, nil
}

// fakeAccountStore runs the callback against the given repositories without a
// real transaction.
type fakeAccountStore struct {
	users    repository.UserRepository
	profiles repository.ProfileRepository
}

func (f *fakeAccountStore) WithinTransaction(_ context.Context, fn func(repository.UserRepository, repository.ProfileRepository) error) error {
	return fn(f.users, f.profiles)
}

type fakeOrderRepo struct {
	mu      sync.Mutex
	orders  []models.Order
	err     error
	created int
}

func (f *fakeOrderRepo) Create(_ context.Context, o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	f.created++
	f.orders = append([]models.Order{*o}, f.orders...)
	return nil
}

func (f *fakeOrderRepo) FindByUserID(_ context.Context, userID uuid.UUID) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []models.Order{}
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) FindByIDAndUserID(_ context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, o := range f.orders {
		if o.ID == orderID && o.UserID == userID {
			cp := o
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

const testArtworkBase = "https://cdn.example.com/artworks"

type fakeArtworkStore struct {
	presignErr error
	missing    bool
	existsErr  error
}

func (f *fakeArtworkStore) PresignUpload(_ context.Context, owner uuid.UUID, filename, _ string, at time.Time) (*storage.Upload, error) {
	if f.presignErr != nil {
		return nil, f.presignErr
	}
	key := storage.ObjectKey(owner, filename, at)
	return &storage.Upload{
		Key:       key,
		UploadURL: "https://s3.example.com/artworks/" + key + "?X-Amz-Signature=abc",
		Headers:   map[string]string{"Content-Type": "image/png"},
		PublicURL: testArtworkBase + "/" + key,
		Expiry:    15 * time.Minute,
	}, nil
}

func (f *fakeArtworkStore) KeyForOwnerURL(owner uuid.UUID, publicURL string) (string, bool) {
	return storage.NewS3ArtworkStore(nil, "artworks", testArtworkBase, 0).KeyForOwnerURL(owner, publicURL)
}

func (f *fakeArtworkStore) Exists(context.Context, string) (bool, error) {
	return !f.missing, f.existsErr
}

type published struct {
	topic, eventType string
	body             []byte
}

type fakeSNS struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (f *fakeSNS) Publish(_ context.Context, topicArn, eventType string, message []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, published{topicArn, eventType, message})
	return f.err
}

type fakeRelay struct {
	fields url.Values
	err    error
}

func (f *fakeRelay) Submit(_ context.Context, fields url.Values) error {
	f.fields = fields
	return f.err
}
