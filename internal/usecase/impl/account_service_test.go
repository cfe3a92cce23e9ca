package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"chatline/internal/domain/entity"
	domainerrors "chatline/internal/domain/errors"
	"chatline/internal/domain/repository"
	infraauth "chatline/internal/infra/auth"
	mockRepo "chatline/internal/mocks/repository"
	mockService "chatline/internal/mocks/service"
	"chatline/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type accountServiceFixture struct {
	userRepo *mockRepo.MockUserRepository
	hasher   *mockService.MockPasswordHasher
	session  *mockService.MockSessionService
	service  usecase.AccountUsecase
}

func createTestAccountService(t *testing.T) *accountServiceFixture {
	t.Helper()

	f := &accountServiceFixture{
		userRepo: mockRepo.NewMockUserRepository(t),
		hasher:   mockService.NewMockPasswordHasher(t),
		session:  mockService.NewMockSessionService(t),
	}
	f.service = NewAccountService(AccountServiceParams{
		UserRepo:       f.userRepo,
		Hasher:         f.hasher,
		SessionService: f.session,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return f
}

func TestAccountService_Register_Success(t *testing.T) {
	f := createTestAccountService(t)

	ctx := context.Background()
	userID := uuid.New()

	f.hasher.On("Hash", "password123").Return("$2a$10$hashed", nil)
	f.userRepo.On("Create", ctx, mock.AnythingOfType("*entity.User")).
		Run(func(args mock.Arguments) {
			user := args.Get(1).(*entity.User)
			assert.Equal(t, "alice@example.com", user.Email)
			assert.Equal(t, "$2a$10$hashed", user.PasswordHash)
			assert.False(t, user.ProfileComplete)
			user.ID = userID
		}).
		Return(nil)
	f.session.On("Issue", userID, "alice@example.com").Return("signed-token", nil)

	output, err := f.service.Register(ctx, &usecase.RegisterInput{
		// Mixed case and whitespace are normalized before any store access.
		Email:    "  Alice@Example.COM ",
		Password: "password123",
	})

	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", output.User.Email)
	assert.Equal(t, userID, output.User.ID)
	assert.Equal(t, "signed-token", output.SessionToken)
}

func TestAccountService_Register_EmptyInput(t *testing.T) {
	f := createTestAccountService(t)

	ctx := context.Background()

	for _, input := range []*usecase.RegisterInput{
		{Email: "", Password: "password123"},
		{Email: "alice@example.com", Password: ""},
		{Email: "   ", Password: "password123"},
	} {
		output, err := f.service.Register(ctx, input)

		assert.Nil(t, output)
		assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
	}
}

func TestAccountService_Register_HashFailure(t *testing.T) {
	f := createTestAccountService(t)

	ctx := context.Background()
	f.hasher.On("Hash", "password123").Return("", errors.New("cost out of range"))

	output, err := f.service.Register(ctx, &usecase.RegisterInput{
		Email:    "alice@example.com",
		Password: "password123",
	})

	// The raw password must never reach the repository.
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrPasswordHashFailed))
	f.userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAccountService_Register_DuplicateEmail(t *testing.T) {
	f := createTestAccountService(t)

	ctx := context.Background()
	f.hasher.On("Hash", "password123").Return("$2a$10$hashed", nil)
	f.userRepo.On("Create", ctx, mock.AnythingOfType("*entity.User")).
		Return(repository.ErrDuplicateEmail)

	output, err := f.service.Register(ctx, &usecase.RegisterInput{
		Email:    "alice@example.com",
		Password: "password123",
	})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrEmailTaken))
}

func TestAccountService_Login_Success(t *testing.T) {
	f := createTestAccountService(t)

	ctx := context.Background()
	userID := uuid.New()
	stored := &entity.User{ID: userID, Email: "alice@example.com", PasswordHash: "$2a$10$hashed"}

	f.userRepo.On("FindByEmail", ctx, "alice@example.com").Return(stored, nil)
	f.hasher.On("Check", "password123", "$2a$10$hashed").Return(true)
	f.session.On("Issue", userID, "alice@example.com").Return("signed-token", nil)

	output, err := f.service.Login(ctx, &usecase.LoginInput{
		Email:    "Alice@Example.com",
		Password: "password123",
	})

	require.NoError(t, err)
	assert.Equal(t, userID, output.User.ID)
	assert.Equal(t, "signed-token", output.SessionToken)
}

func TestAccountService_Login_FailuresAreIndistinguishable(t *testing.T) {
	f := createTestAccountService(t)

	ctx := context.Background()
	stored := &entity.User{ID: uuid.New(), Email: "alice@example.com", PasswordHash: "$2a$10$hashed"}

	f.userRepo.On("FindByEmail", ctx, "ghost@example.com").Return(nil, repository.ErrUserNotFound)
	f.userRepo.On("FindByEmail", ctx, "alice@example.com").Return(stored, nil)
	f.hasher.On("Check", "wrong password", "$2a$10$hashed").Return(false)

	_, unknownErr := f.service.Login(ctx, &usecase.LoginInput{
		Email:    "ghost@example.com",
		Password: "password123",
	})
	_, wrongPwErr := f.service.Login(ctx, &usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "wrong password",
	})

	// Unknown email and wrong password collapse into the same failure so a
	// caller cannot probe which accounts exist.
	require.Error(t, unknownErr)
	require.Error(t, wrongPwErr)
	assert.True(t, errors.Is(unknownErr, domainerrors.ErrInvalidCredentials))
	assert.True(t, errors.Is(wrongPwErr, domainerrors.ErrInvalidCredentials))

	var unknownApp, wrongPwApp domainerrors.AppError
	require.True(t, errors.As(unknownErr, &unknownApp))
	require.True(t, errors.As(wrongPwErr, &wrongPwApp))
	assert.Equal(t, unknownApp.HTTPCode(), wrongPwApp.HTTPCode())
	assert.Equal(t, unknownApp.ErrorCode(), wrongPwApp.ErrorCode())
	assert.Equal(t, unknownApp.Message(), wrongPwApp.Message())
}

func TestAccountService_CurrentUser(t *testing.T) {
	f := createTestAccountService(t)

	ctx := context.Background()
	userID := uuid.New()
	stored := &entity.User{ID: userID, Email: "alice@example.com"}

	f.userRepo.On("FindByID", ctx, userID).Return(stored, nil)

	user, err := f.service.CurrentUser(ctx, userID)

	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
}

func TestAccountService_CurrentUser_Gone(t *testing.T) {
	f := createTestAccountService(t)

	ctx := context.Background()
	userID := uuid.New()

	f.userRepo.On("FindByID", ctx, userID).Return(nil, repository.ErrUserNotFound)

	user, err := f.service.CurrentUser(ctx, userID)

	assert.Nil(t, user)
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}

// memUserRepo is an in-memory repository whose Create enforces email
// uniqueness under a mutex, standing in for the database unique index.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*entity.User)}
}

func (r *memUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.ID == id {
			clone := *user

			return &clone, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *user

	return &clone, nil
}

func (r *memUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.users[user.Email]; taken {
		return repository.ErrDuplicateEmail
	}
	user.ID = uuid.New()
	clone := *user
	r.users[user.Email] = &clone

	return nil
}

func (r *memUserRepo) UpdateProfile(ctx context.Context, user *entity.User) error {
	return nil
}

func TestAccountService_Register_ConcurrentSameEmail(t *testing.T) {
	hasher := mockService.NewMockPasswordHasher(t)
	session := mockService.NewMockSessionService(t)
	hasher.On("Hash", "password123").Return("$2a$10$hashed", nil)
	session.On("Issue", mock.AnythingOfType("uuid.UUID"), "race@example.com").Return("signed-token", nil)

	service := NewAccountService(AccountServiceParams{
		UserRepo:       newMemUserRepo(),
		Hasher:         hasher,
		SessionService: session,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	const attempts = 16

	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = service.Register(context.Background(), &usecase.RegisterInput{
				Email:    "race@example.com",
				Password: "password123",
			})
		}()
	}
	wg.Wait()

	var wins, duplicates int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domainerrors.ErrEmailTaken):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// Exactly one insert wins; every loser observes the duplicate.
	assert.Equal(t, 1, wins)
	assert.Equal(t, attempts-1, duplicates)
}

// End-to-end through the real hasher and session issuer against the
// in-memory store: registering and then logging in with the same credentials
// yields a token that validates back to the registered identity.
func TestAccountService_RegisterThenLogin_RoundTrip(t *testing.T) {
	sessionSvc, err := infraauth.NewJWTSessionServiceWithClock("round-trip-secret", time.Hour, time.Now)
	require.NoError(t, err)

	service := NewAccountService(AccountServiceParams{
		UserRepo:       newMemUserRepo(),
		Hasher:         infraauth.NewBcryptHasherWithCost(bcrypt.MinCost),
		SessionService: sessionSvc,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	ctx := context.Background()
	registered, err := service.Register(ctx, &usecase.RegisterInput{
		Email:    "Alice@Example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	loggedIn, err := service.Login(ctx, &usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)

	claims, err := sessionSvc.Validate(loggedIn.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)

	// The wrong password still fails after a successful registration.
	_, err = service.Login(ctx, &usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "password124",
	})
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}
