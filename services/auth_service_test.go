package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/kendall-kelly/kendalls-studio-api/config"
	"github.com/kendall-kelly/kendalls-studio-api/models"
	"github.com/kendall-kelly/kendalls-studio-api/testutil"
	"github.com/kendall-kelly/kendalls-studio-api/utils"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func testAuthConfig() *config.Config {
	return &config.Config{
		GoEnv:                         "test",
		JWTSecret:                     "test-secret-test-secret-test-secret",
		JWTAudience:                   "studio-test",
		AuthTokenExpirationMinutes:    15,
		RefreshTokenExpirationDays:    7,
		VerificationExpirationMinutes: 15,
	}
}

type authFixture struct {
	db           *gorm.DB
	cfg          *config.Config
	users        *UserService
	verification *VerificationService
	auth         *AuthService
	mailer       *MockMailer
}

func setupAuth(t *testing.T) authFixture {
	db := testutil.SetupTestDB(t)
	cfg := testAuthConfig()
	users := NewUserService(db).WithBcryptCost(bcrypt.MinCost)
	mailer := NewMockMailer()
	verification := NewVerificationService(NewGormTokenStore(db), users, mailer, 15*time.Minute)
	auth, err := NewAuthService(cfg, users, verification)
	require.NoError(t, err)
	return authFixture{db: db, cfg: cfg, users: users, verification: verification, auth: auth, mailer: mailer}
}

func TestAuthService_LoginIssuesTokens(t *testing.T) {
	f := setupAuth(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, f.db, "boss", models.RoleAdmin)

	session, err := f.auth.Login(ctx, "boss", testutil.TestPassword)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, session.UserID)
	assert.Equal(t, models.RoleAdmin, session.Role)
	assert.Equal(t, "Bearer", session.TokenType)
	assert.Equal(t, int64(900), session.ExpiresIn)

	v, err := utils.NewTokenValidator(f.cfg.SigningKey(), f.cfg.JWTAudience)
	require.NoError(t, err)

	validated, err := v.ValidateToken(ctx, session.AccessToken)
	require.NoError(t, err)
	subject, claims, err := utils.ClaimsFrom(validated)
	require.NoError(t, err)
	assert.Equal(t, "boss", subject)
	assert.Equal(t, []string{"ROLE_ADMIN"}, claims.Authorities)
	assert.False(t, claims.IsRefresh())

	validated, err = v.ValidateToken(ctx, session.RefreshToken)
	require.NoError(t, err)
	_, claims, err = utils.ClaimsFrom(validated)
	require.NoError(t, err)
	assert.True(t, claims.IsRefresh())

	_, err = f.auth.Login(ctx, "boss", "Wrong123!")
	assert.True(t, errors.Is(err, ErrAuthenticationFailed))
}

func TestAuthService_Refresh(t *testing.T) {
	f := setupAuth(t)
	ctx := context.Background()
	testutil.CreateUser(t, f.db, "client", models.RoleUser)

	session, err := f.auth.Login(ctx, "client", testutil.TestPassword)
	require.NoError(t, err)

	refreshed, err := f.auth.Refresh(ctx, session.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, session.RefreshToken, refreshed.RefreshToken, "refresh token is not rotated")
	assert.NotEmpty(t, refreshed.AccessToken)

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := f.auth.Refresh(ctx, session.AccessToken)
		assert.True(t, errors.Is(err, ErrAuthenticationFailed))
	})

	t.Run("expired refresh token", func(t *testing.T) {
		expired, err := utils.SignToken(f.cfg.SigningKey(), f.cfg.JWTAudience, utils.TokenSpec{
			Subject:     "client",
			Authorities: []string{"ROLE_USER"},
			Type:        utils.TokenTypeRefresh,
			IssuedAt:    time.Now().Add(-48 * time.Hour),
			TTL:         time.Hour,
		})
		require.NoError(t, err)
		_, err = f.auth.Refresh(ctx, expired)
		assert.True(t, errors.Is(err, ErrAuthenticationFailed))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := f.auth.Refresh(ctx, "garbage")
		assert.True(t, errors.Is(err, ErrAuthenticationFailed))
	})
}

var codePattern = regexp.MustCompile(`\b(\d{6})\b`)

func mailedCode(t *testing.T, m *MockMailer) string {
	t.Helper()
	sent := m.Sent()
	require.NotEmpty(t, sent)
	match := codePattern.FindStringSubmatch(sent[len(sent)-1].Body)
	require.Len(t, match, 2, "mail should contain a 6-digit code")
	return match[1]
}

func TestAuthService_RegisterAndVerify(t *testing.T) {
	f := setupAuth(t)
	ctx := context.Background()

	user, err := f.auth.Register(ctx, RegisterInput{
		Username:  "newbie",
		Email:     "newbie@example.com",
		Password:  testutil.TestPassword,
		FirstName: "New",
		LastName:  "Bie",
	})
	require.NoError(t, err)
	assert.False(t, user.IsActive)
	assert.Equal(t, models.RoleUser, user.Role)

	sent := f.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "newbie@example.com", sent[0].To)
	assert.Equal(t, "Email Verification", sent[0].Subject)

	_, err = f.auth.Login(ctx, "newbie", testutil.TestPassword)
	assert.Equal(t, "ACCOUNT_NOT_VERIFIED", ErrorCode(err))

	code := mailedCode(t, f.mailer)
	require.NoError(t, f.verification.Verify(ctx, code))

	_, err = f.auth.Login(ctx, "newbie", testutil.TestPassword)
	require.NoError(t, err)

	err = f.verification.Verify(ctx, code)
	assert.Equal(t, "INVALID_VERIFICATION_TOKEN", ErrorCode(err), "codes are single use")
}

func TestAuthService_RegisterRollsBackWithoutCode(t *testing.T) {
	f := setupAuth(t)
	ctx := context.Background()
	require.NoError(t, f.db.Migrator().DropTable(&models.VerificationToken{}))

	_, err := f.auth.Register(ctx, RegisterInput{
		Username: "orphan", Email: "orphan@example.com", Password: testutil.TestPassword,
		FirstName: "Or", LastName: "Phan",
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, f.db.Unscoped().Model(&models.User{}).Where("username = ?", "orphan").Count(&count).Error)
	assert.Zero(t, count, "the user row commits only together with its code")
	assert.Empty(t, f.mailer.Sent())
}

func TestAuthService_RegisterRemovesUserWhenStoreFails(t *testing.T) {
	f := setupAuth(t)
	ctx := context.Background()
	unreachable := NewRedisTokenStore(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0", MaxRetries: -1}))
	verification := NewVerificationService(unreachable, f.users, f.mailer, 15*time.Minute)
	auth, err := NewAuthService(f.cfg, f.users, verification)
	require.NoError(t, err)

	in := RegisterInput{
		Username: "retry", Email: "retry@example.com", Password: testutil.TestPassword,
		FirstName: "Re", LastName: "Try",
	}
	_, err = auth.Register(ctx, in)
	require.Error(t, err)

	var count int64
	require.NoError(t, f.db.Unscoped().Model(&models.User{}).Where("username = ?", "retry").Count(&count).Error)
	assert.Zero(t, count)

	// the username is free again
	_, err = f.auth.Register(ctx, in)
	assert.NoError(t, err)
}

func TestVerificationService_VerifyIsAtomic(t *testing.T) {
	f := setupAuth(t)
	ctx := context.Background()
	user, err := f.auth.Register(ctx, RegisterInput{
		Username: "atomic", Email: "atomic@example.com", Password: testutil.TestPassword,
		FirstName: "At", LastName: "Omic",
	})
	require.NoError(t, err)
	code := mailedCode(t, f.mailer)

	failTokenDeletes := func(tx *gorm.DB) {
		if tx.Statement.Table == "verification_tokens" {
			_ = tx.AddError(errors.New("token table unavailable"))
		}
	}
	require.NoError(t, f.db.Callback().Delete().Before("gorm:delete").Register("test:fail_token_delete", failTokenDeletes))

	require.Error(t, f.verification.Verify(ctx, code))
	got, err := f.users.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive, "activation rolls back when the code cannot be consumed")

	require.NoError(t, f.db.Callback().Delete().Remove("test:fail_token_delete"))
	require.NoError(t, f.verification.Verify(ctx, code))
	got, err = f.users.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}

func TestVerificationService_Expired(t *testing.T) {
	f := setupAuth(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, "late", models.RoleUser)
	require.NoError(t, f.db.Model(&user).Update("is_active", false).Error)

	require.NoError(t, f.verification.SendVerification(ctx, user))
	code := mailedCode(t, f.mailer)

	f.verification.now = func() time.Time { return time.Now().Add(time.Hour) }
	err := f.verification.Verify(ctx, code)
	assert.True(t, errors.Is(err, ErrBadRequest))
	assert.Equal(t, "VERIFICATION_TOKEN_EXPIRED", ErrorCode(err))

	n, err := f.verification.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := f.users.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestVerificationService_ResendAndMailFailure(t *testing.T) {
	f := setupAuth(t)
	ctx := context.Background()
	active := testutil.CreateUser(t, f.db, "done", models.RoleUser)
	pending := testutil.CreateUser(t, f.db, "pending", models.RoleUser)
	require.NoError(t, f.db.Model(&pending).Update("is_active", false).Error)

	err := f.verification.Resend(ctx, active.Username)
	assert.Equal(t, "ALREADY_VERIFIED", ErrorCode(err))

	require.NoError(t, f.verification.Resend(ctx, pending.Email))
	first := mailedCode(t, f.mailer)
	require.NoError(t, f.verification.Resend(ctx, pending.Email))
	second := mailedCode(t, f.mailer)
	if first != second {
		assert.Equal(t, "INVALID_VERIFICATION_TOKEN", ErrorCode(f.verification.Verify(ctx, first)), "a resend replaces the previous code")
	}

	f.mailer.Err = errors.New("smtp down")
	assert.NoError(t, f.verification.Resend(ctx, pending.Email), "mail failures are logged, not returned")
}

func TestVerificationService_PurgeJobSchedule(t *testing.T) {
	f := setupAuth(t)

	_, err := f.verification.StartPurgeJob("not a schedule")
	assert.Error(t, err)

	c, err := f.verification.StartPurgeJob("@every 1h")
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)
	<-c.Stop().Done()
}
