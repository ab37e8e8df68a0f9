package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"clubcorra/internal/domain"
	"clubcorra/internal/oauth"
	"clubcorra/internal/sender"
	"clubcorra/internal/utils"
)

type fakeVerifier map[string]*oauth.Identity

func (f fakeVerifier) Verify(_ context.Context, idToken string) (*oauth.Identity, error) {
	if id, ok := f[idToken]; ok {
		return id, nil
	}
	return nil, oauth.ErrInvalidIDToken
}

type authFixture struct {
	db    *gorm.DB
	svc   AuthService
	users UserService
	cfg   ConfigService
	sms   *captureSender
}

const testSecret = "test-secret"

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	gdb := seededDB(t)
	cache, _ := newCache(t)
	sms := &captureSender{}
	otp := NewOTPService(gdb, cache, testOTPConfig, map[domain.OTPChannel]sender.Sender{
		domain.OTPChannelSMS:   sms,
		domain.OTPChannelEmail: &captureSender{},
	})
	cfg := NewConfigService(gdb, cache)
	coins := NewCoinService(gdb, cache, nil, cfg)
	google := fakeVerifier{
		"linked-by-email": {Subject: "g-1", Email: "asha@example.com", EmailVerified: true},
		"unverified":      {Subject: "g-2", Email: "asha@example.com"},
		"stranger":        {Subject: "g-3", Email: "nobody@example.com", EmailVerified: true},
	}
	svc := NewAuthService(gdb, TokenConfig{Secret: testSecret, TTL: time.Hour}, otp, google, coins, cfg)
	return &authFixture{db: gdb, svc: svc, users: NewUserService(gdb, otp), cfg: cfg, sms: sms}
}

func (f *authFixture) register(t *testing.T, mobile, email string) *AuthResult {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.svc.Register(ctx, RegisterInput{MobileNumber: mobile, Email: email, FirstName: "Asha", LastName: "Rao"}))
	res, err := f.svc.VerifyRegistration(ctx, mobile, f.sms.lastCode(t))
	require.NoError(t, err)
	return res
}

func TestRegistrationFlow(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	res := f.register(t, "+91 98765 43210", "Asha@Example.com")
	require.NotNil(t, res.User)
	assert.Equal(t, "+919876543210", res.User.MobileNumber)
	assert.Equal(t, domain.UserStatusActive, res.User.Status)
	require.NotNil(t, res.User.Email)
	assert.Equal(t, "asha@example.com", *res.User.Email)
	require.NotNil(t, res.User.Profile)
	assert.Equal(t, "Asha", res.User.Profile.FirstName)
	require.NotNil(t, res.User.CoinBalance)
	assert.Equal(t, int64(100), res.User.CoinBalance.Balance, "welcome bonus credited")

	claims, err := utils.ParseJWT(res.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, utils.RoleUser, claims.Role)

	err = f.svc.Register(ctx, RegisterInput{MobileNumber: "+919876543210", FirstName: "Again"})
	assert.ErrorIs(t, err, ErrConflict)
	_, err = f.svc.VerifyRegistration(ctx, "+919876543210", "123456")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRegistrationWithoutWelcomeBonus(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.cfg.Set(context.Background(), domain.ConfigWelcomeBonusEnabled, "false", 1)
	require.NoError(t, err)

	res := f.register(t, "+919876543210", "")
	require.NotNil(t, res.User.CoinBalance)
	assert.Equal(t, int64(0), res.User.CoinBalance.Balance)
	assert.Nil(t, res.User.Email)
}

func TestRegisterRejectsTakenEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "+919876543210", "asha@example.com")

	err := f.svc.Register(context.Background(), RegisterInput{MobileNumber: "+919999999999", Email: "asha@example.com", FirstName: "B"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestVerifyRegistrationWrongCode(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.Register(ctx, RegisterInput{MobileNumber: "+919876543210", FirstName: "Asha"}))
	code := f.sms.lastCode(t)
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	_, err := f.svc.VerifyRegistration(ctx, "+919876543210", wrong)
	assert.ErrorIs(t, err, ErrOTPInvalid)

	var u domain.User
	require.NoError(t, f.db.Where("mobile_number = ?", "+919876543210").First(&u).Error)
	assert.Equal(t, domain.UserStatusPending, u.Status)
}

func TestOTPLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.register(t, "+919876543210", "")

	assert.ErrorIs(t, f.svc.RequestLoginOTP(ctx, "+910000000000"), ErrNotFound)

	require.NoError(t, f.svc.RequestLoginOTP(ctx, "+919876543210"))
	res, err := f.svc.VerifyLogin(ctx, "+919876543210", f.sms.lastCode(t))
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.NotNil(t, res.User.LastLoginAt)

	// Pending users cannot log in
	require.NoError(t, f.svc.Register(ctx, RegisterInput{MobileNumber: "+918888888888", FirstName: "P"}))
	assert.ErrorIs(t, f.svc.RequestLoginOTP(ctx, "+918888888888"), ErrUserNotActive)
}

func TestEmailLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	res := f.register(t, "+919876543210", "asha@example.com")

	_, err := f.svc.LoginWithEmail(ctx, "asha@example.com", "whatever1")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "no password set yet")

	require.NoError(t, f.users.SetPassword(ctx, res.User.ID, "s3cret-pass"))
	_, err = f.svc.LoginWithEmail(ctx, "asha@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.LoginWithEmail(ctx, "missing@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	out, err := f.svc.LoginWithEmail(ctx, " ASHA@example.com ", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, out.User.ID)

	_, err = f.users.SetStatus(ctx, res.User.ID, domain.UserStatusSuspended)
	require.NoError(t, err)
	_, err = f.svc.LoginWithEmail(ctx, "asha@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrUserNotActive)
}

func TestGoogleLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	res := f.register(t, "+919876543210", "asha@example.com")

	_, err := f.svc.LoginWithGoogle(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.LoginWithGoogle(ctx, "unverified")
	assert.ErrorIs(t, err, ErrAccountNotLinked)
	_, err = f.svc.LoginWithGoogle(ctx, "stranger")
	assert.ErrorIs(t, err, ErrAccountNotLinked)

	out, err := f.svc.LoginWithGoogle(ctx, "linked-by-email")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, out.User.ID)

	var links []domain.AuthProvider
	require.NoError(t, f.db.Where("user_id = ?", res.User.ID).Find(&links).Error)
	require.Len(t, links, 1)
	assert.Equal(t, "g-1", links[0].ProviderID)

	// Second login goes through the stored link
	out, err = f.svc.LoginWithGoogle(ctx, "linked-by-email")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, out.User.ID)
}

func TestLinkGoogle(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	a := f.register(t, "+919876543210", "")
	b := f.register(t, "+919876543211", "")

	link, err := f.svc.LinkGoogle(ctx, a.User.ID, "stranger")
	require.NoError(t, err)
	assert.Equal(t, domain.AuthProviderGoogle, link.Provider)

	again, err := f.svc.LinkGoogle(ctx, a.User.ID, "stranger")
	require.NoError(t, err)
	assert.Equal(t, link.ID, again.ID)

	_, err = f.svc.LinkGoogle(ctx, b.User.ID, "stranger")
	assert.ErrorIs(t, err, ErrConflict)

	out, err := f.svc.LoginWithGoogle(ctx, "stranger")
	require.NoError(t, err)
	assert.Equal(t, a.User.ID, out.User.ID)
}

func TestAdminLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	admins := NewAdminService(f.db)
	super, err := admins.Create(ctx, AdminInput{Email: "root@clubcorra.com", Password: "rootpass1", Role: domain.AdminRoleSuperAdmin})
	require.NoError(t, err)
	plain, err := admins.Create(ctx, AdminInput{Email: "ops@clubcorra.com", Password: "opspass12"})
	require.NoError(t, err)

	res, err := f.svc.AdminLogin(ctx, "ROOT@clubcorra.com", "rootpass1")
	require.NoError(t, err)
	claims, err := utils.ParseJWT(res.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, utils.RoleSuperAdmin, claims.Role)
	assert.Equal(t, super.ID, claims.UserID)

	res, err = f.svc.AdminLogin(ctx, "ops@clubcorra.com", "opspass12")
	require.NoError(t, err)
	claims, err = utils.ParseJWT(res.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, utils.RoleAdmin, claims.Role)

	_, err = f.svc.AdminLogin(ctx, "ops@clubcorra.com", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = admins.SetActive(ctx, plain.ID, super.ID, false)
	require.NoError(t, err)
	_, err = f.svc.AdminLogin(ctx, "ops@clubcorra.com", "opspass12")
	assert.ErrorIs(t, err, ErrForbidden)
}
