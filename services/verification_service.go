package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kendall-kelly/kendalls-studio-api/metrics"
	"github.com/kendall-kelly/kendalls-studio-api/models"
	"github.com/kendall-kelly/kendalls-studio-api/utils"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const otpAttempts = 5

// VerificationService issues and redeems one-time email verification codes
type VerificationService struct {
	store  VerificationTokenStore
	users  *UserService
	mailer Mailer
	ttl    time.Duration
	now    func() time.Time
}

func NewVerificationService(store VerificationTokenStore, users *UserService, mailer Mailer, ttl time.Duration) *VerificationService {
	return &VerificationService{store: store, users: users, mailer: mailer, ttl: ttl, now: time.Now}
}

func verificationBody(user models.User, code string, ttl time.Duration) string {
	return fmt.Sprintf(`Hello %s,

Enter the following code in the verification form to verify your email address:

%s

This code expires in %d minutes.
`, user.FirstName, code, int(ttl.Minutes()))
}

// SendVerification stores a fresh code for user and mails it. A mail failure
// is logged, not returned: the user can ask for a new code.
func (s *VerificationService) SendVerification(ctx context.Context, user models.User) error {
	token, err := s.issue(ctx, s.store, user)
	if err != nil {
		return err
	}
	s.mail(ctx, user, token)
	return nil
}

// Enroll creates an account together with its first code, then mails the
// code. When the store shares the user database both rows commit in one
// transaction. Otherwise a failed code save removes the new user again.
func (s *VerificationService) Enroll(ctx context.Context, in CreateUserInput) (*models.User, error) {
	var user *models.User
	var token models.VerificationToken
	shared, err := s.atomically(ctx, func(users *UserService, store VerificationTokenStore) error {
		var err error
		if user, err = users.Create(ctx, in); err != nil {
			return err
		}
		token, err = s.issue(ctx, store, *user)
		return err
	})
	if err != nil {
		if !shared && user != nil {
			if perr := s.users.purge(ctx, user.ID); perr != nil {
				logrus.WithError(perr).WithField("user_id", user.ID).Error("Failed to remove user after verification setup failed")
			}
		}
		return nil, err
	}

	s.mail(ctx, *user, token)
	return user, nil
}

// atomically runs fn inside one database transaction when the token store
// can join it, and reports whether it did
func (s *VerificationService) atomically(ctx context.Context, fn func(users *UserService, store VerificationTokenStore) error) (bool, error) {
	joinable, ok := s.store.(txTokenStore)
	if !ok {
		return false, fn(s.users, s.store)
	}
	return true, s.users.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(s.users.withTx(tx), joinable.WithTx(tx))
	})
}

func (s *VerificationService) issue(ctx context.Context, store VerificationTokenStore, user models.User) (models.VerificationToken, error) {
	token := models.VerificationToken{UserID: user.ID, Expiration: s.now().Add(s.ttl)}

	var err error
	for attempt := 0; attempt < otpAttempts; attempt++ {
		if token.Token, err = utils.GenerateOTP(); err != nil {
			return token, err
		}
		err = store.Save(ctx, token)
		if !errors.Is(err, ErrTokenTaken) {
			break
		}
	}
	if err != nil {
		return token, fmt.Errorf("failed to save verification token: %w", err)
	}
	return token, nil
}

func (s *VerificationService) mail(ctx context.Context, user models.User, token models.VerificationToken) {
	mail := Mail{To: user.Email, Subject: "Email Verification", Body: verificationBody(user, token.Token, s.ttl)}
	if err := s.mailer.Send(ctx, mail); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("Failed to send verification email")
		return
	}
	logrus.WithField("user_id", user.ID).Info("Verification email sent")
}

// Resend issues a new code for an inactive account identified by username or email
func (s *VerificationService) Resend(ctx context.Context, login string) error {
	user, err := s.users.GetByUsernameOrEmail(ctx, login)
	if err != nil {
		return err
	}
	if user.IsActive {
		return badRequest("ALREADY_VERIFIED", "account %s is already verified", user.Username)
	}
	return s.SendVerification(ctx, *user)
}

// Verify activates the account a code belongs to and consumes the code
func (s *VerificationService) Verify(ctx context.Context, code string) error {
	token, err := s.store.Find(ctx, code)
	if errors.Is(err, ErrNotFound) {
		return badRequest("INVALID_VERIFICATION_TOKEN", "invalid or expired verification token")
	}
	if err != nil {
		return err
	}
	if token.Expired(s.now()) {
		return badRequest("VERIFICATION_TOKEN_EXPIRED", "verification token has expired")
	}

	_, err = s.atomically(ctx, func(users *UserService, store VerificationTokenStore) error {
		if err := users.Activate(ctx, token.UserID); err != nil {
			return err
		}
		return store.Delete(ctx, code)
	})
	if err != nil {
		return err
	}

	logrus.WithField("user_id", token.UserID).Info("Email verified")
	return nil
}

// PurgeExpired removes expired codes
func (s *VerificationService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.store.PurgeExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	metrics.TokensPurged.Add(float64(n))
	return n, nil
}

// StartPurgeJob runs PurgeExpired on schedule (cron syntax or descriptors like
// "@hourly"). Stop the returned scheduler on shutdown.
func (s *VerificationService) StartPurgeJob(schedule string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		n, err := s.PurgeExpired(ctx)
		if err != nil {
			logrus.WithError(err).Error("Failed to purge verification tokens")
			return
		}
		logrus.WithField("purged", n).Debug("Purged expired verification tokens")
	})
	if err != nil {
		return nil, fmt.Errorf("invalid purge schedule %q: %w", schedule, err)
	}
	c.Start()
	logrus.WithField("schedule", schedule).Info("Verification token purge job started")
	return c, nil
}
