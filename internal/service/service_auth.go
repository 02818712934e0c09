package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/gatherly/gatherly/internal/model"
	"github.com/gatherly/gatherly/internal/pkg/notify"
	"github.com/gatherly/gatherly/internal/repo"
	"github.com/gatherly/gatherly/pkg/cache"
	httpx "github.com/gatherly/gatherly/pkg/http"
	"github.com/gatherly/gatherly/pkg/http/jwt"
	"github.com/gatherly/gatherly/pkg/id"
	"github.com/gatherly/gatherly/pkg/log"
	"github.com/redis/go-redis/v9"
)

const (
	otpKeyPrefix = "gatherly:otp:"
	otpTTL       = 5 * time.Minute
)

var (
	ErrInvalidOtp        = errors.New("invalid or expired code")
	ErrMemberNotFound    = errors.New("no household registered for this phone")
	ErrPhoneAlreadyInUse = errors.New("phone already registered")
)

// AuthService implements phone-based authentication: a one-time code sent by
// SMS, exchanged for a JWT pair. Live sessions are tracked in redis so a
// logout invalidates outstanding tokens.
type AuthService struct {
	householdRepo repo.IHouseholdRepository
	sms           notify.SmsSender
	cache         cache.ICache
	auth          httpx.Auth
}

func NewAuthService(householdRepo repo.IHouseholdRepository, sms notify.SmsSender, cache cache.ICache, auth httpx.Auth) *AuthService {
	return &AuthService{
		householdRepo: householdRepo,
		sms:           sms,
		cache:         cache,
		auth:          auth,
	}
}

// RequestOtp generates a 6-digit code, stores it for a short window and
// sends it by SMS.
func (s *AuthService) RequestOtp(ctx context.Context, phone string) error {
	if phone == "" {
		return errors.New("phone is required")
	}

	code, err := generateOtp()
	if err != nil {
		return err
	}
	if err := s.cache.Set(ctx, otpKeyPrefix+phone, code, otpTTL).Err(); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	result := s.sms.SendSms(phone, "Your Gatherly code is "+code)
	if !result.Success {
		return fmt.Errorf("send otp: %s", result.Error)
	}
	return nil
}

// Login verifies the code and returns a token pair for the member's
// household. The code is single-use.
func (s *AuthService) Login(ctx context.Context, req *model.VerifyOtpReq) (*model.LoginRep, error) {
	if err := s.consumeOtp(ctx, req.Phone, req.Code); err != nil {
		return nil, err
	}

	member, err := s.householdRepo.GetMemberByPhone(ctx, req.Phone)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	return s.openSession(ctx, member)
}

// Register verifies the code, creates a household with its first member and
// opens a session.
func (s *AuthService) Register(ctx context.Context, req *model.RegisterReq) (*model.LoginRep, error) {
	if err := s.consumeOtp(ctx, req.Phone, req.Code); err != nil {
		return nil, err
	}

	existing, err := s.householdRepo.GetMemberByPhone(ctx, req.Phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrPhoneAlreadyInUse
	}

	household := &model.Household{
		HouseholdId: id.GetUUIDWithoutDashes(),
		Name:        req.HouseholdName,
		StatusState: model.StatusBusy,
	}
	if err := s.householdRepo.CreateHousehold(ctx, household); err != nil {
		return nil, fmt.Errorf("create household: %w", err)
	}

	member := &model.HouseholdMember{
		MemberId:    id.GetUUIDWithoutDashes(),
		HouseholdId: household.HouseholdId,
		Phone:       req.Phone,
		DisplayName: req.DisplayName,
		Role:        "owner",
	}
	if err := s.householdRepo.CreateMember(ctx, member); err != nil {
		return nil, fmt.Errorf("create member: %w", err)
	}
	return s.openSession(ctx, member)
}

// Logout drops the household's session; outstanding tokens stop passing the
// authorization middleware.
func (s *AuthService) Logout(ctx context.Context, householdId string) error {
	return s.cache.Del(ctx, s.auth.RedisKeyPrefix+householdId).Err()
}

func (s *AuthService) consumeOtp(ctx context.Context, phone, code string) error {
	if phone == "" || code == "" {
		return ErrInvalidOtp
	}
	stored, err := s.cache.Get(ctx, otpKeyPrefix+phone).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrInvalidOtp
		}
		return err
	}
	if stored != code {
		return ErrInvalidOtp
	}
	if err := s.cache.Del(ctx, otpKeyPrefix+phone).Err(); err != nil {
		log.Warnw("delete otp failed", "error", err)
	}
	return nil
}

func (s *AuthService) openSession(ctx context.Context, member *model.HouseholdMember) (*model.LoginRep, error) {
	aToken, rToken, err := jwt.GenToken(member.HouseholdId, member.MemberId, []byte(s.auth.SecretKey), s.auth.AccessExpire, s.auth.RefreshExpire)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	if err := s.cache.Set(ctx, s.auth.RedisKeyPrefix+member.HouseholdId, aToken, s.auth.AccessExpire).Err(); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return &model.LoginRep{
		HouseholdId:  member.HouseholdId,
		MemberId:     member.MemberId,
		AccessToken:  aToken,
		RefreshToken: rToken,
	}, nil
}

func generateOtp() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
