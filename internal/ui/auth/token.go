package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/bigkaa/riskdesk/internal/domain/rbac"
)

// Режимы проверки подписи токена.
const (
	ModeJWKS       = "jwks"
	ModeSecret     = "hs256"
	ModeUnverified = "unverified"
)

// Ошибки разбора токена.
var (
	ErrInvalidToken = errors.New("невалидный или просроченный токен")
	ErrUnknownRole  = errors.New("неизвестный roleId в токене")
)

// apiClaims — claims токена API кредитного риска.
type apiClaims struct {
	jwt.RegisteredClaims
	UserID uint   `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	RoleID uint   `json:"roleId"`
}

// Identity — сотрудник, извлечённый из токена.
type Identity struct {
	UserID    uint
	Name      string
	Email     string
	Role      rbac.Role
	ExpiresAt time.Time
}

// DecoderOptions — параметры TokenDecoder.
type DecoderOptions struct {
	// JWKSURL — JWKS endpoint; если задан, подпись проверяется по нему
	JWKSURL string
	// JWKSRefreshInterval — интервал обновления ключей JWKS
	JWKSRefreshInterval time.Duration
	// JWKSClientTimeout — таймаут HTTP-клиента JWKS
	JWKSClientTimeout time.Duration
	// Secret — общий секрет HS256 (если JWKS не задан)
	Secret string
	// Leeway — допустимое отклонение часов при проверке exp
	Leeway time.Duration
}

// TokenDecoder разбирает токен API и извлекает данные сотрудника.
// Подпись проверяется по JWKS или секрету HS256; если не задано ни то,
// ни другое, токен разбирается без проверки подписи (его проверяет сам API
// на каждом запросе), но срок действия проверяется всегда.
type TokenDecoder struct {
	keyfunc jwt.Keyfunc
	methods []string
	mode    string
	leeway  time.Duration
	logger  *slog.Logger
}

// NewTokenDecoder создаёт TokenDecoder по опциям.
func NewTokenDecoder(opts DecoderOptions, logger *slog.Logger) (*TokenDecoder, error) {
	logger = logger.With(slog.String("component", "token_decoder"))

	switch {
	case opts.JWKSURL != "":
		// NoErrorReturnFirstHTTPReq — стартуем, даже если JWKS ещё недоступен
		storage, err := jwkset.NewStorageFromHTTP(opts.JWKSURL, jwkset.HTTPClientStorageOptions{
			Client:                    &http.Client{Timeout: opts.JWKSClientTimeout},
			NoErrorReturnFirstHTTPReq: true,
			RefreshInterval:           opts.JWKSRefreshInterval,
			RefreshErrorHandler: func(_ context.Context, err error) {
				logger.Error("Ошибка обновления JWKS",
					slog.String("error", err.Error()),
					slog.String("url", opts.JWKSURL),
				)
			},
		})
		if err != nil {
			return nil, fmt.Errorf("создание JWKS storage: %w", err)
		}
		k, err := keyfunc.New(keyfunc.Options{Storage: storage})
		if err != nil {
			return nil, fmt.Errorf("создание keyfunc: %w", err)
		}
		return NewTokenDecoderWithKeyfunc(k, opts.Leeway, logger), nil

	case opts.Secret != "":
		secret := []byte(opts.Secret)
		return &TokenDecoder{
			keyfunc: func(*jwt.Token) (any, error) { return secret, nil },
			methods: []string{jwt.SigningMethodHS256.Alg()},
			mode:    ModeSecret,
			leeway:  opts.Leeway,
			logger:  logger,
		}, nil

	default:
		logger.Warn("Подпись токенов API не проверяется: не задан ни JWKS, ни секрет")
		return &TokenDecoder{mode: ModeUnverified, leeway: opts.Leeway, logger: logger}, nil
	}
}

// NewTokenDecoderWithKeyfunc создаёт TokenDecoder с готовой keyfunc (JWKS).
// Используется также в тестах для подстановки mock JWKS.
func NewTokenDecoderWithKeyfunc(kf keyfunc.Keyfunc, leeway time.Duration, logger *slog.Logger) *TokenDecoder {
	return &TokenDecoder{
		keyfunc: kf.Keyfunc,
		methods: []string{"RS256", "ES256"},
		mode:    ModeJWKS,
		leeway:  leeway,
		logger:  logger,
	}
}

// Mode возвращает режим проверки подписи.
func (d *TokenDecoder) Mode() string {
	return d.mode
}

// Decode разбирает токен и возвращает сотрудника.
func (d *TokenDecoder) Decode(tokenString string) (*Identity, error) {
	claims := &apiClaims{}
	opts := []jwt.ParserOption{
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(d.leeway),
	}

	var err error
	if d.keyfunc == nil {
		_, _, err = jwt.NewParser(opts...).ParseUnverified(tokenString, claims)
		if err == nil {
			// ParseUnverified не проверяет claims, exp проверяется отдельно
			err = jwt.NewValidator(opts...).Validate(claims)
		}
	} else {
		opts = append(opts, jwt.WithValidMethods(d.methods))
		_, err = jwt.ParseWithClaims(tokenString, claims, d.keyfunc, opts...)
	}
	if err != nil {
		d.logger.Debug("Токен API не прошёл проверку",
			slog.String("mode", d.mode),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	role, ok := rbac.RoleFromID(claims.RoleID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRole, claims.RoleID)
	}

	return &Identity{
		UserID:    claims.UserID,
		Name:      claims.Name,
		Email:     claims.Email,
		Role:      role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
