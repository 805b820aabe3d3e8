// Пакет auth — сессии сотрудников и разбор токена API.
// Сессия хранится в cookie, зашифрованном AES-256-GCM; внутри лежит токен API
// и данные сотрудника, извлечённые из его claims.
package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bigkaa/riskdesk/internal/domain/rbac"
)

// SessionCookieName — имя cookie сессии.
const SessionCookieName = "management-token"

// SessionData — данные сессии, хранящиеся в зашифрованном cookie.
type SessionData struct {
	// SessionID — идентификатор сессии (ключ рабочего пространства)
	SessionID string `json:"sid"`
	// Token — токен API сотрудника
	Token string `json:"token"` //nolint:gosec // G117: поле сессии, хранится только в зашифрованном виде
	// ExpiresAt — время истечения токена (Unix timestamp)
	ExpiresAt int64     `json:"exp"`
	UserID    uint      `json:"uid"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      rbac.Role `json:"role"`
}

// IsExpired проверяет, истёк ли токен сессии.
func (s *SessionData) IsExpired() bool {
	return time.Now().Unix() >= s.ExpiresAt
}

// TTL — сколько осталось жить сессии.
func (s *SessionData) TTL() time.Duration {
	return time.Until(time.Unix(s.ExpiresAt, 0))
}

// SessionManager шифрует SessionData в HTTP cookie через AES-256-GCM.
type SessionManager struct {
	gcm cipher.AEAD
	// secure — Secure flag cookie (true для HTTPS)
	secure bool
	// maxAge — верхняя граница жизни cookie
	maxAge time.Duration
}

// NewSessionManager создаёт менеджер сессий.
// key — base64 32-байтового ключа или произвольная строка (хешируется SHA-256).
// При пустом key ключ случайный, и сессии не переживают рестарт.
// maxAge — максимальная жизнь cookie; фактическая не дольше токена.
func NewSessionManager(key string, secure bool, maxAge time.Duration) (*SessionManager, error) {
	var keyBytes []byte

	if key == "" {
		keyBytes = make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, keyBytes); err != nil {
			return nil, fmt.Errorf("ошибка генерации ключа сессии: %w", err)
		}
	} else {
		var err error
		keyBytes, err = base64.StdEncoding.DecodeString(key)
		if err != nil || len(keyBytes) != 32 {
			sum := sha256.Sum256([]byte(key))
			keyBytes = sum[:]
		}
	}

	block, err := aes.NewCipher(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания GCM: %w", err)
	}

	return &SessionManager{gcm: gcm, secure: secure, maxAge: maxAge}, nil
}

// Encrypt шифрует SessionData в base64-строку (nonce в начале).
func (sm *SessionManager) Encrypt(data *SessionData) (string, error) {
	plaintext, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации сессии: %w", err)
	}

	nonce := make([]byte, sm.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("ошибка генерации nonce: %w", err)
	}

	return base64.URLEncoding.EncodeToString(sm.gcm.Seal(nonce, nonce, plaintext, nil)), nil
}

// Decrypt восстанавливает SessionData из строки cookie.
func (sm *SessionManager) Decrypt(encrypted string) (*SessionData, error) {
	raw, err := base64.URLEncoding.DecodeString(encrypted)
	if err != nil {
		return nil, fmt.Errorf("ошибка декодирования base64: %w", err)
	}

	nonceSize := sm.gcm.NonceSize()
	if len(raw) < nonceSize {
		return nil, errors.New("зашифрованные данные слишком короткие")
	}

	plaintext, err := sm.gcm.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка дешифрования сессии: %w", err)
	}

	var data SessionData
	if err := json.Unmarshal(plaintext, &data); err != nil {
		return nil, fmt.Errorf("ошибка десериализации сессии: %w", err)
	}
	return &data, nil
}

// SetSessionCookie записывает сессию в ответ.
// Cookie живёт до истечения токена, но не дольше maxAge.
func (sm *SessionManager) SetSessionCookie(w http.ResponseWriter, data *SessionData) error {
	encrypted, err := sm.Encrypt(data)
	if err != nil {
		return err
	}

	maxAge := data.TTL()
	if sm.maxAge > 0 && maxAge > sm.maxAge {
		maxAge = sm.maxAge
	}
	if maxAge < time.Second {
		return errors.New("срок действия токена истёк")
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    encrypted,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// GetSessionFromRequest извлекает сессию из cookie запроса.
// Возвращает nil, nil если cookie отсутствует.
func (sm *SessionManager) GetSessionFromRequest(r *http.Request) (*SessionData, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, nil
		}
		return nil, err
	}
	return sm.Decrypt(cookie.Value)
}

// ClearSessionCookie удаляет cookie сессии (выход).
func (sm *SessionManager) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
