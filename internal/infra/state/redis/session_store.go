package redisstate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	appsession "github.com/NeNorvalls/Secure-Notes-App/internal/session"
)

// defaultSessionTTL 用于 Cookie 未设置 MaxAge 的会话
const defaultSessionTTL = 24 * time.Hour

// SessionStore 是把会话值保存在 Redis 中的 gorilla sessions.Store
// Cookie 只携带签名后的会话 ID
type SessionStore struct {
	client     *redis.Client
	keyPrefix  string
	Codecs     []securecookie.Codec
	Options    *sessions.Options
	serializer securecookie.GobEncoder
}

var _ sessions.Store = (*SessionStore)(nil)

// NewSessionStore 创建 SessionStore 实例
// keyPairs 是 securecookie 的 hash/block 密钥对，与 sessions.NewCookieStore 相同
func NewSessionStore(client *redis.Client, keyPrefix string, keyPairs ...[]byte) *SessionStore {
	if client == nil {
		panic("redis client cannot be nil for SessionStore")
	}
	if keyPrefix == "" {
		keyPrefix = "notes:"
	}
	s := &SessionStore{
		client:    client,
		keyPrefix: keyPrefix,
		Codecs:    securecookie.CodecsFromPairs(keyPairs...),
		Options: &sessions.Options{
			Path:   "/",
			MaxAge: 86400 * 30,
		},
	}
	s.MaxAge(s.Options.MaxAge)
	return s
}

// MaxAge 设置新 Cookie 及其签名 ID 的有效期
func (s *SessionStore) MaxAge(age int) {
	s.Options.MaxAge = age
	for _, codec := range s.Codecs {
		if sc, ok := codec.(*securecookie.SecureCookie); ok {
			sc.MaxAge(age)
		}
	}
}

func (s *SessionStore) sessionKey(id string) string {
	return fmt.Sprintf("%ssession:%s", s.keyPrefix, id)
}

// Get 返回本次请求缓存的会话，首次调用时加载
func (s *SessionStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New 加载请求 Cookie 指向的会话
// 会话缺失、无效或过期时返回新会话；解码错误和 Redis 错误随新会话一起返回
func (s *SessionStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.Options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}
	if err := securecookie.DecodeMulti(name, c.Value, &session.ID, s.Codecs...); err != nil {
		session.ID = ""
		return session, err
	}

	found, err := s.load(r.Context(), session)
	if err != nil {
		session.ID = ""
		return session, err
	}
	if !found {
		session.ID = ""
		return session, nil
	}
	session.IsNew = false
	return session, nil
}

// Save 将会话值写入 Redis 并设置 ID Cookie
// MaxAge 为负时删除会话并使 Cookie 过期
func (s *SessionStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	ctx := r.Context()

	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := s.client.Del(ctx, s.sessionKey(session.ID)).Err(); err != nil {
				return fmt.Errorf("redis: failed to delete session: %w", err)
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	// 写入新会话前先删除登录时被替换的旧 ID
	if previousID, ok := session.Values[appsession.PreviousIDKey].(string); ok {
		delete(session.Values, appsession.PreviousIDKey)
		if previousID != "" && previousID != session.ID {
			if err := s.client.Del(ctx, s.sessionKey(previousID)).Err(); err != nil {
				return fmt.Errorf("redis: failed to delete replaced session: %w", err)
			}
		}
	}

	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if err := s.save(ctx, session); err != nil {
		return err
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.Codecs...)
	if err != nil {
		return fmt.Errorf("failed to encode session cookie: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

func (s *SessionStore) save(ctx context.Context, session *sessions.Session) error {
	data, err := s.serializer.Serialize(session.Values)
	if err != nil {
		return fmt.Errorf("failed to serialize session values: %w", err)
	}
	ttl := time.Duration(session.Options.MaxAge) * time.Second
	if ttl == 0 {
		ttl = defaultSessionTTL
	}
	if err := s.client.Set(ctx, s.sessionKey(session.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis: failed to store session: %w", err)
	}
	return nil
}

func (s *SessionStore) load(ctx context.Context, session *sessions.Session) (bool, error) {
	data, err := s.client.Get(ctx, s.sessionKey(session.ID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis: failed to load session: %w", err)
	}
	if err := s.serializer.Deserialize(data, &session.Values); err != nil {
		return false, fmt.Errorf("failed to deserialize session values: %w", err)
	}
	return true, nil
}
