// Package session 封装 gorilla sessions，保存 Web 层的每浏览器状态：
// 登录用户、一次性提示和 CSRF nonce
package session

import (
	"encoding/gob"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

// 模板识别的提示级别
const (
	CategorySuccess = "success"
	CategoryDanger  = "danger"
	CategoryInfo    = "info"
)

const (
	userIDKey    = "user_id"
	csrfNonceKey = "csrf_nonce"
)

// PreviousIDKey 保存 Login 替换掉的服务端会话 ID，由存储负责删除
// 没有服务端状态的存储忽略此值
const PreviousIDKey = "_previous_id"


// Flash 是在下一次渲染页面时显示的一次性提示
type Flash struct {
	Category string
	Message  string
}

func init() {
	// Cookie 和 Redis 存储都用 gob 编码会话值；
	// 提示存放在 gorilla flash 键下的 []interface{} 中
	gob.Register(Flash{})
	gob.Register([]interface{}{})
}

// Manager 从存储中加载固定 Cookie 名的会话
type Manager struct {
	store sessions.Store
	name  string
}

// NewManager 创建 Manager 实例
func NewManager(store sessions.Store, name string) *Manager {
	if store == nil {
		panic("session store cannot be nil for Manager")
	}
	if name == "" {
		name = "notes_session"
	}
	return &Manager{store: store, name: name}
}

// Name 返回 Cookie 名
func (m *Manager) Name() string { return m.name }

// Load 返回请求的会话
// Cookie 无法解码时返回一个可用的新会话，err 说明原因
func (m *Manager) Load(r *http.Request) (*Session, error) {
	raw, err := m.store.Get(r, m.name)
	if raw == nil {
		raw = sessions.NewSession(m.store, m.name)
		raw.IsNew = true
	}
	return &Session{raw: raw}, err
}

// NewCookieStore 创建签名的 Cookie 存储
// blockKey 非空时同时加密 Cookie，长度必须为 16、24 或 32 字节
func NewCookieStore(hashKey, blockKey []byte, opts sessions.Options) *sessions.CookieStore {
	var store *sessions.CookieStore
	if len(blockKey) > 0 {
		store = sessions.NewCookieStore(hashKey, blockKey)
	} else {
		store = sessions.NewCookieStore(hashKey)
	}
	store.Options = &opts
	store.MaxAge(opts.MaxAge)
	return store
}

// Session 是单个请求中的浏览器会话视图
type Session struct {
	raw *sessions.Session
}

// UserID 返回已登录用户的 ID（如有）
func (s *Session) UserID() (uint, bool) {
	id, ok := s.raw.Values[userIDKey].(uint)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}

// Login 将 userID 设为会话身份
// 同时轮换服务端会话 ID 和 CSRF nonce，登录前签发的内容全部失效
func (s *Session) Login(userID uint) {
	if s.raw.ID != "" {
		s.raw.Values[PreviousIDKey] = s.raw.ID
	}
	s.raw.ID = ""
	delete(s.raw.Values, csrfNonceKey)
	s.raw.Values[userIDKey] = userID
}

// Logout 移除身份，但保留待显示的提示
func (s *Session) Logout() {
	delete(s.raw.Values, userIDKey)
	delete(s.raw.Values, csrfNonceKey)
}

// AddFlash 为下一次渲染的页面添加提示
func (s *Session) AddFlash(category, message string) {
	s.raw.AddFlash(Flash{Category: category, Message: message})
}

// Flashes 返回并清空待显示的提示
func (s *Session) Flashes() []Flash {
	raw := s.raw.Flashes()
	flashes := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			flashes = append(flashes, f)
		}
	}
	return flashes
}

// CSRFNonce 返回 CSRF 令牌绑定的 nonce，首次调用时生成
func (s *Session) CSRFNonce() string {
	if nonce, ok := s.raw.Values[csrfNonceKey].(string); ok && nonce != "" {
		return nonce
	}
	nonce := uuid.NewString()
	s.raw.Values[csrfNonceKey] = nonce
	return nonce
}

// IsNew 报告会话是否由本次请求创建
func (s *Session) IsNew() bool { return s.raw.IsNew }

// Save 保存会话，必须在写响应体之前调用
func (s *Session) Save(r *http.Request, w http.ResponseWriter) error {
	return s.raw.Save(r, w)
}
