package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"indierise/internal/core/auth"
	"indierise/internal/domain"
	"indierise/internal/memstore"
	"indierise/internal/service"
	"indierise/internal/transport/http/handler"
	"indierise/internal/transport/http/router"
)

var (
	apiEngine   *gin.Engine
	adminEngine *gin.Engine
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	st := memstore.New()
	log := zap.NewNop()
	jwter := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "indierise-test", TTL: time.Hour}
	revoker := auth.NewMemoryRevoker()

	identitySvc := service.NewIdentityService(st.Users(), st.Books(), st.Promos(), nil, log)
	catalogSvc := service.NewCatalogService(st.Books(), nil, log)
	promoSvc := service.NewPromoService(st.Promos(), st.Books())

	if err := service.SeedDemoUsers(st.Users(), log); err != nil {
		panic(err)
	}

	router.Register(handler.NewAuthHandler(identitySvc, jwter, revoker))
	router.Register(handler.NewCatalogHandler(catalogSvc, promoSvc, identitySvc))
	router.Register(handler.NewAdminHandler(identitySvc, catalogSvc))

	apiEngine = router.NewAPIEngine(log, jwter, revoker)
	adminEngine = router.NewAdminEngine(log, jwter, revoker)

	os.Exit(m.Run())
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func do(t *testing.T, e *gin.Engine, method, path, token string, body any) envelope {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func login(t *testing.T, email, password string) string {
	t.Helper()
	env := do(t, apiEngine, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": email, "password": password,
	})
	require.Equal(t, 0, env.Code, "login failed: %s", env.Msg)
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func catalogTitles(t *testing.T, path string) []string {
	t.Helper()
	env := do(t, apiEngine, http.MethodGet, path, "", nil)
	require.Equal(t, 0, env.Code)
	var out struct {
		Items []domain.Book `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	titles := make([]string, 0, len(out.Items))
	for _, b := range out.Items {
		titles = append(titles, b.Title)
	}
	return titles
}

func TestLogin_WrongCredentials(t *testing.T) {
	env := do(t, apiEngine, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "mary@stockittome.com", "password": "nope",
	})
	assert.Equal(t, 401, env.Code)

	// 空凭据同样按凭据错误处理
	env = do(t, apiEngine, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "", "password": "",
	})
	assert.Equal(t, 401, env.Code)
}

func TestSignup_Duplicate(t *testing.T) {
	env := do(t, apiEngine, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"email": "fresh@author.com", "password": "pw12345",
	})
	require.Equal(t, 0, env.Code)

	env = do(t, apiEngine, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"email": "fresh@author.com", "password": "pw12345",
	})
	assert.Equal(t, 409, env.Code)

	// 空字段与占用邮箱同码，不落到绑定错误
	env = do(t, apiEngine, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"email": "", "password": "pw12345",
	})
	assert.Equal(t, 409, env.Code)
	env = do(t, apiEngine, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"email": "blank@author.com", "password": "",
	})
	assert.Equal(t, 409, env.Code)
}

func TestModerationScenario(t *testing.T) {
	maryTok := login(t, "mary@stockittome.com", "indie123")
	authorTok := login(t, "test@author.com", "test123")

	// admin 投稿直接上架
	env := do(t, apiEngine, http.MethodPost, "/api/v1/books", maryTok, gin.H{
		"title": "Starlight", "description": "A wholesome tale", "agreePolicy": true,
	})
	require.Equal(t, 0, env.Code, env.Msg)
	assert.Contains(t, catalogTitles(t, "/api/v1/catalog"), "Starlight")

	// 未勾选政策：不入库
	env = do(t, apiEngine, http.MethodPost, "/api/v1/books", authorTok, gin.H{
		"title": "Sneaky", "description": "d", "agreePolicy": false,
	})
	assert.Equal(t, 400, env.Code)

	// author 投稿进待审
	env = do(t, apiEngine, http.MethodPost, "/api/v1/books", authorTok, gin.H{
		"title": "Moonbeam", "description": "d", "agreePolicy": true,
	})
	require.Equal(t, 0, env.Code, env.Msg)
	var moon domain.Book
	require.NoError(t, json.Unmarshal(env.Data, &moon))
	assert.False(t, moon.Approved)
	assert.NotContains(t, catalogTitles(t, "/api/v1/catalog"), "Moonbeam")

	// 待审列表只有 admin 能看
	env = do(t, adminEngine, http.MethodGet, "/admin/v1/books/pending", authorTok, nil)
	assert.Equal(t, 403, env.Code)
	env = do(t, adminEngine, http.MethodGet, "/admin/v1/books/pending", "", nil)
	assert.Equal(t, 401, env.Code)

	env = do(t, adminEngine, http.MethodGet, "/admin/v1/books/pending", maryTok, nil)
	require.Equal(t, 0, env.Code)
	var pending struct {
		Items []domain.Book `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &pending))
	require.Len(t, pending.Items, 1)
	assert.Equal(t, "Moonbeam", pending.Items[0].Title)

	// 过审后公开可见
	env = do(t, adminEngine, http.MethodPost, "/admin/v1/books/"+moon.ID+"/approve", maryTok, nil)
	require.Equal(t, 0, env.Code)
	assert.Contains(t, catalogTitles(t, "/api/v1/catalog"), "Moonbeam")

	// 大小写不敏感搜索
	titles := catalogTitles(t, "/api/v1/catalog/search?q=STARLIGHT")
	assert.Equal(t, []string{"Starlight"}, titles)
}

func TestProfileEdit_RequiresReauth(t *testing.T) {
	tok := login(t, "test@author.com", "test123")

	env := do(t, apiEngine, http.MethodPut, "/api/v1/me/profile", tok, gin.H{
		"currentPassword": "wrong", "name": "Renamed",
	})
	assert.Equal(t, 403, env.Code)

	env = do(t, apiEngine, http.MethodPut, "/api/v1/me/profile", tok, gin.H{
		"currentPassword": "test123", "name": "Renamed",
	})
	require.Equal(t, 0, env.Code, env.Msg)
	var out struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, "Renamed", out.Name)
}

func TestLogout_RevokesToken(t *testing.T) {
	tok := login(t, "mary@stockittome.com", "indie123")

	env := do(t, apiEngine, http.MethodGet, "/api/v1/me", tok, nil)
	require.Equal(t, 0, env.Code)

	env = do(t, apiEngine, http.MethodPost, "/api/v1/auth/logout", tok, nil)
	require.Equal(t, 0, env.Code)

	env = do(t, apiEngine, http.MethodGet, "/api/v1/me", tok, nil)
	assert.Equal(t, 401, env.Code, "revoked token must not authenticate")
}

func TestDashboard_ScopedToIdentity(t *testing.T) {
	tok := login(t, "fresh@author.com", "pw12345")

	env := do(t, apiEngine, http.MethodGet, "/api/v1/dashboard", tok, nil)
	require.Equal(t, 0, env.Code)
	var out struct {
		BooksUploaded int `json:"booksUploaded"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, 0, out.BooksUploaded)
}

func TestAdminRemoveUser_Cascades(t *testing.T) {
	maryTok := login(t, "mary@stockittome.com", "indie123")

	// 准备一个带书的账号
	env := do(t, apiEngine, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"email": "doomed@author.com", "password": "pw12345",
	})
	require.Equal(t, 0, env.Code)
	doomedTok := login(t, "doomed@author.com", "pw12345")
	env = do(t, apiEngine, http.MethodPost, "/api/v1/books", doomedTok, gin.H{
		"title": "Orphan", "description": "d", "agreePolicy": true,
	})
	require.Equal(t, 0, env.Code)

	env = do(t, adminEngine, http.MethodDelete, "/admin/v1/users/doomed@author.com", maryTok, nil)
	require.Equal(t, 0, env.Code, env.Msg)

	env = do(t, adminEngine, http.MethodGet, "/admin/v1/books/pending", maryTok, nil)
	require.Equal(t, 0, env.Code)
	var pending struct {
		Items []domain.Book `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &pending))
	for _, b := range pending.Items {
		assert.NotEqual(t, "doomed@author.com", b.AuthorEmail, "cascade must remove owned books")
	}

	// 已删账号的 token 再投稿 → 账号不存在
	env = do(t, apiEngine, http.MethodPost, "/api/v1/books", doomedTok, gin.H{
		"title": "Ghost", "description": "d", "agreePolicy": true,
	})
	assert.Equal(t, 401, env.Code)

	env = do(t, adminEngine, http.MethodDelete, "/admin/v1/users/doomed@author.com", maryTok, nil)
	assert.Equal(t, 404, env.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	for _, path := range []string{"/health", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		apiEngine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, fmt.Sprintf("GET %s", path))
	}
}
