package linktest

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AccountAPI is a fake of the account HTTP API the client registers and logs
// in against. It keeps accounts in memory.
type AccountAPI struct {
	server *httptest.Server

	mu       sync.Mutex
	accounts map[string]string
	logins   int
}

func NewAccountAPI(log *zap.Logger) *AccountAPI {
	if log == nil {
		log = zap.NewNop()
	}

	api := &AccountAPI{
		accounts: make(map[string]string),
	}

	api.server = httptest.NewServer(api.router(log))

	return api
}

// URL returns the base URL of the API, register and login live beneath it.
func (a *AccountAPI) URL() string {
	return a.server.URL + "/api"
}

func (a *AccountAPI) Close() {
	a.server.Close()
}

// Logins returns how many successful logins the API has seen.
func (a *AccountAPI) Logins() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.logins
}

func (a *AccountAPI) router(log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(ginzap.GinzapWithConfig(log, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
	}))

	// Logs all panic to error log
	r.Use(ginzap.RecoveryWithZap(log, true))

	api := r.Group("/api")
	api.POST("/register", a.register)
	api.POST("/login", a.login)

	return r
}

func (a *AccountAPI) register(c *gin.Context) {
	login := c.PostForm("login")
	password := c.PostForm("password")

	if login == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "login and password are required"})
		return
	}

	if password != c.PostForm("confirmPassword") {
		c.JSON(http.StatusBadRequest, gin.H{"message": "passwords do not match"})
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.accounts[login]; exists {
		c.JSON(http.StatusConflict, gin.H{"message": "user already exists"})
		return
	}

	a.accounts[login] = password
	c.JSON(http.StatusCreated, gin.H{"message": "registered"})
}

func (a *AccountAPI) login(c *gin.Context) {
	login := c.PostForm("login")
	password := c.PostForm("password")

	a.mu.Lock()
	defer a.mu.Unlock()

	if stored, ok := a.accounts[login]; !ok || stored != password {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	a.logins++
	c.String(http.StatusOK, "welcome")
}
