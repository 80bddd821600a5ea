package main

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"aula/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cookie lifetimes in seconds. The access cookie deliberately outlives the 1h
// token it carries: browsers keep presenting it while the client refreshes.
const (
	accessCookieMaxAge  = 86400  // 1 day
	refreshCookieMaxAge = 604800 // 7 days
	stateCookieMaxAge   = 300
)

// User-facing auth outcome messages. Clients match on these strings.
const (
	msgWrongPassword = "Contraseña incorrecta"
	msgUserNotFound  = "Usuario no encontrado"
)

// Server wires the auth flows and the subject resource layer onto gin.
// Dependencies are injected so handler tests can run against fakes.
type Server struct {
	db    *gorm.DB
	users UserStore
	auth  *Authenticator
	codec *TokenCodec
	oauth identityExchanger
	cfg   Config
}

func newServer(db *gorm.DB, cfg Config) *Server {
	users := newGormUserStore(db)
	codec := NewTokenCodec(cfg.JWTSecret)
	return &Server{
		db:    db,
		users: users,
		auth:  NewAuthenticator(users, codec),
		codec: codec,
		oauth: newGoogleExchanger(cfg),
		cfg:   cfg,
	}
}

func (s *Server) setupRoutes(r *gin.Engine) {
	r.POST("/auth/register", s.registerHandler)
	r.POST("/auth/login", s.loginHandler)
	r.GET("/auth/google", s.googleLoginHandler)
	r.GET("/auth/google/callback", s.googleCallbackHandler)
	r.POST("/auth/refresh", s.refreshHandler)
	authGroup := r.Group("")
	authGroup.Use(s.jwtAuthMiddleware())
	authGroup.GET("/auth/protected", s.protectedHandler)
	authGroup.POST("/subjects", s.createSubjectHandler)
	authGroup.GET("/subjects", s.listSubjectsHandler)
	authGroup.GET("/subjects/:id", s.getSubjectHandler)
	authGroup.PUT("/subjects/:id", s.updateSubjectHandler)
	authGroup.DELETE("/subjects/:id", s.deleteSubjectHandler)
	authGroup.POST("/subjects/:id/enroll", s.enrollHandler)
	authGroup.DELETE("/subjects/:id/enroll", s.withdrawHandler)
	authGroup.GET("/subjects/:id/students", s.listStudentsHandler)
}

// jwtAuthMiddleware accepts the access token from the session cookie or a
// Bearer header and stores the asserted identity on the request context.
func (s *Server) jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, _ := c.Cookie("token")
		if tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				tokenString = authHeader[len("Bearer "):]
			}
		}
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "missing token"})
			c.Abort()
			return
		}
		claims, err := s.codec.VerifyAccess(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
			c.Abort()
			return
		}
		id, ok := claims.subjectID()
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
			c.Abort()
			return
		}
		c.Set("userID", id)
		c.Set("email", claims.Email)
		c.Next()
	}
}

func (s *Server) registerHandler(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	user, err := s.auth.Register(req.Name, req.Email, req.Password)
	switch {
	case errors.Is(err, ErrDuplicateUser):
		c.JSON(http.StatusConflict, gin.H{"message": "user already exists"})
		return
	case errors.Is(err, ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	case err != nil:
		// store or bcrypt failure; detail stays server-side
		s.internalError(c, "register", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": publicUser(user)})
}

func (s *Server) loginHandler(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if req.Name == "" && req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "name or email required"})
		return
	}
	result, err := s.auth.Login(req.Name, req.Email, req.Password)
	if err != nil {
		s.internalError(c, "login", err)
		return
	}
	switch result.Outcome {
	case OutcomeUserNotFound:
		c.JSON(http.StatusNotFound, gin.H{"message": msgUserNotFound})
	case OutcomeWrongPassword:
		c.JSON(http.StatusForbidden, gin.H{"message": msgWrongPassword})
	case OutcomeAuthenticated:
		s.setSessionCookies(c, result.AccessToken, result.RefreshToken)
		c.JSON(http.StatusOK, gin.H{
			"user":         publicUser(result.User),
			"token":        result.AccessToken,
			"refreshToken": result.RefreshToken,
		})
	}
}

func (s *Server) googleLoginHandler(c *gin.Context) {
	if !s.oauth.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "google login not configured"})
		return
	}
	state := uuid.NewString()
	c.SetCookie("oauthState", state, stateCookieMaxAge, "/", "", false, true)
	c.Redirect(http.StatusFound, s.oauth.AuthCodeURL(state))
}

// googleCallbackHandler completes the provider flow. Exchange failures
// redirect to the configured error page instead of returning a structured
// body; the browser, not an API client, is the caller here.
func (s *Server) googleCallbackHandler(c *gin.Context) {
	if !s.oauth.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "google login not configured"})
		return
	}
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "missing code"})
		return
	}
	state := c.Query("state")
	stored, _ := c.Cookie("oauthState")
	if state == "" || state != stored {
		c.JSON(http.StatusBadRequest, gin.H{"message": "state mismatch"})
		return
	}
	c.SetCookie("oauthState", "", -1, "/", "", false, true)
	ident, err := s.oauth.FetchIdentity(c.Request.Context(), code)
	if err != nil {
		log.Printf("google exchange failed: %v", err)
		c.Redirect(http.StatusFound, s.cfg.OAuthErrorRedirect)
		return
	}
	result, err := s.auth.LoginOAuth(ident.Email, ident.Name)
	if err != nil {
		log.Printf("google login failed for %s: %v", ident.Email, err)
		c.Redirect(http.StatusFound, s.cfg.OAuthErrorRedirect)
		return
	}
	s.setSessionCookies(c, result.AccessToken, result.RefreshToken)
	c.Redirect(http.StatusFound, s.cfg.OAuthSuccessRedirect)
}

// refreshHandler re-mints the access token only; the refresh token is not
// rotated and stays valid until its own expiry.
func (s *Server) refreshHandler(c *gin.Context) {
	tokenString, _ := c.Cookie("refreshToken")
	if tokenString == "" {
		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := c.ShouldBindJSON(&req); err == nil {
			tokenString = req.RefreshToken
		}
	}
	if tokenString == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "missing refresh token"})
		return
	}
	id, ok := s.codec.VerifyRefresh(tokenString)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired refresh token"})
		return
	}
	user, err := s.users.FindByID(id)
	if err != nil {
		s.internalError(c, "refresh lookup", err)
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired refresh token"})
		return
	}
	access, err := s.codec.MintAccess(user.ID, user.Email)
	if err != nil {
		s.internalError(c, "refresh mint", err)
		return
	}
	c.SetCookie("token", access, accessCookieMaxAge, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"token": access})
}

func (s *Server) protectedHandler(c *gin.Context) {
	id, _ := c.Get("userID")
	email, _ := c.Get("email")
	c.JSON(http.StatusOK, gin.H{"id": id, "email": email})
}

func (s *Server) setSessionCookies(c *gin.Context, access, refresh string) {
	c.SetCookie("token", access, accessCookieMaxAge, "/", "", false, true)
	c.SetCookie("refreshToken", refresh, refreshCookieMaxAge, "/", "", false, true)
}

// internalError logs the failure detail server-side and answers with an
// opaque message.
func (s *Server) internalError(c *gin.Context, op string, err error) {
	log.Printf("%s: %v", op, err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
}

func publicUser(u *models.User) gin.H {
	return gin.H{"id": u.ID, "name": u.Name, "email": u.Email}
}
