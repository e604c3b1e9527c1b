package handler

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"net/http"
	"time"

	"github.com/dzuokumor/Civic-voice/internal/auth"
	"github.com/dzuokumor/Civic-voice/internal/model"
	"github.com/dzuokumor/Civic-voice/internal/notify"
	"github.com/dzuokumor/Civic-voice/internal/store"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
)

type AuthHandler struct {
	store        *store.Store
	jwtSecret    string
	googleConfig *oauth2.Config
	frontendURL  string
	notifier     *notify.Publisher
}

func NewAuthHandler(st *store.Store, jwtSecret string, googleConfig *oauth2.Config, frontendURL string, notifier *notify.Publisher) *AuthHandler {
	return &AuthHandler{
		store:        st,
		jwtSecret:    jwtSecret,
		googleConfig: googleConfig,
		frontendURL:  frontendURL,
		notifier:     notifier,
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	user, err := h.store.FindUserByEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := auth.GenerateAccessToken(user, h.jwtSecret)
	if err != nil {
		respondError(c, err)
		return
	}

	_ = h.store.TouchLastLogin(user.ID, time.Now().UTC())

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

type registerResearcherRequest struct {
	Email        string `json:"email" binding:"required"`
	Password     string `json:"password" binding:"required"`
	Organization string `json:"organization" binding:"required"`
}

// RegisterResearcher creates a researcher account and queues a verification
// email. Delivery is fire-and-forget; a broker outage never fails signup.
func (h *AuthHandler) RegisterResearcher(c *gin.Context) {
	var req registerResearcherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email, password and organization are required"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	user, err := h.store.CreateUser(req.Email, hash, model.RoleResearcher, req.Organization, false)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := auth.GenerateVerificationToken(user.ID, h.jwtSecret)
	if err != nil {
		log.Printf("Warning: failed to mint verification token for %s: %v", user.Email, err)
	} else {
		h.notifier.Send(c.Request.Context(), notify.VerificationEmail(user.Email, h.frontendURL, token))
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Researcher account created successfully",
		"user_id": user.ID,
	})
}

// VerifyEmail consumes the token from the verification email.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	userID, err := auth.ValidateVerificationToken(token, h.jwtSecret)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or expired token"})
		return
	}

	if err := h.store.MarkEmailVerified(userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email verified successfully"})
}

// GoogleAuth redirects to the Google authorization URL. Accounts created
// through this path are researchers; moderators are provisioned by the seed
// binary.
func (h *AuthHandler) GoogleAuth(c *gin.Context) {
	state := generateState()
	// Store state in cookie for CSRF protection
	c.SetCookie("oauth_state", state, 600, "/", "", false, true)

	url := h.googleConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback handles the OAuth callback, finding or creating the
// researcher account and handing back a signed token via the frontend.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	state := c.Query("state")
	savedState, err := c.Cookie("oauth_state")
	if err != nil || state != savedState {
		c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"?error=invalid_state")
		return
	}
	c.SetCookie("oauth_state", "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"?error=no_code")
		return
	}

	token, err := h.googleConfig.Exchange(c.Request.Context(), code)
	if err != nil {
		log.Printf("Failed to exchange code: %v", err)
		c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"?error=exchange_failed")
		return
	}

	info, err := auth.GetGoogleUserInfo(c.Request.Context(), h.googleConfig, token)
	if err != nil {
		log.Printf("Failed to get user info: %v", err)
		c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"?error=user_info_failed")
		return
	}

	user, err := h.store.FindUserByEmail(info.Email)
	if err != nil {
		// Google already verified the address.
		user, err = h.store.CreateUser(info.Email, "", model.RoleResearcher, "", true)
		if err != nil {
			log.Printf("Failed to create user: %v", err)
			c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"?error=create_user_failed")
			return
		}
	}

	accessToken, err := auth.GenerateAccessToken(user, h.jwtSecret)
	if err != nil {
		c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"?error=token_failed")
		return
	}

	_ = h.store.TouchLastLogin(user.ID, time.Now().UTC())

	c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/auth/callback?token="+accessToken)
}

func generateState() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
