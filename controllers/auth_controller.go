package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maxwellzeha/jonduplastics/middleware"
	"github.com/maxwellzeha/jonduplastics/models"
	"github.com/maxwellzeha/jonduplastics/services"
)

const refreshTokenCookie = "refresh_token"

// CookieOptions controls how auth cookies are issued.
type CookieOptions struct {
	Domain string
	Secure bool
}

type AuthController struct {
	authService services.AuthService
	cookies     CookieOptions
}

func NewAuthController(svc services.AuthService, cookies CookieOptions) *AuthController {
	return &AuthController{authService: svc, cookies: cookies}
}

// Signup handles POST /auth/signup
func (ac *AuthController) Signup(ctx *gin.Context) {
	var req models.SignupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		invalidRequest(ctx, err)
		return
	}

	resp, svcErr := ac.authService.Signup(ctx.Request.Context(), &req)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// VerifyEmail handles POST /auth/verify
func (ac *AuthController) VerifyEmail(ctx *gin.Context) {
	var req models.VerifyEmailRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		invalidRequest(ctx, err)
		return
	}
	if svcErr := ac.authService.VerifyEmail(ctx.Request.Context(), &req); svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Email verified successfully"})
}

// Login handles POST /auth/login
func (ac *AuthController) Login(ctx *gin.Context) {
	var req models.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		invalidRequest(ctx, err)
		return
	}

	res, svcErr := ac.authService.Login(ctx.Request.Context(), &req)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ac.writeSession(ctx, res)
}

// Refresh handles POST /auth/refresh. The refresh token comes from the body or
// the refresh_token cookie.
func (ac *AuthController) Refresh(ctx *gin.Context) {
	var req models.RefreshRequest
	_ = ctx.ShouldBindJSON(&req)
	if req.RefreshToken == "" {
		if cookie, err := ctx.Cookie(refreshTokenCookie); err == nil {
			req.RefreshToken = cookie
		}
	}
	if req.RefreshToken == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token is required", "code": services.CodeUnauthorized})
		return
	}

	res, svcErr := ac.authService.Refresh(ctx.Request.Context(), req.RefreshToken)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ac.writeSession(ctx, res)
}

// Logout handles POST /auth/logout
func (ac *AuthController) Logout(ctx *gin.Context) {
	if userID, err := middleware.GetUserID(ctx); err == nil {
		if svcErr := ac.authService.Logout(ctx.Request.Context(), userID); svcErr != nil {
			respondError(ctx, svcErr)
			return
		}
	}
	ac.setCookie(ctx, middleware.AccessTokenCookie, "", -1)
	ac.setCookie(ctx, refreshTokenCookie, "", -1)
	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Session handles GET /auth/session
func (ac *AuthController) Session(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "code": services.CodeUnauthorized})
		return
	}
	sess, svcErr := ac.authService.Session(ctx.Request.Context(), userID)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, sess)
}

func (ac *AuthController) writeSession(ctx *gin.Context, res *services.AuthResult) {
	ac.setCookie(ctx, middleware.AccessTokenCookie, res.Tokens.AccessToken, int(services.AccessTokenTTL.Seconds()))
	ac.setCookie(ctx, refreshTokenCookie, res.Tokens.RefreshToken, int(services.RefreshTokenTTL.Seconds()))
	ctx.JSON(http.StatusOK, models.TokenResponse{
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
		UserID:       res.UserID.String(),
		Email:        res.Email,
	})
}

func (ac *AuthController) setCookie(ctx *gin.Context, name, value string, maxAge int) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(name, value, maxAge, "/", ac.cookies.Domain, ac.cookies.Secure, true)
}
