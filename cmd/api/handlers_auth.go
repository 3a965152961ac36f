package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/tienda-ecom/internal/auth"
	"github.com/MikeMC777/tienda-ecom/internal/httpx"
	"github.com/MikeMC777/tienda-ecom/internal/user"
)

func principalOf(u *user.User) auth.Principal {
	return auth.Principal{
		UserID:    u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsStaff:   u.IsStaff,
	}
}

// @Summary      Register
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      user.RegisterRequest  true  "new account"
// @Success      201   {object}  user.User
// @Failure      400   {object}  httpx.ValidationError
// @Failure      409   {object}  httpx.ValidationError
// @Router       /auth/register [post]
func registerHandler(users *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in user.RegisterRequest
		if !httpx.BindJSON(c, &in) {
			return
		}
		u, err := users.Register(c.Request.Context(), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, u)
	}
}

// @Summary      Obtain token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      auth.TokenRequest  true  "credentials"
// @Success      200   {object}  auth.Pair
// @Failure      401   {object}  httpx.HTTPError
// @Router       /auth/token [post]
func tokenHandler(users *user.Service, tokens *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in auth.TokenRequest
		if !httpx.BindJSON(c, &in) {
			return
		}
		u, err := users.Authenticate(c.Request.Context(), in.Email, in.Password)
		if err != nil {
			writeError(c, err)
			return
		}
		pair, err := tokens.Issue(principalOf(u))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, pair)
	}
}

// @Summary      Rotate refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      auth.RefreshRequest  true  "refresh token"
// @Success      200   {object}  auth.Pair
// @Failure      401   {object}  httpx.HTTPError
// @Router       /auth/token/refresh [post]
func refreshHandler(users *user.Service, tokens *auth.Issuer) gin.HandlerFunc {
	current := func(ctx context.Context, id string) (auth.Principal, error) {
		u, err := users.Get(ctx, id)
		if err != nil {
			return auth.Principal{}, auth.ErrInvalidToken
		}
		return principalOf(u), nil
	}
	return func(c *gin.Context) {
		var in auth.RefreshRequest
		if !httpx.BindJSON(c, &in) {
			return
		}
		pair, err := tokens.Refresh(c.Request.Context(), in.Refresh, current)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, pair)
	}
}

// @Summary      Get profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  user.User
// @Router       /profile [get]
func getProfileHandler(users *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := users.Get(c.Request.Context(), httpx.MustPrincipal(c).UserID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// @Summary      Update profile
// @Description  Only first and last name can change; a different email is rejected.
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      user.UpdateProfileRequest  true  "fields to change"
// @Success      200   {object}  user.User
// @Failure      400   {object}  httpx.ValidationError
// @Router       /profile [patch]
func updateProfileHandler(users *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in user.UpdateProfileRequest
		if !httpx.BindJSON(c, &in) {
			return
		}
		u, err := users.UpdateProfile(c.Request.Context(), httpx.MustPrincipal(c).UserID, in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// @Summary      Change password
// @Tags         profile
// @Accept       json
// @Security     BearerAuth
// @Param        body  body  user.ChangePasswordRequest  true  "old and new password"
// @Success      204
// @Failure      400   {object}  httpx.ValidationError
// @Router       /profile/password [post]
func changePasswordHandler(users *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in user.ChangePasswordRequest
		if !httpx.BindJSON(c, &in) {
			return
		}
		if err := users.ChangePassword(c.Request.Context(), httpx.MustPrincipal(c).UserID, in); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
