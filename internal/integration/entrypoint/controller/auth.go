package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studyroom/backend/internal/application/usecase/auth"
	domainerror "github.com/studyroom/backend/internal/domain/error"
	"github.com/studyroom/backend/internal/integration/entrypoint/dto"
)

// AuthController handles authentication endpoints.
type AuthController struct {
	loginUserUseCase *auth.LoginUserUseCase
}

// NewAuthController creates a new auth controller instance.
func NewAuthController(loginUserUseCase *auth.LoginUserUseCase) *AuthController {
	return &AuthController{
		loginUserUseCase: loginUserUseCase,
	}
}

// Login handles POST /auth/login requests.
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body: email and password are required",
			Code:  string(domainerror.ErrCodeMissingFields),
		})
		return
	}

	output, err := c.loginUserUseCase.Execute(ctx.Request.Context(), auth.LoginUserInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		c.handleAuthError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.AuthResponse{
		AccessToken: output.AccessToken,
		User:        dto.ToUserResponse(output.User),
	})
}

// handleAuthError maps auth errors to HTTP responses.
func (c *AuthController) handleAuthError(ctx *gin.Context, err error) {
	var authErr *domainerror.AuthError
	if errors.As(err, &authErr) {
		status := http.StatusUnauthorized
		switch authErr.Code {
		case domainerror.ErrCodeMissingFields:
			status = http.StatusBadRequest
		case domainerror.ErrCodeRateLimited:
			status = http.StatusTooManyRequests
		}
		ctx.JSON(status, dto.ErrorResponse{
			Error: authErr.Message,
			Code:  string(authErr.Code),
		})
		return
	}

	ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: "An internal error occurred",
	})
}
