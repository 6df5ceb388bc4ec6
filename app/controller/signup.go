package controller

import (
	"errors"
	"net/http"

	"github.com/vibast-solutions/ms-go-signup/app/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const (
	loginSuccessBody = "login successful"
	loginFailureBody = "invalid username or password"
)

type SignupController struct {
	signupService *service.SignupService
}

func NewSignupController(signupService *service.SignupService) *SignupController {
	return &SignupController{signupService: signupService}
}

func (c *SignupController) Index(ctx echo.Context) error {
	return ctx.Render(http.StatusOK, "index.html", nil)
}

func (c *SignupController) LoginPage(ctx echo.Context) error {
	return ctx.Render(http.StatusOK, "login.html", nil)
}

func (c *SignupController) RegisterPage(ctx echo.Context) error {
	return ctx.Render(http.StatusOK, "register.html", nil)
}

func (c *SignupController) Register(ctx echo.Context) error {
	username := ctx.FormValue("username")
	password := ctx.FormValue("password")
	email := ctx.FormValue("email")

	if username == "" || password == "" || email == "" {
		logrus.Debug("Register request missing form fields")
		return ctx.String(http.StatusBadRequest, "username, password and email are required")
	}

	logrus.WithField("username", username).Info("Register request received")
	user, err := c.signupService.Register(ctx.Request().Context(), username, password, email)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			logrus.WithField("username", username).Warn("Register failed: account already exists")
			return ctx.Render(http.StatusOK, "existing_user.html", nil)
		}
		logrus.WithError(err).WithField("username", username).Error("Register failed")
		return ctx.String(http.StatusInternalServerError, "internal server error")
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User registered, confirmation sent")
	return ctx.Render(http.StatusOK, "confirmation_sent.html", nil)
}

func (c *SignupController) ConfirmEmail(ctx echo.Context) error {
	code := ctx.Param("code")

	outcome, user, err := c.signupService.Confirm(ctx.Request().Context(), code)
	if err != nil {
		logrus.WithError(err).Error("Confirm email failed")
		return ctx.String(http.StatusInternalServerError, "internal server error")
	}

	if outcome != service.OutcomeConfirmed {
		// Expired and invalid render the same page; the log keeps them apart.
		logrus.WithField("outcome", outcome.String()).Warn("Confirm email rejected")
		return ctx.Render(http.StatusOK, "invalid_confirmation_code.html", nil)
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("Email confirmed")
	return ctx.Render(http.StatusOK, "email_confirmed.html", nil)
}

func (c *SignupController) Login(ctx echo.Context) error {
	username := ctx.FormValue("username")
	password := ctx.FormValue("password")

	user, err := c.signupService.Authenticate(ctx.Request().Context(), username, password)
	if err != nil {
		// Unknown username, wrong password and unconfirmed account all
		// collapse into one response body.
		if errors.Is(err, service.ErrInvalidCredentials) || errors.Is(err, service.ErrAccountNotConfirmed) {
			logrus.WithField("username", username).Warn("Login failed")
			return ctx.String(http.StatusUnauthorized, loginFailureBody)
		}
		logrus.WithError(err).WithField("username", username).Error("Login failed")
		return ctx.String(http.StatusInternalServerError, "internal server error")
	}

	logrus.WithField("user_id", user.ID).Info("Login successful")
	return ctx.String(http.StatusOK, loginSuccessBody)
}

func (c *SignupController) ResendConfirmation(ctx echo.Context) error {
	username := ctx.FormValue("username")
	if username == "" {
		return ctx.String(http.StatusBadRequest, "username is required")
	}

	logrus.WithField("username", username).Info("Resend confirmation requested")
	if err := c.signupService.ResendConfirmation(ctx.Request().Context(), username); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			logrus.WithField("username", username).Warn("Resend failed: user not found")
			return ctx.String(http.StatusNotFound, "user not found")
		}
		if errors.Is(err, service.ErrAccountAlreadyConfirmed) {
			logrus.WithField("username", username).Warn("Resend failed: account already confirmed")
			return ctx.String(http.StatusBadRequest, "account is already confirmed")
		}
		logrus.WithError(err).WithField("username", username).Error("Resend confirmation failed")
		return ctx.String(http.StatusInternalServerError, "internal server error")
	}

	return ctx.Render(http.StatusOK, "confirmation_sent.html", nil)
}

// HTTPErrorHandler renders the custom 404 page and falls back to plain
// status text for everything else.
func HTTPErrorHandler(err error, ctx echo.Context) {
	if ctx.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
	}

	if code == http.StatusNotFound {
		if renderErr := ctx.Render(http.StatusNotFound, "page_404.html", nil); renderErr == nil {
			return
		}
	}

	if code >= http.StatusInternalServerError {
		logrus.WithError(err).Error("Request failed")
	}
	_ = ctx.String(code, http.StatusText(code))
}
