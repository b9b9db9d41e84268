package controllers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ricardofreitas-dev/PagBem/app/models"
	"github.com/ricardofreitas-dev/PagBem/app/repository"
	"github.com/ricardofreitas-dev/PagBem/internal/pkg/session"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleRegister creates a new user account.
func HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseAndValidate(c, &req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, ErrCodeValidation, err.Error())
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	if _, err := repo.GetByEmail(req.Email); err == nil {
		return jsonError(c, fiber.StatusConflict, ErrCodeValidation, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("register lookup failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, ErrCodeUnexpected, "could not create account")
	}

	user, err := models.CreateUser(req.Name, req.Email, req.Password)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, ErrCodeValidation, err.Error())
	}
	if err := repo.Create(user); err != nil {
		log.Printf("user create failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, ErrCodeUnexpected, "could not create account")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

// HandleLogin authenticates a user and opens a session.
func HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseAndValidate(c, &req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, ErrCodeValidation, err.Error())
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusUnauthorized, ErrCodeUnauthorized, "invalid credentials")
		}
		log.Printf("login lookup failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, ErrCodeUnexpected, "login failed")
	}

	if !models.CheckPasswordHash(req.Password, user.Password) {
		return jsonError(c, fiber.StatusUnauthorized, ErrCodeUnauthorized, "invalid credentials")
	}
	if user.Status != models.STATUS_ACTIVE {
		return jsonError(c, fiber.StatusForbidden, ErrCodeUnauthorized, "account is not active")
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		log.Printf("session open failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, ErrCodeUnexpected, "login failed")
	}
	sess.Set(AUTH_KEY, true)
	sess.Set(USER_ID, user.ID)
	sess.Set(USER_NAME, user.Name)
	sess.Set(USER_IS_ADMIN, user.Role == models.ROLE_ADMIN)
	if err := sess.Save(); err != nil {
		log.Printf("session save failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, ErrCodeUnexpected, "login failed")
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := repo.Update(user); err != nil {
		log.Printf("failed to update last login for user %d: %v", user.ID, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

// HandleLogout destroys the current session.
func HandleLogout(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err == nil {
		if err := sess.Destroy(); err != nil {
			log.Printf("session destroy failed: %v", err)
		}
	}
	return c.JSON(fiber.Map{"success": true})
}

// HandleGenerateAPIKey issues a fresh API key for the logged-in user. The
// plaintext key is returned once; only its hash is stored.
func HandleGenerateAPIKey(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if userID == 0 {
		return jsonError(c, fiber.StatusUnauthorized, ErrCodeUnauthorized, "login required")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByID(userID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, ErrCodeUnexpected, "could not load account")
	}

	apiKey, err := models.GenerateAPIKey()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, ErrCodeUnexpected, "could not generate key")
	}
	user.APIKeyHash = models.HashAPIKey(apiKey)
	if err := repo.Update(user); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, ErrCodeUnexpected, "could not store key")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"api_key": apiKey,
	})
}
