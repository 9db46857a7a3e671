package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/busview/busview/internal/core/models"
	"github.com/busview/busview/internal/settingsdb"
)

// Login verifies credentials against the settings database and issues a
// 24-hour bearer token.
func Login(c *fiber.Ctx, jwtKey string) error {
	var request models.LoginRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "invalid request body: " + err.Error(),
		})
	}
	if request.Username == "" || request.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "username and password are required",
		})
	}

	ok, err := settingsdb.Authenticate(request.Username, request.Password)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: "failed to verify credentials",
		})
	}
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{
			Error: "invalid username or password",
		})
	}

	claims := jwt.MapClaims{
		"sub": request.Username,
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(jwtKey))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: "failed to sign token",
		})
	}
	return c.Status(fiber.StatusOK).JSON(models.LoginResponse{Token: signed})
}

// GetUsers lists web admin users.
func GetUsers(c *fiber.Ctx) error {
	users, err := settingsdb.GetUsers()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: err.Error(),
		})
	}
	return c.Status(fiber.StatusOK).JSON(users)
}

// AddUser creates a web admin user.
func AddUser(c *fiber.Ctx) error {
	var request settingsdb.UserCreateDTO
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "invalid request body: " + err.Error(),
		})
	}
	if request.Username == "" || request.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "username and password are required",
		})
	}
	if err := settingsdb.AddUser(request); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: err.Error(),
		})
	}
	return c.Status(fiber.StatusOK).JSON(models.SuccessResponse{
		Message: "User created successfully",
	})
}
