package http

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/gofiber/fiber/v2"

	"github.com/Velislav710/TeenBudget-sub001/internal/common"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/i18n"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/models"
	"github.com/Velislav710/TeenBudget-sub001/internal/server/services"
)

// maxPasswordLen is bcrypt's input limit.
const maxPasswordLen = 72

type signupRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}

func (r signupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Password, validation.Required, validation.Length(1, maxPasswordLen)),
	)
}

type emailRequest struct {
	Email string `json:"email"`
}

func (r emailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
	)
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (r verifyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Code, validation.Required, validation.Length(6, 6), is.Digit),
	)
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

func (r signinRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Password, validation.Required),
	)
}

type resetRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (r resetRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.Password, validation.Required, validation.Length(1, maxPasswordLen)),
	)
}

type userResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
	}
}

// bind parses the JSON body into v and validates it.
func bind(c *fiber.Ctx, v validation.Validatable) error {
	if err := c.BodyParser(v); err != nil {
		return common.ErrValidation
	}
	if err := v.Validate(); err != nil {
		var fields validation.Errors
		if errors.As(err, &fields) {
			return &invalidInput{fields: fields}
		}
		return common.ErrValidation
	}
	return nil
}

func (s *Server) message(c *fiber.Ctx, key string) error {
	return c.JSON(fiber.Map{"message": s.text(c, key)})
}

func (s *Server) handleSignup(c *fiber.Ctx) error {
	var req signupRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	err := s.signup.RequestSignup(c.UserContext(), services.SignupRequest{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		return err
	}
	return s.message(c, i18n.SignupCodeSent)
}

func (s *Server) handleResendCode(c *fiber.Ctx) error {
	var req emailRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := s.signup.ResendCode(c.UserContext(), req.Email); err != nil {
		return err
	}
	return s.message(c, i18n.CodeResent)
}

func (s *Server) handleVerifyEmail(c *fiber.Ctx) error {
	var req verifyRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := s.signup.VerifyEmail(c.UserContext(), req.Email, req.Code)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": s.text(c, i18n.EmailVerified),
		"user":    toUserResponse(user),
	})
}

func (s *Server) handleSignIn(c *fiber.Ctx) error {
	var req signinRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	token, err := s.session.SignIn(c.UserContext(), req.Email, req.Password, req.Remember)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": s.text(c, i18n.SignedIn),
		"token":   token,
	})
}

func (s *Server) handleForgotPassword(c *fiber.Ctx) error {
	var req emailRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := s.reset.RequestReset(c.UserContext(), req.Email); err != nil {
		return err
	}
	return s.message(c, i18n.ResetLinkSent)
}

func (s *Server) handleResetPassword(c *fiber.Ctx) error {
	var req resetRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := s.reset.ResetPassword(c.UserContext(), req.Token, req.Password); err != nil {
		return err
	}
	return s.message(c, i18n.PasswordChanged)
}

func (s *Server) handleMe(c *fiber.Ctx) error {
	user, err := s.session.CurrentUser(c.UserContext(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(toUserResponse(user))
}
