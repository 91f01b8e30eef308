package service

import (
	"strings"

	"github.com/foodbridge-dev/foodbridge/internal/domain"
	"github.com/foodbridge-dev/foodbridge/internal/errors"
	"github.com/foodbridge-dev/foodbridge/internal/logger"
)

type AuthService interface {
	Register(name string, email domain.Email, password domain.Password, role domain.Role) (domain.UserId, error)
	IsUsernameTaken(name string) (bool, error)
	Login(creds domain.Credentials) (domain.User, string, error)
}

type Auth struct {
	storage   AuthStorage
	validator RegistrationValidator
	jwt       Jwt
}

type AuthStorage interface {
	SaveUser(user domain.User) (domain.UserId, error)
	UserByEmail(email domain.Email) (domain.User, error)
	IsUsernameTaken(name string) (bool, error)
	IsEmailTaken(email domain.Email) (bool, error)
}

type RegistrationValidator interface {
	Name(name string) error
	Email(email string) error
	Password(password string) error
}

type Jwt interface {
	NewToken(user domain.User) (string, error)
}

func NewAuth(storage AuthStorage, validator RegistrationValidator, jwt Jwt) *Auth {
	return &Auth{storage, validator, jwt}
}

// Register creates a new donor or receiver account. New accounts start
// unverified and cannot log in until an admin approves them. The email and
// username checks are not atomic with the insert; the unique constraints in
// storage catch the race.
func (a *Auth) Register(name string, email domain.Email, password domain.Password, role domain.Role) (domain.UserId, error) {
	email = strings.ToLower(email)

	if err := a.validator.Name(name); err != nil {
		return 0, err
	}
	if err := a.validator.Email(email); err != nil {
		return 0, err
	}
	if err := a.validator.Password(password); err != nil {
		return 0, err
	}
	if role != domain.RoleDonor && role != domain.RoleReceiver {
		// ADMIN cannot self-register.
		return 0, &errors.ErrorWithStatusCode{Message: "Role must be DONOR or RECEIVER", StatusCode: 400}
	}

	taken, err := a.storage.IsEmailTaken(email)
	if err != nil {
		return 0, err
	}
	if taken {
		return 0, errors.DuplicateEmail()
	}
	taken, err = a.storage.IsUsernameTaken(name)
	if err != nil {
		return 0, err
	}
	if taken {
		return 0, errors.DuplicateUsername()
	}

	id, err := a.storage.SaveUser(domain.User{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     role,
	})
	if err != nil {
		return 0, err
	}
	logger.Log.Info("user registered", "user_id", id, "role", role)
	return id, nil
}

// IsUsernameTaken backs the pre-submission form check.
func (a *Auth) IsUsernameTaken(name string) (bool, error) {
	return a.storage.IsUsernameTaken(name)
}

// Login authenticates by exact password match and returns the user with a
// session token. Failure precedence is fixed: unknown account, then blocked,
// then wrong password, then unverified. Clients rely on this order.
func (a *Auth) Login(creds domain.Credentials) (domain.User, string, error) {
	email := strings.ToLower(creds.Email)

	user, err := a.storage.UserByEmail(email)
	if err != nil {
		return domain.User{}, "", err
	}
	if user.IsBlocked {
		return domain.User{}, "", errors.Blocked()
	}
	if user.Password != creds.Password {
		return domain.User{}, "", errors.BadCredentials()
	}
	if user.Role != domain.RoleAdmin && !user.IsVerified {
		return domain.User{}, "", errors.PendingApproval()
	}

	token, err := a.jwt.NewToken(user)
	if err != nil {
		logger.Log.Error("failed to create jwt token", "user_id", user.Id, "error", err)
		return domain.User{}, "", err
	}
	return user, token, nil
}
