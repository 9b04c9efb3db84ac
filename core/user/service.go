package user

import (
	"crypto/subtle"
	"errors"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInvalidSignupCode  = errors.New("invalid teacher signup code")
	ErrOTPNotVerified     = errors.New("verification code has not been confirmed")
)

type (
	Repository interface {
		CheckEmailUniqueness(email string, excludedUsers ...User) error
		CreateUser(user User) (User, error)
		QueryAllUsers() ([]User, error)
		GetUserByID(id string) (User, error)
		GetUserByEmail(email string) (User, error)
		UpdateUser(user User) (User, error)
		DeleteUser(id string) error
	}

	Service interface {
		Register(nu NewUser) error
		ConfirmRegistration(email, code string) (User, error)
		Authenticate(email, password, role string) (User, error)
		RequestPasswordReset(email string) error
		RequestPasswordChange(usr User) error
		VerifyOTP(email, purpose, code string) error
		ResetPassword(rp ResetPassword) (User, error)
		CheckEmailUniqueness(email string, excludedUsers ...User) error
		QueryAll() ([]User, error)
		GetByID(id string) (User, error)
		GetByEmail(email string) (User, error)
		UpdateProfile(id string, up UpdateProfile) (User, error)
		Delete(id string) error
	}

	service struct {
		repo     Repository
		mailSvc  core.EmailService
		conf     *core.Config
		validate *validator.Validate
		otps     *otpTable
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, validate *validator.Validate, conf *core.Config) *service {
	return &service{
		repo:     repo,
		mailSvc:  mailSvc,
		conf:     conf,
		validate: validate,
		otps:     newOTPTable(conf.OTPTimeout),
	}
}

func (svc *service) CheckEmailUniqueness(email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(email, exclUsers...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Register validates a registration request, issues an OTP and mails it.
// No user is created until ConfirmRegistration succeeds with that code.
func (svc *service) Register(nu NewUser) error {
	if err := nu.Validate(svc.validate, svc); err != nil {
		return err
	}
	if nu.Role == RoleTeacher {
		if subtle.ConstantTimeCompare([]byte(nu.SignupCode), []byte(svc.conf.TeacherSignupCode)) == 0 || svc.conf.TeacherSignupCode == "" {
			return core.NewValidationError(ErrInvalidSignupCode,
				core.FieldError{Field: "signup_code", Error: ErrInvalidSignupCode.Error()})
		}
	}
	if nu.Role == RoleOwner {
		// owners are provisioned by the admin CLI, never self-registered
		return core.NewValidationError(ErrInvalidSignupCode,
			core.FieldError{Field: "role", Error: "this role cannot be self-registered"})
	}

	code, err := svc.otps.issue(nu.Email, PurposeRegister, &nu)
	if err != nil {
		return err
	}
	svc.sendOTPMail(nu.Name, nu.Email, code)
	return nil
}

// ConfirmRegistration completes a pending registration once the emailed code
// matches, creating the user and returning it for session establishment.
func (svc *service) ConfirmRegistration(email, code string) (User, error) {
	email = core.CleanString(email, true /* lower */)
	entry, err := svc.otps.verify(email, PurposeRegister, code)
	if err != nil {
		return User{}, err
	}
	nu := entry.pending
	if nu == nil {
		return User{}, ErrInvalidOTP
	}

	now := time.Now().UTC()
	usr := User{
		ID:        uuid.NewString(),
		Name:      nu.Name,
		Nickname:  nu.Nickname,
		Email:     nu.Email,
		Role:      nu.Role,
		Avatar:    DefaultAvatar(nu.Name),
		Plan:      PlanFree,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}

	usr, err = svc.repo.CreateUser(usr)
	if err != nil {
		return User{}, err
	}
	svc.otps.invalidate(email, PurposeRegister)
	return usr, nil
}

// Authenticate matches a stored user on all three of email, password and
// role; any mismatch yields ErrInvalidCredentials.
func (svc *service) Authenticate(email, password, role string) (User, error) {
	usr, err := svc.repo.GetUserByEmail(core.CleanString(email, true /* lower */))
	if err != nil {
		if err == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if usr.Role != role {
		return User{}, ErrInvalidCredentials
	}
	if err = usr.CheckPassword(password); err != nil {
		return User{}, ErrInvalidCredentials
	}

	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(usr)
}

func (svc *service) RequestPasswordReset(email string) error {
	usr, err := svc.repo.GetUserByEmail(core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	code, err := svc.otps.issue(usr.Email, PurposeForgotPassword, nil)
	if err != nil {
		return err
	}
	svc.sendOTPMail(usr.Name, usr.Email, code)
	return nil
}

func (svc *service) RequestPasswordChange(usr User) error {
	code, err := svc.otps.issue(usr.Email, PurposeChangePassword, nil)
	if err != nil {
		return err
	}
	svc.sendOTPMail(usr.Name, usr.Email, code)
	return nil
}

// VerifyOTP confirms a password-purpose code, arming a single ResetPassword.
func (svc *service) VerifyOTP(email, purpose, code string) error {
	email = core.CleanString(email, true /* lower */)
	if _, err := svc.otps.verify(email, purpose, code); err != nil {
		return err
	}
	svc.otps.confirm(email, purpose)
	return nil
}

func (svc *service) ResetPassword(rp ResetPassword) (User, error) {
	if err := rp.Validate(svc.validate); err != nil {
		return User{}, err
	}
	if !svc.otps.takeConfirmed(rp.Email) {
		return User{}, ErrOTPNotVerified
	}

	usr, err := svc.repo.GetUserByEmail(rp.Email)
	if err != nil {
		return User{}, err
	}
	if err = usr.SetPassword(rp.Password); err != nil {
		return User{}, err
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(usr)
}

func (svc *service) QueryAll() ([]User, error) {
	return svc.repo.QueryAllUsers()
}

func (svc *service) GetByID(id string) (User, error) {
	return svc.repo.GetUserByID(id)
}

func (svc *service) GetByEmail(email string) (User, error) {
	return svc.repo.GetUserByEmail(core.CleanString(email, true /* lower */))
}

// Delete removes an account for good. Owner accounts are provisioned and
// removed through the admin CLI only.
func (svc *service) Delete(id string) error {
	usr, err := svc.repo.GetUserByID(id)
	if err != nil {
		return err
	}
	if usr.IsOwner() {
		return core.NewValidationError(errors.New("owner accounts cannot be deleted here"))
	}
	return svc.repo.DeleteUser(id)
}

// UpdateProfile reconciles a profile draft into the stored user.
func (svc *service) UpdateProfile(id string, up UpdateProfile) (User, error) {
	if err := up.Validate(svc.validate); err != nil {
		return User{}, err
	}
	usr, err := svc.repo.GetUserByID(id)
	if err != nil {
		return User{}, err
	}
	return svc.repo.UpdateUser(up.Apply(usr))
}

type otpMailData struct {
	Name    string
	Code    string
	Timeout string
}

func (svc *service) sendOTPMail(name, email, code string) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: name, Address: email}},
		Subject:      "Your verification code",
		TemplateName: "otp",
		TemplateData: otpMailData{
			Name:    name,
			Code:    code,
			Timeout: svc.conf.OTPTimeout.String(),
		},
	})
}
