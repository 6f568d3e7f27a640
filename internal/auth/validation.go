// AngelaMos | 2026
// validation.go

package auth

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Errors accumulates every violated rule keyed by field name, each
// field holding an ordered list of human-readable messages. A request
// "fails" validation iff the map is non-empty; callers get the whole
// picture in one pass, never just the first violation.
type Errors map[string][]string

func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

func (e Errors) Fails() bool {
	return len(e) > 0
}

func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

const (
	maxNameLength     = 50
	maxAddressLength  = 255
	minPasswordLength = 8
	maxPasswordLength = 128
	maxExperienceYrs  = 50
	maxHourlyRate     = 1000
)

var (
	phonePattern     = regexp.MustCompile(`^[0-9 ()+\-]{10,20}$`)
	adminCodePattern = regexp.MustCompile(`^[a-zA-Z0-9]{6,50}$`)
)

var petTypes = map[string]struct{}{
	"dog":     {},
	"cat":     {},
	"bird":    {},
	"rabbit":  {},
	"fish":    {},
	"reptile": {},
	"other":   {},
}

var adminDepartments = map[string]struct{}{
	"adoptions":  {},
	"inventory":  {},
	"support":    {},
	"operations": {},
}

// commonPasswords is a small denylist of passwords that pass the
// character-class rules but are still trivially guessable.
var commonPasswords = map[string]struct{}{
	"password":    {},
	"password1":   {},
	"password123": {},
	"12345678":    {},
	"123456789":   {},
	"qwerty123":   {},
	"letmein123":  {},
	"admin123":    {},
	"welcome1":    {},
	"iloveyou1":   {},
}

// Validator enforces structural and strength rules on auth payloads.
// It is stateless: every Validate* call returns a fresh Errors value,
// so instances are safe for concurrent use.
type Validator struct {
	check          *validator.Validate
	blockedDomains map[string]struct{}
}

func NewValidator(blockedDomains []string) *Validator {
	blocked := make(map[string]struct{}, len(blockedDomains))
	for _, domain := range blockedDomains {
		blocked[strings.ToLower(domain)] = struct{}{}
	}

	return &Validator{
		check:          validator.New(validator.WithRequiredStructEnabled()),
		blockedDomains: blocked,
	}
}

func (v *Validator) ValidateRegistration(req RegisterRequest) Errors {
	errs := Errors{}

	v.validateEmail(errs, req.Email)

	validateName(errs, "first_name", req.FirstName)
	validateName(errs, "last_name", req.LastName)

	switch req.Role {
	case "":
		errs.Add("role", "role is required")
	case RoleCustomer, RoleAdmin:
	default:
		errs.Add("role", "role must be either customer or admin")
	}

	// Federated signups carry a google_id and no password.
	if req.GoogleID == "" {
		if req.Password == "" {
			errs.Add("password", "password is required")
		} else {
			validatePasswordStrength(errs, "password", req.Password)
		}
	}

	switch req.Role {
	case RoleCustomer:
		v.validateCustomerFields(errs, req)
	case RoleAdmin:
		v.validateAdminFields(errs, req)
	}

	return errs
}

func (v *Validator) ValidateLogin(req LoginRequest) Errors {
	errs := Errors{}

	if req.Email == "" {
		errs.Add("email", "email is required")
	} else if v.check.Var(req.Email, "email") != nil {
		errs.Add("email", "email must be a valid email address")
	}

	// Strength is deliberately not re-checked at login: existing
	// passwords that predate the current policy must keep working.
	if req.Password == "" {
		errs.Add("password", "password is required")
	}

	if req.Role != "" && req.Role != RoleCustomer && req.Role != RoleAdmin {
		errs.Add("role", "role must be either customer or admin")
	}

	return errs
}

func (v *Validator) ValidateProfileUpdate(req UpdateProfileRequest) Errors {
	errs := Errors{}

	if req.FirstName != nil {
		validateName(errs, "first_name", *req.FirstName)
	}
	if req.LastName != nil {
		validateName(errs, "last_name", *req.LastName)
	}
	if req.Phone != nil && *req.Phone != "" && !phonePattern.MatchString(*req.Phone) {
		errs.Add("phone", "phone must be 10-20 characters of digits, spaces, dashes, parentheses or plus signs")
	}
	if req.Address != nil && len(*req.Address) > maxAddressLength {
		errs.Add("address", fmt.Sprintf("address must be at most %d characters", maxAddressLength))
	}
	if req.ExperienceYears != nil {
		if *req.ExperienceYears < 0 || *req.ExperienceYears > maxExperienceYrs {
			errs.Add("experience_years", fmt.Sprintf("experience_years must be between 0 and %d", maxExperienceYrs))
		}
	}
	if req.HourlyRate != nil {
		if *req.HourlyRate < 0 || *req.HourlyRate > maxHourlyRate {
			errs.Add("hourly_rate", fmt.Sprintf("hourly_rate must be between 0 and %d", maxHourlyRate))
		}
	}

	return errs
}

func (v *Validator) ValidatePasswordChange(req ChangePasswordRequest) Errors {
	errs := Errors{}

	old := req.Old()
	if old == "" {
		errs.Add("old_password", "old_password is required")
	}

	if req.NewPassword == "" {
		errs.Add("new_password", "new_password is required")
	} else {
		validatePasswordStrength(errs, "new_password", req.NewPassword)
		if old != "" && req.NewPassword == old {
			errs.Add("new_password", "new_password must differ from old_password")
		}
	}

	if req.Confirmation != "" && req.Confirmation != req.NewPassword {
		errs.Add("new_password_confirmation", "new_password_confirmation does not match new_password")
	}

	return errs
}

func (v *Validator) validateEmail(errs Errors, email string) {
	if email == "" {
		errs.Add("email", "email is required")
		return
	}

	if v.check.Var(email, "email") != nil {
		errs.Add("email", "email must be a valid email address")
		return
	}

	at := strings.LastIndex(email, "@")
	domain := strings.ToLower(email[at+1:])

	if len(domain) < 3 {
		errs.Add("email", "email domain is too short")
	}

	if _, blocked := v.blockedDomains[domain]; blocked {
		errs.Add("email", "email domain is not allowed")
	}
}

func (v *Validator) validateCustomerFields(errs Errors, req RegisterRequest) {
	if req.Phone != "" && !phonePattern.MatchString(req.Phone) {
		errs.Add("phone", "phone must be 10-20 characters of digits, spaces, dashes, parentheses or plus signs")
	}

	if addr := req.LocationValue(); len(addr) > maxAddressLength {
		errs.Add("address", fmt.Sprintf("address must be at most %d characters", maxAddressLength))
	}

	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			errs.Add("date_of_birth", "date_of_birth must be in YYYY-MM-DD format")
		} else if dob.After(time.Now()) {
			errs.Add("date_of_birth", "date_of_birth cannot be in the future")
		}
	}

	for _, petType := range req.PreferredPetTypes {
		if _, ok := petTypes[petType]; !ok {
			errs.Add("preferred_pet_types", fmt.Sprintf("%q is not a recognized pet type", petType))
		}
	}
}

func (v *Validator) validateAdminFields(errs Errors, req RegisterRequest) {
	if req.AdminCode != "" && !adminCodePattern.MatchString(req.AdminCode) {
		errs.Add("admin_code", "admin_code must be 6-50 alphanumeric characters")
	}

	if req.Phone != "" && !phonePattern.MatchString(req.Phone) {
		errs.Add("phone", "phone must be 10-20 characters of digits, spaces, dashes, parentheses or plus signs")
	}

	if req.AdminDepartment != "" {
		if _, ok := adminDepartments[req.AdminDepartment]; !ok {
			errs.Add("admin_department", "admin_department is not a recognized department")
		}
	}
}

func validateName(errs Errors, field, value string) {
	if value == "" {
		errs.Add(field, field+" is required")
		return
	}
	if len(value) > maxNameLength {
		errs.Add(field, fmt.Sprintf("%s must be at most %d characters", field, maxNameLength))
	}
}

func validatePasswordStrength(errs Errors, field, password string) {
	if len(password) < minPasswordLength {
		errs.Add(field, fmt.Sprintf("%s must be at least %d characters", field, minPasswordLength))
	}
	if len(password) > maxPasswordLength {
		errs.Add(field, fmt.Sprintf("%s must be at most %d characters", field, maxPasswordLength))
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	if !hasLower {
		errs.Add(field, field+" must contain at least one lowercase letter")
	}
	if !hasUpper {
		errs.Add(field, field+" must contain at least one uppercase letter")
	}
	if !hasDigit {
		errs.Add(field, field+" must contain at least one digit")
	}
	if !hasSymbol {
		errs.Add(field, field+" must contain at least one special character")
	}

	if _, common := commonPasswords[strings.ToLower(password)]; common {
		errs.Add(field, field+" is too common")
	}
}
