package user

import (
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/plangrid/matcast/core"
)

const minPasswordLength = 8

var (
	allRolesTag  = "allroles"
	allRolesText = "{0} must contain valid roles"

	pwdMinLenTag    = "pwdminlen"
	pwdMinLenText   = "password must contain at least 8 characters"
	pwdNoSpaceTag   = "pwdnospace"
	pwdNoSpaceText  = "password may not contain any whitespace"
	pwdNotAllNumTag = "pwdnotallnum"
	pwdNotAllNumText = "password may not be entirely numeric"
)

// InitValidators registers user-related validation tags; must be called once
// at startup after core.InitValidators.
func InitValidators() error {
	if err := core.RegisterCustomValidation(allRolesTag, allRolesText, allRolesValidation); err != nil {
		return err
	}
	for tag, text := range map[string]string{
		pwdMinLenTag:    pwdMinLenText,
		pwdNoSpaceTag:   pwdNoSpaceText,
		pwdNotAllNumTag: pwdNotAllNumText,
	} {
		if err := core.RegisterCustomTranslation(tag, text); err != nil {
			return err
		}
	}
	core.Validate.RegisterStructValidation(newUserStructValidation, NewUser{})
	core.Validate.RegisterStructValidation(updateUserStructValidation, UpdateUser{})
	core.Validate.RegisterStructValidation(resetPasswordStructValidation, ResetUserPassword{})
	return nil
}

func allRolesValidation(fl validator.FieldLevel) bool {
	roles, ok := fl.Field().Interface().([]string)
	if !ok {
		return false
	}
	for _, role := range roles {
		if RolePriority(role) == 0 {
			return false
		}
	}
	return true
}

func newUserStructValidation(sl validator.StructLevel) {
	nu := sl.Current().Interface().(NewUser)
	validatePassword(sl, nu.Password)
}

func updateUserStructValidation(sl validator.StructLevel) {
	uu := sl.Current().Interface().(UpdateUser)
	if uu.Password != "" {
		validatePassword(sl, uu.Password)
	}
}

func resetPasswordStructValidation(sl validator.StructLevel) {
	rp := sl.Current().Interface().(ResetUserPassword)
	validatePassword(sl, rp.Password)
}

func validatePassword(sl validator.StructLevel, pwd string) {
	if len(pwd) < minPasswordLength {
		sl.ReportError(pwd, "password", "Password", pwdMinLenTag, "")
	}

	allNum := true
	for _, r := range pwd {
		if unicode.IsSpace(r) {
			sl.ReportError(pwd, "password", "Password", pwdNoSpaceTag, "")
			break
		}
	}
	for _, r := range pwd {
		if !unicode.IsDigit(r) {
			allNum = false
			break
		}
	}
	if len(pwd) > 0 && allNum {
		sl.ReportError(pwd, "password", "Password", pwdNotAllNumTag, "")
	}
}
