package userservice

import (
	"regexp"

	"github.com/sushihentaime/quill/internal/common"
)

var (
	EmailRX = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

func validateName(v *common.Validator, name string) {
	v.Check(common.NotBlank(name), "name", common.MsgEmptyField)
}

func validateEmail(v *common.Validator, email string) {
	v.Check(email != "", "email", common.MsgRequired)
	v.Check(common.Matches(email, EmailRX), "email", common.MsgInvalidEmail)
}

func ValidateCreateUser(v *common.Validator, req CreateUserRequest) {
	validateName(v, req.Name)
	validateEmail(v, req.Email)
}

func ValidateUpdateUser(v *common.Validator, req UpdateUserRequest) {
	if req.Name != nil {
		validateName(v, *req.Name)
	}
	if req.Email != nil {
		v.Check(common.Matches(*req.Email, EmailRX), "email", common.MsgInvalidEmail)
	}
}

func ValidateListUsers(v *common.Validator, q ListUsersQuery) {
	if q.Limit != nil {
		v.Check(*q.Limit >= 0, "limit", common.MsgNotNegative)
	}
	if q.Offset != nil {
		v.Check(*q.Offset >= 0, "offset", common.MsgNotNegative)
	}
}
