package http

var (
	Failed                        = failed(500, "Request failed")
	RequestParameterParsingFailed = failed(5001, "Request parameter parsing failed")
	InternalError                 = failed(5000, "Internal error, please contact the administrator")

	// Unauthorized 401
	Unauthorized         = failed(4401, "Unauthorized")
	AuthenticationFailed = failed(4402, "Authentication failed")
	AuthorizationEmpty   = failed(4404, "Authorization is empty")
	InvalidToken         = failed(4405, "Invalid token")
	TokenBeEmpty         = failed(4406, "Token cannot be empty")
	TokenExpired         = failed(4407, "Token is expired")

	// BadRequest 400
	BadRequest = failed(4000, "Bad request")
	NotFound   = failed(4004, "Not found")

	// Forbidden 403
	Forbidden        = failed(4030, "Forbidden")
	PermissionDenied = failed(4031, "Permission denied")

	HouseholdIdIsEmpty    = failed(5002, "Household id is empty")
	HouseholdNotExist     = failed(4041, "Household does not exist")
	InviteNotExist        = failed(4043, "Invite does not exist")
	InviteAlreadyAnswered = failed(4044, "Invite already answered")
	ContactNotExist       = failed(4045, "Contact does not exist")
	CircleNotExist        = failed(4046, "Circle does not exist")
	InvalidStatusState    = failed(4047, "Invalid status state")
	InvalidOtpCode        = failed(4048, "Invalid or expired code")
	PhoneIsRequired       = failed(4049, "Phone number is required")
)

var (
	Success = success(200, "Request Success")
)

func failed(code int, msg string) *Response {
	return &Response{
		Code:   code,
		Msg:    msg,
		Detail: nil,
	}
}

func success(code int, msg string) *Response {
	return &Response{
		Code:   code,
		Msg:    msg,
		Detail: nil,
	}
}
