package model

// RequestOtpReq one-time-code request body
type RequestOtpReq struct {
	Phone string `json:"phone"`
}

// VerifyOtpReq one-time-code login body
type VerifyOtpReq struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// RegisterReq household registration body; verified by OTP like login
type RegisterReq struct {
	Phone         string `json:"phone"`
	Code          string `json:"code"`
	DisplayName   string `json:"displayName"`
	HouseholdName string `json:"householdName"`
}

// LoginRep token pair returned after a successful verification
type LoginRep struct {
	HouseholdId  string `json:"householdId"`
	MemberId     string `json:"memberId"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
