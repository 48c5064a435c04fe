package dto

// WhoAmIResponse mirrors the historical whoAmI wire contract: the decoded
// claims spread next to an ok flag. It intentionally bypasses the standard
// APIResponse envelope.
type WhoAmIResponse struct {
	Ok             bool   `json:"ok"`
	Account        string `json:"cmuitaccount"`
	AccountName    string `json:"cmuitaccount_name"`
	FirstnameEN    string `json:"firstname_EN"`
	LastnameEN     string `json:"lastname_EN"`
	StudentID      string `json:"student_id"`
	OrganizationEN string `json:"organization_name_EN"`
	AccountTypeID  string `json:"itaccounttype_id"`
	AccountTypeEN  string `json:"itaccounttype_EN"`
	Role           string `json:"role"`
}

// SessionErrorResponse is the failure shape of the whoAmI endpoint family.
type SessionErrorResponse struct {
	Ok      bool   `json:"ok"`
	Message string `json:"message"`
}

// SignInRequest exchanges an OAuth authorization code for a session cookie.
type SignInRequest struct {
	AuthorizationCode string `json:"authorizationCode" validate:"required"`
}

// FrontendConfigResponse exposes the values the landing page needs to start
// the OAuth redirect.
type FrontendConfigResponse struct {
	OAuthRedirectURL string `json:"oauthRedirectUrl"`
}
