package services

// Policy is the signup configuration in force for a call.
type Policy struct {
	// TenantID identifies the data partition reported back to signed-up users.
	TenantID string
	// BaseURL is the public root used to build signup links.
	BaseURL string
	// AllowUninvited permits tokenless signups.
	AllowUninvited bool
	// TemplateAccountID points at the account cloned for every new signup.
	TemplateAccountID string
}

// PolicySource hands out the current policy. Services ask for it once per
// call, so a change made through ParameterService.SetParam applies to the
// next call.
type PolicySource interface {
	Current() Policy
}

// Current lets a fixed Policy serve as its own source.
func (p Policy) Current() Policy { return p }
