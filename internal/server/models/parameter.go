package models

// Parameter keys understood by the signup server.
const (
	ParamBaseURL           = "web.base.url"
	ParamAllowUninvited    = "auth_signup.allow_uninvited"
	ParamTemplateAccountID = "auth_signup.template_user_id"
)

// Parameter is a process-wide key/value configuration entry.
type Parameter struct {
	Key   string
	Value string
}
