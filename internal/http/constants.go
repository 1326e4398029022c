package httpx

// Cookie and header names used by the console.
const (
	DefaultAccessTokenCookie = "accessToken"
	TabCookie                = "console_tab"
	TabHeader                = "X-Console-Tab"
)

// Page identifiers used by templates.
const (
	PageLogin     = "login"
	PageDashboard = "dashboard"
	PageProfile   = "profile"
	PageSection   = "section"
	PageError     = "error"
)
