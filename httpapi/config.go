package httpapi

// Config defines HTTP API and UI settings.
type Config struct {
	Addr            string
	SessionCookie   string
	SessionTTLHours int
	BaseURL         string
	BasePath        string
	HubHistory      int
	// SessionsPath persists browser sessions across restarts when set.
	SessionsPath string
}
