package sshserver

// Config defines SSH server settings.
type Config struct {
	Addr               string
	HostKeyPath        string
	AuthorizedKeysPath string
	Prompt             string
	Theme              string
	// FileRoot holds one directory per user for console open and save.
	FileRoot string
}
