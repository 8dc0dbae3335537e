package paths

import (
	"fmt"
	"path/filepath"
)

const (
	CookieFile     = "plugin_cookies.txt"
	BrowserProfile = "browser_profile"
	CacheDir       = "cache"
)

// CookieArtifacts match files that hold cookies, relative to a profile
var CookieArtifacts = []string{
	CookieFile,
	BrowserProfile + "/cookies",
	BrowserProfile + "/cookies-journal",
}

// CacheArtifacts match files that hold cached content, relative to a profile
var CacheArtifacts = []string{
	CacheDir + "/**",
	BrowserProfile + "/cache/**",
}

// Profile is one profile directory
type Profile struct {
	Root string
}

// At returns the profile rooted at dir
func At(dir string) Profile {
	return Profile{Root: dir}
}

// Account returns the profile of an account under base
func Account(base, name string) (Profile, error) {
	if err := ValidateAccountName(name); err != nil {
		return Profile{}, err
	}
	return Profile{Root: filepath.Join(base, name)}, nil
}

// CookieFile returns the cookie snapshot path
func (p Profile) CookieFile() string {
	return filepath.Join(p.Root, CookieFile)
}

// BrowserProfile returns the renderer user data directory
func (p Profile) BrowserProfile() string {
	return filepath.Join(p.Root, BrowserProfile)
}

// CacheDir returns the media cache directory
func (p Profile) CacheDir() string {
	return filepath.Join(p.Root, CacheDir)
}

// ValidateAccountName checks that name is a single path element
func ValidateAccountName(name string) error {
	if name == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if filepath.IsAbs(name) {
		return fmt.Errorf("account name cannot be an absolute path")
	}
	if filepath.Clean(name) != name || filepath.Base(name) != name || name == ".." || name == "." {
		return fmt.Errorf("account name contains invalid path components")
	}
	return nil
}
