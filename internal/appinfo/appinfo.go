// Package appinfo provides application identity constants.
// These are used across packages for consistent naming.
package appinfo

const (
	// AppName is the display name of the application.
	AppName = "MCStats Companion"

	// DirName is the directory name used for storing application data.
	// Location: %LOCALAPPDATA%/mcstats/ (Windows) or ~/.config/mcstats/ (other)
	DirName = "mcstats"

	// MutexName is the Windows mutex name for single instance control.
	// "Local\" prefix means the mutex is scoped to the current user session,
	// not system-wide. This is appropriate for desktop applications.
	MutexName = "Local\\mcstats-companion"

	// LockFileName is the lock file name for single instance control.
	LockFileName = "mcstats.lock"

	// ConfigFileName is the configuration file name.
	ConfigFileName = "config.json"

	// CacheFileName is the SQLite name cache file name.
	CacheFileName = "namecache.sqlite"
)
