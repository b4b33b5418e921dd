package app

import "time"

// Constants
const (
	ProfileCookie       = "advent_profile"
	ProfileCookieMaxAge = 400 * 24 * time.Hour

	// Error messages
	ErrInvalidDay           = "Invalid day"
	ErrInvalidFormat        = "Invalid format"
	ErrInternalServer       = "Internal server error"
	ErrFailedToSave         = "Failed to save opened windows"
	ErrFailedToGenerateJSON = "Failed to generate JSON"
	ErrRateLimited          = "Too many requests"
	ErrSnowDisabled         = "Snow is disabled"

	// Mount points of the host document
	MountGrid    = "grid"
	MountOverlay = "overlay"
	MountNotice  = "notice"
	MountSnow    = "snow"

	// ICS constants
	ICSProductID = "-//Advent//Adventskalender//EN"
	ICSDomain    = "adventskalender.local"

	// URL prefix photos are served under
	AssetsPrefix = "/assets/"
)

// Mounts lists every mount point the host document may place
var Mounts = []string{MountGrid, MountOverlay, MountNotice, MountSnow}
