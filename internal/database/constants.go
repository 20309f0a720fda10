package database

// Event kinds
const (
	EventRegister = "register"
	EventLogin    = "login"
	EventLogout   = "logout"
)

// Event outcomes
const (
	OutcomeSuccess         = "success"
	OutcomeNoMatch         = "no_match"
	OutcomeNoFace          = "no_face"
	OutcomeNotRegistered   = "not_registered"
	OutcomeCameraNotReady  = "camera_not_ready"
	OutcomeModelsNotLoaded = "models_not_loaded"
	OutcomeError           = "error"
)

// DefaultRecentEvents is how many events list commands show by default.
const DefaultRecentEvents = 20
