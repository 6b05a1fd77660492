package constants

const (
	StatusOK = "ok"
)

// Merge request states, in lifecycle order.
const (
	StateReceived    = "received"
	StateProbing     = "probing"
	StatePlanning    = "planning"
	StateTranscoding = "transcoding"
	StateDelivering  = "delivering"
	StateCompleted   = "completed"
	StateFailed      = "failed"
)

// Upload roles, also the multipart field names.
const (
	RoleIntro = "intro"
	RoleMain  = "main"
)

const OutputContentType = "video/mp4"
