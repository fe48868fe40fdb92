package notification

// Kind selects the template a notification is rendered with.
type Kind string

const (
	KindLeaveRequestSubmitted   Kind = "leave_request_submitted"
	KindLeaveRequestReviewed    Kind = "leave_request_reviewed"
	KindOvertimeReasonSubmitted Kind = "overtime_reason_submitted"
	KindOvertimeReviewed        Kind = "overtime_reviewed"
)

// AllKinds returns all available notification kinds
func AllKinds() []Kind {
	return []Kind{
		KindLeaveRequestSubmitted,
		KindLeaveRequestReviewed,
		KindOvertimeReasonSubmitted,
		KindOvertimeReviewed,
	}
}

// Subject is the human readable title used by email backends.
func (k Kind) Subject() string {
	switch k {
	case KindLeaveRequestSubmitted:
		return "New leave request"
	case KindLeaveRequestReviewed:
		return "Your leave request was reviewed"
	case KindOvertimeReasonSubmitted:
		return "New overtime/undertime reason"
	case KindOvertimeReviewed:
		return "Your overtime/undertime record was reviewed"
	default:
		return "Notification"
	}
}

type Recipient struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// Payload is the template data of a notification.
type Payload map[string]interface{}

func (k Kind) IsValid() bool {
	for _, known := range AllKinds() {
		if k == known {
			return true
		}
	}
	return false
}
