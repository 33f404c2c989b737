package zoom

// scheduledMeetingType is Zoom's "scheduled" meeting type.
const scheduledMeetingType = 2

type createMeetingRequest struct {
	Topic     string `json:"topic"`
	Type      int    `json:"type"`
	StartTime string `json:"start_time"`
	Duration  int    `json:"duration"`
	Timezone  string `json:"timezone,omitempty"`
}

type meetingResponse struct {
	ID      int64  `json:"id"`
	JoinURL string `json:"join_url"`
}
