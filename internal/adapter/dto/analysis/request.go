package analysis

// AnalyzeRequest holds the form fields of POST /analyze. The file part is
// read separately.
type AnalyzeRequest struct {
	ScopeText    string `form:"scopeText"`
	MeetingID    string `form:"meetingId" validate:"omitempty,uuid"`
	MeetingTitle string `form:"meetingTitle" validate:"max=255"`
}

// UploadTranscriptRequest holds the fields of PUT /v1/meetings/:id/transcript
type UploadTranscriptRequest struct {
	MeetingID string `param:"id" validate:"required,uuid"`
	Text      string `form:"text" json:"text"`
	Force     bool   `query:"force"` // read from the query string by the handler
}
