package amqp

import (
	"encoding/json"
	"time"
)

// ReportExportMessage asks the export worker to build a travel expense
// report for a date range. The worker loads trips and expenses itself,
// so the message stays small.
type ReportExportMessage struct {
	ExportID   string    `json:"export_id"`
	RangeStart time.Time `json:"range_start"`
	RangeEnd   time.Time `json:"range_end"`
	EmailTo    string    `json:"email_to,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewReportExportMessage(exportID string, rangeStart, rangeEnd time.Time, emailTo string) *ReportExportMessage {
	return &ReportExportMessage{
		ExportID:   exportID,
		RangeStart: rangeStart,
		RangeEnd:   rangeEnd,
		EmailTo:    emailTo,
		Timestamp:  time.Now(),
	}
}

func (m *ReportExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ReportExportMessageFromJSON(data []byte) (*ReportExportMessage, error) {
	var msg ReportExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
