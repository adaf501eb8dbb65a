package constants

// RecordStatus is the canonical status for rows in chart_records.
type RecordStatus string

// Stable values (store these exact strings in DB).
const (
	RecordStatusValidated RecordStatus = "VALIDATED" // parsed, no validation errors
	RecordStatusInvalid   RecordStatus = "INVALID"   // parsed, validation errors present
	RecordStatusFailed    RecordStatus = "FAILED"    // text could not be obtained
)

// OCR engines understood by the text source.
const (
	OCREngineTesseract = "tesseract"
)
