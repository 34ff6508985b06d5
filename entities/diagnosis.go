package entities

import "time"

// Caller-facing severities of a DiagnosisResult.
const (
	ResultLow      = "Low"
	ResultMedium   = "Medium"
	ResultHigh     = "High"
	ResultCritical = "Critical"
	ResultNA       = "N/A"
)

const (
	UndeterminedDisease = "Unable to determine"
	IrrelevantDisease   = "IRRELEVANT_IMAGE"
	IrrelevantReason    = "Please upload a clear image of a plant leaf."
)

type DiagnosisResult struct {
	Disease          string   `json:"disease"`
	Confidence       int      `json:"confidence"`
	Severity         string   `json:"severity"`
	Symptoms         []string `json:"symptoms"`
	Treatment        []string `json:"treatment"`
	Prevention       []string `json:"prevention"`
	IsIrrelevant     bool     `json:"isIrrelevant,omitempty"`
	IrrelevantReason string   `json:"irrelevantReason,omitempty"`
}

// DiagnosisRecord is one analysis kept in a user's diagnosis history.
type DiagnosisRecord struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	UserID       string    `gorm:"index;size:128" json:"userId"`
	CropType     string    `json:"cropType"`
	Disease      string    `json:"disease"`
	Confidence   int       `json:"confidence"`
	Severity     string    `json:"severity"`
	Symptoms     []string  `gorm:"serializer:json" json:"symptoms"`
	Treatment    []string  `gorm:"serializer:json" json:"treatment"`
	Prevention   []string  `gorm:"serializer:json" json:"prevention"`
	IsIrrelevant bool      `json:"isIrrelevant"`
	ImagePath    string    `json:"imagePath,omitempty"`
	CreatedAt    time.Time `gorm:"index" json:"createdAt"`
}
