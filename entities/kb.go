package entities

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type SpreadRate string

const (
	SpreadSlow     SpreadRate = "slow"
	SpreadModerate SpreadRate = "moderate"
	SpreadFast     SpreadRate = "fast"
)

// HealthyName is the catalog name of every crop's non-disease entry.
const HealthyName = "Healthy"

type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type DiseaseInfo struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	ScientificName string     `json:"scientificName"`
	Crop           string     `json:"crop"`
	Symptoms       []string   `json:"symptoms"`
	Causes         []string   `json:"causes"`
	Treatment      []string   `json:"treatment"`
	Prevention     []string   `json:"prevention"`
	Severity       Severity   `json:"severity"`
	SpreadRate     SpreadRate `json:"spreadRate"`
	AffectedParts  []string   `json:"affectedParts"`
	FAQs           []FAQ      `json:"faqs"`
}

type CropInfo struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	ScientificName string        `json:"scientificName"`
	Diseases       []DiseaseInfo `json:"diseases"`
}
