package repositoryImp

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"cropdoc/entities"
	"cropdoc/pkg/kb/repository"
)

//go:embed data/knowledge_base.json
var knowledgeBaseJSON []byte

type repo struct{ crops []entities.CropInfo }

// New loads the catalog compiled into the binary.
func New() (repository.KBRepository, error) { return NewFromJSON(knowledgeBaseJSON) }

// NewFromJSON parses and validates a catalog document.
func NewFromJSON(data []byte) (repository.KBRepository, error) {
	var doc struct {
		Crops []entities.CropInfo `json:"crops"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("kb: decode: %w", err)
	}
	if err := validate(doc.Crops); err != nil {
		return nil, err
	}
	return &repo{crops: doc.Crops}, nil
}

func (r *repo) Crops() []entities.CropInfo { return r.crops }

func validate(crops []entities.CropInfo) error {
	if len(crops) == 0 {
		return errors.New("kb: no crops defined")
	}
	var errs []error
	cropIDs := map[string]bool{}
	for _, c := range crops {
		if c.ID == "" {
			errs = append(errs, fmt.Errorf("kb: crop %q has empty id", c.Name))
			continue
		}
		if cropIDs[c.ID] {
			errs = append(errs, fmt.Errorf("kb: duplicate crop id %q", c.ID))
		}
		cropIDs[c.ID] = true

		diseaseIDs := map[string]bool{}
		healthy := 0
		for _, d := range c.Diseases {
			if d.ID == "" || diseaseIDs[d.ID] {
				errs = append(errs, fmt.Errorf("kb: crop %q: missing or duplicate disease id %q", c.ID, d.ID))
			}
			diseaseIDs[d.ID] = true
			if d.Crop != c.ID {
				errs = append(errs, fmt.Errorf("kb: disease %q owned by %q but listed under %q", d.ID, d.Crop, c.ID))
			}
			switch d.Severity {
			case entities.SeverityLow, entities.SeverityMedium, entities.SeverityHigh, entities.SeverityCritical:
			default:
				errs = append(errs, fmt.Errorf("kb: disease %q: bad severity %q", d.ID, d.Severity))
			}
			switch d.SpreadRate {
			case entities.SpreadSlow, entities.SpreadModerate, entities.SpreadFast:
			default:
				errs = append(errs, fmt.Errorf("kb: disease %q: bad spread rate %q", d.ID, d.SpreadRate))
			}
			if d.Name == entities.HealthyName {
				healthy++
				if len(d.Causes) > 0 || len(d.Treatment) > 0 || d.Severity != entities.SeverityLow {
					errs = append(errs, fmt.Errorf("kb: crop %q: healthy entry must have no causes/treatment and low severity", c.ID))
				}
			}
		}
		if healthy != 1 {
			errs = append(errs, fmt.Errorf("kb: crop %q has %d healthy entries, want 1", c.ID, healthy))
		}
	}
	return errors.Join(errs...)
}
