package serviceImp

import (
	"fmt"
	"strings"

	"cropdoc/entities"
	"cropdoc/pkg/kb/repository"
	"cropdoc/pkg/kb/service"
)

type Svc struct {
	crops  []entities.CropInfo
	byCrop map[string]int
	ref    string
}

// New indexes the catalog. Results share backing arrays with the catalog
// and must be treated as read-only.
func New(r repository.KBRepository) service.KBService {
	crops := r.Crops()
	s := &Svc{crops: crops, byCrop: make(map[string]int, len(crops))}
	for i, c := range crops {
		s.byCrop[c.ID] = i
	}
	s.ref = renderReference(crops)
	return s
}

func normID(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (s *Svc) Crops() []entities.CropInfo { return s.crops }

func (s *Svc) Crop(cropID string) (*entities.CropInfo, bool) {
	i, ok := s.byCrop[normID(cropID)]
	if !ok {
		return nil, false
	}
	return &s.crops[i], true
}

func (s *Svc) FindDiseaseByID(diseaseID string) (*entities.DiseaseInfo, bool) {
	id := normID(diseaseID)
	for ci := range s.crops {
		for di := range s.crops[ci].Diseases {
			if s.crops[ci].Diseases[di].ID == id {
				return &s.crops[ci].Diseases[di], true
			}
		}
	}
	return nil, false
}

// FindDiseaseByCropAndName matches loosely: either name may contain the
// other, case-insensitively. The first catalog entry that matches wins.
func (s *Svc) FindDiseaseByCropAndName(cropID, name string) (*entities.DiseaseInfo, bool) {
	c, ok := s.Crop(cropID)
	q := strings.ToLower(strings.TrimSpace(name))
	if !ok || q == "" {
		return nil, false
	}
	for i := range c.Diseases {
		n := strings.ToLower(c.Diseases[i].Name)
		if strings.Contains(n, q) || strings.Contains(q, n) {
			return &c.Diseases[i], true
		}
	}
	return nil, false
}

func (s *Svc) CropDiseases(cropID string) []entities.DiseaseInfo {
	if c, ok := s.Crop(cropID); ok {
		return c.Diseases
	}
	return nil
}

func (s *Svc) AllDiseases() []entities.DiseaseInfo {
	var out []entities.DiseaseInfo
	for _, c := range s.crops {
		out = append(out, c.Diseases...)
	}
	return out
}

// Search matches the keyword against name, symptoms and scientific name.
func (s *Svc) Search(query string) []entities.DiseaseInfo {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []entities.DiseaseInfo
	for _, c := range s.crops {
		for _, d := range c.Diseases {
			if matches(d, q) {
				out = append(out, d)
			}
		}
	}
	return out
}

func matches(d entities.DiseaseInfo, q string) bool {
	if strings.Contains(strings.ToLower(d.Name), q) || strings.Contains(strings.ToLower(d.ScientificName), q) {
		return true
	}
	for _, sym := range d.Symptoms {
		if strings.Contains(strings.ToLower(sym), q) {
			return true
		}
	}
	return false
}

func (s *Svc) DiseaseNames(cropID string) []string {
	ds := s.CropDiseases(cropID)
	if ds == nil {
		return nil
	}
	names := make([]string, 0, len(ds))
	for _, d := range ds {
		names = append(names, d.Name)
	}
	return names
}

func (s *Svc) ReferenceText() string { return s.ref }

func renderReference(crops []entities.CropInfo) string {
	var b strings.Builder
	for _, c := range crops {
		fmt.Fprintf(&b, "## %s (%s)\n", c.Name, c.ScientificName)
		for _, d := range c.Diseases {
			if d.Name == entities.HealthyName {
				continue
			}
			fmt.Fprintf(&b, "- %s (%s), severity %s, spread %s\n", d.Name, d.ScientificName, d.Severity, d.SpreadRate)
			fmt.Fprintf(&b, "  Symptoms: %s\n", strings.Join(d.Symptoms, "; "))
			fmt.Fprintf(&b, "  Treatment: %s\n", strings.Join(d.Treatment, "; "))
			fmt.Fprintf(&b, "  Prevention: %s\n", strings.Join(d.Prevention, "; "))
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}
