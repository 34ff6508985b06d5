package serviceImp

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"cropdoc/entities"
	"cropdoc/pkg/kb/service"
)

var fenceRX = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

// modelReply is the raw shape the gateway is asked to produce.
type modelReply struct {
	Disease      string   `json:"disease"`
	Confidence   *float64 `json:"confidence"`
	Severity     string   `json:"severity"`
	Symptoms     []string `json:"symptoms"`
	Treatment    []string `json:"treatment"`
	Prevention   []string `json:"prevention"`
	IsIrrelevant bool     `json:"isIrrelevant"`
}

// UnmarshalJSON also takes confidence as a quoted number ("85", "85%").
// A quoted value that is not a number reads as absent.
func (r *modelReply) UnmarshalJSON(b []byte) error {
	type plain modelReply
	aux := struct {
		*plain
		Confidence json.RawMessage `json:"confidence"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	r.Confidence = nil
	raw := strings.TrimSpace(string(aux.Confidence))
	if raw == "" || raw == "null" {
		return nil
	}
	var n float64
	if err := json.Unmarshal(aux.Confidence, &n); err == nil {
		r.Confidence = &n
		return nil
	}
	var str string
	if err := json.Unmarshal(aux.Confidence, &str); err != nil {
		return fmt.Errorf("confidence: unsupported value %s", raw)
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(str), "%")), 64); err == nil {
		r.Confidence = &v
	}
	return nil
}

func (r modelReply) irrelevant() bool {
	return r.IsIrrelevant || strings.EqualFold(strings.TrimSpace(r.Disease), entities.IrrelevantDisease)
}

// parseReply accepts a JSON object, optionally fenced. A reply that is not
// an object, or that names no disease while claiming relevance, is rejected.
func parseReply(text string) (modelReply, bool) {
	s := strings.TrimSpace(text)
	if m := fenceRX.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	if i, j := strings.IndexByte(s, '{'), strings.LastIndexByte(s, '}'); i >= 0 && j > i && !strings.HasPrefix(s, "[") {
		s = s[i : j+1]
	}

	var r modelReply
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		return modelReply{}, false
	}
	if !r.irrelevant() && strings.TrimSpace(r.Disease) == "" {
		return modelReply{}, false
	}
	return r, true
}

func irrelevantResult() entities.DiagnosisResult {
	return entities.DiagnosisResult{
		Disease:          entities.IrrelevantDisease,
		Confidence:       0,
		Severity:         entities.ResultNA,
		Symptoms:         []string{},
		Treatment:        []string{},
		Prevention:       []string{},
		IsIrrelevant:     true,
		IrrelevantReason: entities.IrrelevantReason,
	}
}

func fallbackResult() entities.DiagnosisResult {
	return entities.DiagnosisResult{
		Disease:    entities.UndeterminedDisease,
		Confidence: 75,
		Severity:   entities.ResultMedium,
		Symptoms:   []string{"Image quality may be insufficient", "Please upload a clearer image", "Ensure good lighting"},
		Treatment:  []string{"Upload a clearer image for better analysis", "Ensure the leaf is in focus", "Try taking the photo in natural daylight"},
		Prevention: []string{"Regular crop monitoring", "Maintain proper irrigation"},
	}
}

func normalize(kb service.KBService, crop string, r modelReply) entities.DiagnosisResult {
	if r.irrelevant() {
		return irrelevantResult()
	}

	res := entities.DiagnosisResult{
		Disease:    strings.TrimSpace(r.Disease),
		Symptoms:   cleanList(r.Symptoms),
		Treatment:  cleanList(r.Treatment),
		Prevention: cleanList(r.Prevention),
	}
	if d, ok := kb.FindDiseaseByCropAndName(crop, res.Disease); ok {
		res.Disease = d.Name
		if len(res.Symptoms) == 0 {
			res.Symptoms = cleanList(d.Symptoms)
		}
		if len(res.Treatment) == 0 {
			res.Treatment = cleanList(d.Treatment)
		}
		if len(res.Prevention) == 0 {
			res.Prevention = cleanList(d.Prevention)
		}
	}

	healthy := strings.EqualFold(res.Disease, entities.HealthyName)
	res.Severity = normalizeSeverity(r.Severity, healthy)
	res.Confidence = clampConfidence(r.Confidence)
	return res
}

func normalizeSeverity(s string, healthy bool) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return entities.ResultLow
	case "medium", "moderate":
		return entities.ResultMedium
	case "high", "severe":
		return entities.ResultHigh
	case "critical":
		return entities.ResultCritical
	}
	if healthy {
		return entities.ResultLow
	}
	return entities.ResultMedium
}

func clampConfidence(c *float64) int {
	if c == nil || math.IsNaN(*c) {
		return 70
	}
	v := *c
	// Some models answer with a 0-1 probability.
	if v > 0 && v <= 1 {
		v *= 100
	}
	n := int(math.Round(v))
	switch {
	case n < 70:
		return 70
	case n > 98:
		return 98
	}
	return n
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
