// Package triage turns a free-text patient complaint into a structured
// emergency assessment: severity, emergency type, extracted entities and
// care recommendations. A remote classifier may be consulted first; the
// keyword rule engine is the always-available fallback.
package triage

import (
	"regexp"
	"strings"

	"github.com/vishwas-droid/ai-healthcare-emergency/internal/emergency"
)

// highRiskPhrases trigger escalation and the risk-flag severity bonus.
var highRiskPhrases = []string{
	"chest pain",
	"shortness of breath",
	"loss of consciousness",
	"severe bleeding",
	"stroke symptoms",
	"not breathing",
	"seizure",
	"cyanosis",
	"slurred speech",
	"left arm weakness",
	"severe headache",
}

// typeKeywords maps emergency types to complaint keywords. Detection
// checks types in this fixed order; first match wins.
var typeKeywords = []struct {
	etype    emergency.Type
	keywords []string
}{
	{emergency.TypeCardiac, []string{"chest pain", "heart", "palpitations", "cardiac"}},
	{emergency.TypeNeuro, []string{"stroke", "seizure", "slurred speech", "weakness", "numbness"}},
	{emergency.TypeTrauma, []string{"accident", "bleeding", "fracture", "injury", "trauma"}},
	{emergency.TypeRespiratory, []string{"breath", "wheezing", "asthma", "respiratory", "oxygen"}},
	{emergency.TypeToxicology, []string{"poison", "overdose", "toxic", "chemical"}},
	{emergency.TypeObGyn, []string{"pregnant", "pregnancy", "labor", "bleeding"}},
	{emergency.TypePsych, []string{"self harm", "suicidal", "panic", "psych"}},
}

// specialtyByType maps an emergency type to the doctor specialty to seek.
var specialtyByType = map[emergency.Type]string{
	emergency.TypeCardiac:     "Cardiologist",
	emergency.TypeNeuro:       "Neurologist",
	emergency.TypeTrauma:      "Orthopedic",
	emergency.TypeRespiratory: "Pulmonologist",
	emergency.TypeToxicology:  "General Physician",
	emergency.TypeObGyn:       "Gynecologist",
	emergency.TypePsych:       "Psychiatrist",
	emergency.TypeOther:       "General Physician",
}

// hospitalTypeByType maps an emergency type to the hospital unit to seek.
var hospitalTypeByType = map[emergency.Type]string{
	emergency.TypeCardiac:     "Cardiac",
	emergency.TypeNeuro:       "Neuro",
	emergency.TypeTrauma:      "Trauma",
	emergency.TypeRespiratory: "Respiratory",
	emergency.TypeToxicology:  "General",
	emergency.TypeObGyn:       "General",
	emergency.TypePsych:       "General",
	emergency.TypeOther:       "General",
}

// Severity scoring rules.
const (
	baseSeverityScore   = 20
	criticalWordBonus   = 35
	suddenWordBonus     = 20
	riskFlagBonus       = 30
	criticalThreshold   = 85
	highThreshold       = 65
	moderateThreshold   = 40
	confidenceWithFlags = 0.72
	confidenceDefault   = 0.62
	maxSymptoms         = 8
)

var criticalWords = []string{"severe", "unconscious", "bleeding", "breathing", "stroke", "heart"}
var suddenWords = []string{"sudden", "intense", "unbearable", "collapse"}

var (
	symptomSplitRe = regexp.MustCompile(`[,;]`)
	durationRe     = regexp.MustCompile(`(\d+)\s*(minutes|minute|hours|hour|days|day|weeks|week)`)
	bpRe           = regexp.MustCompile(`(\d{2,3})\s*/\s*(\d{2,3})`)
	hrRe           = regexp.MustCompile(`hr\s*(\d{2,3})`)
	spo2Re         = regexp.MustCompile(`spo2\s*(\d{2,3})`)
)

var knownRiskFactors = []string{"diabetes", "hypertension", "smoker", "obese"}
var knownMedications = []string{"aspirin", "insulin", "metformin", "statin"}

// Vitals extracted from the complaint text; nil when not mentioned.
type Vitals struct {
	BP   *string `json:"bp"`
	HR   *string `json:"hr"`
	SpO2 *string `json:"spo2"`
}

// Entities are the structured findings extracted from the complaint.
type Entities struct {
	Symptoms    []string `json:"symptoms"`
	Duration    string   `json:"duration"`
	Vitals      Vitals   `json:"vitals"`
	RiskFactors []string `json:"risk_factors"`
	Medications []string `json:"medications"`
}

// Recommendation names the provider types to route the patient toward.
type Recommendation struct {
	DoctorSpecialty   string `json:"doctor_specialty"`
	AmbulancePriority string `json:"ambulance_priority"`
	HospitalType      string `json:"hospital_type"`
}

// Escalation reports whether a human should be alerted immediately.
type Escalation struct {
	Triggered bool   `json:"triggered"`
	Reason    string `json:"reason"`
}

// Result is a complete triage assessment.
type Result struct {
	Severity      emergency.Severity `json:"severity"`
	SeverityScore int                `json:"severity_score"`
	Type          emergency.Type     `json:"emergency_type"`
	Entities      Entities           `json:"entities"`
	Recommended   Recommendation     `json:"recommended"`
	RiskFlags     []string           `json:"risk_flags"`
	Escalation    Escalation         `json:"escalation"`
	Confidence    float64            `json:"confidence"`
}

func findRiskFlags(lowered string) []string {
	flags := []string{}
	for _, phrase := range highRiskPhrases {
		if strings.Contains(lowered, phrase) {
			flags = append(flags, phrase)
		}
	}
	return flags
}

func detectType(lowered string) emergency.Type {
	for _, entry := range typeKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lowered, kw) {
				return entry.etype
			}
		}
	}
	return emergency.TypeOther
}

func extractEntities(lowered string) Entities {
	symptoms := []string{}
	for _, part := range symptomSplitRe.Split(lowered, -1) {
		if s := strings.TrimSpace(part); s != "" {
			symptoms = append(symptoms, s)
		}
	}
	if len(symptoms) > maxSymptoms {
		symptoms = symptoms[:maxSymptoms]
	}

	duration := "unknown"
	if m := durationRe.FindString(lowered); m != "" {
		duration = m
	}

	var vitals Vitals
	if m := bpRe.FindStringSubmatch(lowered); m != nil {
		bp := m[1] + "/" + m[2]
		vitals.BP = &bp
	}
	if m := hrRe.FindStringSubmatch(lowered); m != nil {
		vitals.HR = &m[1]
	}
	if m := spo2Re.FindStringSubmatch(lowered); m != nil {
		vitals.SpO2 = &m[1]
	}

	riskFactors := []string{}
	for _, rf := range knownRiskFactors {
		if strings.Contains(lowered, rf) {
			riskFactors = append(riskFactors, rf)
		}
	}
	medications := []string{}
	for _, med := range knownMedications {
		if strings.Contains(lowered, med) {
			medications = append(medications, med)
		}
	}

	return Entities{
		Symptoms:    symptoms,
		Duration:    duration,
		Vitals:      vitals,
		RiskFactors: riskFactors,
		Medications: medications,
	}
}

func containsAny(lowered string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lowered, w) {
			return true
		}
	}
	return false
}

func scoreSeverity(lowered string, riskFlags []string) (emergency.Severity, int) {
	score := baseSeverityScore
	if containsAny(lowered, criticalWords) {
		score += criticalWordBonus
	}
	if containsAny(lowered, suddenWords) {
		score += suddenWordBonus
	}
	if len(riskFlags) > 0 {
		score += riskFlagBonus
	}
	if score > 100 {
		score = 100
	}

	switch {
	case score >= criticalThreshold:
		return emergency.SeverityCritical, score
	case score >= highThreshold:
		return emergency.SeverityHigh, score
	case score >= moderateThreshold:
		return emergency.SeverityModerate, score
	default:
		return emergency.SeverityLow, score
	}
}

func recommend(etype emergency.Type, severity emergency.Severity) Recommendation {
	priority := "NORMAL"
	switch severity {
	case emergency.SeverityCritical:
		priority = "CRITICAL"
	case emergency.SeverityHigh:
		priority = "HIGH"
	}
	return Recommendation{
		DoctorSpecialty:   specialtyByType[etype],
		AmbulancePriority: priority,
		HospitalType:      hospitalTypeByType[etype],
	}
}

// Evaluate runs the keyword rule engine over a complaint.
func Evaluate(text string) *Result {
	lowered := strings.ToLower(text)

	riskFlags := findRiskFlags(lowered)
	etype := detectType(lowered)
	severity, score := scoreSeverity(lowered, riskFlags)
	entities := extractEntities(lowered)

	escalation := Escalation{
		Triggered: len(riskFlags) > 0 || severity == emergency.SeverityHigh || severity == emergency.SeverityCritical,
		Reason:    "Severity threshold",
	}
	if len(riskFlags) > 0 {
		escalation.Reason = strings.Join(riskFlags, ", ")
	}

	confidence := confidenceDefault
	if len(riskFlags) > 0 {
		confidence = confidenceWithFlags
	}

	return &Result{
		Severity:      severity,
		SeverityScore: score,
		Type:          etype,
		Entities:      entities,
		Recommended:   recommend(etype, severity),
		RiskFlags:     riskFlags,
		Escalation:    escalation,
		Confidence:    confidence,
	}
}
