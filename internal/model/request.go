package model

// CreativeRequest is the payload of the creative-request intake form.
type CreativeRequest struct {
	Email                    string   `json:"email"`
	TaskName                 string   `json:"taskName"`
	Client                   string   `json:"client"`
	CreativeType             string   `json:"creativeType"`
	Briefing                 string   `json:"briefing"`
	Location                 string   `json:"location"`
	Product                  string   `json:"product"`
	CommercialTriggers       string   `json:"commercialTriggers"`
	CompetitiveDifferentials []string `json:"competitiveDifferentials"`
	Triggers                 []string `json:"triggers"`
	Intention                string   `json:"intention"`
	ToneOfVoice              string   `json:"toneOfVoice"`
	AwarenessLevel           string   `json:"awarenessLevel"`
	CTA                      string   `json:"cta"`
	StartDate                string   `json:"startDate"`
	References               string   `json:"references"`
}

// RequiredFields returns the JSON names of required fields that are empty.
func (r CreativeRequest) RequiredFields() []string {
	var missing []string
	check := func(name, v string) {
		if v == "" {
			missing = append(missing, name)
		}
	}
	check("email", r.Email)
	check("taskName", r.TaskName)
	check("client", r.Client)
	check("creativeType", r.CreativeType)
	check("briefing", r.Briefing)
	check("intention", r.Intention)
	check("toneOfVoice", r.ToneOfVoice)
	check("awarenessLevel", r.AwarenessLevel)
	check("cta", r.CTA)
	check("startDate", r.StartDate)
	return missing
}
