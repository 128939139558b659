package model

// OptionList is a named list of selectable strings shown on the intake form.
type OptionList struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}
