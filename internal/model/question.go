package model

// Domain is one audit section of the assessment.
type Domain struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Icon        string     `json:"icon,omitempty" yaml:"icon"`
	MaxPoints   int        `json:"maxPoints" yaml:"maxPoints"`
	Questions   []Question `json:"questions" yaml:"questions"`
}

// Question is a static yes/no audit question. A "yes" earns Points.
type Question struct {
	DomainID string `json:"domainId" yaml:"-"`
	ID       string `json:"id" yaml:"id"`
	Text     string `json:"text" yaml:"text"`
	Points   int    `json:"points" yaml:"points"`
	Zone     string `json:"zone,omitempty" yaml:"zone"`
}
