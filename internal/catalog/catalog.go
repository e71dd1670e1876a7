// Package catalog holds the static audit domains and questions.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"legalflow/internal/model"
)

//go:embed catalog.yaml
var defaultYAML []byte

var ErrInvalidCatalog = errors.New("invalid catalog")

// Catalog is an immutable index of domains and questions.
type Catalog struct {
	domains []model.Domain
	byID    map[string]int
	qByID   map[string]map[string]model.Question
}

type document struct {
	Domains []model.Domain `yaml:"domains"`
}

// Default returns the embedded catalog. It panics if the embedded file is invalid.
func Default() *Catalog {
	c, err := Load(defaultYAML)
	if err != nil {
		panic(err)
	}
	return c
}

// Load parses and validates a catalog document.
func Load(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if len(doc.Domains) == 0 {
		return nil, fmt.Errorf("%w: no domains", ErrInvalidCatalog)
	}

	c := &Catalog{
		domains: doc.Domains,
		byID:    make(map[string]int, len(doc.Domains)),
		qByID:   make(map[string]map[string]model.Question, len(doc.Domains)),
	}
	for i := range c.domains {
		d := &c.domains[i]
		if d.ID == "" {
			return nil, fmt.Errorf("%w: domain %d has no id", ErrInvalidCatalog, i)
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate domain %q", ErrInvalidCatalog, d.ID)
		}
		if d.MaxPoints <= 0 {
			return nil, fmt.Errorf("%w: domain %q has non-positive maxPoints", ErrInvalidCatalog, d.ID)
		}
		c.byID[d.ID] = i

		questions := make(map[string]model.Question, len(d.Questions))
		sum := 0
		for j := range d.Questions {
			q := &d.Questions[j]
			q.DomainID = d.ID
			if q.ID == "" {
				return nil, fmt.Errorf("%w: question %d of %q has no id", ErrInvalidCatalog, j, d.ID)
			}
			if _, dup := questions[q.ID]; dup {
				return nil, fmt.Errorf("%w: duplicate question %q in %q", ErrInvalidCatalog, q.ID, d.ID)
			}
			if q.Points <= 0 {
				return nil, fmt.Errorf("%w: question %q in %q has non-positive points", ErrInvalidCatalog, q.ID, d.ID)
			}
			sum += q.Points
			questions[q.ID] = *q
		}
		if sum > d.MaxPoints {
			return nil, fmt.Errorf("%w: questions of %q total %d points, max is %d", ErrInvalidCatalog, d.ID, sum, d.MaxPoints)
		}
		c.qByID[d.ID] = questions
	}
	return c, nil
}

// Domains returns all domains in catalog order.
func (c *Catalog) Domains() []model.Domain {
	out := make([]model.Domain, len(c.domains))
	copy(out, c.domains)
	return out
}

// Domain looks up a domain by id.
func (c *Catalog) Domain(id string) (model.Domain, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Domain{}, false
	}
	return c.domains[i], true
}

// Question looks up a question within a domain.
func (c *Catalog) Question(domainID, questionID string) (model.Question, bool) {
	q, ok := c.qByID[domainID][questionID]
	return q, ok
}

// MaxTotal is the sum of all domain maxima.
func (c *Catalog) MaxTotal() int {
	total := 0
	for _, d := range c.domains {
		total += d.MaxPoints
	}
	return total
}
