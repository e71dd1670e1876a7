package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"legalflow/internal/catalog"
	"legalflow/internal/model"
)

// Facts is the locally known ground truth of one domain.
type Facts struct {
	DomainID   string
	DomainName string
	Questions  []model.QuestionStatus
	Score      int
	MaxScore   int
	Risks      []model.Risk
	Turns      []model.Turn
}

// Tally splits questions by their answer.
type Tally struct {
	No         []model.QuestionStatus
	Yes        []model.QuestionStatus
	Unanswered []model.QuestionStatus
}

func (f Facts) Tally() Tally {
	var t Tally
	for _, q := range f.Questions {
		switch {
		case q.Answer == nil:
			t.Unanswered = append(t.Unanswered, q)
		case *q.Answer:
			t.Yes = append(t.Yes, q)
		default:
			t.No = append(t.No, q)
		}
	}
	return t
}

// ScorePercent is round(100*score/max), or 0 without a max.
func (f Facts) ScorePercent() int {
	return catalog.Percent(f.Score, f.MaxScore)
}

// AllAnswered reports whether there is at least one question and none is unset.
func (f Facts) AllAnswered() bool {
	if len(f.Questions) == 0 {
		return false
	}
	for _, q := range f.Questions {
		if q.Answer == nil {
			return false
		}
	}
	return true
}

// UserActivity reports whether the user wrote or uploaded anything in the domain chat.
func (f Facts) UserActivity() bool {
	for _, t := range f.Turns {
		if t.Role == model.RoleUser && strings.TrimSpace(t.Content) != "" {
			return true
		}
	}
	return false
}

// Documents returns user turns long enough to be uploaded documents.
func (f Facts) Documents() []model.Turn {
	var docs []model.Turn
	for _, t := range f.Turns {
		if t.Role == model.RoleUser && len([]rune(t.Content)) > documentMinLength {
			docs = append(docs, t)
		}
	}
	return docs
}

const documentMinLength = 100

type hashInput struct {
	RiskIDs []string `json:"riskIds"`
	Turns   int      `json:"turns"`
	Answers []*bool  `json:"answers"`
}

// Hash identifies the inputs a rollup was computed from: the risk-id set,
// the number of turns and the answer vector.
func (f Facts) Hash() string {
	in := hashInput{Turns: len(f.Turns)}
	for _, r := range f.Risks {
		in.RiskIDs = append(in.RiskIDs, r.ID)
	}
	sort.Strings(in.RiskIDs)
	for _, q := range f.Questions {
		in.Answers = append(in.Answers, q.Answer)
	}
	data, _ := json.Marshal(in)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
