package model

import "time"

// Answer is the persisted value of one question. A question with no Answer is unset,
// which is distinct from an explicit false.
type Answer struct {
	DomainID   string    `json:"domainId"`
	QuestionID string    `json:"questionId"`
	Value      bool      `json:"value"`
	AnsweredAt time.Time `json:"answeredAt"`
}

// AnswerRequest is the body of PUT /domains/{domain}/questions/{question}/answer
type AnswerRequest struct {
	Value bool `json:"value"`
}

// AnswerResponse reports the domain score after an answer change
type AnswerResponse struct {
	DomainID string `json:"domainId"`
	Score    int    `json:"score"`
	Max      int    `json:"max"`
	Zone     string `json:"zone"`
	Total    int    `json:"total"`
}

// QuestionStatus is a question joined with its tri-state answer.
// Answer is nil while the question is unanswered.
type QuestionStatus struct {
	Question
	Answer *bool `json:"answer"`
}

// DomainView is one domain with its answers, score and assistant state.
type DomainView struct {
	Domain
	Answers []QuestionStatus `json:"answers"`
	Score   int              `json:"score"`
	Zone    string           `json:"zone"`
	State   AvatarState      `json:"state"`
}
