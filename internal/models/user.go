package models

const (
	AdminRole   = "admin"
	MentorRole  = "mentor"
	LearnerRole = "learner"
)
