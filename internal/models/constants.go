package models

// roles carried in the identity token
const (
	RoleRecruiter = "recruiter"
	RoleApplicant = "applicant"
)

// ValidRoles contains every accepted role claim
var ValidRoles = map[string]bool{
	RoleRecruiter: true,
	RoleApplicant: true,
}

// generation kinds, used for prompts and metrics labels
const (
	GenerationFirst    = "first_question"
	GenerationNext     = "next_question"
	GenerationRephrase = "rephrase"
)

// MaxAnswerLength bounds a single transcribed answer
const MaxAnswerLength = 20000

// MaxDescriptionLength bounds a job description sent for rephrasing
const MaxDescriptionLength = 10000
