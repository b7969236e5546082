package domain

import "time"

// CompanySize buckets the requester's headcount.
type CompanySize string

const (
	CompanySize1To10    CompanySize = "1-10"
	CompanySize11To50   CompanySize = "11-50"
	CompanySize51To200  CompanySize = "51-200"
	CompanySize201To500 CompanySize = "201-500"
	CompanySize500Plus  CompanySize = "500+"
)

var CompanySizes = []CompanySize{
	CompanySize1To10,
	CompanySize11To50,
	CompanySize51To200,
	CompanySize201To500,
	CompanySize500Plus,
}

// PrimaryInterest is the offering a demo is requested for.
type PrimaryInterest string

const (
	InterestITSupport        PrimaryInterest = "it-support"
	InterestCybersecurity    PrimaryInterest = "cybersecurity"
	InterestServerManagement PrimaryInterest = "server-management"
	InterestCloudSolutions   PrimaryInterest = "cloud-solutions"
	InterestCompletePlatform PrimaryInterest = "complete-platform"
)

var PrimaryInterests = []PrimaryInterest{
	InterestITSupport,
	InterestCybersecurity,
	InterestServerManagement,
	InterestCloudSolutions,
	InterestCompletePlatform,
}

// PreferredTime is the requester's preferred slot for the demo call.
type PreferredTime string

const (
	PreferredMorning   PreferredTime = "morning"
	PreferredAfternoon PreferredTime = "afternoon"
	PreferredEvening   PreferredTime = "evening"
	PreferredFlexible  PreferredTime = "flexible"
)

var PreferredTimes = []PreferredTime{
	PreferredMorning,
	PreferredAfternoon,
	PreferredEvening,
	PreferredFlexible,
}

// DemoRequestStatus tracks sales follow-up. Only "new" is written by this service.
type DemoRequestStatus string

const (
	DemoRequestStatusNew       DemoRequestStatus = "new"
	DemoRequestStatusContacted DemoRequestStatus = "contacted"
	DemoRequestStatusScheduled DemoRequestStatus = "scheduled"
	DemoRequestStatusCompleted DemoRequestStatus = "completed"
)

// DemoRequest is a write-only sales intake record.
type DemoRequest struct {
	ID                string
	Name              string
	Email             string
	Company           string
	Phone             string
	CompanySize       CompanySize
	PrimaryInterest   PrimaryInterest
	CurrentChallenges string
	PreferredTime     PreferredTime
	Status            DemoRequestStatus
	CreatedAt         time.Time
}
