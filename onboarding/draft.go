package onboarding

import "github.com/firmaboard/firmaboard-go/api"

// Wizard steps. The flow is strictly linear: profile, then goal, then data
// connection.
const (
	StepProfile        = 1
	StepGoal           = 2
	StepDataConnection = 3
)

// Roles a registrant may pick at step 1.
var ValidRoles = []string{"admin", "owner", "manager", "analyst", "supervisor", "employee"}

// Main-output goals selectable at step 2.
var ValidGoals = []string{"energy-generation", "asset-management", "operational-efficiency", "explore"}

// Data-connection modes selectable at step 3.
const (
	ConnectionLiveData   = "live-data"
	ConnectionFileUpload = "file-upload"
)

// Target tables a file upload may feed.
var ValidTargetTables = []string{"wind-farm-timeseries", "solar-farm-timeseries"}

// Draft is the transient wizard state. It is discarded once submission
// succeeds or the wizard is abandoned; nothing here is ever persisted.
type Draft struct {
	// Step 1: profile
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
	Address     string
	Role        string
	CompanyName string
	// Category tags describing the company.
	CompanyDefinitions []string

	// Step 2: goal
	MainOutput string

	// Step 3: data connection
	DataConnection string
	TargetTable    string
	Files          []api.File
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
